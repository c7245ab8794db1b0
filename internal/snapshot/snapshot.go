// Package snapshot persists pre-auth claim snapshots so a later discharge
// check can be run against the original estimate.
package snapshot

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/gyeh/claimready/internal/model"
)

// ErrNotFound is returned by Load when no snapshot has the given reference id.
var ErrNotFound = errors.New("claim snapshot not found")

// errIDTaken signals a reference id collision on insert.
var errIDTaken = errors.New("reference id already taken")

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

var referenceIDPattern = regexp.MustCompile(`^CR-\d{8}-\d{5}$`)

// Store saves and loads claim snapshots. Snapshots are write-once.
type Store interface {
	// Save assigns a fresh reference id, persists the snapshot and returns the id.
	Save(ctx context.Context, s model.ClaimSnapshot) (string, error)
	Load(ctx context.Context, referenceID string) (model.ClaimSnapshot, error)
	// List returns the most recent snapshots first.
	List(ctx context.Context, limit int) ([]model.ClaimSnapshot, error)
}

// NewReferenceID formats CR-YYYYMMDD-NNNNN from the creation date and a five digit suffix.
func NewReferenceID(created time.Time, suffix int) string {
	return fmt.Sprintf("CR-%s-%05d", created.Format("20060102"), suffix)
}

// RandomSuffix draws a suffix in [10000, 99999]. Safe for concurrent use.
func RandomSuffix() int {
	return 10000 + rand.IntN(90000)
}

// ValidReferenceID reports whether id has the reference id shape.
func ValidReferenceID(id string) bool {
	return referenceIDPattern.MatchString(id)
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
