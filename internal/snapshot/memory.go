package snapshot

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/gyeh/claimready/internal/model"
)

// maxIDAttempts bounds reference id regeneration on collision.
const maxIDAttempts = 10

// Memory is a process-local Store used when no database is configured.
type Memory struct {
	mu     sync.Mutex
	items  map[string]model.ClaimSnapshot
	now    func() time.Time
	suffix func() int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		items:  make(map[string]model.ClaimSnapshot),
		now:    time.Now,
		suffix: RandomSuffix,
	}
}

func (m *Memory) Save(_ context.Context, s model.ClaimSnapshot) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.CreatedAt.IsZero() {
		s.CreatedAt = m.now().UTC()
	}
	for range maxIDAttempts {
		id := NewReferenceID(s.CreatedAt, m.suffix())
		if _, taken := m.items[id]; taken {
			continue
		}
		s.ReferenceID = id
		m.items[id] = s
		return id, nil
	}
	return "", errors.Wrapf(errIDTaken, "after %d attempts", maxIDAttempts)
}

func (m *Memory) Load(_ context.Context, referenceID string) (model.ClaimSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.items[referenceID]
	if !ok {
		return model.ClaimSnapshot{}, errors.Wrapf(ErrNotFound, "reference id %s", referenceID)
	}
	return s, nil
}

func (m *Memory) List(_ context.Context, limit int) ([]model.ClaimSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.ClaimSnapshot, 0, len(m.items))
	for _, s := range m.items {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ReferenceID > out[j].ReferenceID
	})
	if n := listLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}
