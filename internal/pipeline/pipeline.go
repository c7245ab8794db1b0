// Package pipeline runs a full pre-auth or discharge validation: reference
// lookup, checkers, aggregation and snapshot persistence.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/claimready/internal/model"
	"github.com/gyeh/claimready/internal/snapshot"
)

// Phases reported in Error.
const (
	PhaseInput    = "input"
	PhaseLookup   = "lookup"
	PhaseSnapshot = "snapshot"
)

// Error wraps an error with the phase where it occurred. Checker problems never
// produce an Error; only infrastructure and caller input do.
type Error struct {
	Phase string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// References is the read-only reference data the checkers consult.
type References interface {
	Procedure(idOrName string) (model.ProcedureRecord, bool)
	PolicyFor(insurer, name string) (model.PolicyRecord, bool)
}

// Judge performs the model-backed judgments. Implementations never fail;
// they degrade to a default result instead.
type Judge interface {
	ReviewMedical(ctx context.Context, rec model.IntakeRecord, procedure *model.ProcedureRecord) model.MedicalReview
	DetectFWA(ctx context.Context, rec model.IntakeRecord, procedure *model.ProcedureRecord) model.FWAReview
	ExplainEscalation(ctx context.Context, r model.Reconciliation, summary *model.DischargeSummary) model.CostEscalation
	Guidance(ctx context.Context, summary *model.DischargeSummary) model.RecoveryGuidance
}

// Runner wires the checkers to their collaborators. It holds no per-run state
// and is safe for concurrent use.
type Runner struct {
	refs  References
	judge Judge
	store snapshot.Store
	log   zerolog.Logger
	now   func() time.Time
}

// NewRunner builds a Runner. store may be nil, in which case pre-auth runs are
// not persisted and discharge runs need explicit expected costs.
func NewRunner(refs References, judge Judge, store snapshot.Store, log zerolog.Logger) *Runner {
	return &Runner{refs: refs, judge: judge, store: store, log: log, now: time.Now}
}
