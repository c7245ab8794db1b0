package pipeline

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/gyeh/claimready/internal/aggregate"
	"github.com/gyeh/claimready/internal/model"
	"github.com/gyeh/claimready/internal/reconcile"
	"github.com/gyeh/claimready/internal/snapshot"
)

// ErrNoEstimate is returned when a discharge run has neither a reference id
// nor manually supplied expected costs.
var ErrNoEstimate = errors.New("either a claim reference id or expected costs are required")

// ErrNoStore is returned when a reference id is given but no store is configured.
var ErrNoStore = errors.New("claim reference lookup needs a snapshot store")

// DischargeInput carries the discharge documents. Exactly one of ReferenceID
// and Expected identifies the estimate. A nil Bill or Summary is a missing document.
type DischargeInput struct {
	ReferenceID string
	Expected    *model.ExpectedCosts
	Bill        *model.FinalBill
	Summary     *model.DischargeSummary
}

// DischargeReport is the outcome of one discharge run.
type DischargeReport struct {
	ReferenceID string                          `json:"reference_id,omitempty"`
	Expected    model.ExpectedCosts             `json:"expected_costs"`
	Result      model.DischargeValidationResult `json:"result"`
	Duration    time.Duration                   `json:"duration"`
}

// Discharge compares the final bill and discharge summary against the pre-auth estimate.
func (r *Runner) Discharge(ctx context.Context, in DischargeInput) (*DischargeReport, error) {
	start := time.Now()
	log := r.log.With().Str("reference_id", in.ReferenceID).Logger()

	expected, err := r.resolveEstimate(ctx, in)
	if err != nil {
		return nil, err
	}
	log.Info().
		Float64("expected_total", expected.Total).
		Bool("has_bill", in.Bill != nil).
		Bool("has_discharge_summary", in.Summary != nil).
		Msg("starting discharge validation")

	recon := reconcileBill(expected, in.Bill, actualStayDays(in))

	var (
		escalation model.CostEscalation
		guidance   model.RecoveryGuidance
	)
	// checkers degrade instead of failing, so the group only joins them
	var g errgroup.Group
	g.Go(func() error {
		escalation = r.judge.ExplainEscalation(ctx, recon, in.Summary)
		return nil
	})
	g.Go(func() error {
		guidance = r.judge.Guidance(ctx, in.Summary)
		return nil
	})
	g.Wait()

	result := aggregate.Discharge(aggregate.DischargeInputs{
		Reconciliation:      recon,
		Escalation:          escalation,
		Guidance:            guidance,
		HasDischargeSummary: in.Summary != nil,
		HasFinalBill:        in.Bill != nil,
	})
	log.Info().
		Int("score", result.Score).
		Str("completeness", string(result.Completeness)).
		Str("variance", string(recon.Status)).
		Dur("elapsed", time.Since(start)).
		Msg("discharge validation complete")

	return &DischargeReport{
		ReferenceID: in.ReferenceID,
		Expected:    expected,
		Result:      result,
		Duration:    time.Since(start),
	}, nil
}

func (r *Runner) resolveEstimate(ctx context.Context, in DischargeInput) (model.ExpectedCosts, error) {
	switch {
	case in.ReferenceID != "":
		if r.store == nil {
			return model.ExpectedCosts{}, &Error{Phase: PhaseLookup, Err: ErrNoStore}
		}
		snap, err := r.store.Load(ctx, in.ReferenceID)
		if err != nil {
			return model.ExpectedCosts{}, &Error{Phase: PhaseLookup, Err: err}
		}
		return snap.Expected, nil
	case in.Expected != nil:
		return *in.Expected, nil
	default:
		return model.ExpectedCosts{}, &Error{Phase: PhaseInput, Err: ErrNoEstimate}
	}
}

// actualStayDays prefers the discharge summary and falls back to the bill.
func actualStayDays(in DischargeInput) int {
	if in.Summary != nil && in.Summary.DaysStayed > 0 {
		return in.Summary.DaysStayed
	}
	if in.Bill != nil {
		return in.Bill.ActualStayDays
	}
	return 0
}

// reconcileBill skips the comparison when no bill was supplied; the missing
// document is penalized by the aggregator instead.
func reconcileBill(expected model.ExpectedCosts, bill *model.FinalBill, stayDays int) model.Reconciliation {
	if bill == nil {
		return model.Reconciliation{
			Status:  model.VarianceAcceptable,
			Total:   model.TotalVariance{Expected: expected.Total},
			Stay:    model.StayVariance{ExpectedDays: expected.StayDays},
			Summary: "Final bill not provided. No reconciliation performed.",
		}
	}
	return reconcile.Reconcile(expected, *bill, stayDays)
}

// IsNotFound reports whether err means the claim reference does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, snapshot.ErrNotFound)
}
