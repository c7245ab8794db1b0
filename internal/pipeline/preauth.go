package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gyeh/claimready/internal/aggregate"
	"github.com/gyeh/claimready/internal/completeness"
	"github.com/gyeh/claimready/internal/model"
	"github.com/gyeh/claimready/internal/normalize"
	"github.com/gyeh/claimready/internal/policyrules"
)

// PreAuthReport is the outcome of one pre-auth run.
type PreAuthReport struct {
	RunID       uuid.UUID              `json:"run_id"`
	ReferenceID string                 `json:"reference_id,omitempty"`
	Fingerprint string                 `json:"input_fingerprint"`
	ProcedureID string                 `json:"procedure_id,omitempty"`
	PolicyID    string                 `json:"policy_id,omitempty"`
	Result      model.ValidationResult `json:"result"`
	Duration    time.Duration          `json:"duration"`
}

// PreAuth validates a pre-auth submission and, when a store is configured,
// saves a snapshot for the later discharge check.
func (r *Runner) PreAuth(ctx context.Context, rec model.IntakeRecord) (*PreAuthReport, error) {
	start := time.Now()
	runID := uuid.New()
	log := r.log.With().Str("run_id", runID.String()).Logger()

	fingerprint, err := normalize.Fingerprint(rec)
	if err != nil {
		return nil, &Error{Phase: PhaseInput, Err: err}
	}

	report := &PreAuthReport{RunID: runID, Fingerprint: fingerprint}
	procedure := r.lookupProcedure(rec)
	if procedure != nil {
		report.ProcedureID = procedure.ID
	}
	policy := r.lookupPolicy(rec)
	if policy != nil {
		report.PolicyID = policy.ID
	}
	log.Info().
		Str("procedure_id", report.ProcedureID).
		Str("policy_id", report.PolicyID).
		Str("fingerprint", fingerprint).
		Msg("starting pre-auth validation")

	var agents model.PreAuthAgents
	// checkers degrade instead of failing, so the group only joins them
	var g errgroup.Group
	g.Go(func() error {
		agents.Completeness = completeness.Check(rec)
		return nil
	})
	g.Go(func() error {
		agents.Policy = policyrules.Validate(rec, policy, procedure)
		return nil
	})
	g.Go(func() error {
		agents.Medical = r.judge.ReviewMedical(ctx, rec, procedure)
		return nil
	})
	g.Go(func() error {
		agents.FWA = r.judge.DetectFWA(ctx, rec, procedure)
		return nil
	})
	g.Wait()

	report.Result = aggregate.PreAuth(agents)
	result := report.Result
	log.Info().
		Int("score", result.Score).
		Str("status", string(result.Status)).
		Str("approval_likelihood", string(result.ApprovalLikelihood)).
		Dur("elapsed", time.Since(start)).
		Msg("pre-auth validation complete")

	if r.store != nil {
		snap := r.snapshotOf(rec, report)
		id, err := r.store.Save(ctx, snap)
		if err != nil {
			return nil, &Error{Phase: PhaseSnapshot, Err: err}
		}
		report.ReferenceID = id
		log.Info().Str("reference_id", id).Msg("claim reference issued")
	}

	report.Duration = time.Since(start)
	return report, nil
}

// lookupProcedure tries the form's procedure id, then the proposed procedure name.
func (r *Runner) lookupProcedure(rec model.IntakeRecord) *model.ProcedureRecord {
	keys := []string{rec.Form.String("procedure_id")}
	if t := rec.Note.ProposedTreatment; t != nil {
		keys = append(keys, t.ProcedureName)
	}
	for _, k := range keys {
		if k == "" {
			continue
		}
		if p, ok := r.refs.Procedure(k); ok {
			return &p
		}
	}
	return nil
}

func (r *Runner) lookupPolicy(rec model.IntakeRecord) *model.PolicyRecord {
	p, ok := r.refs.PolicyFor(rec.Form.String("insurer"), rec.Form.String("policy_type"))
	if !ok {
		return nil
	}
	return &p
}

func (r *Runner) snapshotOf(rec model.IntakeRecord, report *PreAuthReport) model.ClaimSnapshot {
	note := rec.Note
	s := model.ClaimSnapshot{
		RunID:             report.RunID,
		CreatedAt:         r.now().UTC(),
		PolicyNumber:      rec.Form.String("policy_number"),
		Insurer:           rec.Form.String("insurer"),
		PolicyType:        rec.Form.String("policy_type"),
		ProcedureID:       rec.Form.String("procedure_id"),
		HospitalName:      rec.Form.String("hospital_name"),
		Score:             report.Result.Score,
		Status:            report.Result.Status,
		ValidationSummary: report.Result.Summary,
		InputFingerprint:  report.Fingerprint,
	}
	if note.PatientInfo != nil {
		s.PatientName = note.PatientInfo.Name
	}
	if note.DoctorDetails != nil {
		s.DoctorName = note.DoctorDetails.Name
	}
	if s.HospitalName == "" && note.HospitalDetails != nil {
		s.HospitalName = note.HospitalDetails.Name
	}
	if note.CostBreakdown != nil {
		s.Expected = note.CostBreakdown.Expected(note.StayDays())
	} else {
		s.Expected = model.ExpectedCosts{Items: map[string]float64{}, StayDays: note.StayDays()}
	}
	return s
}
