package judge

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/gyeh/claimready/internal/model"
)

// Fixed timeline texts used when the model is not asked or cannot answer.
const (
	TimelineNotAvailable = "Recovery timeline not available. Follow your doctor's guidance."
	TimelineFallback     = "Recovery timeline: Follow your doctor's guidance for activity resumption."
)

const guidanceInstruction = "You write short, plain-language recovery guidance for patients leaving hospital. " +
	"Be encouraging and realistic. Never give new medical advice."

// Guidance turns the discharge summary into patient-facing aftercare. Only
// the recovery timeline comes from the model; everything else is extracted.
func (p *Panel) Guidance(ctx context.Context, summary *model.DischargeSummary) model.RecoveryGuidance {
	if summary == nil {
		return model.RecoveryGuidance{
			Status:           model.CompletenessIncomplete,
			RecoveryTimeline: TimelineNotAvailable,
			Summary:          guidanceSummary(model.CompletenessIncomplete, 0, 0, 0),
		}
	}
	s := *summary

	g := model.RecoveryGuidance{
		Medications:  medicationInstructions(s.Medications),
		FollowUps:    followUps(s.FollowUpSchedule),
		Dos:          s.ActivityRestrictions.Dos,
		Donts:        s.ActivityRestrictions.Donts,
		WarningSigns: s.WarningSigns,
	}
	g.Status = GuidanceCompleteness(s)
	g.RecoveryTimeline = p.recoveryTimeline(ctx, s)
	g.Summary = guidanceSummary(g.Status, len(s.Medications), len(s.FollowUpSchedule), len(s.WarningSigns))
	return g
}

// GuidanceCompleteness counts the documented guidance sections: medications,
// follow-ups, activity restrictions and warning signs.
func GuidanceCompleteness(s model.DischargeSummary) model.Completeness {
	present := 0
	for _, ok := range []bool{
		len(s.Medications) > 0,
		len(s.FollowUpSchedule) > 0,
		len(s.ActivityRestrictions.Dos) > 0 || len(s.ActivityRestrictions.Donts) > 0,
		len(s.WarningSigns) > 0,
	} {
		if ok {
			present++
		}
	}
	switch {
	case present == 4:
		return model.CompletenessComplete
	case present >= 2:
		return model.CompletenessPartial
	default:
		return model.CompletenessIncomplete
	}
}

func medicationInstructions(meds []model.Medication) []model.MedicationInstruction {
	out := make([]model.MedicationInstruction, 0, len(meds))
	for _, m := range meds {
		name := orDefault(m.Name, "Unknown medication")
		out = append(out, model.MedicationInstruction{
			Name: name,
			Instruction: fmt.Sprintf("Take %s - %s for %s",
				name, orDefault(m.Dosage, "As prescribed"), orDefault(m.Duration, "As directed")),
			Purpose: orDefault(m.Purpose, "As directed by doctor"),
		})
	}
	return out
}

func followUps(appts []model.Appointment) []model.FollowUp {
	out := make([]model.FollowUp, 0, len(appts))
	for _, a := range appts {
		out = append(out, model.FollowUp{
			Timing:    orDefault(a.Timing, "TBD"),
			Purpose:   orDefault(a.Purpose, "General check-up"),
			Important: strings.Contains(a.Timing, "Day 1") || strings.Contains(a.Timing, "Tomorrow"),
		})
	}
	return out
}

func (p *Panel) recoveryTimeline(ctx context.Context, s model.DischargeSummary) string {
	if strings.TrimSpace(s.DischargeCondition) == "" {
		return TimelineNotAvailable
	}
	prompt := timelinePrompt(s)
	out := call(ctx, p, model.AgentGuidance, func(ctx context.Context) (string, error) {
		text, err := p.client.Complete(ctx, guidanceInstruction, prompt)
		if err != nil {
			return "", err
		}
		if text = strings.TrimSpace(text); text == "" {
			return "", errors.Wrap(ErrMalformed, "empty timeline")
		}
		return text, nil
	})
	if out.Err != nil {
		p.log.Warn().Err(out.Err).Str("agent", string(model.AgentGuidance)).Msg("recovery timeline degraded")
		return TimelineFallback
	}
	return out.Value
}

func timelinePrompt(s model.DischargeSummary) string {
	var b strings.Builder
	b.WriteString("Based on this discharge information, write a brief patient-friendly recovery timeline (2-3 sentences).\n\n")
	fmt.Fprintf(&b, "DISCHARGE CONDITION:\n%s\n\n", truncate(s.DischargeCondition, 500))
	fmt.Fprintf(&b, "COMPLICATIONS (if any):\n%s\n\n", truncate(orDefault(s.Complications, "None documented"), 300))
	fmt.Fprintf(&b, "DAYS HOSPITALIZED: %d\n\n", s.DaysStayed)
	b.WriteString("Tell the patient what to expect in the first week, when they should feel better and when they can return to normal activities. ")
	b.WriteString("Use plain language. Return only the timeline text.")
	return b.String()
}

func guidanceSummary(status model.Completeness, meds, appts, signs int) string {
	switch status {
	case model.CompletenessComplete:
		return fmt.Sprintf("Complete discharge guidance extracted: %d medication(s), %d follow-up appointment(s), %d warning sign(s) documented.",
			meds, appts, signs)
	case model.CompletenessPartial:
		return fmt.Sprintf("Partial discharge guidance available: %d medication(s), %d follow-up appointment(s). Some sections may be incomplete.",
			meds, appts)
	default:
		return "Limited discharge guidance available. Please consult your discharge summary document for complete instructions."
	}
}
