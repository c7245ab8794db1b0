package judge

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/gyeh/claimready/internal/model"
	"github.com/gyeh/claimready/internal/normalize"
)

// MinVarianceAmount is the smallest absolute line-item difference worth explaining.
const MinVarianceAmount = 100

var escalationPenalty = map[model.EscalationStatus]int{
	model.EscalationDocumented:    0,
	model.EscalationPartial:       -5,
	model.EscalationNotDocumented: -10,
	model.EscalationNoSignificant: 0,
	model.EscalationUnavailable:   0,
}

const escalationInstruction = "You compare a hospital's final bill against its pre-authorization estimate. " +
	"State only what the discharge summary documents. Never judge whether a cost was justified or will be approved."

// ExplainEscalation checks whether each material line-item variance has a
// documented medical reason in the discharge summary.
func (p *Panel) ExplainEscalation(ctx context.Context, r model.Reconciliation, summary *model.DischargeSummary) model.CostEscalation {
	variances := MaterialVariances(r.LineItems)
	if len(variances) == 0 {
		return model.CostEscalation{
			Status:       model.EscalationNoSignificant,
			Explanations: []model.VarianceExplanation{},
			Summary:      "No significant cost variances to analyze.",
		}
	}
	if summary == nil {
		return model.CostEscalation{
			Status:       model.EscalationUnavailable,
			Explanations: []model.VarianceExplanation{},
			Summary:      "Discharge summary not provided; cost variances could not be checked for documented reasons.",
		}
	}

	prompt := escalationPrompt(variances, r.Stay, *summary)
	out := call(ctx, p, model.AgentCostEscalation, func(ctx context.Context) ([]model.VarianceExplanation, error) {
		obj, err := p.completeJSON(ctx, escalationInstruction, prompt)
		if err != nil {
			return nil, err
		}
		return matchExplanations(variances, obj), nil
	})
	if out.Err != nil {
		p.log.Warn().Err(out.Err).Str("agent", string(model.AgentCostEscalation)).Msg("cost escalation analysis degraded")
		return model.CostEscalation{
			Status:       model.EscalationUnavailable,
			Explanations: []model.VarianceExplanation{},
			Summary:      "Could not complete variance analysis. Check the discharge summary for medical reasons manually.",
		}
	}

	explanations := out.Value
	documented := 0
	for _, e := range explanations {
		if e.Documented {
			documented++
		}
	}
	status := escalationStatus(documented, len(explanations))
	return model.CostEscalation{
		Status:       status,
		Explanations: explanations,
		ScoreImpact:  escalationPenalty[status],
		Summary:      escalationSummary(status, documented, len(explanations), r.Stay),
	}
}

// MaterialVariances keeps minor and significant line items whose absolute
// difference exceeds MinVarianceAmount.
func MaterialVariances(items []model.LineItemVariance) []model.LineItemVariance {
	var out []model.LineItemVariance
	for _, it := range items {
		if it.Severity != model.SeverityMinor && it.Severity != model.SeveritySignificant {
			continue
		}
		if math.Abs(it.Difference) <= MinVarianceAmount {
			continue
		}
		out = append(out, it)
	}
	return out
}

// matchExplanations pairs every analysed variance with the model's answer.
// A variance the model did not address counts as undocumented.
func matchExplanations(variances []model.LineItemVariance, obj gjson.Result) []model.VarianceExplanation {
	answers := obj.Get("explanations").Array()
	out := make([]model.VarianceExplanation, 0, len(variances))
	for _, v := range variances {
		e := model.VarianceExplanation{
			Variance:      v.Item,
			Amount:        v.Difference,
			MedicalReason: "Not documented",
			Source:        "not found",
		}
		for _, a := range answers {
			name := strings.TrimSpace(a.Get("variance").String())
			if !strings.EqualFold(name, v.Item) && !strings.EqualFold(name, v.DisplayName) {
				continue
			}
			e.Documented = yes(a, "documented")
			e.MedicalReason = str(a, "medical_reason", e.MedicalReason)
			e.Source = str(a, "source", e.Source)
			break
		}
		out = append(out, e)
	}
	return out
}

func escalationStatus(documented, total int) model.EscalationStatus {
	switch {
	case total == 0:
		return model.EscalationNoSignificant
	case documented == total:
		return model.EscalationDocumented
	case documented > 0:
		return model.EscalationPartial
	default:
		return model.EscalationNotDocumented
	}
}

func escalationSummary(status model.EscalationStatus, documented, total int, stay model.StayVariance) string {
	var b strings.Builder
	switch status {
	case model.EscalationNoSignificant:
		return "No significant cost variances to analyze."
	case model.EscalationDocumented:
		fmt.Fprintf(&b, "All %d significant cost variance(s) have documented medical reasons in discharge summary. ", total)
	case model.EscalationPartial:
		fmt.Fprintf(&b, "%d out of %d cost variance(s) have documented medical reasons. ", documented, total)
	default:
		b.WriteString("Cost variances found but medical reasons not documented in discharge summary. ")
	}
	if stay.IsExtended {
		fmt.Fprintf(&b, "Extended hospital stay of %d day(s) ", stay.ExtraDays)
		if status == model.EscalationDocumented {
			b.WriteString("is explained in discharge summary.")
		} else {
			b.WriteString("should be verified against discharge summary.")
		}
	}
	return strings.TrimSpace(b.String())
}

func escalationPrompt(variances []model.LineItemVariance, stay model.StayVariance, s model.DischargeSummary) string {
	var b strings.Builder
	b.WriteString("COST VARIANCES FOUND:\n")
	for _, v := range variances {
		fmt.Fprintf(&b, "- %s (%s): Expected %s, Actual %s, Difference %s (%.1f%%)\n",
			v.DisplayName, v.Item, normalize.Rupees(v.Expected), normalize.Rupees(v.Actual),
			normalize.Rupees(v.Difference), v.Percentage)
	}
	if stay.IsExtended {
		fmt.Fprintf(&b, "\nHospital stay was extended by %d day(s) from planned %d day(s).\n", stay.ExtraDays, stay.ExpectedDays)
	}

	b.WriteString("\nDISCHARGE SUMMARY SECTIONS:\n\n")
	fmt.Fprintf(&b, "COMPLICATIONS:\n%s\n\n", orDefault(s.Complications, "Not documented"))
	fmt.Fprintf(&b, "CLINICAL NOTES / POST-OPERATIVE COURSE:\n%s\n\n", truncate(orDefault(s.ClinicalNotes, "Not documented"), 1000))
	fmt.Fprintf(&b, "PROCEDURE PERFORMED:\n%s\n\n", orDefault(s.ProcedurePerformed, "Not documented"))
	fmt.Fprintf(&b, "MEDICATIONS PRESCRIBED:\n%d medication(s) prescribed\n\n", len(s.Medications))
	fmt.Fprintf(&b, "DISCHARGE CONDITION:\n%s\n", truncate(orDefault(s.DischargeCondition, "Not documented"), 500))

	b.WriteString(`
TASK:
For each cost variance, determine whether the discharge summary documents a medical reason
(complication, extended stay, additional treatment) and where it is mentioned.
Only state what happened. A variance is documented only when a medical reason is explicitly stated.

Return ONLY a valid JSON object with this structure:
{
  "explanations": [
    {
      "variance": "<item key as listed above>",
      "documented": true | false,
      "medical_reason": "reason from the discharge summary, or Not documented",
      "source": "complications | clinical_notes | medications | procedure_performed | not found"
    }
  ]
}`)
	return b.String()
}
