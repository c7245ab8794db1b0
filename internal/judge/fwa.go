package judge

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/gyeh/claimready/internal/model"
	"github.com/gyeh/claimready/internal/normalize"
)

// Risk levels.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Flag categories.
const (
	FlagCostInflation      = "cost_inflation"
	FlagOvertreatment      = "overtreatment"
	FlagUnjustifiedUpgrade = "unjustified_upgrade"
	FlagManualReview       = "manual_review"
)

// Rule thresholds: a total above CostInflationFactor times the typical
// maximum, or a stay longer than the typical maximum plus StayToleranceDays.
const (
	CostInflationFactor = 1.5
	StayToleranceDays   = 2
)

var riskPenalty = map[string]int{
	RiskLow:    0,
	RiskMedium: -10,
	RiskHigh:   -20,
}

var overnightKeywords = []string{"overnight", "over night", "over-night"}

const fwaInstruction = "You are a quality assurance specialist for health insurance claims in India. " +
	"Review the claim for potential fraud, waste or abuse. Treat reference data as guidance only; never audit it."

type fwaVerdict struct {
	Risk  string
	Flags []model.Finding
}

// DetectFWA screens the claim for cost and stay outliers and asks the model
// for pattern matches. procedure may be nil, in which case only the model runs.
func (p *Panel) DetectFWA(ctx context.Context, rec model.IntakeRecord, procedure *model.ProcedureRecord) model.FWAReview {
	flags := RuleFlags(rec.Note, procedure)

	prompt := fwaPrompt(rec.Note, procedure)
	out := call(ctx, p, model.AgentFWA, func(ctx context.Context) (fwaVerdict, error) {
		obj, err := p.completeJSON(ctx, fwaInstruction, prompt)
		if err != nil {
			return fwaVerdict{}, err
		}
		return parseFWA(obj), nil
	})

	var risk string
	if out.Err != nil {
		p.log.Warn().Err(out.Err).Str("agent", string(model.AgentFWA)).Msg("pattern review degraded, keeping rule flags")
		risk = RiskFromFlags(flags)
		flags = append(flags, model.Finding{
			Source:      model.AgentFWA,
			Kind:        model.KindFWAFlag,
			Category:    FlagManualReview,
			Severity:    model.SeverityWarning,
			Explanation: "Unable to complete pattern review: " + out.Err.Error(),
			Suggestion:  "Manual review recommended",
		})
	} else {
		flags = append(flags, out.Value.Flags...)
		risk = out.Value.Risk
		if risk == "" {
			risk = RiskFromFlags(flags)
		}
	}

	status := model.StatusPass
	switch risk {
	case RiskHigh:
		status = model.StatusFail
	case RiskMedium:
		status = model.StatusWarning
	}

	return model.FWAReview{
		AgentResult: model.AgentResult{
			Agent:       model.AgentFWA,
			Status:      status,
			Findings:    flags,
			ScoreImpact: riskPenalty[risk],
			Summary:     fwaSummary(status, risk, len(flags)),
		},
		RiskLevel: risk,
	}
}

// RuleFlags applies the deterministic outlier checks. A procedure without a
// typical maximum skips the corresponding check.
func RuleFlags(n model.MedicalNote, procedure *model.ProcedureRecord) []model.Finding {
	if procedure == nil {
		return nil
	}
	var flags []model.Finding

	total := n.TotalCost()
	if limit := procedure.TypicalCostMax; limit > 0 && total > limit*CostInflationFactor {
		excess := int((total/limit - 1) * 100)
		flags = append(flags, fwaFlag(FlagCostInflation,
			fmt.Sprintf("Total cost %s is %d%% above typical maximum", normalize.Rupees(total), excess),
			fmt.Sprintf("Typical max: %s, Actual: %s", normalize.Rupees(limit), normalize.Rupees(total)),
			"Will request itemized justification for cost components"))
	}

	stay := n.StayDays()
	if limit := procedure.TypicalStayMax; limit > 0 && stay > limit+StayToleranceDays {
		flags = append(flags, fwaFlag(FlagOvertreatment,
			fmt.Sprintf("Hospital stay (%d days) exceeds typical maximum by %d days", stay, stay-limit),
			fmt.Sprintf("Typical max: %d days, Planned: %d days", limit, stay),
			"Will request clinical justification for extended stay"))
	}
	return flags
}

// RiskFromFlags derives a risk level when the model did not supply one.
// Manual review markers are not counted.
func RiskFromFlags(flags []model.Finding) string {
	var counted []model.Finding
	for _, f := range flags {
		if f.Category != FlagManualReview {
			counted = append(counted, f)
		}
	}
	switch n := len(counted); {
	case n == 0:
		return RiskLow
	case n == 1:
		if c := counted[0].Category; c == FlagCostInflation || c == FlagOvertreatment {
			return RiskMedium
		}
		return RiskLow
	case n == 2:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// OvernightMentioned reports whether the justification asks for an overnight stay.
func OvernightMentioned(j *model.MedicalJustification) bool {
	if j == nil {
		return false
	}
	text := strings.ToLower(j.WhyHospitalizationRequired + " " + j.WhyTreatmentNecessary)
	for _, kw := range overnightKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func fwaFlag(category, detail, evidence, action string) model.Finding {
	return model.Finding{
		Source:      model.AgentFWA,
		Kind:        model.KindFWAFlag,
		Category:    category,
		Severity:    model.SeverityWarning,
		Explanation: detail,
		Evidence:    evidence,
		Suggestion:  action,
	}
}

func parseFWA(obj gjson.Result) fwaVerdict {
	v := fwaVerdict{}
	switch r := strings.ToLower(strings.TrimSpace(obj.Get("risk_level").String())); r {
	case RiskLow, RiskMedium, RiskHigh:
		v.Risk = r
	}
	for _, f := range obj.Get("flags").Array() {
		v.Flags = append(v.Flags, fwaFlag(
			str(f, "category", FlagCostInflation),
			str(f, "detail", "No detail provided"),
			str(f, "evidence", "No evidence provided"),
			str(f, "insurer_action", "Manual review required"),
		))
	}
	return v
}

func fwaSummary(status model.Status, risk string, flags int) string {
	if status == model.StatusPass && risk == RiskLow && flags == 0 {
		return "No FWA red flags detected"
	}
	detail := "potential issues"
	if flags > 0 {
		detail = fmt.Sprintf("%d red flag(s)", flags)
	}
	switch risk {
	case RiskHigh:
		return "High FWA risk: " + detail + ". Detailed review required."
	case RiskMedium:
		return "Medium FWA risk: " + detail + ". Additional documentation needed."
	default:
		return "Low FWA risk: " + detail + "."
	}
}

func fwaPrompt(n model.MedicalNote, procedure *model.ProcedureRecord) string {
	d := deref(n.Diagnosis)
	pt := deref(n.ProposedTreatment)
	cb := deref(n.CostBreakdown)

	var b strings.Builder
	b.WriteString("=== CLAIM DATA (review this) ===\n")
	fmt.Fprintf(&b, "Diagnosis: %s\n", orDefault(d.PrimaryDiagnosis, "Not specified"))
	fmt.Fprintf(&b, "Treatment: %s\n", orDefault(pt.ProcedureName, "Not specified"))
	fmt.Fprintf(&b, "Total Cost: %s\n", normalize.Rupees(cb.TotalEstimatedCost))
	b.WriteString("Cost Breakdown:\n")
	for _, line := range []struct {
		label  string
		amount float64
	}{
		{"Room Charges", cb.RoomCharges},
		{"Surgeon Fees", cb.SurgeonFees},
		{"Anesthetist Fees", cb.AnesthetistFees},
		{"OT Charges", cb.OTCharges},
		{"ICU Charges", cb.ICUCharges},
		{"Investigations", cb.Investigations},
		{"Medicines/Consumables", cb.MedicinesConsumables},
		{"Implants", cb.Implants},
		{"Other", cb.OtherCharges},
	} {
		fmt.Fprintf(&b, "- %s: %s\n", line.label, normalize.Rupees(line.amount))
	}
	fmt.Fprintf(&b, "Hospital Stay: %d days\n", n.StayDays())
	fmt.Fprintf(&b, "Overnight Stay Mentioned: %s\n", yesNo(OvernightMentioned(n.MedicalJustification)))
	if match, ok := diagnosisMatches(n, procedure); ok {
		fmt.Fprintf(&b, "Diagnosis Code Matches Procedure: %s\n", yesNo(match))
	}

	b.WriteString("\n=== REFERENCE DATA (guidelines only, do not audit) ===\n")
	if procedure == nil {
		b.WriteString("No reference data available for this procedure.\n")
	} else {
		fmt.Fprintf(&b, "Typical Cost Range: %s - %s\n",
			normalize.Rupees(procedure.TypicalCostMin), normalize.Rupees(procedure.TypicalCostMax))
		fmt.Fprintf(&b, "Typical Hospital Stay: %d-%d days\n", procedure.TypicalStayMin, procedure.TypicalStayMax)
		fmt.Fprintf(&b, "\nDETAILED COST ANALYSIS:\n%s\n",
			orDefault(procedure.CostAnalysis, "No cost analysis data available."))
		fmt.Fprintf(&b, "\nFRAUD/WASTE/ABUSE PATTERNS:\n%s\n",
			orDefault(procedure.FWAPatterns, "No specific FWA patterns defined."))
	}

	b.WriteString(`
RULES:
- Assess each cost component on its own. Only flag a cost that exceeds the maximum of its range.
- Costs anywhere within the range are acceptable.
- A 1-day admission for day surgery is normal. Flag a longer stay only when no medical reason is documented.
- Pre-authorization review should be lenient. Return an empty flags array if there are no major red flags.

Return ONLY a valid JSON object with this structure:
{
  "risk_level": "low" | "medium" | "high",
  "flags": [
    {
      "category": "cost_inflation" | "overtreatment" | "unjustified_upgrade",
      "detail": "specific concern about the claim",
      "evidence": "what in the claim triggered this",
      "insurer_action": "likely response"
    }
  ]
}`)
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
