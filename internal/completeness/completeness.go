// Package completeness checks that a pre-auth submission carries every
// required form field, note section and a coherent cost breakdown.
package completeness

import (
	"fmt"
	"math"
	"strings"

	"github.com/gyeh/claimready/internal/model"
	"github.com/gyeh/claimready/internal/normalize"
)

// PenaltyPerIssue is deducted once per issue. There is no floor.
const PenaltyPerIssue = 5

// Tolerance is the allowed relative gap between the component sum and the declared total.
const Tolerance = 0.01

const (
	categoryFormField = "form_field"
	categorySection   = "note_section"
	categoryCost      = "cost_breakdown"
)

// Check runs every completeness check and reports all issues found.
func Check(rec model.IntakeRecord) model.AgentResult {
	var findings []model.Finding
	findings = append(findings, checkFormFields(rec.Form)...)
	findings = append(findings, checkSections(rec.Note)...)
	findings = append(findings, checkCostBreakdown(rec.Note.CostBreakdown)...)

	status := model.StatusPass
	if len(findings) > 0 {
		status = model.StatusFail
	}
	return model.AgentResult{
		Agent:       model.AgentCompleteness,
		Status:      status,
		Findings:    findings,
		ScoreImpact: -PenaltyPerIssue * len(findings),
		Summary:     summarize(findings),
	}
}

func issue(category, text string) model.Finding {
	return model.Finding{
		Source:      model.AgentCompleteness,
		Kind:        model.KindCompletenessIssue,
		Category:    category,
		Severity:    model.SeverityWarning,
		Explanation: text,
		ScoreImpact: -PenaltyPerIssue,
	}
}

func checkFormFields(form model.FormFields) []model.Finding {
	var out []model.Finding
	for _, field := range model.RequiredFormFields {
		switch {
		case !form.Has(field):
			out = append(out, issue(categoryFormField, "Missing form field: "+field))
		case !form.Filled(field):
			out = append(out, issue(categoryFormField, "Empty form field: "+field))
		}
	}
	return out
}

func checkSections(note model.MedicalNote) []model.Finding {
	var out []model.Finding
	for _, name := range model.RequiredNoteSections {
		section := note.Section(name)
		switch {
		case section == nil:
			out = append(out, issue(categorySection, "Medical note missing section: "+name))
		case !section.HasContent():
			out = append(out, issue(categorySection, "Medical note section incomplete: "+name))
		}
	}
	return out
}

// checkCostBreakdown validates the estimate. An absent breakdown is already
// reported as a missing section.
func checkCostBreakdown(cb *model.CostBreakdown) []model.Finding {
	if cb == nil {
		return nil
	}
	for _, v := range append(cb.Components(), cb.TotalEstimatedCost) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return []model.Finding{issue(categoryCost,
				"Cost breakdown: Unable to validate - amounts must be finite numbers")}
		}
	}

	if cb.TotalEstimatedCost <= 0 {
		return []model.Finding{issue(categoryCost, "Cost breakdown: Total estimated cost is zero or missing")}
	}

	var out []model.Finding
	allZero := true
	for _, v := range cb.CoreComponents() {
		if v != 0 {
			allZero = false
		}
	}
	if allZero {
		out = append(out, issue(categoryCost, "Cost breakdown: All cost components are zero (only total provided)"))
	}

	for _, v := range cb.Components() {
		if v < 0 {
			out = append(out, issue(categoryCost, "Cost breakdown: Contains negative values"))
			break
		}
	}

	sum := cb.ComponentSum()
	if math.Abs(sum-cb.TotalEstimatedCost) > cb.TotalEstimatedCost*Tolerance {
		out = append(out, issue(categoryCost, fmt.Sprintf(
			"Cost breakdown: Sum of components (%s) doesn't match total (%s)",
			normalize.Rupees(sum), normalize.Rupees(cb.TotalEstimatedCost))))
	}
	return out
}

func summarize(findings []model.Finding) string {
	if len(findings) == 0 {
		return "All required information is complete"
	}
	counts := map[string]int{}
	for _, f := range findings {
		counts[f.Category]++
	}
	var parts []string
	if n := counts[categoryFormField]; n > 0 {
		parts = append(parts, fmt.Sprintf("Missing %d form field(s)", n))
	}
	if n := counts[categorySection]; n > 0 {
		parts = append(parts, fmt.Sprintf("Missing %d medical note section(s)", n))
	}
	if n := counts[categoryCost]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d cost breakdown issue(s)", n))
	}
	return "Incomplete: " + strings.Join(parts, ", ")
}
