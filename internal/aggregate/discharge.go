package aggregate

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gyeh/claimready/internal/model"
	"github.com/gyeh/claimready/internal/normalize"
)

// MissingDocumentPenalty is deducted for each absent source document.
const MissingDocumentPenalty = 20

// Thresholds for the discharge completeness grade.
const (
	CompleteScore = 80
	PartialScore  = 60
)

// Document names used in the checklist and missing-document list.
const (
	DocDischargeSummary = "Discharge Summary"
	DocFinalBill        = "Final Bill"
	DocMedications      = "Medications Documented"
	DocFollowUps        = "Follow-up Documented"
	DocWarningSigns     = "Warning Signs Documented"
)

// Recommendation texts for the discharge stage.
const (
	RecObtainSummary    = "Obtain discharge summary from hospital"
	RecObtainBill       = "Obtain detailed final bill from hospital"
	RecDocumentVariance = "Request hospital to document medical reasons for cost increase in discharge summary"
	RecMedications      = "Ensure all discharge medications are documented"
	RecFollowUps        = "Confirm follow-up appointment schedule with hospital"
	RecComplete         = "Documentation appears complete. Submit to insurer for their review."
)

// Texts used in place of the comparison when no final bill was supplied.
const (
	NoBillComparison = "Final bill not provided. No cost comparison available."
	NoBillAnalysis   = "No final bill to compare against the pre-authorization estimate.\n"
)

// DischargeInputs carries the discharge checker outputs and which documents were supplied.
type DischargeInputs struct {
	Reconciliation      model.Reconciliation
	Escalation          model.CostEscalation
	Guidance            model.RecoveryGuidance
	HasDischargeSummary bool
	HasFinalBill        bool
}

// Discharge merges the discharge checker outputs. It states what is documented
// and never whether a cost is justified.
func Discharge(in DischargeInputs) model.DischargeValidationResult {
	score := 100
	var missing []string
	if !in.HasDischargeSummary {
		score -= MissingDocumentPenalty
		missing = append(missing, DocDischargeSummary)
	}
	if !in.HasFinalBill {
		score -= MissingDocumentPenalty
		missing = append(missing, DocFinalBill)
	}
	score = Clamp(score + in.Reconciliation.ScoreImpact + in.Escalation.ScoreImpact + in.Guidance.ScoreImpact)

	completeness := dischargeCompleteness(score, len(missing) > 0)

	comparison, analysis := NoBillComparison, NoBillAnalysis
	if in.HasFinalBill {
		comparison = BillComparison(in.Reconciliation)
		analysis = VarianceAnalysis(in.Reconciliation, in.Escalation)
	}

	return model.DischargeValidationResult{
		Score:            score,
		Completeness:     completeness,
		MissingDocuments: missing,
		BillComparison:   comparison,
		VarianceAnalysis: analysis,
		Checklist:        Checklist(in),
		Recommendations:  dischargeRecommendations(in),
		PatientSummary:   patientSummary(in, completeness),
		Reconciliation:   in.Reconciliation,
		Escalation:       in.Escalation,
		Guidance:         in.Guidance,
	}
}

func dischargeCompleteness(score int, missingDocs bool) model.Completeness {
	switch {
	case missingDocs:
		return model.CompletenessIncomplete
	case score >= CompleteScore:
		return model.CompletenessComplete
	case score >= PartialScore:
		return model.CompletenessPartial
	default:
		return model.CompletenessIncomplete
	}
}

// BillComparison renders the expected vs actual table. Unchanged line items are omitted.
func BillComparison(r model.Reconciliation) string {
	var b strings.Builder
	b.WriteString("Total Cost Comparison:\n")
	fmt.Fprintf(&b, "  Expected: %s\n", normalize.Rupees(r.Total.Expected))
	fmt.Fprintf(&b, "  Actual: %s\n", normalize.Rupees(r.Total.Actual))
	fmt.Fprintf(&b, "  Variance: %s (%+.1f%%)\n\n", signedRupees(r.Total.Difference), r.Total.Percentage)

	b.WriteString("Line Item Breakdown:\n")
	for _, item := range r.LineItems {
		if item.Difference == 0 {
			continue
		}
		fmt.Fprintf(&b, "  - %s: %s to %s (%s)\n", item.DisplayName,
			normalize.Rupees(item.Expected), normalize.Rupees(item.Actual), signedRupees(item.Difference))
	}
	return b.String()
}

func signedRupees(v float64) string {
	if v > 0 {
		return "+" + normalize.Rupees(v)
	}
	return normalize.Rupees(v)
}

// VarianceAnalysis describes the variance band, which medical reasons the
// discharge summary records, and any stay extension.
func VarianceAnalysis(r model.Reconciliation, e model.CostEscalation) string {
	var b strings.Builder
	switch r.Status {
	case model.VarianceAcceptable:
		b.WriteString("Cost variance is within acceptable range (<=10%).\n\n")
	case model.VarianceMinor:
		b.WriteString("Minor cost variance detected (10-25%).\n\n")
	default:
		b.WriteString("Significant cost variance detected (>25%).\n\n")
	}

	switch e.Status {
	case model.EscalationDocumented:
		if len(e.Explanations) == 0 {
			break
		}
		b.WriteString("Medical Reasons Documented in Discharge Summary:\n")
		titler := cases.Title(language.English)
		for _, ex := range e.Explanations {
			if !ex.Documented {
				continue
			}
			reason := ex.MedicalReason
			if reason == "" {
				reason = "See discharge summary"
			}
			fmt.Fprintf(&b, "  - %s: %s\n", titler.String(strings.ReplaceAll(ex.Variance, "_", " ")), reason)
		}
		b.WriteString("\n")
	case model.EscalationPartial:
		b.WriteString("Some variances have documented medical reasons. Review discharge summary for details.\n\n")
	case model.EscalationNotDocumented:
		b.WriteString("Cost variances found but medical reasons not clearly documented in discharge summary.\n\n")
	}

	if r.Stay.IsExtended {
		fmt.Fprintf(&b, "Hospital stay extended by %d day(s). Check discharge summary for medical reason.\n", r.Stay.ExtraDays)
	}
	return b.String()
}

// Checklist lists the source documents and the guidance sections found in them.
func Checklist(in DischargeInputs) []model.ChecklistItem {
	counted := func(doc string, n int) model.ChecklistItem {
		return model.ChecklistItem{Document: doc, Present: n > 0, Detail: fmt.Sprintf("%d item(s)", n)}
	}
	return []model.ChecklistItem{
		{Document: DocDischargeSummary, Present: in.HasDischargeSummary, Detail: presence(in.HasDischargeSummary)},
		{Document: DocFinalBill, Present: in.HasFinalBill, Detail: presence(in.HasFinalBill)},
		counted(DocMedications, len(in.Guidance.Medications)),
		counted(DocFollowUps, len(in.Guidance.FollowUps)),
		counted(DocWarningSigns, len(in.Guidance.WarningSigns)),
	}
}

func presence(ok bool) string {
	if ok {
		return "Present"
	}
	return "Missing"
}

func dischargeRecommendations(in DischargeInputs) []string {
	var out []string
	if !in.HasDischargeSummary {
		out = append(out, RecObtainSummary)
	}
	if !in.HasFinalBill {
		out = append(out, RecObtainBill)
	}
	if in.Reconciliation.Status == model.VarianceSignificant && in.Escalation.Status == model.EscalationNotDocumented {
		out = append(out, RecDocumentVariance)
	}
	if len(in.Guidance.Medications) == 0 {
		out = append(out, RecMedications)
	}
	if len(in.Guidance.FollowUps) == 0 {
		out = append(out, RecFollowUps)
	}
	if len(out) == 0 {
		out = append(out, RecComplete)
	}
	return out
}

func patientSummary(in DischargeInputs, completeness model.Completeness) string {
	var b strings.Builder
	switch completeness {
	case model.CompletenessComplete:
		b.WriteString("Your discharge documentation appears complete. ")
	case model.CompletenessPartial:
		b.WriteString("Your discharge documentation is mostly complete but has some gaps. ")
	default:
		b.WriteString("Your discharge documentation is incomplete. ")
	}

	total := in.Reconciliation.Total
	switch {
	case !in.HasFinalBill:
		b.WriteString("No final bill was provided, so costs could not be compared with the pre-authorization estimate. ")
	case math.Abs(total.Percentage) <= 10:
		fmt.Fprintf(&b, "The final bill (%s) is close to the pre-authorization estimate (%s). ",
			normalize.Rupees(total.Actual), normalize.Rupees(total.Expected))
	default:
		fmt.Fprintf(&b, "The final bill (%s) differs from the pre-authorization estimate (%s) by %s. ",
			normalize.Rupees(total.Actual), normalize.Rupees(total.Expected), normalize.Rupees(math.Abs(total.Difference)))
	}

	if in.HasDischargeSummary {
		switch in.Escalation.Status {
		case model.EscalationDocumented:
			b.WriteString("Medical reasons for cost differences are documented in your discharge summary. ")
		case model.EscalationPartial:
			b.WriteString("Some medical reasons are documented in your discharge summary. ")
		}
	}

	b.WriteString("\n\nNext Steps:\n")
	b.WriteString("1. Review the bill comparison and variance analysis below\n")
	b.WriteString("2. Check the medical guidance section for your recovery instructions\n")
	b.WriteString("3. Submit all documents to your insurance company for their review\n")
	b.WriteString("\nIMPORTANT: Your insurance company will make the final decision on coverage and payment. ")
	b.WriteString("This validation only checks documentation completeness.")
	return b.String()
}
