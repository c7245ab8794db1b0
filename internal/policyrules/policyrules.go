// Package policyrules checks a pre-auth submission against the eligibility
// rules of the insurance product it is filed under.
package policyrules

import (
	"fmt"
	"strings"
	"time"

	"github.com/gyeh/claimready/internal/model"
	"github.com/gyeh/claimready/internal/normalize"
)

// Penalties per violation severity. Totals are not capped.
const (
	CriticalPenalty = 20
	WarningPenalty  = 10
)

// Rule names carried in Finding.Category.
const (
	RulePolicyReference  = "policy_reference"
	RulePolicyActive     = "policy_active"
	RuleInitialWaiting   = "initial_waiting_period"
	RuleProcedureWaiting = "procedure_waiting_period"
	RuleExclusions       = "exclusions"
	RuleSumInsured       = "sum_insured"
	RuleRoomRentLimit    = "room_rent_limit"
)

// Validate runs every rule and reports all violations. policy and procedure
// may be nil when the reference data has no matching record; a missing policy
// is itself a critical violation and disables the rules that depend on it.
func Validate(rec model.IntakeRecord, policy *model.PolicyRecord, procedure *model.ProcedureRecord) model.AgentResult {
	form := rec.Form
	startRaw := form.String("policy_start_date")
	admissionRaw := admissionDate(rec)
	procedureID := form.String("procedure_id")

	var v []model.Finding
	if policy == nil {
		v = append(v, violation(RulePolicyReference, model.SeverityCritical,
			fmt.Sprintf("No policy rules found for %s %s", form.String("insurer"), form.String("policy_type")),
			"Check the insurer and policy type against your policy document"))
	}

	v = append(v, checkPolicyActive(startRaw, admissionRaw)...)
	if policy != nil {
		v = append(v, checkInitialWaiting(*policy, startRaw, admissionRaw)...)
		v = append(v, checkProcedureWaiting(*policy, procedure, procedureID, startRaw, admissionRaw)...)
		v = append(v, checkExclusions(*policy, procedureID)...)
	}
	v = append(v, checkSumInsured(rec)...)
	if policy != nil {
		v = append(v, checkRoomRent(*policy, rec)...)
	}

	return model.AgentResult{
		Agent:       model.AgentPolicy,
		Status:      status(v),
		Findings:    v,
		ScoreImpact: score(v),
		Summary:     summarize(v),
	}
}

func violation(rule string, sev model.Severity, explanation, suggestion string) model.Finding {
	impact := -WarningPenalty
	if sev == model.SeverityCritical {
		impact = -CriticalPenalty
	}
	return model.Finding{
		Source:      model.AgentPolicy,
		Kind:        model.KindPolicyViolation,
		Category:    rule,
		Severity:    sev,
		Explanation: explanation,
		Suggestion:  suggestion,
		ScoreImpact: impact,
	}
}

// admissionDate prefers the form value and falls back to the note.
func admissionDate(rec model.IntakeRecord) string {
	if s := rec.Form.String("planned_admission_date"); s != "" {
		return s
	}
	if h := rec.Note.HospitalizationDetails; h != nil {
		return h.PlannedAdmissionDate
	}
	return ""
}

func parseDates(startRaw, admissionRaw string) (time.Time, time.Time, error) {
	start, err := normalize.ParseDate(startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("policy start date: %w", err)
	}
	admission, err := normalize.ParseDate(admissionRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("planned admission date: %w", err)
	}
	return start, admission, nil
}

func checkPolicyActive(startRaw, admissionRaw string) []model.Finding {
	start, admission, err := parseDates(startRaw, admissionRaw)
	if err != nil {
		return []model.Finding{violation(RulePolicyActive, model.SeverityCritical,
			"Unable to validate policy dates: "+err.Error(),
			"Verify date formats are correct (DD/MM/YYYY or YYYY-MM-DD)")}
	}
	if admission.Before(start) {
		return []model.Finding{violation(RulePolicyActive, model.SeverityCritical,
			fmt.Sprintf("Admission date (%s) is before policy start date (%s)", admissionRaw, startRaw),
			"Policy must be active on admission date. This claim will be rejected.")}
	}
	return nil
}

func checkInitialWaiting(policy model.PolicyRecord, startRaw, admissionRaw string) []model.Finding {
	start, admission, err := parseDates(startRaw, admissionRaw)
	if err != nil {
		return []model.Finding{violation(RuleInitialWaiting, model.SeverityCritical,
			"Unable to validate initial waiting period: "+err.Error(),
			"Verify date formats and policy data")}
	}
	required := policy.InitialWaitingDays
	elapsed := normalize.DaysBetween(start, admission)
	if elapsed >= required {
		return nil
	}
	shortfall := required - elapsed
	return []model.Finding{violation(RuleInitialWaiting, model.SeverityCritical,
		fmt.Sprintf("Initial waiting period not met. Required: %d days, Elapsed: %d days (Shortfall: %d days)",
			required, elapsed, shortfall),
		fmt.Sprintf("Wait %d more days before admission. This claim will be rejected.", shortfall))}
}

// WaitingMonths resolves the procedure's waiting period, trying its primary
// key and then each alternate key. Zero means no requirement.
func WaitingMonths(policy model.PolicyRecord, procedure *model.ProcedureRecord, procedureID string) (int, error) {
	keys := []string{procedureID}
	if procedure != nil {
		keys = procedure.WaitingKeys()
	}
	for _, key := range keys {
		if raw, bad := policy.InvalidWaiting[key]; bad {
			return 0, fmt.Errorf("waiting period for %q is not a whole number of months: %q", key, raw)
		}
		if months, ok := policy.WaitingMonths[key]; ok {
			return months, nil
		}
	}
	return 0, nil
}

func checkProcedureWaiting(policy model.PolicyRecord, procedure *model.ProcedureRecord, procedureID, startRaw, admissionRaw string) []model.Finding {
	required, err := WaitingMonths(policy, procedure, procedureID)
	if err == nil && required <= 0 {
		return nil
	}
	var start, admission time.Time
	if err == nil {
		start, admission, err = parseDates(startRaw, admissionRaw)
	}
	if err != nil {
		return []model.Finding{violation(RuleProcedureWaiting, model.SeverityWarning,
			"Unable to validate procedure waiting period: "+err.Error(),
			"Verify procedure ID and policy data")}
	}

	elapsed := normalize.MonthsBetween(start, admission)
	if elapsed >= required {
		return nil
	}
	shortfall := required - elapsed
	return []model.Finding{violation(RuleProcedureWaiting, model.SeverityCritical,
		fmt.Sprintf("Procedure-specific waiting period not met. Required: %d months, Elapsed: %d months (Shortfall: %d months)",
			required, elapsed, shortfall),
		fmt.Sprintf("Wait %d more months before admission. This claim will be rejected.", shortfall))}
}

func checkExclusions(policy model.PolicyRecord, procedureID string) []model.Finding {
	if procedureID == "" || !policy.Excludes(procedureID) {
		return nil
	}
	return []model.Finding{violation(RuleExclusions, model.SeverityCritical,
		fmt.Sprintf("Procedure %q is permanently excluded under this policy", procedureID),
		"This claim will be rejected. Procedure is not covered.")}
}

func checkSumInsured(rec model.IntakeRecord) []model.Finding {
	sumInsured, err := rec.Form.Float("sum_insured")
	var prior float64
	if err == nil {
		prior, err = rec.Form.Float("previous_claims_total")
	}
	if err != nil {
		return []model.Finding{violation(RuleSumInsured, model.SeverityWarning,
			"Unable to validate sum insured: "+err.Error(),
			"Verify sum insured and previous claim amounts")}
	}

	total := rec.Note.TotalCost()
	available := sumInsured - prior
	switch {
	case total > sumInsured:
		return []model.Finding{violation(RuleSumInsured, model.SeverityWarning,
			fmt.Sprintf("Total cost (%s) exceeds sum insured (%s)",
				normalize.Rupees(total), normalize.Rupees(sumInsured)),
			fmt.Sprintf("Patient will bear %s out-of-pocket. Consider reducing costs.",
				normalize.Rupees(total-sumInsured)))}
	case total > available:
		return []model.Finding{violation(RuleSumInsured, model.SeverityWarning,
			fmt.Sprintf("Total cost (%s) exceeds available sum insured (%s) after previous claims (%s)",
				normalize.Rupees(total), normalize.Rupees(available), normalize.Rupees(prior)),
			fmt.Sprintf("Patient will bear %s out-of-pocket. Consider reducing costs.",
				normalize.Rupees(total-available)))}
	}
	return nil
}

// RoomRentCap returns the daily cap for the policy tier matching sumInsured.
func RoomRentCap(policy model.PolicyRecord, sumInsured float64) (model.RoomRentCap, bool) {
	tier, ok := policy.Tiers[int64(sumInsured)]
	if !ok || !tier.RoomRentCap.Set {
		return model.RoomRentCap{}, false
	}
	return tier.RoomRentCap, true
}

func checkRoomRent(policy model.PolicyRecord, rec model.IntakeRecord) []model.Finding {
	sumInsured, err := rec.Form.Float("sum_insured")
	if err != nil {
		// reported by the sum insured rule
		return nil
	}
	limit, ok := RoomRentCap(policy, sumInsured)
	if !ok {
		return nil
	}
	stay := rec.Note.StayDays()
	if stay <= 0 || rec.Note.CostBreakdown == nil {
		return nil
	}
	if !limit.Valid || limit.PerDay <= 0 {
		return []model.Finding{violation(RuleRoomRentLimit, model.SeverityWarning,
			fmt.Sprintf("Unable to validate room rent limit: policy cap %q is not a positive amount", limit.Raw),
			"Verify room charges and stay duration")}
	}

	perDay := rec.Note.CostBreakdown.RoomCharges / float64(stay)
	if perDay <= limit.PerDay {
		return nil
	}
	excess := (perDay/limit.PerDay - 1) * 100
	return []model.Finding{violation(RuleRoomRentLimit, model.SeverityWarning,
		fmt.Sprintf("Room rent (%s/day) exceeds policy limit (%s/day) by %.0f%%",
			normalize.Rupees(perDay), normalize.Rupees(limit.PerDay), excess),
		"Proportionate deduction will apply to multiple line items (surgery, ICU, etc.). Consider downgrading room category.")}
}

func status(v []model.Finding) model.Status {
	if len(v) == 0 {
		return model.StatusPass
	}
	for _, f := range v {
		if f.Severity == model.SeverityCritical {
			return model.StatusFail
		}
	}
	return model.StatusWarning
}

func score(v []model.Finding) int {
	total := 0
	for _, f := range v {
		total += f.ScoreImpact
	}
	return total
}

func summarize(v []model.Finding) string {
	if len(v) == 0 {
		return "All policy requirements met"
	}
	var critical, warnings int
	for _, f := range v {
		if f.Severity == model.SeverityCritical {
			critical++
		} else {
			warnings++
		}
	}
	var parts []string
	if critical > 0 {
		parts = append(parts, fmt.Sprintf("%d critical violation(s)", critical))
	}
	if warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", warnings))
	}
	return "Policy issues: " + strings.Join(parts, ", ")
}
