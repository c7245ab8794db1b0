package model

import "strings"

// RequiredFormFields lists the intake form keys that must be present and non-empty.
var RequiredFormFields = []string{
	"policy_number",
	"policy_start_date",
	"sum_insured",
	"planned_admission_date",
	"hospital_name",
	"insurer",
	"policy_type",
	"procedure_id",
}

// RequiredNoteSections lists the medical note sections checked for content, in report order.
var RequiredNoteSections = []string{
	"patient_info",
	"diagnosis",
	"clinical_history",
	"proposed_treatment",
	"medical_justification",
	"hospitalization_details",
	"cost_breakdown",
	"doctor_details",
	"hospital_details",
}

// LineItemCategory is one bill category compared between pre-auth and final bill.
type LineItemCategory struct {
	Key string // bill/breakdown key, e.g. "room_charges"
	// Synonym is an alternate key carrying the same charge on either side.
	Synonym string
}

// LineItemCategories is the fixed comparison order for bill reconciliation.
// medicines and medicines_consumables name the same charge and are compared once.
var LineItemCategories = []LineItemCategory{
	{Key: "room_charges"},
	{Key: "nursing_charges"},
	{Key: "surgeon_fees"},
	{Key: "anesthetist_fees"},
	{Key: "ot_charges"},
	{Key: "ot_consumables"},
	{Key: "medicines", Synonym: "medicines_consumables"},
	{Key: "implants"},
	{Key: "investigations"},
	{Key: "other_charges"},
}

// DisplayName turns a snake_case key into a title-cased label ("ot_charges" -> "Ot Charges").
func DisplayName(key string) string {
	parts := strings.Split(key, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
