package model

// ExpectedCosts is the pre-auth estimate a final bill is compared against.
type ExpectedCosts struct {
	Items    map[string]float64 `json:"items"`
	Total    float64            `json:"total"`
	StayDays int                `json:"stay_days"`
}

// FinalBill is the hospital's itemized bill at discharge.
type FinalBill struct {
	ItemizedCosts   map[string]float64 `json:"itemized_costs"`
	TotalBillAmount float64            `json:"total_bill_amount"`
	ActualStayDays  int                `json:"actual_stay_days,omitempty"`
}

// DischargeSummary is the clinical summary issued at discharge.
type DischargeSummary struct {
	DischargeDate        string               `json:"discharge_date,omitempty"`
	DaysStayed           int                  `json:"days_stayed,omitempty"`
	DischargeCondition   string               `json:"discharge_condition,omitempty"`
	Complications        string               `json:"complications,omitempty"`
	ProcedurePerformed   string               `json:"procedure_performed,omitempty"`
	ClinicalNotes        string               `json:"clinical_notes,omitempty"`
	Medications          []Medication         `json:"medications,omitempty"`
	FollowUpSchedule     []Appointment        `json:"follow_up_schedule,omitempty"`
	ActivityRestrictions ActivityRestrictions `json:"activity_restrictions"`
	WarningSigns         []string             `json:"warning_signs,omitempty"`
}

type Medication struct {
	Name     string `json:"name"`
	Dosage   string `json:"dosage,omitempty"`
	Duration string `json:"duration,omitempty"`
	Purpose  string `json:"purpose,omitempty"`
}

type Appointment struct {
	Timing  string `json:"timing"`
	Purpose string `json:"purpose,omitempty"`
}

type ActivityRestrictions struct {
	Dos   []string `json:"dos,omitempty"`
	Donts []string `json:"donts,omitempty"`
}

// VarianceStatus classifies the overall bill variance.
type VarianceStatus string

const (
	VarianceAcceptable  VarianceStatus = "acceptable"
	VarianceMinor       VarianceStatus = "minor_variance"
	VarianceSignificant VarianceStatus = "significant_variance"
)

// TotalVariance compares the bill total against the estimate. Percentage is signed.
type TotalVariance struct {
	Expected   float64 `json:"expected"`
	Actual     float64 `json:"actual"`
	Difference float64 `json:"difference"`
	Percentage float64 `json:"percentage"`
}

// LineItemVariance compares one bill category. Percentage is unsigned.
type LineItemVariance struct {
	Item        string   `json:"item"`
	DisplayName string   `json:"display_name"`
	Expected    float64  `json:"expected"`
	Actual      float64  `json:"actual"`
	Difference  float64  `json:"difference"`
	Percentage  float64  `json:"percentage"`
	Severity    Severity `json:"severity"`
}

type StayVariance struct {
	ExpectedDays int  `json:"expected_days"`
	ActualDays   int  `json:"actual_days"`
	ExtraDays    int  `json:"extra_days"`
	IsExtended   bool `json:"is_extended"`
}

// Reconciliation is the bill reconciliation outcome.
type Reconciliation struct {
	Status      VarianceStatus     `json:"status"`
	Total       TotalVariance      `json:"total_variance"`
	LineItems   []LineItemVariance `json:"line_item_comparison"`
	Stay        StayVariance       `json:"stay_variance"`
	ScoreImpact int                `json:"score_impact"`
	Summary     string             `json:"summary"`
}

// EscalationStatus grades how well cost increases are documented.
type EscalationStatus string

const (
	EscalationDocumented    EscalationStatus = "documented"
	EscalationPartial       EscalationStatus = "partially_documented"
	EscalationNotDocumented EscalationStatus = "not_documented"
	EscalationNoSignificant EscalationStatus = "no_significant_variance"
	EscalationUnavailable   EscalationStatus = "unavailable"
)

// VarianceExplanation records whether one variance is backed by the discharge summary.
type VarianceExplanation struct {
	Variance      string  `json:"variance"`
	Amount        float64 `json:"amount"`
	Documented    bool    `json:"documented"`
	MedicalReason string  `json:"medical_reason,omitempty"`
	Source        string  `json:"source,omitempty"`
}

type CostEscalation struct {
	Status       EscalationStatus      `json:"status"`
	Explanations []VarianceExplanation `json:"explanations"`
	ScoreImpact  int                   `json:"score_impact"`
	Summary      string                `json:"summary"`
}

// Completeness grades discharge paperwork and guidance.
type Completeness string

const (
	CompletenessComplete   Completeness = "complete"
	CompletenessPartial    Completeness = "partial"
	CompletenessIncomplete Completeness = "incomplete"
)

type MedicationInstruction struct {
	Name        string `json:"name"`
	Instruction string `json:"instruction"`
	Purpose     string `json:"purpose"`
}

type FollowUp struct {
	Timing    string `json:"timing"`
	Purpose   string `json:"purpose"`
	Important bool   `json:"important"`
}

// RecoveryGuidance is patient-facing aftercare derived from the discharge summary.
type RecoveryGuidance struct {
	Status           Completeness            `json:"status"`
	Medications      []MedicationInstruction `json:"medications"`
	FollowUps        []FollowUp              `json:"follow_ups"`
	Dos              []string                `json:"dos"`
	Donts            []string                `json:"donts"`
	WarningSigns     []string                `json:"warning_signs"`
	RecoveryTimeline string                  `json:"recovery_timeline"`
	ScoreImpact      int                     `json:"score_impact"`
	Summary          string                  `json:"summary"`
}
