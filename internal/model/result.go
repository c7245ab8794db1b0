package model

import (
	"time"

	"github.com/google/uuid"
)

// Likelihood is a coarse readiness signal. It is not an approval prediction.
type Likelihood string

const (
	LikelihoodLow    Likelihood = "low"
	LikelihoodMedium Likelihood = "medium"
	LikelihoodHigh   Likelihood = "high"
)

// PreAuthAgents bundles the four pre-auth checker outputs.
type PreAuthAgents struct {
	Completeness AgentResult   `json:"completeness"`
	Policy       AgentResult   `json:"policy"`
	Medical      MedicalReview `json:"medical_review"`
	FWA          FWAReview     `json:"fwa"`
}

// ValidationResult is the merged pre-auth outcome.
type ValidationResult struct {
	Score              int           `json:"final_score"`
	Status             Status        `json:"overall_status"`
	ApprovalLikelihood Likelihood    `json:"approval_likelihood"`
	Issues             []string      `json:"all_issues"`
	Recommendations    []string      `json:"recommendations"`
	Summary            string        `json:"summary"`
	Agents             PreAuthAgents `json:"agent_results"`
}

// ChecklistItem is one line of the discharge document checklist.
type ChecklistItem struct {
	Document string `json:"document"`
	Present  bool   `json:"present"`
	Detail   string `json:"detail,omitempty"`
}

// DischargeValidationResult is the merged discharge outcome.
type DischargeValidationResult struct {
	Score            int              `json:"final_score"`
	Completeness     Completeness     `json:"completeness"`
	MissingDocuments []string         `json:"missing_documents,omitempty"`
	BillComparison   string           `json:"bill_comparison"`
	VarianceAnalysis string           `json:"variance_analysis"`
	Checklist        []ChecklistItem  `json:"document_checklist"`
	Recommendations  []string         `json:"recommendations"`
	PatientSummary   string           `json:"patient_summary"`
	Reconciliation   Reconciliation   `json:"bill_reconciliation"`
	Escalation       CostEscalation   `json:"cost_escalation"`
	Guidance         RecoveryGuidance `json:"recovery_guidance"`
}

// ClaimSnapshot is the persisted record of a pre-auth run. Written once, never updated.
type ClaimSnapshot struct {
	ReferenceID       string        `json:"reference_id"`
	RunID             uuid.UUID     `json:"run_id"`
	CreatedAt         time.Time     `json:"created_at"`
	PatientName       string        `json:"patient_name"`
	PolicyNumber      string        `json:"policy_number"`
	Insurer           string        `json:"insurer"`
	PolicyType        string        `json:"policy_type"`
	ProcedureID       string        `json:"procedure_id"`
	HospitalName      string        `json:"hospital_name"`
	DoctorName        string        `json:"doctor_name"`
	Expected          ExpectedCosts `json:"expected_costs"`
	Score             int           `json:"score"`
	Status            Status        `json:"status"`
	ValidationSummary string        `json:"validation_summary"`
	InputFingerprint  string        `json:"input_fingerprint"`
}
