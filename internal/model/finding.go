package model

// Status is the outcome of one checker, ordered pass > warning > fail.
type Status string

const (
	StatusPass    Status = "pass"
	StatusWarning Status = "warning"
	StatusFail    Status = "fail"
)

func (s Status) rank() int {
	switch s {
	case StatusPass:
		return 0
	case StatusWarning:
		return 1
	default:
		// unknown values are treated as the worst outcome
		return 2
	}
}

// Worse returns the lower-ranked of s and o.
func (s Status) Worse(o Status) Status {
	if o.rank() > s.rank() {
		return o
	}
	return s
}

// WorstStatus merges statuses with worst-wins semantics. An empty input is a pass.
func WorstStatus(statuses ...Status) Status {
	out := StatusPass
	for _, s := range statuses {
		out = out.Worse(s)
	}
	return out
}

// Severity grades a single finding.
type Severity string

const (
	SeverityCritical    Severity = "critical"
	SeverityWarning     Severity = "warning"
	SeverityAcceptable  Severity = "acceptable"
	SeverityMinor       Severity = "minor"
	SeveritySignificant Severity = "significant"
)

// Kind identifies the shape of a finding.
type Kind string

const (
	KindCompletenessIssue Kind = "completeness_issue"
	KindPolicyViolation   Kind = "policy_violation"
	KindMedicalConcern    Kind = "medical_concern"
	KindFWAFlag           Kind = "fwa_flag"
	KindLineItemVariance  Kind = "line_item_variance"
)

// Agent names the checker that produced a result.
type Agent string

const (
	AgentCompleteness   Agent = "completeness"
	AgentPolicy         Agent = "policy"
	AgentMedical        Agent = "medical_review"
	AgentFWA            Agent = "fwa"
	AgentBill           Agent = "bill_reconciliation"
	AgentCostEscalation Agent = "cost_escalation"
	AgentGuidance       Agent = "recovery_guidance"
)

// Finding is one issue raised by a checker. Category carries the rule name for
// policy violations, the concern type for medical concerns and the flag category
// for FWA flags.
type Finding struct {
	Source      Agent    `json:"source"`
	Kind        Kind     `json:"kind"`
	Category    string   `json:"category,omitempty"`
	Severity    Severity `json:"severity,omitempty"`
	Explanation string   `json:"explanation"`
	Suggestion  string   `json:"suggestion,omitempty"`
	Evidence    string   `json:"evidence,omitempty"`
	ScoreImpact int      `json:"score_impact"`
}

// AgentResult is the uniform output of a pre-auth checker.
type AgentResult struct {
	Agent       Agent     `json:"agent"`
	Status      Status    `json:"status"`
	Findings    []Finding `json:"findings"`
	ScoreImpact int       `json:"score_impact"`
	Summary     string    `json:"summary"`
}

// FindingsBy returns the findings with the given severity.
func (r AgentResult) FindingsBy(sev Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}

// MedicalReview extends AgentResult with the reviewer's overall assessment.
type MedicalReview struct {
	AgentResult
	Assessment             string `json:"assessment"`
	DoctorFeedbackRequired bool   `json:"doctor_feedback_required"`
}

// FWAReview extends AgentResult with the computed risk level.
type FWAReview struct {
	AgentResult
	RiskLevel string `json:"risk_level"`
}
