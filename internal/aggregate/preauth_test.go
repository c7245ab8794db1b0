package aggregate

import (
	"reflect"
	"strings"
	"testing"

	"github.com/gyeh/claimready/internal/judge"
	"github.com/gyeh/claimready/internal/model"
)

func agent(name model.Agent, status model.Status, impact int, findings ...model.Finding) model.AgentResult {
	return model.AgentResult{Agent: name, Status: status, ScoreImpact: impact, Findings: findings}
}

func passing() model.PreAuthAgents {
	return model.PreAuthAgents{
		Completeness: agent(model.AgentCompleteness, model.StatusPass, 0),
		Policy:       agent(model.AgentPolicy, model.StatusPass, 0),
		Medical:      model.MedicalReview{AgentResult: agent(model.AgentMedical, model.StatusPass, 0)},
		FWA:          model.FWAReview{AgentResult: agent(model.AgentFWA, model.StatusPass, 0)},
	}
}

func criticalViolation() model.Finding {
	return model.Finding{
		Source:      model.AgentPolicy,
		Kind:        model.KindPolicyViolation,
		Category:    "procedure_waiting_period",
		Severity:    model.SeverityCritical,
		Explanation: "Procedure waiting period not met: 12 months short",
		Suggestion:  "Defer the procedure until the waiting period ends",
		ScoreImpact: -20,
	}
}

func TestPreAuth_CriticalPolicyDrivesFailure(t *testing.T) {
	agents := passing()
	agents.Policy = agent(model.AgentPolicy, model.StatusFail, -20, criticalViolation())
	agents.Medical = model.MedicalReview{AgentResult: agent(model.AgentMedical, model.StatusPass, -5)}

	res := PreAuth(agents)
	if res.Score != 75 {
		t.Errorf("score = %d, want 75", res.Score)
	}
	if res.Status != model.StatusFail {
		t.Errorf("status = %s, want fail", res.Status)
	}
	if res.ApprovalLikelihood != model.LikelihoodLow {
		t.Errorf("likelihood = %s, want low", res.ApprovalLikelihood)
	}
	if len(res.Recommendations) == 0 || res.Recommendations[0] != "CRITICAL: Defer the procedure until the waiting period ends" {
		t.Errorf("recommendations = %q", res.Recommendations)
	}
	if !strings.Contains(res.Summary, "policy violations (1 critical)") {
		t.Errorf("summary = %q", res.Summary)
	}
}

func TestPreAuth_ScoreBounds(t *testing.T) {
	agents := passing()
	var many []model.Finding
	for range 8 {
		many = append(many, criticalViolation())
	}
	agents.Policy = agent(model.AgentPolicy, model.StatusFail, -160, many...)
	if got := PreAuth(agents).Score; got != 0 {
		t.Errorf("score = %d, want 0", got)
	}

	agents = passing()
	agents.Completeness.ScoreImpact = 5
	if got := PreAuth(agents).Score; got != 100 {
		t.Errorf("score = %d, want 100", got)
	}
}

func TestPreAuth_MonotonicUnderCriticalViolations(t *testing.T) {
	agents := passing()
	prev := PreAuth(agents)
	for range 6 {
		agents.Policy.Findings = append(agents.Policy.Findings, criticalViolation())
		agents.Policy.ScoreImpact -= 20
		agents.Policy.Status = model.StatusFail

		next := PreAuth(agents)
		if next.Score > prev.Score {
			t.Fatalf("score rose from %d to %d", prev.Score, next.Score)
		}
		if next.Status != model.StatusFail {
			t.Fatalf("status = %s after a critical violation", next.Status)
		}
		prev = next
	}
}

func TestPreAuth_StatusHierarchy(t *testing.T) {
	all := []model.Status{model.StatusPass, model.StatusWarning, model.StatusFail}
	for _, c := range all {
		for _, p := range all {
			for _, m := range all {
				for _, f := range all {
					agents := passing()
					agents.Completeness.Status = c
					agents.Policy.Status = p
					agents.Medical.Status = m
					agents.FWA.Status = f

					want := model.StatusPass
					for _, s := range []model.Status{c, p, m, f} {
						if s == model.StatusWarning && want == model.StatusPass {
							want = model.StatusWarning
						}
						if s == model.StatusFail {
							want = model.StatusFail
						}
					}
					if got := PreAuth(agents).Status; got != want {
						t.Errorf("%s/%s/%s/%s: got %s, want %s", c, p, m, f, got, want)
					}
				}
			}
		}
	}
}

func TestLikelihood(t *testing.T) {
	tests := []struct {
		status model.Status
		score  int
		want   model.Likelihood
	}{
		{model.StatusFail, 95, model.LikelihoodLow},
		{model.StatusPass, 49, model.LikelihoodLow},
		{model.StatusWarning, 80, model.LikelihoodHigh},
		{model.StatusWarning, 79, model.LikelihoodMedium},
		{model.StatusWarning, 50, model.LikelihoodMedium},
		{model.StatusPass, 100, model.LikelihoodHigh},
	}
	for _, tt := range tests {
		if got := Likelihood(tt.status, tt.score); got != tt.want {
			t.Errorf("Likelihood(%s, %d) = %s, want %s", tt.status, tt.score, got, tt.want)
		}
	}
}

func TestPreAuth_RecommendationOrder(t *testing.T) {
	agents := passing()
	agents.FWA = model.FWAReview{AgentResult: agent(model.AgentFWA, model.StatusWarning, -10, model.Finding{
		Kind: model.KindFWAFlag, Category: judge.FlagCostInflation, Suggestion: "Will request itemized justification for cost components",
	})}
	agents.Policy = agent(model.AgentPolicy, model.StatusFail, -25, model.Finding{
		Kind: model.KindPolicyViolation, Severity: model.SeverityWarning, Suggestion: "Consider downgrading room category.",
	}, criticalViolation())
	agents.Medical = model.MedicalReview{AgentResult: agent(model.AgentMedical, model.StatusWarning, -10, model.Finding{
		Kind: model.KindMedicalConcern, Category: "missing_evidence", Suggestion: "Attach the biometry report",
	})}
	agents.Completeness = agent(model.AgentCompleteness, model.StatusFail, -5, model.Finding{
		Kind: model.KindCompletenessIssue, Explanation: "Missing form field: policy_number",
	})

	res := PreAuth(agents)
	want := []string{
		"CRITICAL: Defer the procedure until the waiting period ends",
		"Required: Missing form field: policy_number",
		"Clinical Findings & Diagnostic Tests: Attach the biometry report",
		"Policy: Consider downgrading room category.",
		"Cost Breakdown: Will request itemized justification for cost components",
	}
	if !reflect.DeepEqual(res.Recommendations, want) {
		t.Errorf("recommendations:\n got  %q\n want %q", res.Recommendations, want)
	}
	if len(res.Issues) != 5 || !strings.HasPrefix(res.Issues[0], "[Completeness] ") || !strings.HasPrefix(res.Issues[4], "[FWA] ") {
		t.Errorf("issues = %q", res.Issues)
	}
}

func TestPreAuth_FallbackRecommendation(t *testing.T) {
	agents := passing()
	agents.Medical.Status = model.StatusWarning
	res := PreAuth(agents)
	if !reflect.DeepEqual(res.Recommendations, []string{FallbackRecommendation}) {
		t.Errorf("recommendations = %q", res.Recommendations)
	}

	if got := PreAuth(passing()).Recommendations; len(got) != 0 {
		t.Errorf("passing run should have no recommendations, got %q", got)
	}
}

func TestPreAuth_WarningSummaryCounts(t *testing.T) {
	agents := passing()
	agents.Medical = model.MedicalReview{AgentResult: agent(model.AgentMedical, model.StatusWarning, -10,
		model.Finding{Category: "template_language"}, model.Finding{Category: "missing_evidence"})}

	res := PreAuth(agents)
	want := "Pre-authorization needs review (Score: 90/100). 2 issues identified across agents. " +
		"Issues: 0 documentation gaps, 0 policy concerns, 2 medical review items, 0 FWA flags."
	if res.Summary != want {
		t.Errorf("summary = %q", res.Summary)
	}
	if res.ApprovalLikelihood != model.LikelihoodHigh {
		t.Errorf("likelihood = %s", res.ApprovalLikelihood)
	}
}

func TestSections(t *testing.T) {
	if got := NoteSection("template_language"); got != "Medical Justification" {
		t.Errorf("NoteSection = %q", got)
	}
	if got := NoteSection("something_else"); got != "Medical Documentation" {
		t.Errorf("NoteSection = %q", got)
	}
	if got := ClaimSection(judge.FlagUnjustifiedUpgrade); got != "Cost Breakdown & Treatment Details" {
		t.Errorf("ClaimSection = %q", got)
	}
	if got := ClaimSection(judge.FlagManualReview); got != "Documentation" {
		t.Errorf("ClaimSection = %q", got)
	}
}
