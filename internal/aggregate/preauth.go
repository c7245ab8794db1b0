// Package aggregate merges checker outputs into a single scored result for
// the pre-authorization and discharge stages.
package aggregate

import (
	"fmt"
	"strings"

	"github.com/gyeh/claimready/internal/judge"
	"github.com/gyeh/claimready/internal/model"
)

// LowScore is the score below which readiness is always low.
const LowScore = 50

// HighScore is the score at or above which a warning still reads as high readiness.
const HighScore = 80

// FallbackRecommendation is emitted when no tier produced advice but the run did not pass.
const FallbackRecommendation = "Review all agent findings and address identified concerns"

// PreAuth merges the four pre-auth checker results.
func PreAuth(agents model.PreAuthAgents) model.ValidationResult {
	score := Clamp(100 +
		agents.Completeness.ScoreImpact +
		agents.Policy.ScoreImpact +
		agents.Medical.ScoreImpact +
		agents.FWA.ScoreImpact)

	status := model.WorstStatus(
		agents.Completeness.Status,
		agents.Policy.Status,
		agents.Medical.Status,
		agents.FWA.Status,
	)

	return model.ValidationResult{
		Score:              score,
		Status:             status,
		ApprovalLikelihood: Likelihood(status, score),
		Issues:             issues(agents),
		Recommendations:    recommendations(agents, status),
		Summary:            preAuthSummary(agents, status, score),
		Agents:             agents,
	}
}

// Clamp bounds a raw score to [0, 100].
func Clamp(score int) int {
	return max(0, min(100, score))
}

// Likelihood is an advisory readiness signal derived from status and score.
func Likelihood(status model.Status, score int) model.Likelihood {
	switch {
	case status == model.StatusFail || score < LowScore:
		return model.LikelihoodLow
	case status == model.StatusWarning && score >= HighScore:
		return model.LikelihoodHigh
	case status == model.StatusWarning:
		return model.LikelihoodMedium
	default:
		return model.LikelihoodHigh
	}
}

func issues(agents model.PreAuthAgents) []string {
	var out []string
	for _, f := range agents.Completeness.Findings {
		out = append(out, "[Completeness] "+f.Explanation)
	}
	for _, f := range agents.Policy.Findings {
		out = append(out, "[Policy] "+f.Explanation)
	}
	for _, f := range agents.Medical.Findings {
		out = append(out, "[Medical] "+f.Explanation)
	}
	for _, f := range agents.FWA.Findings {
		out = append(out, "[FWA] "+f.Explanation)
	}
	return out
}

func recommendations(agents model.PreAuthAgents, status model.Status) []string {
	var out []string

	for _, f := range agents.Policy.FindingsBy(model.SeverityCritical) {
		out = append(out, "CRITICAL: "+f.Suggestion)
	}

	if agents.Completeness.Status == model.StatusFail {
		for _, f := range agents.Completeness.Findings {
			out = append(out, "Required: "+f.Explanation)
		}
	}

	for _, f := range agents.Medical.Findings {
		out = append(out, fmt.Sprintf("%s: %s", NoteSection(f.Category), f.Suggestion))
	}

	for _, f := range agents.Policy.FindingsBy(model.SeverityWarning) {
		out = append(out, "Policy: "+f.Suggestion)
	}

	for _, f := range agents.FWA.Findings {
		out = append(out, fmt.Sprintf("%s: %s", ClaimSection(f.Category), f.Suggestion))
	}

	if len(out) == 0 && status != model.StatusPass {
		out = append(out, FallbackRecommendation)
	}
	return out
}

// NoteSection names the medical note section a reviewer concern points back to.
func NoteSection(concern string) string {
	switch concern {
	case "missing_evidence":
		return "Clinical Findings & Diagnostic Tests"
	case "insufficient_justification", "template_language":
		return "Medical Justification"
	case "treatment_mismatch":
		return "Treatment & Diagnosis Sections"
	default:
		return "Medical Documentation"
	}
}

// ClaimSection names the claim section an insurer follow-up on an FWA flag will target.
func ClaimSection(flag string) string {
	switch flag {
	case judge.FlagCostInflation:
		return "Cost Breakdown"
	case judge.FlagOvertreatment:
		return "Hospitalization Details"
	case judge.FlagUnjustifiedUpgrade:
		return "Cost Breakdown & Treatment Details"
	default:
		return "Documentation"
	}
}

func preAuthSummary(agents model.PreAuthAgents, status model.Status, score int) string {
	switch status {
	case model.StatusPass:
		return fmt.Sprintf("Pre-authorization ready for submission (Score: %d/100). All validation checks passed.", score)

	case model.StatusFail:
		var parts []string
		if agents.Completeness.Status == model.StatusFail {
			parts = append(parts, fmt.Sprintf("incomplete documentation (%d missing)", len(agents.Completeness.Findings)))
		}
		if agents.Policy.Status == model.StatusFail {
			parts = append(parts, fmt.Sprintf("policy violations (%d critical)", len(agents.Policy.FindingsBy(model.SeverityCritical))))
		}
		if agents.Medical.Status == model.StatusFail {
			parts = append(parts, "insufficient medical justification")
		}
		if agents.FWA.Status == model.StatusFail {
			parts = append(parts, fmt.Sprintf("high fraud risk (%d red flags)", len(agents.FWA.Findings)))
		}
		return fmt.Sprintf("Pre-authorization has blocking issues (Score: %d/100). Critical issues: %s.",
			score, strings.Join(parts, ", "))

	default:
		counts := []int{
			len(agents.Completeness.Findings),
			len(agents.Policy.Findings),
			len(agents.Medical.Findings),
			len(agents.FWA.Findings),
		}
		total := 0
		for _, n := range counts {
			total += n
		}
		return fmt.Sprintf("Pre-authorization needs review (Score: %d/100). %d issues identified across agents. "+
			"Issues: %d documentation gaps, %d policy concerns, %d medical review items, %d FWA flags.",
			score, total, counts[0], counts[1], counts[2], counts[3])
	}
}
