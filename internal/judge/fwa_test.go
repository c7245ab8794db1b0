package judge

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/claimready/internal/fixture"
	"github.com/gyeh/claimready/internal/mocks"
	"github.com/gyeh/claimready/internal/model"
)

func categories(fs []model.Finding) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Category
	}
	return out
}

func TestRuleFlags(t *testing.T) {
	proc := fixture.Procedure()

	t.Run("within range", func(t *testing.T) {
		assert.Empty(t, RuleFlags(fixture.Intake().Note, &proc))
	})

	t.Run("cost above one and a half times typical max", func(t *testing.T) {
		rec := fixture.Intake()
		rec.Note.CostBreakdown.TotalEstimatedCost = 96000
		flags := RuleFlags(rec.Note, &proc)
		require.Len(t, flags, 1)
		assert.Equal(t, FlagCostInflation, flags[0].Category)
		assert.Equal(t, "Total cost Rs.96,000 is 60% above typical maximum", flags[0].Explanation)
		assert.Equal(t, "Typical max: Rs.60,000, Actual: Rs.96,000", flags[0].Evidence)
		assert.Equal(t, "Will request itemized justification for cost components", flags[0].Suggestion)
	})

	t.Run("cost exactly at threshold", func(t *testing.T) {
		rec := fixture.Intake()
		rec.Note.CostBreakdown.TotalEstimatedCost = 90000
		assert.Empty(t, RuleFlags(rec.Note, &proc))
	})

	t.Run("stay beyond tolerance", func(t *testing.T) {
		rec := fixture.Intake()
		rec.Note.HospitalizationDetails.ExpectedLengthOfStay = 4
		flags := RuleFlags(rec.Note, &proc)
		require.Len(t, flags, 1)
		assert.Equal(t, FlagOvertreatment, flags[0].Category)
		assert.Equal(t, "Hospital stay (4 days) exceeds typical maximum by 3 days", flags[0].Explanation)
	})

	t.Run("stay at tolerance", func(t *testing.T) {
		rec := fixture.Intake()
		rec.Note.HospitalizationDetails.ExpectedLengthOfStay = 3
		assert.Empty(t, RuleFlags(rec.Note, &proc))
	})

	t.Run("day surgery reference skips stay check", func(t *testing.T) {
		day := fixture.Procedure()
		day.TypicalStayMax = 0
		rec := fixture.Intake()
		rec.Note.HospitalizationDetails.ExpectedLengthOfStay = 5
		assert.Empty(t, RuleFlags(rec.Note, &day))
	})

	t.Run("no reference", func(t *testing.T) {
		assert.Empty(t, RuleFlags(fixture.Intake().Note, nil))
	})
}

func TestRiskFromFlags(t *testing.T) {
	flag := func(c string) model.Finding { return model.Finding{Category: c} }
	tests := []struct {
		name  string
		flags []model.Finding
		want  string
	}{
		{"none", nil, RiskLow},
		{"single cost inflation", []model.Finding{flag(FlagCostInflation)}, RiskMedium},
		{"single overtreatment", []model.Finding{flag(FlagOvertreatment)}, RiskMedium},
		{"single upgrade", []model.Finding{flag(FlagUnjustifiedUpgrade)}, RiskLow},
		{"two", []model.Finding{flag(FlagUnjustifiedUpgrade), flag(FlagUnjustifiedUpgrade)}, RiskMedium},
		{"three", []model.Finding{flag(FlagCostInflation), flag(FlagOvertreatment), flag(FlagUnjustifiedUpgrade)}, RiskHigh},
		{"manual review ignored", []model.Finding{flag(FlagManualReview)}, RiskLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RiskFromFlags(tt.flags))
		})
	}
}

func TestDetectFWA_ModelRiskWins(t *testing.T) {
	client := new(mocks.LLMClient)
	client.On("Complete", mock.Anything, mock.Anything).Return(
		`{"risk_level":"HIGH","flags":[{"category":"unjustified_upgrade","detail":"Premium lens without indication"}]}`, nil)

	proc := fixture.Procedure()
	res := testPanel(client).DetectFWA(context.Background(), fixture.Intake(), &proc)

	assert.Equal(t, RiskHigh, res.RiskLevel)
	assert.Equal(t, model.StatusFail, res.Status)
	assert.Equal(t, -20, res.ScoreImpact)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, "No evidence provided", res.Findings[0].Evidence)
	assert.Equal(t, "Manual review required", res.Findings[0].Suggestion)
}

func TestDetectFWA_RiskFromCombinedFlags(t *testing.T) {
	client := new(mocks.LLMClient)
	client.On("Complete", mock.Anything, mock.Anything).Return(
		`{"flags":[{"category":"unjustified_upgrade","detail":"Deluxe room"}]}`, nil)

	rec := fixture.Intake()
	rec.Note.CostBreakdown.TotalEstimatedCost = 120000
	proc := fixture.Procedure()
	res := testPanel(client).DetectFWA(context.Background(), rec, &proc)

	assert.Equal(t, []string{FlagCostInflation, FlagUnjustifiedUpgrade}, categories(res.Findings))
	assert.Equal(t, RiskMedium, res.RiskLevel)
	assert.Equal(t, model.StatusWarning, res.Status)
	assert.Equal(t, -10, res.ScoreImpact)
	assert.Equal(t, "Medium FWA risk: 2 red flag(s). Additional documentation needed.", res.Summary)
}

func TestDetectFWA_CleanClaim(t *testing.T) {
	client := new(mocks.LLMClient)
	client.On("Complete", mock.Anything, mock.Anything).Return(`{"risk_level":"low","flags":[]}`, nil)

	proc := fixture.Procedure()
	res := testPanel(client).DetectFWA(context.Background(), fixture.Intake(), &proc)
	assert.Equal(t, model.StatusPass, res.Status)
	assert.Equal(t, 0, res.ScoreImpact)
	assert.Equal(t, "No FWA red flags detected", res.Summary)
}

func TestDetectFWA_DegradedKeepsRuleFlags(t *testing.T) {
	client := new(mocks.LLMClient)
	client.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("upstream 503"))

	rec := fixture.Intake()
	rec.Note.HospitalizationDetails.ExpectedLengthOfStay = 6
	proc := fixture.Procedure()
	res := testPanel(client).DetectFWA(context.Background(), rec, &proc)

	assert.Equal(t, []string{FlagOvertreatment, FlagManualReview}, categories(res.Findings))
	assert.Equal(t, RiskMedium, res.RiskLevel, "manual review flag must not raise the risk")
	assert.Equal(t, -10, res.ScoreImpact)
	client.AssertNumberOfCalls(t, "Complete", 2)
}

func TestFWAPrompt(t *testing.T) {
	rec := fixture.Intake()
	rec.Note.MedicalJustification.WhyHospitalizationRequired = "Patient will stay Over-Night for monitoring"
	proc := fixture.Procedure()

	prompt := fwaPrompt(rec.Note, &proc)
	assert.Contains(t, prompt, "Overnight Stay Mentioned: Yes")
	assert.Contains(t, prompt, "Diagnosis Code Matches Procedure: Yes")
	assert.Contains(t, prompt, "Typical Cost Range: Rs.25,000 - Rs.60,000")
	assert.Contains(t, prompt, proc.FWAPatterns)

	rec.Note.Diagnosis.ICD10Code = "K40.9"
	assert.Contains(t, fwaPrompt(rec.Note, &proc), "Diagnosis Code Matches Procedure: No")
}

func TestOvernightMentioned(t *testing.T) {
	assert.False(t, OvernightMentioned(nil))
	j := fixture.Intake().Note.MedicalJustification
	assert.False(t, OvernightMentioned(j))
	j.WhyTreatmentNecessary = "needs over night observation"
	assert.True(t, OvernightMentioned(j))
	j.WhyTreatmentNecessary = ""
	j.ExpectedOutcomes = "overnight"
	assert.False(t, OvernightMentioned(j), "only the hospitalization and treatment reasons are scanned")
}
