package judge

import (
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/claimready/internal/fixture"
	"github.com/gyeh/claimready/internal/llm"
	"github.com/gyeh/claimready/internal/mocks"
	"github.com/gyeh/claimready/internal/model"
)

func testPanel(client llm.Client) *Panel {
	return NewPanel(client, Retrier{Attempts: 2}, zerolog.Nop())
}

func reviewWith(t *testing.T, response string) model.MedicalReview {
	t.Helper()
	client := new(mocks.LLMClient)
	client.On("Complete", mock.Anything, mock.Anything).Return(response, nil)
	proc := fixture.Procedure()
	return testPanel(client).ReviewMedical(context.Background(), fixture.Intake(), &proc)
}

func TestReviewMedical_Scoring(t *testing.T) {
	tests := []struct {
		name     string
		response string
		status   model.Status
		impact   int
		feedback bool
	}{
		{
			name:     "strong without concerns",
			response: `{"assessment":"strong","concerns":[]}`,
			status:   model.StatusPass,
		},
		{
			name:     "acceptable with one concern",
			response: `{"assessment":"acceptable","concerns":[{"type":"template_language","description":"generic","suggestion":"be specific"}]}`,
			status:   model.StatusWarning,
			impact:   -10,
		},
		{
			name: "strong with three concerns",
			response: `{"assessment":"strong","concerns":[{"type":"missing_evidence"},{"type":"missing_evidence"},
				{"type":"template_language"}]}`,
			status:   model.StatusWarning,
			impact:   -15,
			feedback: true,
		},
		{
			name:     "weak",
			response: `{"assessment":"weak","concerns":[{"type":"insufficient_justification"}]}`,
			status:   model.StatusWarning,
			impact:   -15,
			feedback: true,
		},
		{
			name:     "concerning with two concerns",
			response: `{"assessment":"concerning","concerns":[{"type":"treatment_mismatch"},{"type":"missing_evidence"}]}`,
			status:   model.StatusFail,
			impact:   -25,
			feedback: true,
		},
		{
			name:     "unknown assessment",
			response: `{"assessment":"excellent"}`,
			status:   model.StatusWarning,
			impact:   -5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := reviewWith(t, tt.response)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.impact, res.ScoreImpact)
			assert.Equal(t, tt.feedback, res.DoctorFeedbackRequired)
			assert.Equal(t, model.AgentMedical, res.Agent)
		})
	}
}

func TestReviewMedical_ConcernDefaults(t *testing.T) {
	res := reviewWith(t, "Here is my review:\n```json\n{\"assessment\":\"acceptable\",\"concerns\":[{}]}\n```")
	require.Len(t, res.Findings, 1)
	f := res.Findings[0]
	assert.Equal(t, "insufficient_justification", f.Category)
	assert.Equal(t, "No description provided", f.Explanation)
	assert.Equal(t, "Review documentation", f.Suggestion)
	assert.Equal(t, model.KindMedicalConcern, f.Kind)
}

func TestReviewMedical_MissingAssessmentDefaultsToAcceptable(t *testing.T) {
	res := reviewWith(t, `{"concerns":[]}`)
	assert.Equal(t, AssessmentAcceptable, res.Assessment)
	assert.Equal(t, -5, res.ScoreImpact)
}

func TestReviewMedical_RetriesThenSucceeds(t *testing.T) {
	client := new(mocks.LLMClient)
	client.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("timeout")).Once()
	client.On("Complete", mock.Anything, mock.Anything).Return(`{"assessment":"strong","concerns":[]}`, nil).Once()

	res := testPanel(client).ReviewMedical(context.Background(), fixture.Intake(), nil)
	assert.Equal(t, model.StatusPass, res.Status)
	client.AssertNumberOfCalls(t, "Complete", 2)
}

func TestReviewMedical_DegradesOnMalformedResponse(t *testing.T) {
	client := new(mocks.LLMClient)
	client.On("Complete", mock.Anything, mock.Anything).Return("I cannot help with that.", nil)

	res := testPanel(client).ReviewMedical(context.Background(), fixture.Intake(), nil)
	client.AssertNumberOfCalls(t, "Complete", 2)

	assert.Equal(t, model.StatusWarning, res.Status)
	assert.Equal(t, -5, res.ScoreImpact)
	assert.True(t, res.DoctorFeedbackRequired)
	assert.Equal(t, AssessmentUnavailable, res.Assessment)
	require.Len(t, res.Findings, 1)
	assert.True(t, strings.HasPrefix(res.Findings[0].Explanation, "Unable to perform LLM review"))
	assert.Equal(t, "Manual review recommended", res.Findings[0].Suggestion)
}

func TestReviewMedical_DisabledClientIsNotRetried(t *testing.T) {
	res := testPanel(llm.Disabled{}).ReviewMedical(context.Background(), fixture.Intake(), nil)
	assert.Equal(t, model.StatusWarning, res.Status)
	assert.Contains(t, res.Findings[0].Explanation, llm.ErrDisabled.Error())
}

func TestMedicalPrompt_RedactsIdentifiers(t *testing.T) {
	rec := fixture.Intake()
	rec.Note.PatientInfo.PatientID = "PID-991"
	rec.Note.PatientInfo.ContactNumber = "+91 98450 00000"
	proc := fixture.Procedure()

	prompt := medicalPrompt(rec.Note, &proc)
	for _, secret := range []string{"Asha Rao", "PID-991", "98450", "Dr. Meera Iyer"} {
		assert.NotContains(t, prompt, secret)
	}
	assert.Contains(t, prompt, "Age: 64 years")
	assert.Contains(t, prompt, proc.NecessityCriteria)
}

func TestMedicalPrompt_ToleratesMissingSections(t *testing.T) {
	prompt := medicalPrompt(model.MedicalNote{}, nil)
	assert.Contains(t, prompt, "No diagnostic tests documented")
	assert.Contains(t, prompt, "No specific guidelines available.")
}
