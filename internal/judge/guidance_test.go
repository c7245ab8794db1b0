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

func TestGuidance_Complete(t *testing.T) {
	client := new(mocks.LLMClient)
	client.On("Complete", mock.Anything, mock.Anything).Return(
		"  Vision improves over 1-2 weeks. Light activity within a week.  ", nil)

	summary := fixture.DischargeSummary()
	g := testPanel(client).Guidance(context.Background(), &summary)

	assert.Equal(t, model.CompletenessComplete, g.Status)
	assert.Equal(t, 0, g.ScoreImpact)
	assert.Equal(t, "Vision improves over 1-2 weeks. Light activity within a week.", g.RecoveryTimeline)
	assert.Equal(t, "Complete discharge guidance extracted: 2 medication(s), 2 follow-up appointment(s), 2 warning sign(s) documented.", g.Summary)

	require.Len(t, g.Medications, 2)
	assert.Equal(t, "Take Moxifloxacin eye drops - 1 drop 4 times a day for 2 weeks", g.Medications[0].Instruction)
	assert.Equal(t, "As directed by doctor", g.Medications[1].Purpose)

	require.Len(t, g.FollowUps, 2)
	assert.True(t, g.FollowUps[0].Important)
	assert.False(t, g.FollowUps[1].Important)
}

func TestGuidanceCompleteness(t *testing.T) {
	s := fixture.DischargeSummary()
	assert.Equal(t, model.CompletenessComplete, GuidanceCompleteness(s))

	s.WarningSigns = nil
	s.ActivityRestrictions = model.ActivityRestrictions{}
	assert.Equal(t, model.CompletenessPartial, GuidanceCompleteness(s))

	s.FollowUpSchedule = nil
	assert.Equal(t, model.CompletenessIncomplete, GuidanceCompleteness(s))

	s = model.DischargeSummary{ActivityRestrictions: model.ActivityRestrictions{Donts: []string{"No lifting"}}, WarningSigns: []string{"Fever"}}
	assert.Equal(t, model.CompletenessPartial, GuidanceCompleteness(s), "donts alone count as activity guidance")
}

func TestGuidance_TimelineFallbacks(t *testing.T) {
	t.Run("model failure", func(t *testing.T) {
		client := new(mocks.LLMClient)
		client.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("timeout"))
		summary := fixture.DischargeSummary()
		g := testPanel(client).Guidance(context.Background(), &summary)
		assert.Equal(t, TimelineFallback, g.RecoveryTimeline)
		assert.Equal(t, model.CompletenessComplete, g.Status, "extraction does not depend on the model")
	})

	t.Run("empty answer", func(t *testing.T) {
		client := new(mocks.LLMClient)
		client.On("Complete", mock.Anything, mock.Anything).Return("   ", nil)
		summary := fixture.DischargeSummary()
		g := testPanel(client).Guidance(context.Background(), &summary)
		assert.Equal(t, TimelineFallback, g.RecoveryTimeline)
	})

	t.Run("no discharge condition", func(t *testing.T) {
		client := new(mocks.LLMClient)
		summary := fixture.DischargeSummary()
		summary.DischargeCondition = ""
		g := testPanel(client).Guidance(context.Background(), &summary)
		assert.Equal(t, TimelineNotAvailable, g.RecoveryTimeline)
		client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})

	t.Run("no discharge summary", func(t *testing.T) {
		g := testPanel(new(mocks.LLMClient)).Guidance(context.Background(), nil)
		assert.Equal(t, model.CompletenessIncomplete, g.Status)
		assert.Equal(t, TimelineNotAvailable, g.RecoveryTimeline)
	})
}
