package rules

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioNames(t *testing.T) {
	tests := []struct {
		scenario Scenario
		name     string
	}{
		{StatusScenario(StatusDraft), "draft"},
		{StatusStepScenario(StatusReviewable, "info"), "reviewable-step_info"},
		{StatusStepScenario(StatusTemporary, "media"), "temporary-step_media"},
		{StepScenario("info"), "step_info"},
		{TotalProgressScenario("info"), "step_info-total_progress"},
		{TransitionScenario(StatusPublishable), "status_publishable"},
		{TranslateScenario("de"), "translate_into_de"},
		{TranslateStepScenario("sv", "info"), "into_sv-step_info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.scenario.String())

			parsed, err := ParseScenario(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.scenario, parsed)
		})
	}
}

func TestParseScenarioRejectsUnknownNames(t *testing.T) {
	for _, name := range []string{"", "published", "status_draft", "step_", "bogus-step_x", "translate_into_"} {
		_, err := ParseScenario(name)
		assert.Error(t, err, name)
	}
}

func TestScenarioJSON(t *testing.T) {
	rule := Rule{Fields: []string{"title"}, Kind: RuleRequired, On: []Scenario{StatusStepScenario(StatusDraft, "info")}}

	data, err := json.Marshal(rule)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fields":["title"],"kind":"required","on":["draft-step_info"]}`, string(data))

	var decoded Rule
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, rule, decoded)
}
