package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullResult() ValidationResult {
	opp := Opportunity{
		Name:        "ESL Teacher Feedback Tool",
		Description: "Automated tool for VIPKid teachers to manage student feedback",
		ICP:         "Online ESL teachers on VIPKid platform",
		Problem:     "Responding to feedback is repetitive",
		Aspiration:  StringPtr("Spend more time teaching"),
		Workaround:  StringPtr("Copy-paste templates from a notes app"),
		Communities: []string{"r/VIPKid", "VIPKid Teachers Facebook Group"},
	}

	research := NewResearchFindings(opp.Name)
	research.CommunitiesFound = []EvidenceItem{{"name": "r/VIPKid", "members": 52000}}
	research.BudgetEvidence = []EvidenceItem{{"tool": "TextExpander", "price": "$4/mo"}}
	research.PaysForTools = true
	research.PriceRange = StringPtr("$5-$15/month")
	research.PainDiscussions = []EvidenceItem{{"quote": "feedback takes me an hour a day"}}
	research.EmotionalIntensity = StringPtr(IntensityHigh)
	research.Competitors = []EvidenceItem{{"name": "Generic template apps"}}
	research.CompetitionGap = StringPtr("No VIPKid-specific tooling")
	research.Confidence = 0.7
	research.Notes = "Strong community signals"

	score := sampleScore(9)
	score.OpportunityName = opp.Name
	score.Reasoning = "Clear pain, paying audience"
	score.Recommendation = RecommendationProceed
	score.NextAction = "Interview five teachers"
	score.CalculateTotals()

	return ValidationResult{Opportunity: opp, Research: research, Score: score, Status: StatusCompleted}
}

func bareResult() ValidationResult {
	opp := Opportunity{Name: "AI Song Generator", Description: "d", ICP: "creators", Problem: "p"}
	score := sampleScore(5)
	score.OpportunityName = opp.Name
	score.CalculateTotals()
	return ValidationResult{
		Opportunity: opp,
		Research:    NewResearchFindings(opp.Name),
		Score:       score,
		Status:      StatusCompleted,
	}
}

func TestValidationResultRoundTrip(t *testing.T) {
	for name, res := range map[string]ValidationResult{"all optional": fullResult(), "no optional": bareResult()} {
		t.Run(name, func(t *testing.T) {
			first, err := json.Marshal(res)
			require.NoError(t, err)

			var decoded ValidationResult
			require.NoError(t, json.Unmarshal(first, &decoded))

			second, err := json.Marshal(decoded)
			require.NoError(t, err)
			assert.JSONEq(t, string(first), string(second))
		})
	}
}

func TestValidationResultTopLevelKeys(t *testing.T) {
	raw, err := json.Marshal(bareResult())
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Len(t, doc, 4)
	for _, key := range []string{"opportunity", "research", "score", "status"} {
		assert.Contains(t, doc, key)
	}

	var opp map[string]any
	require.NoError(t, json.Unmarshal(doc["opportunity"], &opp))
	assert.Nil(t, opp["aspiration"])
	assert.Contains(t, opp, "communities")

	var research map[string]any
	require.NoError(t, json.Unmarshal(doc["research"], &research))
	assert.Equal(t, []any{}, research["competitors"])
}

func TestConsistent(t *testing.T) {
	res := fullResult()
	assert.NoError(t, res.Consistent())

	res.Score.OpportunityName = "other"
	assert.ErrorIs(t, res.Consistent(), ErrInvalidInput)
}

func TestNewFailedResult(t *testing.T) {
	res := NewFailedResult(Opportunity{Name: "X"}, "agent timed out")

	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, 0, res.Score.TotalScore)
	assert.Equal(t, 0.0, res.Score.EfficiencyScore)
	assert.Equal(t, 0.0, res.Research.Confidence)
	assert.Equal(t, "agent timed out", res.Research.Notes)
	assert.NoError(t, res.Consistent())
}
