package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OpportunityValidator/internal/domain"
	"OpportunityValidator/internal/infrastructure/mapper"
	"OpportunityValidator/internal/ports"
)

func sampleResults() []domain.ValidationResult {
	return []domain.ValidationResult{
		validated("AI Song Generator", 2, 3),
		validated("ENM Calendar API", 4, 9),
		validated("ESL Teacher Feedback Tool", 6, 7),
	}
}

func TestCompareOpportunitiesDeterministic(t *testing.T) {
	c := NewComparer(ComparerDeps{})

	comparison, err := c.CompareOpportunities(context.Background(), sampleResults())
	require.NoError(t, err)

	require.Len(t, comparison.Rankings, 3)
	assert.Equal(t, "ENM Calendar API", comparison.Rankings[0].Name)
	assert.Equal(t, "ESL Teacher Feedback Tool", comparison.Rankings[1].Name)
	assert.Equal(t, "AI Song Generator", comparison.Rankings[2].Name)
	assert.Equal(t, "Pursue ENM Calendar API first: total score 13/120 with efficiency 2.60.", comparison.Recommendation)
	assert.Equal(t, domain.ScoreStats{Mean: 10.33, Median: 13, StdDev: 3.77}, comparison.Stats)
}

func TestCompareOpportunitiesEmpty(t *testing.T) {
	comparison, err := NewComparer(ComparerDeps{}).CompareOpportunities(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, comparison.Rankings)
	assert.Equal(t, "No opportunities to compare.", comparison.Recommendation)
}

func TestCompareOpportunitiesQualitativePass(t *testing.T) {
	reply := "```json\n" + `{"rankings": [
	  {"name": "AI Song Generator", "summary": "Crowded market"},
	  {"name": "enm calendar api", "summary": "Underserved niche with paying users"}
	], "recommendation": "Start with the ENM Calendar API."}` + "\n```"
	agent := &scriptedAgent{replies: []func(string) (ports.AgentResponse, error){answer(reply)}}
	c := NewComparer(ComparerDeps{Agent: agent, Mapper: mapper.New()})

	comparison, err := c.CompareOpportunities(context.Background(), sampleResults())
	require.NoError(t, err)

	require.Len(t, agent.tasks, 1)
	assert.Contains(t, agent.tasks[0], "2. ENM Calendar API (Score: 13/120, Efficiency: 2.60)")
	assert.Contains(t, agent.tasks[0], "Key strengths: Market Size=4, Budget=0")

	assert.Equal(t, []string{"ENM Calendar API", "ESL Teacher Feedback Tool", "AI Song Generator"},
		[]string{comparison.Rankings[0].Name, comparison.Rankings[1].Name, comparison.Rankings[2].Name})
	assert.Equal(t, "Underserved niche with paying users", comparison.Rankings[0].Summary)
	assert.Equal(t, "Crowded market", comparison.Rankings[2].Summary)
	assert.Contains(t, comparison.Rankings[1].Summary, "Ranked #2 of 3")
	assert.Equal(t, "Start with the ENM Calendar API.", comparison.Recommendation)
}

func TestCompareOpportunitiesCaseVariantSummaries(t *testing.T) {
	results := []domain.ValidationResult{validated("Tool", 6, 9), validated("tool", 2, 3)}

	exact := `{"rankings": [{"name": "tool", "summary": "Weak"}, {"name": "Tool", "summary": "Strong"}]}`
	agent := &scriptedAgent{replies: []func(string) (ports.AgentResponse, error){answer(exact)}}
	comparison, err := NewComparer(ComparerDeps{Agent: agent, Mapper: mapper.New()}).
		CompareOpportunities(context.Background(), results)
	require.NoError(t, err)
	assert.Equal(t, "Tool", comparison.Rankings[0].Name)
	assert.Equal(t, "Strong", comparison.Rankings[0].Summary)
	assert.Equal(t, "Weak", comparison.Rankings[1].Summary)

	folded := `{"rankings": [{"name": "TOOL", "summary": "Which one?"}]}`
	agent = &scriptedAgent{replies: []func(string) (ports.AgentResponse, error){answer(folded)}}
	comparison, err = NewComparer(ComparerDeps{Agent: agent, Mapper: mapper.New()}).
		CompareOpportunities(context.Background(), results)
	require.NoError(t, err)
	for _, r := range comparison.Rankings {
		assert.NotEqual(t, "Which one?", r.Summary, r.Name)
	}
}

func TestCompareOpportunitiesAgentFailureKeepsDeterministicText(t *testing.T) {
	agent := &scriptedAgent{replies: []func(string) (ports.AgentResponse, error){failure(errors.New("boom"))}}
	c := NewComparer(ComparerDeps{Agent: agent, Mapper: mapper.New()})

	comparison, err := c.CompareOpportunities(context.Background(), sampleResults())
	require.NoError(t, err)
	assert.Equal(t, "Top pick: 13/120, efficiency 2.60", comparison.Rankings[0].Summary)
	assert.Equal(t, "Pursue ENM Calendar API first: total score 13/120 with efficiency 2.60.", comparison.Recommendation)
}

func TestRecommendNext(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("telegram down")}
	c := NewComparer(ComparerDeps{Notifier: notifier})
	results := sampleResults()

	best, err := c.RecommendNext(context.Background(), results)
	require.NoError(t, err)
	assert.Equal(t, results[1], best)

	require.Len(t, notifier.digests, 1)
	assert.Contains(t, notifier.digests[0], "1. ENM Calendar API: 13/120")
}

func TestRecommendNextEmpty(t *testing.T) {
	_, err := NewComparer(ComparerDeps{}).RecommendNext(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestValidatorExposesComparison(t *testing.T) {
	v, _ := newTestValidator(t, &scriptedAgent{replies: []func(string) (ports.AgentResponse, error){answer("no json here")}}, newMemoryStore())

	best, err := v.RecommendNext(context.Background(), sampleResults())
	require.NoError(t, err)
	assert.Equal(t, "ENM Calendar API", best.Opportunity.Name)
}
