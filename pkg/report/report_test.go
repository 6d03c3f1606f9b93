package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"OpportunityValidator/internal/domain"
)

func sample(name string, market, passion int, rec string) domain.ValidationResult {
	score := domain.OpportunityScore{
		OpportunityName: name,
		MarketSize:      market,
		PassionLevel:    passion,
		Recommendation:  rec,
		NextAction:      "Interview five teachers",
	}
	score.CalculateTotals()
	return domain.ValidationResult{
		Opportunity: domain.Opportunity{Name: name},
		Research:    domain.NewResearchFindings(name),
		Score:       score,
		Status:      domain.StatusCompleted,
	}
}

func TestComparison(t *testing.T) {
	t.Parallel()

	rankings := domain.Rank([]domain.ValidationResult{
		sample("AI Song Generator", 2, 3, domain.RecommendationReject),
		sample("ESL Teacher Feedback Tool", 5, 8, domain.RecommendationProceed),
	})
	var buf bytes.Buffer
	Comparison(&buf, domain.Comparison{Rankings: rankings, Recommendation: domain.DefaultRecommendation(rankings)})

	out := buf.String()
	assert.Contains(t, out, "OPPORTUNITY RANKINGS")
	assert.Contains(t, out, "RECOMMENDATION")
	assert.Contains(t, out, "13/120")
	assert.Contains(t, out, "PROCEED")
	assert.Contains(t, out, "Pursue ESL Teacher Feedback Tool first")
	assert.Less(t, strings.Index(out, "ESL Teacher Feedback Tool"), strings.Index(out, "AI Song Generator"))
}

func TestResult(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	Result(&buf, sample("ENM Calendar API", 4, 9, domain.RecommendationMonitor))

	out := buf.String()
	assert.Contains(t, out, "ENM Calendar API (completed)")
	assert.Contains(t, out, "Market Signals")
	assert.Contains(t, out, "13/120")
	assert.Contains(t, out, "Recommendation: MONITOR")
	assert.Contains(t, out, "Next action: Interview five teachers")
}

func TestDigest(t *testing.T) {
	t.Parallel()

	rankings := domain.Rank([]domain.ValidationResult{sample("ENM Calendar API", 4, 9, "")})
	digest := Digest(domain.Comparison{Rankings: rankings, Recommendation: "Pursue ENM Calendar API first."})

	assert.Equal(t, "*Opportunity rankings*\n1. ENM Calendar API: 13/120 (efficiency 2.60)\n\nPursue ENM Calendar API first.", digest)
}
