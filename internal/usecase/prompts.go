package usecase

import (
	"fmt"
	"strings"

	"OpportunityValidator/internal/domain"
)

const validationInstructions = `

Please:
1. Spawn a research sub-agent to find:
   - Where this ICP hangs out online (communities)
   - Evidence they pay for similar tools (budget validation)
   - Discussions showing pain intensity
   - Existing competitors and gaps

2. Once research is complete, spawn a scoring sub-agent to evaluate on all 12 dimensions

3. Save findings to /opportunities/%s/

4. Return structured results as JSON shaped as {"name": ..., "research": {...}, "score": {...}}
`

const batchInstructions = `

For EACH opportunity:
1. Spawn a dedicated research sub-agent (so contexts don't mix)
2. Research: communities, budget evidence, pain discussions, competition
3. Spawn a scoring sub-agent to evaluate
4. Save to /opportunities/{name}/

Return all results as a JSON array with one {"name": ..., "research": {...}, "score": {...}} object per opportunity, using the names exactly as given.
`

const comparisonInstructions = `

Analyze and return:
1. Rankings (best to worst)
2. Comparison of strengths/weaknesses
3. Which to pursue first and why
4. Any that should be rejected outright

Return as JSON shaped as {"rankings": [{"name": ..., "summary": ...}], "recommendation": ..., "reject": [...]}.
`

func buildValidationRequest(opp domain.Opportunity, focus []string) string {
	var b strings.Builder
	b.WriteString("Validate this business opportunity:\n\n")
	fmt.Fprintf(&b, "**Opportunity**: %s\n", opp.Name)
	fmt.Fprintf(&b, "**Description**: %s\n", opp.Description)
	fmt.Fprintf(&b, "**Target ICP**: %s\n", opp.ICP)
	fmt.Fprintf(&b, "**Problem**: %s\n", opp.Problem)

	if opp.Aspiration != nil && *opp.Aspiration != "" {
		fmt.Fprintf(&b, "\n**Aspiration**: %s", *opp.Aspiration)
	}
	if opp.Workaround != nil && *opp.Workaround != "" {
		fmt.Fprintf(&b, "\n**Current Workaround**: %s", *opp.Workaround)
	}
	if len(opp.Communities) > 0 {
		fmt.Fprintf(&b, "\n**Known Communities**: %s", strings.Join(opp.Communities, ", "))
	}

	fmt.Fprintf(&b, validationInstructions, opp.Slug())

	if len(focus) > 0 {
		b.WriteString("\n\nResearch focus areas:\n")
		for i, f := range focus {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("- " + f)
		}
	}
	return b.String()
}

func buildBatchRequest(opps []domain.Opportunity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Validate these %d business opportunities IN PARALLEL:\n", len(opps))
	for i, opp := range opps {
		fmt.Fprintf(&b, "\n%d. **%s**\n", i+1, opp.Name)
		fmt.Fprintf(&b, "   - Description: %s\n", opp.Description)
		fmt.Fprintf(&b, "   - ICP: %s\n", opp.ICP)
		fmt.Fprintf(&b, "   - Problem: %s\n", opp.Problem)
	}
	b.WriteString(batchInstructions)
	return b.String()
}

func buildComparisonRequest(results []domain.ValidationResult) string {
	var b strings.Builder
	b.WriteString("Compare these validated opportunities and provide rankings:\n")
	for i, res := range results {
		score := res.Score
		fmt.Fprintf(&b, "\n%d. %s (Score: %d/%d, Efficiency: %.2f)\n",
			i+1, res.Opportunity.Name, score.TotalScore, domain.MaxTotalScore, score.EfficiencyScore)
		fmt.Fprintf(&b, "   - ICP: %s\n", res.Opportunity.ICP)
		fmt.Fprintf(&b, "   - Key strengths: Market Size=%d, Budget=%d\n", score.MarketSize, score.BudgetConfirmed)
		fmt.Fprintf(&b, "   - Recommendation: %s\n", score.Recommendation)
		fmt.Fprintf(&b, "   - Research confidence: %.2f\n", res.Research.Confidence)
	}
	b.WriteString(comparisonInstructions)
	return b.String()
}
