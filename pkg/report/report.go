// Package report renders validation results and comparisons as console tables.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"OpportunityValidator/internal/domain"
)

const rule = "============================================================"

// Comparison prints the ranking table followed by the recommendation.
func Comparison(w io.Writer, comparison domain.Comparison) {
	fmt.Fprintf(w, "\n%s\nOPPORTUNITY RANKINGS\n%s\n", rule, rule)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Opportunity", "Score", "Efficiency", "Verdict", "Summary"})
	for _, r := range comparison.Rankings {
		t.AppendRow(table.Row{
			r.Rank,
			r.Name,
			fmt.Sprintf("%d/%d", r.Score, domain.MaxTotalScore),
			fmt.Sprintf("%.2f", r.EfficiencyScore),
			verdict(r.Recommendation),
			r.Summary,
		})
	}
	if len(comparison.Rankings) > 1 {
		t.AppendFooter(table.Row{"", "mean / median / stddev",
			fmt.Sprintf("%.1f / %.1f / %.1f", comparison.Stats.Mean, comparison.Stats.Median, comparison.Stats.StdDev)})
	}
	t.Render()

	fmt.Fprintf(w, "\n%s\nRECOMMENDATION\n%s\n%s\n", rule, rule, comparison.Recommendation)
}

// Result prints one validation result with its dimension subtotals.
func Result(w io.Writer, result domain.ValidationResult) {
	score := result.Score
	dims := score.Dimensions()

	fmt.Fprintf(w, "\n%s (%s)\n", result.Opportunity.Name, result.Status)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Dimension", "Criteria", "Subtotal"})
	t.AppendRow(table.Row{"Problem-Solution Fit", criteria(score.AspirationClarity, score.WorkaroundPain, score.StuckPattern), dims.ProblemSolutionFit})
	t.AppendRow(table.Row{"Market Signals", criteria(score.MarketSize, score.BudgetConfirmed, score.CompetitionGap), dims.MarketSignals})
	t.AppendRow(table.Row{"Founder-Market Fit", criteria(score.DomainExpertise, score.AudienceAccess, score.PassionLevel), dims.FounderMarketFit})
	t.AppendRow(table.Row{"Execution Feasibility", criteria(score.TechnicalCapability, score.Reachability, score.ViralityPotential), dims.ExecutionFeasibility})
	t.AppendFooter(table.Row{"Total", fmt.Sprintf("efficiency %.2f", score.EfficiencyScore), fmt.Sprintf("%d/%d", score.TotalScore, domain.MaxTotalScore)})
	t.Render()

	fmt.Fprintf(w, "Recommendation: %s\n", verdict(score.Recommendation))
	if score.NextAction != "" {
		fmt.Fprintf(w, "Next action: %s\n", score.NextAction)
	}
	if result.Research.Notes != "" {
		fmt.Fprintf(w, "Notes: %s\n", result.Research.Notes)
	}
}

// Digest is the short Markdown text sent to chat notifiers.
func Digest(comparison domain.Comparison) string {
	var b strings.Builder
	b.WriteString("*Opportunity rankings*\n")
	for _, r := range comparison.Rankings {
		fmt.Fprintf(&b, "%d. %s: %d/%d (efficiency %.2f)\n", r.Rank, r.Name, r.Score, domain.MaxTotalScore, r.EfficiencyScore)
	}
	if comparison.Recommendation != "" {
		b.WriteString("\n")
		b.WriteString(comparison.Recommendation)
	}
	return b.String()
}

func criteria(a, b, c int) string {
	return fmt.Sprintf("%d + %d + %d", a, b, c)
}

func verdict(recommendation string) string {
	if recommendation == "" {
		return "n/a"
	}
	return strings.ToUpper(recommendation)
}
