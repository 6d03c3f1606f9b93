package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/montanaflynn/stats"

	"OpportunityValidator/internal/domain"
	"OpportunityValidator/internal/logging"
	"OpportunityValidator/internal/ports"
	"OpportunityValidator/pkg/report"
)

// ComparerDeps wires the optional collaborators of a Comparer. Without an
// agent the comparison is purely deterministic.
type ComparerDeps struct {
	Agent    ports.Agent
	Mapper   ports.ResponseMapper
	Notifier ports.Notifier
	Logger   *slog.Logger
}

// Comparer ranks validated opportunities and picks the next one to pursue.
type Comparer struct {
	agent    ports.Agent
	mapper   ports.ResponseMapper
	notifier ports.Notifier
	logger   *slog.Logger
}

// NewComparer constructs a Comparer.
func NewComparer(deps ComparerDeps) *Comparer {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Comparer{
		agent:    deps.Agent,
		mapper:   deps.Mapper,
		notifier: deps.Notifier,
		logger:   logger.With("component", "comparer"),
	}
}

// CompareOpportunities ranks results by total score, efficiency and name.
// When an agent is wired it is asked for qualitative summaries, which may
// replace the summary texts and the recommendation but never the order.
func (c *Comparer) CompareOpportunities(ctx context.Context, results []domain.ValidationResult) (domain.Comparison, error) {
	if err := ctx.Err(); err != nil {
		return domain.Comparison{}, err
	}

	rankings := domain.Rank(results)
	comparison := domain.Comparison{
		Rankings:       rankings,
		Recommendation: domain.DefaultRecommendation(rankings),
		Stats:          scoreStats(results),
	}

	c.logger.Info("comparing opportunities", "count", len(results))

	if len(results) > 0 && c.agent != nil && c.mapper != nil {
		c.applyQualitative(ctx, results, &comparison)
	}

	for _, r := range comparison.Rankings {
		c.logger.Info("ranked", "rank", r.Rank, "name", r.Name, "score", r.Score, "efficiency", r.EfficiencyScore)
	}
	return comparison, nil
}

// RecommendNext returns the input result ranked first.
func (c *Comparer) RecommendNext(ctx context.Context, results []domain.ValidationResult) (domain.ValidationResult, error) {
	comparison, err := c.CompareOpportunities(ctx, results)
	if err != nil {
		return domain.ValidationResult{}, err
	}

	top, ok := comparison.Top()
	if !ok {
		return domain.ValidationResult{}, fmt.Errorf("%w: no validated opportunities to recommend from", domain.ErrNotFound)
	}

	for _, res := range results {
		if res.Opportunity.Name != top.Name {
			continue
		}
		c.logger.Info("recommended", "name", res.Opportunity.Name, "score", res.Score.TotalScore,
			"efficiency", res.Score.EfficiencyScore, "next_action", res.Score.NextAction)
		c.publish(ctx, comparison)
		return res, nil
	}
	return domain.ValidationResult{}, fmt.Errorf("%w: top ranked %q is not among the results", domain.ErrNotFound, top.Name)
}

func (c *Comparer) applyQualitative(ctx context.Context, results []domain.ValidationResult, comparison *domain.Comparison) {
	resp, err := c.agent.Run(ctx, buildComparisonRequest(results))
	if err != nil {
		c.logger.Warn("qualitative comparison failed, keeping deterministic summaries", "error", err)
		return
	}
	text := resp.AssistantText()
	if text == "" {
		c.logger.Warn("qualitative comparison returned no answer")
		return
	}

	mapped, err := c.mapper.MapComparison(text)
	if err != nil {
		c.logger.Warn("cannot map qualitative comparison", "error", err)
		return
	}

	for i := range comparison.Rankings {
		if summary, ok := summaryFor(comparison.Rankings, comparison.Rankings[i].Name, mapped.Summaries); ok {
			comparison.Rankings[i].Summary = summary
		}
	}
	if mapped.Recommendation != "" {
		comparison.Recommendation = mapped.Recommendation
	}
}

func (c *Comparer) publish(ctx context.Context, comparison domain.Comparison) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.PublishDigest(ctx, report.Digest(comparison)); err != nil {
		c.logger.Warn("publish recommendation", "error", err)
	}
}

func scoreStats(results []domain.ValidationResult) domain.ScoreStats {
	if len(results) == 0 {
		return domain.ScoreStats{}
	}
	totals := make(stats.Float64Data, len(results))
	for i, res := range results {
		totals[i] = float64(res.Score.TotalScore)
	}

	var out domain.ScoreStats
	if mean, err := stats.Mean(totals); err == nil {
		out.Mean = round2(mean)
	}
	if median, err := stats.Median(totals); err == nil {
		out.Median = round2(median)
	}
	if sd, err := stats.StandardDeviation(totals); err == nil {
		out.StdDev = round2(sd)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// summaryFor picks the agent summary for name: an exact match, else a
// case-folded one when neither side has another name with the same key.
func summaryFor(rankings []domain.Ranking, name string, summaries map[string]string) (string, bool) {
	if summary, ok := summaries[name]; ok {
		return summary, true
	}
	key := domain.MatchKey(name)
	for _, r := range rankings {
		if r.Name != name && domain.MatchKey(r.Name) == key {
			return "", false
		}
	}
	var (
		found   string
		matches int
	)
	for other, summary := range summaries {
		if domain.MatchKey(other) == key {
			found = summary
			matches++
		}
	}
	return found, matches == 1
}
