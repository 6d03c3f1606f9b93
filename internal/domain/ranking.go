package domain

import (
	"fmt"
	"sort"
)

// Ranking is one row of a comparison, best first.
type Ranking struct {
	Rank            int     `json:"rank"`
	Name            string  `json:"name"`
	Score           int     `json:"score"`
	EfficiencyScore float64 `json:"efficiency_score"`
	Recommendation  string  `json:"recommendation"`
	Summary         string  `json:"summary"`
}

// ScoreStats summarises total scores across the compared results.
type ScoreStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// Comparison is the side-by-side report over several validated results.
type Comparison struct {
	Rankings       []Ranking  `json:"rankings"`
	Recommendation string     `json:"recommendation"`
	Stats          ScoreStats `json:"stats"`
}

// Top returns the first ranking, if any.
func (c Comparison) Top() (Ranking, bool) {
	if len(c.Rankings) == 0 {
		return Ranking{}, false
	}
	return c.Rankings[0], true
}

// Rank orders results by total score desc, efficiency desc, then name asc.
// The output does not depend on the order of the input.
func Rank(results []ValidationResult) []Ranking {
	ordered := make([]ValidationResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		return rankedBefore(ordered[i], ordered[j])
	})

	rankings := make([]Ranking, 0, len(ordered))
	for i, res := range ordered {
		rankings = append(rankings, Ranking{
			Rank:            i + 1,
			Name:            res.Opportunity.Name,
			Score:           res.Score.TotalScore,
			EfficiencyScore: res.Score.EfficiencyScore,
			Recommendation:  res.Score.Recommendation,
			Summary:         rankSummary(i+1, len(ordered), res),
		})
	}
	return rankings
}

func rankedBefore(a, b ValidationResult) bool {
	if a.Score.TotalScore != b.Score.TotalScore {
		return a.Score.TotalScore > b.Score.TotalScore
	}
	if a.Score.EfficiencyScore != b.Score.EfficiencyScore {
		return a.Score.EfficiencyScore > b.Score.EfficiencyScore
	}
	return a.Opportunity.Name < b.Opportunity.Name
}

func rankSummary(rank, total int, res ValidationResult) string {
	figures := fmt.Sprintf("%d/%d, efficiency %.2f", res.Score.TotalScore, MaxTotalScore, res.Score.EfficiencyScore)

	var summary string
	switch {
	case total == 1:
		summary = "Only candidate: " + figures
	case rank == 1:
		summary = "Top pick: " + figures
	case rank == total:
		summary = "Lowest ranked: " + figures
	default:
		summary = fmt.Sprintf("Ranked #%d of %d: %s", rank, total, figures)
	}

	if res.Status == StatusFailed {
		summary += " (validation failed)"
	}
	return summary
}

// DefaultRecommendation phrases the top-level advice from the deterministic
// ranking alone.
func DefaultRecommendation(rankings []Ranking) string {
	if len(rankings) == 0 {
		return "No opportunities to compare."
	}
	top := rankings[0]
	if top.Recommendation == RecommendationReject {
		return fmt.Sprintf("No opportunity is ready: %s ranks highest (%d/%d) but was scored reject.",
			top.Name, top.Score, MaxTotalScore)
	}
	return fmt.Sprintf("Pursue %s first: total score %d/%d with efficiency %.2f.",
		top.Name, top.Score, MaxTotalScore, top.EfficiencyScore)
}
