package domain

import (
	"fmt"
	"math"
)

// Score bounds for the 12-dimension rubric.
const (
	MinSubScore   = 0
	MaxSubScore   = 10
	MaxTotalScore = 120
)

// Recommendation values produced by the scoring phase.
const (
	RecommendationProceed = "proceed"
	RecommendationMonitor = "monitor"
	RecommendationReject  = "reject"
)

// OpportunityScore is the rubric for one opportunity. TotalScore and
// EfficiencyScore are derived; call CalculateTotals after the sub-scores
// are final.
type OpportunityScore struct {
	OpportunityName string `json:"opportunity_name"`

	// Problem-Solution Fit
	AspirationClarity int `json:"aspiration_clarity"`
	WorkaroundPain    int `json:"workaround_pain"`
	StuckPattern      int `json:"stuck_pattern"`

	// Market Signals
	MarketSize      int `json:"market_size"`
	BudgetConfirmed int `json:"budget_confirmed"`
	CompetitionGap  int `json:"competition_gap"`

	// Founder-Market Fit
	DomainExpertise int `json:"domain_expertise"`
	AudienceAccess  int `json:"audience_access"`
	PassionLevel    int `json:"passion_level"`

	// Execution Feasibility
	TechnicalCapability int `json:"technical_capability"`
	Reachability        int `json:"reachability"`
	ViralityPotential   int `json:"virality_potential"`

	TotalScore      int     `json:"total_score"`
	EfficiencyScore float64 `json:"efficiency_score"`

	Reasoning      string `json:"reasoning"`
	Recommendation string `json:"recommendation"`
	NextAction     string `json:"next_action"`
}

// SubScoreKeys lists the rubric keys in rubric order.
var SubScoreKeys = []string{
	"aspiration_clarity", "workaround_pain", "stuck_pattern",
	"market_size", "budget_confirmed", "competition_gap",
	"domain_expertise", "audience_access", "passion_level",
	"technical_capability", "reachability", "virality_potential",
}

// SubScores returns pointers to the twelve sub-scores keyed like SubScoreKeys.
func (s *OpportunityScore) SubScores() map[string]*int {
	return map[string]*int{
		"aspiration_clarity":   &s.AspirationClarity,
		"workaround_pain":      &s.WorkaroundPain,
		"stuck_pattern":        &s.StuckPattern,
		"market_size":          &s.MarketSize,
		"budget_confirmed":     &s.BudgetConfirmed,
		"competition_gap":      &s.CompetitionGap,
		"domain_expertise":     &s.DomainExpertise,
		"audience_access":      &s.AudienceAccess,
		"passion_level":        &s.PassionLevel,
		"technical_capability": &s.TechnicalCapability,
		"reachability":         &s.Reachability,
		"virality_potential":   &s.ViralityPotential,
	}
}

// CalculateTotals recomputes TotalScore and EfficiencyScore from the
// sub-scores. Efficiency is total / (market_size + 1) rounded to 2 places.
func (s *OpportunityScore) CalculateTotals() {
	s.TotalScore = s.AspirationClarity + s.WorkaroundPain + s.StuckPattern +
		s.MarketSize + s.BudgetConfirmed + s.CompetitionGap +
		s.DomainExpertise + s.AudienceAccess + s.PassionLevel +
		s.TechnicalCapability + s.Reachability + s.ViralityPotential
	s.EfficiencyScore = round2(float64(s.TotalScore) / float64(s.MarketSize+1))
}

// Validate reports the first sub-score outside [0,10].
func (s OpportunityScore) Validate() error {
	subs := s.SubScores()
	for _, key := range SubScoreKeys {
		v := *subs[key]
		if v < MinSubScore || v > MaxSubScore {
			return fmt.Errorf("%w: %s=%d outside [%d,%d]", ErrInvalidInput, key, v, MinSubScore, MaxSubScore)
		}
	}
	return nil
}

// Dimensions groups the rubric into its four 0-30 subtotals.
type Dimensions struct {
	ProblemSolutionFit   int `json:"problem_solution_fit"`
	MarketSignals        int `json:"market_signals"`
	FounderMarketFit     int `json:"founder_market_fit"`
	ExecutionFeasibility int `json:"execution_feasibility"`
}

// Dimensions returns the per-group subtotals.
func (s OpportunityScore) Dimensions() Dimensions {
	return Dimensions{
		ProblemSolutionFit:   s.AspirationClarity + s.WorkaroundPain + s.StuckPattern,
		MarketSignals:        s.MarketSize + s.BudgetConfirmed + s.CompetitionGap,
		FounderMarketFit:     s.DomainExpertise + s.AudienceAccess + s.PassionLevel,
		ExecutionFeasibility: s.TechnicalCapability + s.Reachability + s.ViralityPotential,
	}
}

// ClampSubScore bounds v to [0,10].
func ClampSubScore(v int) int {
	if v < MinSubScore {
		return MinSubScore
	}
	if v > MaxSubScore {
		return MaxSubScore
	}
	return v
}

// IsRecommendation reports whether v is one of the known recommendation values.
func IsRecommendation(v string) bool {
	switch v {
	case RecommendationProceed, RecommendationMonitor, RecommendationReject:
		return true
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
