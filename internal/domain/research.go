package domain

import "math"

// EvidenceItem is an opaque evidence record returned by the research phase
// (a community, a pricing data point, a quoted discussion, a competitor).
type EvidenceItem map[string]any

// Emotional intensity levels reported for pain discussions.
const (
	IntensityHigh   = "high"
	IntensityMedium = "medium"
	IntensityLow    = "low"
)

// ResearchFindings holds the evidence gathered for one opportunity.
type ResearchFindings struct {
	OpportunityName string `json:"opportunity_name"`

	CommunitiesFound []EvidenceItem `json:"communities_found"`

	BudgetEvidence []EvidenceItem `json:"budget_evidence"`
	PaysForTools   bool           `json:"pays_for_tools"`
	PriceRange     *string        `json:"price_range"`

	PainDiscussions    []EvidenceItem `json:"pain_discussions"`
	EmotionalIntensity *string        `json:"emotional_intensity"`

	Competitors    []EvidenceItem `json:"competitors"`
	CompetitionGap *string        `json:"competition_gap"`

	Confidence float64 `json:"confidence"`
	Notes      string  `json:"notes"`
}

// NewResearchFindings returns findings with empty evidence lists.
func NewResearchFindings(opportunityName string) ResearchFindings {
	return ResearchFindings{
		OpportunityName:  opportunityName,
		CommunitiesFound: []EvidenceItem{},
		BudgetEvidence:   []EvidenceItem{},
		PainDiscussions:  []EvidenceItem{},
		Competitors:      []EvidenceItem{},
	}
}

// Normalize clamps confidence and replaces nil evidence lists so the
// serialized form never carries null lists.
func (r *ResearchFindings) Normalize() {
	r.Confidence = ClampConfidence(r.Confidence)
	if r.CommunitiesFound == nil {
		r.CommunitiesFound = []EvidenceItem{}
	}
	if r.BudgetEvidence == nil {
		r.BudgetEvidence = []EvidenceItem{}
	}
	if r.PainDiscussions == nil {
		r.PainDiscussions = []EvidenceItem{}
	}
	if r.Competitors == nil {
		r.Competitors = []EvidenceItem{}
	}
}

// ClampConfidence bounds v to [0,1].
func ClampConfidence(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
