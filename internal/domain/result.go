package domain

import "fmt"

// Status tracks where a validation stands.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ValidationResult bundles an opportunity with its research and score.
// Its JSON form is the artifact persisted per opportunity.
type ValidationResult struct {
	Opportunity Opportunity      `json:"opportunity"`
	Research    ResearchFindings `json:"research"`
	Score       OpportunityScore `json:"score"`
	Status      Status           `json:"status"`
}

// Consistent checks that research and score belong to the opportunity.
func (r ValidationResult) Consistent() error {
	name := r.Opportunity.Name
	if r.Research.OpportunityName != name || r.Score.OpportunityName != name {
		return fmt.Errorf("%w: result names disagree (opportunity=%q research=%q score=%q)",
			ErrInvalidInput, name, r.Research.OpportunityName, r.Score.OpportunityName)
	}
	return nil
}

// NewFailedResult builds the terminal record for an opportunity whose
// validation could not produce real findings. Scores are zero, confidence
// is zero and the reason is recorded in notes and reasoning.
func NewFailedResult(opp Opportunity, reason string) ValidationResult {
	research := NewResearchFindings(opp.Name)
	research.Notes = reason

	score := OpportunityScore{
		OpportunityName: opp.Name,
		Reasoning:       reason,
	}
	score.CalculateTotals()

	return ValidationResult{
		Opportunity: opp,
		Research:    research,
		Score:       score,
		Status:      StatusFailed,
	}
}
