package usecase

import (
	"context"
	"fmt"
	"sync"

	"OpportunityValidator/internal/domain"
	"OpportunityValidator/internal/ports"
)

type scriptedAgent struct {
	mu      sync.Mutex
	replies []func(task string) (ports.AgentResponse, error)
	tasks   []string
}

func (a *scriptedAgent) Name() string { return "scripted" }

func (a *scriptedAgent) Run(_ context.Context, task string) (ports.AgentResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tasks = append(a.tasks, task)
	if len(a.replies) == 0 {
		return ports.AgentResponse{}, fmt.Errorf("no scripted reply for call %d", len(a.tasks))
	}
	next := a.replies[0]
	a.replies = a.replies[1:]
	return next(task)
}

func answer(text string) func(string) (ports.AgentResponse, error) {
	return func(string) (ports.AgentResponse, error) {
		return ports.AgentResponse{Messages: []ports.AgentMessage{
			{Type: "human", Content: "ignored"},
			{Type: ports.MessageTypeAI, Content: text},
		}}, nil
	}
}

func failure(err error) func(string) (ports.AgentResponse, error) {
	return func(string) (ports.AgentResponse, error) {
		return ports.AgentResponse{}, err
	}
}

type memoryStore struct {
	saved map[string]domain.ValidationResult
	order []string
	err   error
	// failOn holds how many more saves of a name should fail.
	failOn map[string]int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{saved: map[string]domain.ValidationResult{}, failOn: map[string]int{}}
}

func (s *memoryStore) Save(_ context.Context, result domain.ValidationResult) error {
	if s.err != nil {
		return s.err
	}
	if s.failOn[result.Opportunity.Name] > 0 {
		s.failOn[result.Opportunity.Name]--
		return fmt.Errorf("write %s: disk full", result.Opportunity.Name)
	}
	s.saved[result.Opportunity.Slug()] = result
	s.order = append(s.order, result.Opportunity.Name)
	return nil
}

type recordingRepository struct {
	runIDs map[string]string
}

func (r *recordingRepository) SaveResult(_ context.Context, runID string, result domain.ValidationResult) error {
	if r.runIDs == nil {
		r.runIDs = map[string]string{}
	}
	r.runIDs[result.Opportunity.Name] = runID
	return nil
}

func (r *recordingRepository) ListResults(context.Context, []string) ([]domain.ValidationResult, error) {
	return nil, nil
}

type recordingNotifier struct {
	digests []string
	err     error
}

func (n *recordingNotifier) PublishDigest(_ context.Context, digest string) error {
	n.digests = append(n.digests, digest)
	return n.err
}

func scoreJSON(name string, market int) string {
	return fmt.Sprintf(`{"name": %q,
 "research": {"communities_found": ["r/test"], "pays_for_tools": true, "confidence": 0.8, "notes": "ok"},
 "score": {"aspiration_clarity": 7, "workaround_pain": 6, "stuck_pattern": 5,
   "market_size": %d, "budget_confirmed": 6, "competition_gap": 7,
   "domain_expertise": 8, "audience_access": 7, "passion_level": 9,
   "technical_capability": 8, "reachability": 7, "virality_potential": 6,
   "reasoning": "solid", "recommendation": "proceed", "next_action": "Interview users"}}`, name, market)
}

func validated(name string, market, passion int) domain.ValidationResult {
	score := domain.OpportunityScore{OpportunityName: name, MarketSize: market, PassionLevel: passion}
	score.CalculateTotals()
	return domain.ValidationResult{
		Opportunity: domain.Opportunity{Name: name, ICP: "icp of " + name},
		Research:    domain.NewResearchFindings(name),
		Score:       score,
		Status:      domain.StatusCompleted,
	}
}
