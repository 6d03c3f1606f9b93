package ports

import (
	"context"
	"strings"
	"time"

	"OpportunityValidator/internal/domain"
)

// Message types that count as an agent's answer.
const (
	MessageTypeAI        = "ai"
	MessageTypeAssistant = "assistant"
)

// AgentMessage is one message returned by the agent runtime.
type AgentMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// AgentResponse is the raw outcome of a single agent run.
type AgentResponse struct {
	Messages []AgentMessage `json:"messages"`
}

// AssistantText joins the non-empty assistant/ai messages. An empty string
// means the response carries no usable answer.
func (r AgentResponse) AssistantText() string {
	var parts []string
	for _, msg := range r.Messages {
		switch strings.ToLower(msg.Type) {
		case MessageTypeAI, MessageTypeAssistant:
			if text := strings.TrimSpace(msg.Content); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

// Agent runs a natural-language task against an external LLM agent.
type Agent interface {
	Name() string
	Run(ctx context.Context, task string) (AgentResponse, error)
}

// MappedValidation is the typed content recovered from one agent answer.
type MappedValidation struct {
	Research domain.ResearchFindings
	Score    domain.OpportunityScore
}

// MappedBatchItem pairs an opportunity from a batch with its mapped content
// or the reason it could not be mapped.
type MappedBatchItem struct {
	Opportunity domain.Opportunity
	Validation  MappedValidation
	Err         error
}

// MappedComparison holds the agent's qualitative comparison, keyed by name.
type MappedComparison struct {
	Summaries      map[string]string
	Recommendation string
}

// ResponseMapper turns free-form agent text into typed records. Failures
// wrap domain.ErrParse.
type ResponseMapper interface {
	MapValidation(opp domain.Opportunity, text string) (MappedValidation, error)
	MapBatch(opps []domain.Opportunity, text string) []MappedBatchItem
	MapComparison(text string) (MappedComparison, error)
}

// ResultStore persists one validation artifact per opportunity.
type ResultStore interface {
	Save(ctx context.Context, result domain.ValidationResult) error
}

// ResultReader reads persisted validation artifacts back.
type ResultReader interface {
	Load(ctx context.Context, name string) (domain.ValidationResult, error)
	List(ctx context.Context) ([]domain.ValidationResult, error)
}

// ResultRepository keeps a queryable history of validation runs.
type ResultRepository interface {
	SaveResult(ctx context.Context, runID string, result domain.ValidationResult) error
	ListResults(ctx context.Context, names []string) ([]domain.ValidationResult, error)
}

// Notifier streams recommendation digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// ComparisonExporter writes a comparison to an external document.
type ComparisonExporter interface {
	ExportComparison(path string, comparison domain.Comparison, results []domain.ValidationResult) error
}

// Scheduler triggers a job repeatedly until stopped.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
