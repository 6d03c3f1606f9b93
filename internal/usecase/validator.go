package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"OpportunityValidator/internal/domain"
	"OpportunityValidator/internal/logging"
	"OpportunityValidator/internal/ports"
)

// ValidatorDeps wires all driven adapters into the validation workflow.
// Repository and Notifier are optional.
type ValidatorDeps struct {
	Agent      ports.Agent
	Mapper     ports.ResponseMapper
	Store      ports.ResultStore
	Repository ports.ResultRepository
	Notifier   ports.Notifier
	Logger     *slog.Logger
}

// Validator runs the research and scoring phases through the agent, maps
// the answers into results and persists them.
type Validator struct {
	*Comparer

	agent      ports.Agent
	mapper     ports.ResponseMapper
	store      ports.ResultStore
	repository ports.ResultRepository
	logger     *slog.Logger
}

// NewValidator constructs the orchestration component.
func NewValidator(deps ValidatorDeps) (*Validator, error) {
	if deps.Agent == nil {
		return nil, fmt.Errorf("%w: validator needs an agent", domain.ErrConfiguration)
	}
	if deps.Mapper == nil {
		return nil, fmt.Errorf("%w: validator needs a response mapper", domain.ErrConfiguration)
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("%w: validator needs a result store", domain.ErrConfiguration)
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Validator{
		Comparer: NewComparer(ComparerDeps{
			Agent:    deps.Agent,
			Mapper:   deps.Mapper,
			Notifier: deps.Notifier,
			Logger:   logger,
		}),
		agent:      deps.Agent,
		mapper:     deps.Mapper,
		store:      deps.Store,
		repository: deps.Repository,
		logger:     logger.With("component", "validator", "agent", deps.Agent.Name()),
	}, nil
}

// ValidateOpportunity validates a single opportunity. An agent failure is
// returned as ErrAgentInvocation; an answer that cannot be mapped yields a
// persisted failed result instead of an error.
func (v *Validator) ValidateOpportunity(ctx context.Context, opp domain.Opportunity, researchFocus []string) (domain.ValidationResult, error) {
	if err := opp.Validate(); err != nil {
		return domain.ValidationResult{}, err
	}
	return v.validate(ctx, uuid.NewString(), opp, researchFocus)
}

// ValidateOpportunities validates a batch and returns results in input
// order. With parallel set the agent receives one combined request and
// isolates each opportunity itself; otherwise opportunities are validated
// one by one and a failure only affects its own record.
func (v *Validator) ValidateOpportunities(ctx context.Context, opps []domain.Opportunity, parallel bool) ([]domain.ValidationResult, error) {
	if err := domain.ValidateBatch(opps); err != nil {
		return nil, err
	}
	if len(opps) == 0 {
		return []domain.ValidationResult{}, nil
	}

	runID := uuid.NewString()
	mode := "sequential"
	if parallel {
		mode = "parallel"
	}
	v.logger.Info("validating batch", "count", len(opps), "mode", mode, "run_id", runID)

	var (
		results []domain.ValidationResult
		err     error
	)
	if parallel {
		results, err = v.validateParallel(ctx, runID, opps)
	} else {
		results, err = v.validateSequential(ctx, runID, opps)
	}
	if err != nil {
		return nil, err
	}

	v.logger.Info("batch complete", "count", len(results), "run_id", runID)
	return results, nil
}

func (v *Validator) validate(ctx context.Context, runID string, opp domain.Opportunity, focus []string) (domain.ValidationResult, error) {
	v.logger.Info("validating", "name", opp.Name, "icp", opp.ICP, "problem", opp.Problem)

	resp, err := v.agent.Run(ctx, buildValidationRequest(opp, focus))
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("%w: validate %s: %w", domain.ErrAgentInvocation, opp.Name, err)
	}
	text := resp.AssistantText()
	if text == "" {
		return domain.ValidationResult{}, fmt.Errorf("%w: validate %s: agent returned no assistant message", domain.ErrAgentInvocation, opp.Name)
	}

	var result domain.ValidationResult
	mapped, err := v.mapper.MapValidation(opp, text)
	switch {
	case errors.Is(err, domain.ErrParse):
		v.logger.Warn("cannot map agent answer", "name", opp.Name, "error", err)
		result = domain.NewFailedResult(opp, fmt.Sprintf("could not map agent answer: %v", err))
	case err != nil:
		return domain.ValidationResult{}, fmt.Errorf("map %s: %w", opp.Name, err)
	default:
		result = completedResult(opp, mapped)
	}

	if err := v.persist(ctx, runID, result); err != nil {
		return domain.ValidationResult{}, err
	}

	v.logger.Info("validation complete", "name", opp.Name, "status", result.Status,
		"score", fmt.Sprintf("%d/%d", result.Score.TotalScore, domain.MaxTotalScore),
		"recommendation", result.Score.Recommendation)
	return result, nil
}

func (v *Validator) validateSequential(ctx context.Context, runID string, opps []domain.Opportunity) ([]domain.ValidationResult, error) {
	results := make([]domain.ValidationResult, 0, len(opps))
	for _, opp := range opps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := v.validate(ctx, runID, opp, nil)
		if err != nil {
			v.logger.Warn("validation failed", "name", opp.Name, "error", err)
			res = domain.NewFailedResult(opp, err.Error())
			if pErr := v.persist(ctx, runID, res); pErr != nil {
				v.logger.Error("persist failed result", "name", opp.Name, "error", pErr)
			}
		}
		results = append(results, res)
	}
	return results, nil
}

func (v *Validator) validateParallel(ctx context.Context, runID string, opps []domain.Opportunity) ([]domain.ValidationResult, error) {
	results := make([]domain.ValidationResult, len(opps))

	resp, err := v.agent.Run(ctx, buildBatchRequest(opps))
	text := ""
	if err == nil {
		text = resp.AssistantText()
	}

	switch {
	case err != nil || text == "":
		reason := "agent returned no assistant message"
		if err != nil {
			reason = fmt.Sprintf("%v: %v", domain.ErrAgentInvocation, err)
		}
		v.logger.Warn("batch agent call failed", "run_id", runID, "reason", reason)
		for i, opp := range opps {
			results[i] = domain.NewFailedResult(opp, reason)
		}
	default:
		for i, item := range v.mapper.MapBatch(opps, text) {
			if i >= len(results) {
				break
			}
			if item.Err != nil {
				v.logger.Warn("batch item not mapped", "name", item.Opportunity.Name, "error", item.Err)
				results[i] = domain.NewFailedResult(item.Opportunity, item.Err.Error())
				continue
			}
			results[i] = completedResult(item.Opportunity, item.Validation)
		}
		for i, opp := range opps {
			if results[i].Opportunity.Name != opp.Name {
				results[i] = domain.NewFailedResult(opp, "missing from batch answer")
			}
		}
	}

	for i, res := range results {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := v.persist(ctx, runID, res); err != nil {
			v.logger.Warn("persist failed", "name", res.Opportunity.Name, "error", err)
			res = domain.NewFailedResult(res.Opportunity, err.Error())
			if pErr := v.persist(ctx, runID, res); pErr != nil {
				v.logger.Error("persist failed result", "name", res.Opportunity.Name, "error", pErr)
			}
			results[i] = res
		}
		v.logger.Info("validation complete", "name", res.Opportunity.Name, "status", res.Status,
			"score", fmt.Sprintf("%d/%d", res.Score.TotalScore, domain.MaxTotalScore))
	}
	return results, nil
}

func (v *Validator) persist(ctx context.Context, runID string, result domain.ValidationResult) error {
	if err := v.store.Save(ctx, result); err != nil {
		return fmt.Errorf("save %s: %w", result.Opportunity.Name, err)
	}
	if v.repository != nil {
		if err := v.repository.SaveResult(ctx, runID, result); err != nil {
			v.logger.Warn("record result history", "name", result.Opportunity.Name, "error", err)
		}
	}
	return nil
}

func completedResult(opp domain.Opportunity, mapped ports.MappedValidation) domain.ValidationResult {
	research := mapped.Research
	research.OpportunityName = opp.Name
	research.Confidence = domain.ClampConfidence(research.Confidence)
	research.Normalize()

	score := mapped.Score
	score.OpportunityName = opp.Name
	score.CalculateTotals()

	return domain.ValidationResult{
		Opportunity: opp,
		Research:    research,
		Score:       score,
		Status:      domain.StatusCompleted,
	}
}
