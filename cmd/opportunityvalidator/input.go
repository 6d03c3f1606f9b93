package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"OpportunityValidator/internal/domain"
)

type opportunityFile struct {
	Opportunities []domain.Opportunity `yaml:"opportunities"`
}

// readOpportunities parses a YAML or JSON file holding either a list of
// opportunities, an {"opportunities": [...]} document or a single one.
func readOpportunities(path string) ([]domain.Opportunity, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return parseOpportunities(raw)
}

func parseOpportunities(raw []byte) ([]domain.Opportunity, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("%w: parse opportunities: %v", domain.ErrInvalidInput, err)
	}
	if len(node.Content) == 0 {
		return nil, fmt.Errorf("%w: no opportunities found", domain.ErrInvalidInput)
	}

	doc := node.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		var list []domain.Opportunity
		if err := doc.Decode(&list); err != nil {
			return nil, fmt.Errorf("%w: decode opportunities: %v", domain.ErrInvalidInput, err)
		}
		return list, nil
	case yaml.MappingNode:
		var wrapped opportunityFile
		if err := doc.Decode(&wrapped); err == nil && len(wrapped.Opportunities) > 0 {
			return wrapped.Opportunities, nil
		}
		var single domain.Opportunity
		if err := doc.Decode(&single); err != nil {
			return nil, fmt.Errorf("%w: decode opportunity: %v", domain.ErrInvalidInput, err)
		}
		return []domain.Opportunity{single}, nil
	default:
		return nil, fmt.Errorf("%w: expected a list or a mapping of opportunities", domain.ErrInvalidInput)
	}
}
