package agent

import (
	"context"
	"errors"
	"testing"

	"OpportunityValidator/internal/config"
	"OpportunityValidator/internal/domain"
	"OpportunityValidator/internal/ports"
)

type stubAgent struct{ name string }

func (s stubAgent) Name() string { return s.name }

func (s stubAgent) Run(context.Context, string) (ports.AgentResponse, error) {
	return ports.AgentResponse{}, nil
}

func TestRegistryBuild(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register("stub", func(cfg config.AgentConfig) (ports.Agent, error) {
		if cfg.APIKey == "" {
			return nil, errors.New("no key")
		}
		return stubAgent{name: "stub"}, nil
	})

	a, err := reg.Build(config.AgentConfig{Provider: "stub", APIKey: "k"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if a.Name() != "stub" {
		t.Fatalf("unexpected agent %s", a.Name())
	}

	if _, err := reg.Build(config.AgentConfig{Provider: "stub"}); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := reg.Build(config.AgentConfig{Provider: "missing"}); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error for unknown provider, got %v", err)
	}
}

func TestRegistryNames(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register("b", nil)
	reg.Register("a", nil)

	names := reg.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("unexpected names: %v", names)
	}
}
