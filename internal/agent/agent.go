package agent

import (
	"fmt"
	"sort"

	"OpportunityValidator/internal/config"
	"OpportunityValidator/internal/domain"
	"OpportunityValidator/internal/ports"
)

// Factory builds an agent from its configuration section.
type Factory func(cfg config.AgentConfig) (ports.Agent, error)

// Registry keeps a mapping from provider names to agent factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register adds or replaces a provider factory.
func (r *Registry) Register(name string, factory Factory) {
	if r.factories == nil {
		r.factories = map[string]Factory{}
	}
	r.factories[name] = factory
}

// Resolve returns a factory by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Factory, error) {
	if factory, ok := r.factories[name]; ok {
		return factory, nil
	}
	return nil, fmt.Errorf("%w: agent provider %s is not registered (known: %v)", domain.ErrConfiguration, name, r.Names())
}

// Names lists registered providers in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build validates cfg and constructs the configured provider.
func (r *Registry) Build(cfg config.AgentConfig) (ports.Agent, error) {
	factory, err := r.Resolve(cfg.Provider)
	if err != nil {
		return nil, err
	}
	agent, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: build %s agent: %v", domain.ErrConfiguration, cfg.Provider, err)
	}
	return agent, nil
}
