package engine

import (
	"fmt"
	"slices"
)

// Registry stores providers in declaration order.
type Registry struct {
	ordered []Provider
	index   map[string]Provider
}

// NewRegistry creates a registry holding providers in the given order.
func NewRegistry(providers ...Provider) (*Registry, error) {
	registry := &Registry{index: make(map[string]Provider, len(providers))}

	for _, provider := range providers {
		if err := registry.Register(provider); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// Register appends a provider. Ids must be unique.
func (r *Registry) Register(provider Provider) error {
	if _, exists := r.index[provider.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, provider.ID())
	}

	r.index[provider.ID()] = provider
	r.ordered = append(r.ordered, provider)

	return nil
}

// Providers returns the providers in declaration order.
func (r *Registry) Providers() []Provider {
	return slices.Clone(r.ordered)
}

// Provider returns the provider with the id.
func (r *Registry) Provider(id string) (Provider, bool) {
	provider, ok := r.index[id]

	return provider, ok
}

// IDs returns the provider ids in declaration order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.ordered))
	for _, provider := range r.ordered {
		ids = append(ids, provider.ID())
	}

	return ids
}
