// Package search keeps the strategy registry for SERP providers.
package search

import (
	"fmt"

	"ContentPilot/internal/ports"
)

// Registry maps provider names to their implementations so the active
// provider is chosen by configuration.
type Registry struct {
	providers map[string]ports.SearchProvider
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: map[string]ports.SearchProvider{}}
}

// Register adds or replaces a provider under a name.
func (r *Registry) Register(name string, provider ports.SearchProvider) {
	if r.providers == nil {
		r.providers = map[string]ports.SearchProvider{}
	}
	r.providers[name] = provider
}

// Resolve returns a provider by name or an error if it is absent.
func (r *Registry) Resolve(name string) (ports.SearchProvider, error) {
	if provider, ok := r.providers[name]; ok {
		return provider, nil
	}
	return nil, fmt.Errorf("search provider %s is not registered", name)
}
