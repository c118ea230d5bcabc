// Package registry resolves provider adapters by identifier.
package registry

import (
	"github.com/mercatto/mercatto-payments/internal/core/domain"
	"github.com/mercatto/mercatto-payments/internal/core/ports"
)

// Registry maps provider identifiers to adapter instances. Adapters are
// constructed once at startup and reused for the process lifetime; the
// registry itself is immutable after construction.
type Registry struct {
	adapters        map[string]ports.ProviderAdapter
	defaultProvider string
}

// New builds a registry from the given adapters. defaultProvider is the
// identifier used when the caller does not name one.
func New(defaultProvider string, adapters ...ports.ProviderAdapter) *Registry {
	m := make(map[string]ports.ProviderAdapter, len(adapters))
	for _, a := range adapters {
		m[a.Name()] = a
	}
	return &Registry{adapters: m, defaultProvider: defaultProvider}
}

// Default returns the configured fallback adapter.
func (r *Registry) Default() (ports.ProviderAdapter, error) {
	return r.Get(r.defaultProvider)
}

// Get returns a specific named adapter, allowing multi-provider checkout
// decisions (domestic gateway vs. cross-border payout) in one process.
func (r *Registry) Get(provider string) (ports.ProviderAdapter, error) {
	if provider == "" {
		provider = r.defaultProvider
	}
	adapter, ok := r.adapters[provider]
	if !ok {
		return nil, domain.NewError(domain.KindUnsupported, domain.ErrProviderNotConfigured,
			"no adapter registered for provider "+provider, "PROVIDER_NOT_CONFIGURED")
	}
	return adapter, nil
}
