package platform

import (
	"context"
	"strings"
)

// Registry maps platform names to adapter instances. The set is fixed at
// construction; lookups are case-insensitive.
type Registry struct {
	platforms map[string]Platform
	order     []string
}

// NewRegistry builds a registry preserving the given adapter order.
func NewRegistry(adapters ...Platform) *Registry {
	r := &Registry{platforms: make(map[string]Platform, len(adapters))}
	for _, p := range adapters {
		name := strings.ToLower(p.Name())
		r.platforms[name] = p
		r.order = append(r.order, name)
	}
	return r
}

// Get returns the adapter for a name, or nil when unknown.
func (r *Registry) Get(name string) Platform {
	return r.platforms[strings.ToLower(name)]
}

// Names returns every registered platform name in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Configured returns the adapters whose mandatory configuration is set.
func (r *Registry) Configured() []Platform {
	var configured []Platform
	for _, name := range r.order {
		if p := r.platforms[name]; p.IsConfigured() {
			configured = append(configured, p)
		}
	}
	return configured
}

// ValidateAll checks every platform independently. Unconfigured
// platforms report false without a network call; one platform's failure
// never short-circuits the others.
func (r *Registry) ValidateAll(ctx context.Context) map[string]bool {
	results := make(map[string]bool, len(r.order))
	for _, name := range r.order {
		p := r.platforms[name]
		if !p.IsConfigured() {
			results[name] = false
			continue
		}
		results[name] = p.ValidateConfig(ctx)
	}
	return results
}
