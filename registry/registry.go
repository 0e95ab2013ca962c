// Package registry resolves "provider:model" strings to a configured
// providerspec.Spec, caches the resulting client handles, and composes the
// middleware chain requests pass through before reaching the executor.
// Grounded in the teacher's Builder (agent/builder.go) as the place
// per-call configuration accumulates, generalized from one provider per
// Builder into a multi-provider lookup table.
package registry

import (
	"strings"
	"time"

	"github.com/taipm/go-llm-gateway/providerspec"
)

// DefaultCacheSize is the default number of resolved (provider_id, model_id,
// capability) outcomes a Registry's ClientCache holds before evicting the
// least-recently-used entry (spec §4.4: max_cache_entries=100).
const DefaultCacheSize = 100

// DefaultCacheTTL is the default lifetime of a cached resolution.
const DefaultCacheTTL = 10 * time.Minute

// Registry holds every configured provider Spec, keyed by provider id.
type Registry struct {
	specs     map[string]*providerspec.Spec
	separator string
	cache     *ClientCache
}

func New() *Registry {
	return &Registry{
		specs:     map[string]*providerspec.Spec{},
		separator: ":",
		cache:     NewClientCache(DefaultCacheSize, DefaultCacheTTL),
	}
}

// WithCache replaces the registry's client cache, e.g. to tune size/TTL or
// disable caching by passing a cache with capacity 1 and a near-zero TTL.
func (r *Registry) WithCache(cache *ClientCache) *Registry {
	r.cache = cache
	return r
}

// WithSeparator overrides the provider:model separator (default ":").
func (r *Registry) WithSeparator(sep string) *Registry {
	r.separator = sep
	return r
}

// Register adds or replaces a provider Spec.
func (r *Registry) Register(spec *providerspec.Spec) {
	r.specs[spec.ID] = spec
}

// Resolved is the outcome of parsing and looking up a "provider:model" id.
type Resolved struct {
	Spec  *providerspec.Spec
	Model string
}

// Resolve splits modelID on the registry's separator at its first
// occurrence only (so model ids that themselves contain ':' — e.g. Vertex
// publisher paths — are not mis-split), then looks up the provider. It is
// equivalent to ResolveCapability with an empty capability.
func (r *Registry) Resolve(modelID string) (Resolved, bool) {
	return r.ResolveCapability(modelID, "")
}

// ResolveCapability resolves modelID the same way Resolve does, but checks
// and populates the registry's ClientCache first, keyed by
// (provider_id, model_id, capability) as spec §4.4 requires. Callers that
// invoke a specific capability (chat, embedding, image, ...) should pass it
// so repeated resolutions for that capability hit the cache; pass "" when no
// single capability applies.
func (r *Registry) ResolveCapability(modelID string, capability providerspec.Capability) (Resolved, bool) {
	key := modelID + "|" + string(capability)
	if r.cache != nil {
		if cached, ok := r.cache.Get(key); ok {
			return cached.(Resolved), true
		}
	}

	resolved, ok := r.parse(modelID)
	if !ok {
		return Resolved{}, false
	}

	if r.cache != nil {
		r.cache.Set(key, resolved)
	}
	return resolved, true
}

// parse does the actual "provider:model" split and provider lookup,
// uncached.
func (r *Registry) parse(modelID string) (Resolved, bool) {
	idx := strings.Index(modelID, r.separator)
	if idx < 0 {
		return Resolved{}, false
	}
	providerID := modelID[:idx]
	model := modelID[idx+len(r.separator):]

	spec, ok := r.specs[providerID]
	if !ok {
		return Resolved{}, false
	}
	return Resolved{Spec: spec, Model: model}, true
}

// Get returns a registered Spec by id directly, without model parsing.
func (r *Registry) Get(providerID string) (*providerspec.Spec, bool) {
	spec, ok := r.specs[providerID]
	return spec, ok
}
