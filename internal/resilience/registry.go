package resilience

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownBreaker is returned by administrative operations that name
// a breaker the registry has never created.
var ErrUnknownBreaker = errors.New("resilience: unknown breaker")

// Registry hands out one Breaker per dependency name. Breakers are
// created lazily on first lookup and owned by the registry for its
// lifetime; callers hold no independent lifetime claim. Construct one
// at the application's composition root and inject it — there is no
// package-level instance.
type Registry struct {
	opts []Option

	mu       sync.RWMutex
	breakers map[string]*Breaker
}

// NewRegistry creates an empty registry. The options are applied to
// every breaker it creates.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		opts:     opts,
		breakers: make(map[string]*Breaker),
	}
}

// GetOrCreate returns the breaker for name, creating it with policy on
// first lookup. For an existing breaker the policy argument is
// ignored: policy is fixed at first creation.
func (r *Registry) GetOrCreate(name string, policy Policy) (*Breaker, error) {
	r.mu.RLock()
	b, ok := r.breakers[name]
	r.mu.RUnlock()
	if ok {
		return b, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.breakers[name]; ok {
		return b, nil
	}
	b, err := NewBreaker(name, policy, r.opts...)
	if err != nil {
		return nil, err
	}
	r.breakers[name] = b
	return b, nil
}

// Get returns the breaker for name if one exists.
func (r *Registry) Get(name string) (*Breaker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.breakers[name]
	return b, ok
}

// Snapshot returns current metrics for every breaker, keyed by
// dependency name.
func (r *Registry) Snapshot() map[string]Metrics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := make(map[string]Metrics, len(r.breakers))
	for name, b := range r.breakers {
		snap[name] = b.Metrics()
	}
	return snap
}

// Reset forcibly returns the named breaker to closed with all counters
// zeroed. Administrative operation for operational recovery, not part
// of the normal call flow.
func (r *Registry) Reset(name string) error {
	r.mu.RLock()
	b, ok := r.breakers[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBreaker, name)
	}
	b.reset()
	return nil
}
