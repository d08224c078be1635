package analysis

import (
	"fmt"
	"sync"
)

// Registry manages the registered analysis capabilities. The
// orchestrator queries it before invocation; an absent capability is a
// configuration state, not an error.
type Registry struct {
	mu           sync.RWMutex
	capabilities map[string]Capability
	order        []string // Maintains registration order
}

// NewRegistry creates an empty capability registry
func NewRegistry() *Registry {
	return &Registry{
		capabilities: make(map[string]Capability),
		order:        make([]string, 0),
	}
}

// DefaultRegistry returns a registry with every built-in capability
// registered
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, c := range []Capability{
		NewForecaster(),
		NewClusterer(),
		NewRegressor(),
		NewCorrelator(),
		NewHypothesisTester(),
	} {
		// Built-in capabilities have unique non-empty names
		_ = r.Register(c)
	}
	return r
}

// Register adds a capability to the registry
func (r *Registry) Register(c Capability) error {
	if c == nil {
		return fmt.Errorf("cannot register nil capability")
	}

	name := c.Name()
	if name == "" {
		return fmt.Errorf("capability name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.capabilities[name]; exists {
		return fmt.Errorf("capability %s already registered", name)
	}

	r.capabilities[name] = c
	r.order = append(r.order, name)
	return nil
}

// Unregister removes a capability from the registry
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.capabilities[name]; !exists {
		return fmt.Errorf("capability %s not found", name)
	}

	delete(r.capabilities, name)

	newOrder := make([]string, 0, len(r.order)-1)
	for _, n := range r.order {
		if n != name {
			newOrder = append(newOrder, n)
		}
	}
	r.order = newOrder

	return nil
}

// Get retrieves a capability by name
func (r *Registry) Get(name string) (Capability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.capabilities[name]
	if !exists {
		return nil, fmt.Errorf("capability %s not found", name)
	}

	return c, nil
}

// Has checks if a capability is registered
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.capabilities[name]
	return exists
}

// List returns all registered capabilities in registration order
func (r *Registry) List() []Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Capability, 0, len(r.order))
	for _, name := range r.order {
		if c, exists := r.capabilities[name]; exists {
			out = append(out, c)
		}
	}

	return out
}

// ListNames returns all registered capability names in registration order
func (r *Registry) ListNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Count returns the number of registered capabilities
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.capabilities)
}
