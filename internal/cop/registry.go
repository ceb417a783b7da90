package cop

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the cops enabled for a run, in registration order
type Registry struct {
	mu       sync.RWMutex
	visitors []ClassVisitor
	severity map[string]Severity
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		severity: make(map[string]Severity),
	}
}

// Register adds a cop. Names must be unique.
func (r *Registry) Register(visitor ClassVisitor, severity Severity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := visitor.Name()
	if _, exists := r.severity[name]; exists {
		return fmt.Errorf("cop registry: %s is already registered", name)
	}

	r.visitors = append(r.visitors, visitor)
	r.severity[name] = severity
	return nil
}

// Names returns the sorted names of all registered cops
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.visitors))
	for _, v := range r.visitors {
		names = append(names, v.Name())
	}
	sort.Strings(names)
	return names
}

func (r *Registry) snapshot() ([]ClassVisitor, map[string]Severity) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	visitors := make([]ClassVisitor, len(r.visitors))
	copy(visitors, r.visitors)
	severity := make(map[string]Severity, len(r.severity))
	for k, v := range r.severity {
		severity[k] = v
	}
	return visitors, severity
}
