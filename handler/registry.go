package handler

import (
	"errors"
	"sort"
	"sync"
)

// Resolver maps an entrypoint name to the function serving it.
type Resolver interface {
	Resolve(entrypoint string) (Function, error)
}

// Registry is an in-memory Resolver populated at startup.
type Registry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

var _ Resolver = (*Registry)(nil)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{functions: make(map[string]Function)}
}

// Register adds fn under entrypoint. Names are case-sensitive.
func (r *Registry) Register(entrypoint string, fn Function) error {
	if entrypoint == "" {
		return errors.New("entrypoint name must not be empty")
	}
	if fn == nil {
		return errors.New("function must not be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.functions[entrypoint]; exists {
		return &EntrypointAlreadyRegisteredError{Entrypoint: entrypoint}
	}
	r.functions[entrypoint] = fn
	return nil
}

// RegisterFunc is Register for plain functions.
func (r *Registry) RegisterFunc(entrypoint string, fn FunctionFunc) error {
	if fn == nil {
		return r.Register(entrypoint, nil)
	}
	return r.Register(entrypoint, fn)
}

// MustRegister is like Register but panics on error. Meant for package
// initialization.
func (r *Registry) MustRegister(entrypoint string, fn Function) *Registry {
	if err := r.Register(entrypoint, fn); err != nil {
		panic(err)
	}
	return r
}

// Resolve returns the function registered under entrypoint.
func (r *Registry) Resolve(entrypoint string) (Function, error) {
	r.mu.RLock()
	fn, ok := r.functions[entrypoint]
	r.mu.RUnlock()

	if !ok {
		return nil, &MissingEntrypointError{Entrypoint: entrypoint, Available: r.Entrypoints()}
	}
	return fn, nil
}

// Entrypoints returns the registered names, sorted.
func (r *Registry) Entrypoints() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
