package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry maps driver names to openers.
type Registry struct {
	mu      sync.RWMutex
	openers map[string]Opener
}

var defaultRegistry = NewRegistry()

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		openers: make(map[string]Opener),
	}
}

// Default returns the registry backends register into from init.
func Default() *Registry { return defaultRegistry }

// Register adds an opener under name. Duplicate names return an error.
func (r *Registry) Register(name string, opener Opener) error {
	if opener == nil {
		return fmt.Errorf("store: opener is required")
	}
	if name == "" {
		return fmt.Errorf("store: driver name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.openers[name]; exists {
		return fmt.Errorf("store: driver %q already registered", name)
	}
	r.openers[name] = opener
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(name string, opener Opener) {
	if err := r.Register(name, opener); err != nil {
		panic(err)
	}
}

// Get retrieves an opener by name.
func (r *Registry) Get(name string) (Opener, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opener, ok := r.openers[name]
	if !ok {
		return nil, fmt.Errorf("store: driver %q not found (registered: %v)", name, r.namesLocked())
	}
	return opener, nil
}

// List returns the sorted driver names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.openers))
	for name := range r.openers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a driver is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.openers[name]
	return ok
}

// Open builds a Store with the driver named in cfg.
func (r *Registry) Open(ctx context.Context, cfg Config) (Store, error) {
	opener, err := r.Get(cfg.Driver)
	if err != nil {
		return nil, err
	}
	s, err := opener(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", cfg.Driver, err)
	}
	return s, nil
}
