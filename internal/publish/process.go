package publish

import (
	"sync"

	"github.com/rbright/koe/internal/config"
)

// GlobalScope is an in-memory namespace of configuration bindings.
type GlobalScope struct {
	mu       sync.RWMutex
	bindings map[string]config.Config
}

// NewGlobalScope returns an empty, isolated scope.
func NewGlobalScope() *GlobalScope {
	return &GlobalScope{bindings: make(map[string]config.Config)}
}

func (s *GlobalScope) Bind(name string, cfg config.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[name] = cfg
	return nil
}

// Lookup returns the value bound under name.
func (s *GlobalScope) Lookup(name string) (config.Config, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.bindings[name]
	return cfg, ok
}

// Registry is an in-memory module system.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]config.Config
}

// NewRegistry returns an empty, isolated registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]config.Config)}
}

func (r *Registry) Export(module string, cfg config.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[module] = cfg
	return nil
}

// Resolve returns the export of module.
func (r *Registry) Resolve(module string) (config.Config, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.modules[module]
	return cfg, ok
}

var (
	processScope    = NewGlobalScope()
	processRegistry = NewRegistry()
)

// Process returns the host backed by the process-wide scope and registry.
func Process() Host {
	return Host{Scope: processScope, Modules: processRegistry}
}

// Global reads the process-wide CONFIG binding.
func Global() (config.Config, bool) {
	return processScope.Lookup(GlobalName)
}

// Resolve reads a module export from the process-wide registry.
func Resolve(module string) (config.Config, bool) {
	return processRegistry.Resolve(module)
}

// ProcessRegistry exposes the process-wide registry to servers that answer
// resolve requests on its behalf.
func ProcessRegistry() *Registry {
	return processRegistry
}
