// Package publish makes one configuration value reachable from every active
// consumer context: a global scope, a module system, or both.
package publish

import (
	"errors"
	"fmt"

	"github.com/rbright/koe/internal/config"
)

const (
	// GlobalName is the well-known global binding, as in window.CONFIG.
	GlobalName = "CONFIG"
	// ModuleName is the module consumers resolve to obtain the configuration.
	ModuleName = "config"
)

// Scope is a shared global namespace readable without an explicit import.
type Scope interface {
	Bind(name string, cfg config.Config) error
}

// ModuleSystem makes a value the export of a named module.
type ModuleSystem interface {
	Export(module string, cfg config.Config) error
}

// Host describes the execution context. Either capability may be absent.
type Host struct {
	Scope   Scope
	Modules ModuleSystem
}

// Capabilities is the result of probing a Host.
type Capabilities struct {
	GlobalScope  bool
	ModuleSystem bool
}

// Result lists the bindings made by one Publish call.
type Result struct {
	Capabilities Capabilities
	Bindings     []string
}

// Probe detects which publication sinks the host offers. It is the only
// environment-specific code in the package.
func Probe(h Host) Capabilities {
	return Capabilities{
		GlobalScope:  h.Scope != nil,
		ModuleSystem: h.Modules != nil,
	}
}

// Publish binds cfg into every capability h offers. Publishing again
// overwrites the previous bindings.
func Publish(h Host, cfg config.Config) (Result, error) {
	caps := Probe(h)
	result := Result{Capabilities: caps}

	var errs []error
	if caps.GlobalScope {
		if err := h.Scope.Bind(GlobalName, cfg); err != nil {
			errs = append(errs, fmt.Errorf("bind global %s: %w", GlobalName, err))
		} else {
			result.Bindings = append(result.Bindings, "global:"+GlobalName)
		}
	}
	if caps.ModuleSystem {
		if err := h.Modules.Export(ModuleName, cfg); err != nil {
			errs = append(errs, fmt.Errorf("export module %s: %w", ModuleName, err))
		} else {
			result.Bindings = append(result.Bindings, "module:"+ModuleName)
		}
	}
	return result, errors.Join(errs...)
}
