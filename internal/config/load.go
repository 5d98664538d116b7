package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Options selects the inputs to Load.
type Options struct {
	// ConfigPath overrides config file resolution.
	ConfigPath string
	// EnvFile is a dotenv file holding secrets. When empty, a .env file next
	// to the config file is used if present.
	EnvFile string
	// Lookup replaces the process environment; nil uses os.LookupEnv.
	Lookup LookupFunc
}

// Loaded captures the resolved config path, layered values, and non-fatal warnings.
type Loaded struct {
	Path     string
	Exists   bool
	Config   Config
	Warnings []Warning
	// Sources lists the applied layers, lowest precedence first.
	Sources []string
}

// Load layers defaults, the config file, dotenv secrets, and environment
// overrides. It does not validate; see Validate.
func Load(opts Options) (Loaded, error) {
	resolvedPath, err := ResolvePath(opts.ConfigPath)
	if err != nil {
		return Loaded{}, err
	}

	loaded := Loaded{Path: resolvedPath, Config: Default(), Sources: []string{"defaults"}}

	content, err := os.ReadFile(resolvedPath)
	switch {
	case err == nil:
		cfg, warnings, parseErr := Parse(string(content), loaded.Config)
		if parseErr != nil {
			return Loaded{}, fmt.Errorf("parse config %q: %w", resolvedPath, parseErr)
		}
		loaded.Config = cfg
		loaded.Exists = true
		loaded.Warnings = append(loaded.Warnings, warnings...)
		loaded.Sources = append(loaded.Sources, "file:"+resolvedPath)
	case errors.Is(err, os.ErrNotExist):
		loaded.Warnings = append(loaded.Warnings, Warning{
			Message: fmt.Sprintf("config file %q not found; using defaults", resolvedPath),
		})
	default:
		return Loaded{}, fmt.Errorf("read config %q: %w", resolvedPath, err)
	}

	dotenv, dotenvPath, err := readEnvFile(opts.EnvFile, resolvedPath)
	if err != nil {
		return Loaded{}, err
	}
	if dotenvPath != "" {
		loaded.Sources = append(loaded.Sources, "dotenv:"+dotenvPath)
	}

	lookup := opts.Lookup
	if lookup == nil {
		lookup = processLookup
	}
	applied, err := ApplyEnv(&loaded.Config, ChainLookup(lookup, MapLookup(dotenv)))
	if err != nil {
		return Loaded{}, fmt.Errorf("apply environment: %w", err)
	}
	for _, name := range applied {
		loaded.Sources = append(loaded.Sources, "env:"+name)
	}

	return loaded, nil
}

// readEnvFile loads an explicit dotenv file, or an optional .env next to the
// config file. It returns the path actually read.
func readEnvFile(explicit, configPath string) (map[string]string, string, error) {
	if strings.TrimSpace(explicit) != "" {
		values, err := ReadDotenv(explicit)
		if err != nil {
			return nil, "", err
		}
		return values, explicit, nil
	}

	implicit := filepath.Join(filepath.Dir(configPath), ".env")
	if _, err := os.Stat(implicit); err != nil {
		return nil, "", nil
	}
	values, err := ReadDotenv(implicit)
	if err != nil {
		return nil, "", err
	}
	return values, implicit, nil
}
