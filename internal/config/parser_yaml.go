package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

func parseYAML(content string, base Config) (Config, []Warning, error) {
	decoder := yaml.NewDecoder(strings.NewReader(content))
	decoder.KnownFields(true)

	var payload fileConfig
	if err := decoder.Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return base, nil, nil
		}
		return Config{}, nil, wrapYAMLDecodeError(err)
	}

	var extra yaml.Node
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			return Config{}, nil, fmt.Errorf("multiple YAML documents are not allowed")
		}
		return Config{}, nil, wrapYAMLDecodeError(err)
	}

	cfg := base
	payload.applyTo(&cfg)
	return cfg, nil, nil
}

// wrapYAMLDecodeError classifies unknown-key failures; yaml.v3 already
// prefixes messages with their line numbers.
func wrapYAMLDecodeError(err error) error {
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		for _, msg := range typeErr.Errors {
			if strings.Contains(msg, "not found in type") {
				return fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(typeErr.Errors, "; "))
			}
		}
	}
	return err
}
