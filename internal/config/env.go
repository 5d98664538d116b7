package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "KOE_"

// LookupFunc resolves one environment variable.
type LookupFunc func(string) (string, bool)

type envBinding struct {
	name  string
	alias string
	// blank marks fields where an empty value is meaningful.
	blank bool
	apply func(*Config, string) error
}

var envBindings = []envBinding{
	{name: "OPENAI_API_KEY", alias: "OPENAI_API_KEY", apply: setString(func(c *Config) *string { return &c.OpenAI.APIKey })},
	{name: "OPENAI_MODEL", apply: setString(func(c *Config) *string { return &c.OpenAI.Model })},
	{name: "OPENAI_MAX_TOKENS", apply: setInt(func(c *Config) *int { return &c.OpenAI.MaxTokens })},
	{name: "OPENAI_TEMPERATURE", apply: setFloat(func(c *Config) *float64 { return &c.OpenAI.Temperature })},
	{name: "CLAUDE_API_KEY", alias: "ANTHROPIC_API_KEY", apply: setString(func(c *Config) *string { return &c.Claude.APIKey })},
	{name: "CLAUDE_MODEL", apply: setString(func(c *Config) *string { return &c.Claude.Model })},
	{name: "CLAUDE_MAX_TOKENS", apply: setInt(func(c *Config) *int { return &c.Claude.MaxTokens })},
	{name: "SPEECH_RECOGNITION_LANGUAGE", apply: setString(func(c *Config) *string { return &c.Speech.Recognition.Language })},
	{name: "SPEECH_RECOGNITION_CONTINUOUS", apply: setBool(func(c *Config) *bool { return &c.Speech.Recognition.Continuous })},
	{name: "SPEECH_RECOGNITION_INTERIM_RESULTS", apply: setBool(func(c *Config) *bool { return &c.Speech.Recognition.InterimResults })},
	{name: "SPEECH_SYNTHESIS_LANGUAGE", apply: setString(func(c *Config) *string { return &c.Speech.Synthesis.Language })},
	{name: "SPEECH_SYNTHESIS_VOICE_NAME", blank: true, apply: func(c *Config, v string) error {
		c.Speech.Synthesis.VoiceName = v
		return nil
	}},
	{name: "SPEECH_SYNTHESIS_RATE", apply: setFloat(func(c *Config) *float64 { return &c.Speech.Synthesis.Rate })},
	{name: "SPEECH_SYNTHESIS_PITCH", apply: setFloat(func(c *Config) *float64 { return &c.Speech.Synthesis.Pitch })},
	{name: "SPEECH_SYNTHESIS_VOLUME", apply: setFloat(func(c *Config) *float64 { return &c.Speech.Synthesis.Volume })},
	{name: "USER_MAX_HISTORY", apply: setInt(func(c *Config) *int { return &c.User.MaxHistory })},
	{name: "USER_SESSION_TIMEOUT", apply: setInt(func(c *Config) *int { return &c.User.SessionTimeout })},
	{name: "DEBUG_ENABLED", apply: setBool(func(c *Config) *bool { return &c.Debug.Enabled })},
	{name: "DEBUG_LOG_LEVEL", apply: func(c *Config, v string) error {
		c.Debug.LogLevel = normalizeLogLevel(v)
		return nil
	}},
}

// ApplyEnv overlays KOE_* variables (and the OPENAI_API_KEY / ANTHROPIC_API_KEY
// aliases) onto cfg. It returns the names of the variables it applied.
func ApplyEnv(cfg *Config, lookup LookupFunc) ([]string, error) {
	var applied []string
	for _, binding := range envBindings {
		name := EnvPrefix + binding.name
		value, ok := lookup(name)
		if !ok && binding.alias != "" {
			name = binding.alias
			value, ok = lookup(name)
		}
		if !ok {
			continue
		}
		if err := binding.apply(cfg, value); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		applied = append(applied, name)
	}
	return applied, nil
}

// ChainLookup consults each lookup in order and returns the first hit.
func ChainLookup(lookups ...LookupFunc) LookupFunc {
	return func(name string) (string, bool) {
		for _, lookup := range lookups {
			if lookup == nil {
				continue
			}
			if value, ok := lookup(name); ok {
				return value, true
			}
		}
		return "", false
	}
}

// MapLookup adapts a map to a LookupFunc.
func MapLookup(values map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		value, ok := values[name]
		return value, ok
	}
}

// ReadDotenv parses a dotenv file without touching the process environment.
func ReadDotenv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read env file %q: %w", path, err)
	}
	return values, nil
}

// processLookup is os.LookupEnv. Empty values count as unset so a blank
// variable never clobbers a lower layer, except for fields where empty is a
// real setting (VOICE_NAME selects the engine default voice).
func processLookup(name string) (string, bool) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return "", false
	}
	if strings.TrimSpace(value) == "" && !blankAllowed(name) {
		return "", false
	}
	return value, true
}

func blankAllowed(name string) bool {
	for _, binding := range envBindings {
		if binding.blank && EnvPrefix+binding.name == name {
			return true
		}
	}
	return false
}

func setString(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = strings.TrimSpace(v)
		return nil
	}
}

func setInt(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid integer %q", v)
		}
		*field(c) = n
		return nil
	}
}

func setFloat(field func(*Config) *float64) func(*Config, string) error {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", v)
		}
		*field(c) = f
		return nil
	}
}

func setBool(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid boolean %q", v)
		}
		*field(c) = b
		return nil
	}
}
