package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Validate checks every field and returns non-fatal warnings.
//
// A non-nil error is always *Error listing each issue in schema order.
func Validate(cfg Config) ([]Warning, error) {
	var (
		issues   []Issue
		warnings []Warning
	)
	add := func(field string, kind Kind, format string, args ...any) {
		issues = append(issues, Issue{Field: field, Kind: kind, Message: fmt.Sprintf(format, args...)})
	}

	if IsPlaceholderCredential(cfg.OpenAI.APIKey) {
		add("OPENAI.API_KEY", KindMissingCredential, "api key is empty or a placeholder")
	}
	if strings.TrimSpace(cfg.OpenAI.Model) == "" {
		add("OPENAI.MODEL", KindInvalidValue, "must not be empty")
	}
	if cfg.OpenAI.MaxTokens < 1 {
		add("OPENAI.MAX_TOKENS", KindOutOfRange, "must be >= 1, got %d", cfg.OpenAI.MaxTokens)
	}
	if !inRange(cfg.OpenAI.Temperature, 0, 2) {
		add("OPENAI.TEMPERATURE", KindOutOfRange, "must be within [0, 2], got %g", cfg.OpenAI.Temperature)
	}

	if ClaudeEnabled(cfg) {
		if strings.TrimSpace(cfg.Claude.Model) == "" {
			add("CLAUDE.MODEL", KindInvalidValue, "must not be empty")
		}
	} else {
		warnings = append(warnings, Warning{Message: "CLAUDE.API_KEY is empty or a placeholder; claude provider disabled"})
	}
	if cfg.Claude.MaxTokens < 1 {
		add("CLAUDE.MAX_TOKENS", KindOutOfRange, "must be >= 1, got %d", cfg.Claude.MaxTokens)
	}

	if err := checkLocale(cfg.Speech.Recognition.Language); err != nil {
		add("SPEECH.RECOGNITION.LANGUAGE", KindInvalidValue, "%v", err)
	}

	syn := cfg.Speech.Synthesis
	if err := checkLocale(syn.Language); err != nil {
		add("SPEECH.SYNTHESIS.LANGUAGE", KindInvalidValue, "%v", err)
	}
	if !inRange(syn.Rate, 0.1, 10) {
		add("SPEECH.SYNTHESIS.RATE", KindOutOfRange, "must be within [0.1, 10], got %g", syn.Rate)
	}
	if !inRange(syn.Pitch, 0, 2) {
		add("SPEECH.SYNTHESIS.PITCH", KindOutOfRange, "must be within [0, 2], got %g", syn.Pitch)
	}
	if !inRange(syn.Volume, 0, 1) {
		add("SPEECH.SYNTHESIS.VOLUME", KindOutOfRange, "must be within [0, 1], got %g", syn.Volume)
	}

	if cfg.User.MaxHistory < 0 {
		add("USER.MAX_HISTORY", KindOutOfRange, "must be >= 0, got %d", cfg.User.MaxHistory)
	}
	if cfg.User.SessionTimeout < 1 {
		add("USER.SESSION_TIMEOUT", KindOutOfRange, "must be >= 1 minute, got %d", cfg.User.SessionTimeout)
	}

	if !cfg.Debug.LogLevel.Valid() {
		add("DEBUG.LOG_LEVEL", KindInvalidValue, "must be one of: error, warn, info, debug; got %q", cfg.Debug.LogLevel)
	}

	if len(issues) > 0 {
		return warnings, &Error{Issues: issues}
	}
	return warnings, nil
}

// ClaudeEnabled reports whether the optional Claude provider has a real credential.
func ClaudeEnabled(cfg Config) bool {
	return !IsPlaceholderCredential(cfg.Claude.APIKey)
}

// IsPlaceholderCredential reports whether key is empty, a documented default,
// or follows the `your-...-here` placeholder convention.
func IsPlaceholderCredential(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	switch key {
	case "", PlaceholderOpenAIKey, PlaceholderClaudeKey:
		return true
	}
	return strings.HasPrefix(key, "your-") && strings.HasSuffix(key, "-here")
}

// inRange treats NaN as out of range.
func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

func checkLocale(tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return fmt.Errorf("locale must not be empty")
	}
	if _, err := language.Parse(tag); err != nil {
		return fmt.Errorf("%q is not a BCP-47 language tag", tag)
	}
	return nil
}
