package config

import "strings"

const redactedMask = "***"

// Redact returns a copy of cfg safe to print or log. Real API keys keep at
// most their last four characters; placeholders are shown as is so operators
// can see that a secret was never supplied.
func Redact(cfg Config) Config {
	cfg.OpenAI.APIKey = MaskCredential(cfg.OpenAI.APIKey)
	cfg.Claude.APIKey = MaskCredential(cfg.Claude.APIKey)
	return cfg
}

// MaskCredential masks one API key the way Redact does.
func MaskCredential(key string) string {
	if IsPlaceholderCredential(key) {
		return key
	}
	key = strings.TrimSpace(key)
	if len(key) <= 8 {
		return redactedMask
	}
	return redactedMask + key[len(key)-4:]
}
