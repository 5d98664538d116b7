package config

import "strings"

// Parse overlays configuration content onto base.
//
// JSONC is selected when the first non-whitespace character is `{`; anything
// else is decoded as YAML. Empty content returns base unchanged.
func Parse(content string, base Config) (Config, []Warning, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return base, nil, nil
	}

	if strings.HasPrefix(trimmed, "{") {
		return parseJSONC(content, base)
	}
	return parseYAML(content, base)
}
