package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Section returns the sub-tree addressed by a dotted path such as
// "SPEECH.RECOGNITION" as generic JSON data. An empty path returns the whole
// tree. Path segments are matched case-insensitively.
func Section(cfg Config, path string) (any, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	var node any
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	path = strings.Trim(strings.TrimSpace(path), ".")
	if path == "" {
		return node, nil
	}

	walked := make([]string, 0, 3)
	for _, segment := range strings.Split(path, ".") {
		key := strings.ToUpper(strings.TrimSpace(segment))
		walked = append(walked, key)

		object, ok := node.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unknown config section %q", strings.Join(walked, "."))
		}
		next, ok := object[key]
		if !ok {
			return nil, fmt.Errorf("unknown config section %q", strings.Join(walked, "."))
		}
		node = next
	}
	return node, nil
}
