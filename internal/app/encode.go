package app

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/rbright/koe/internal/cli"
	"github.com/rbright/koe/internal/config"
)

func encode(w io.Writer, format cli.Format, v any) error {
	switch format {
	case cli.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		payload, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", payload)
		return err
	}
}

func decodePayload(payload json.RawMessage) (any, error) {
	var node any
	if err := json.Unmarshal(payload, &node); err != nil {
		return nil, fmt.Errorf("decode resolved config: %w", err)
	}
	return node, nil
}

// redactTree masks every API_KEY string in a generic config tree.
func redactTree(node any) any {
	switch v := node.(type) {
	case map[string]any:
		for key, child := range v {
			if s, ok := child.(string); ok && key == "API_KEY" {
				v[key] = config.MaskCredential(s)
				continue
			}
			v[key] = redactTree(child)
		}
		return v
	case []any:
		for i := range v {
			v[i] = redactTree(v[i])
		}
		return v
	default:
		return node
	}
}
