package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"mailflow/editor"
)

// parseSets turns "key=value" flags into a patch for step. Values of
// numeric and boolean fields are read as YAML scalars; every other field
// takes the raw text. "headers.<Name>=value" sets one webhook header.
func parseSets(step editor.Step, sets []string) (editor.Patch, error) {
	raw, err := json.Marshal(step)
	if err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	patch := editor.Patch{}
	var headers map[string]interface{}
	for _, set := range sets {
		key, value, ok := strings.Cut(set, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q, want key=value", set)
		}

		if name, isHeader := strings.CutPrefix(key, "headers."); isHeader {
			if headers == nil {
				headers = map[string]interface{}{}
				if existing, ok := fields["headers"].(map[string]interface{}); ok {
					for k, v := range existing {
						headers[k] = v
					}
				}
			}
			if value == "" {
				delete(headers, name)
			} else {
				headers[name] = value
			}
			continue
		}

		switch fields[key].(type) {
		case float64:
			n, err := scalar[float64](value)
			if err != nil {
				return nil, fmt.Errorf("%s must be a number", key)
			}
			patch[key] = n
		case bool:
			b, err := scalar[bool](value)
			if err != nil {
				return nil, fmt.Errorf("%s must be true or false", key)
			}
			patch[key] = b
		default:
			patch[key] = value
		}
	}
	if headers != nil {
		patch["headers"] = headers
	}
	return patch, nil
}

func scalar[T any](value string) (T, error) {
	var out T
	err := yaml.Unmarshal([]byte(value), &out)
	return out, err
}
