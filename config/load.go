// ABOUTME: LoadDocument accepts a configuration document as JSON or YAML and
// ABOUTME: routes both through the same validating JSON decode path (SPEC_FULL.md §4.10).
package config

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// LoadDocument reads an InitialConfig from r. format must be "json" or
// "yaml"; any other value is a configuration error. YAML documents are
// decoded into a generic tree and re-encoded as JSON so both formats share
// exactly one validating constructor — there is no second set of default-
// population/discriminator rules to keep in sync.
func LoadDocument(r io.Reader, format string) (*InitialConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config document: %w", err)
	}

	switch format {
	case "json":
		// fall through to shared decode below
	case "yaml":
		var tree any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("parse yaml config document: %w", err)
		}
		data, err = json.Marshal(tree)
		if err != nil {
			return nil, fmt.Errorf("re-encode yaml config document as json: %w", err)
		}
	default:
		return nil, &ValidationError{Field: "format", Message: fmt.Sprintf("unsupported document format %q (want \"json\" or \"yaml\")", format)}
	}

	var ic InitialConfig
	if err := json.Unmarshal(data, &ic); err != nil {
		return nil, err
	}
	return &ic, nil
}
