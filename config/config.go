// ABOUTME: Config is a variable scope plus a root pipeline; InitialConfig adds the
// ABOUTME: submitter and logging configuration the top-level entry point consumes.
package config

import (
	"encoding/json"
	"fmt"
)

// Scope maps variable names to primitives. Passed by value down the stage
// tree; nothing in this package ever mutates a Scope in place — a handler
// that needs to change a variable produces a new Scope and a successor
// Config (spec.md §3).
type Scope map[string]Primitive

// Clone returns a shallow copy of s (Primitives are themselves immutable
// values, so a shallow copy is a full copy).
func (s Scope) Clone() Scope {
	if s == nil {
		return nil
	}
	out := make(Scope, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Config is a variable scope plus the root pipeline to run against it.
type Config struct {
	Scope Scope
	Root  Pipeline
}

// InitialConfig is the document a caller submits to the entry point: a
// Config plus how to run it (submitter) and how to log it (logging).
type InitialConfig struct {
	Config    Config
	Submitter SubmitterConfig
	Logging   LoggingConfig
}

// SubmitterConfig selects and configures the work-queue submitter.
// "local" is the only submitter type this implementation provides
// (distributed execution is a non-goal per spec.md §1).
type SubmitterConfig struct {
	Type               string
	Name               string
	NumConcurrentJobs  int
}

const defaultSubmitterName = "local submitter"

// LoggingConfig selects the ambient logging sink (SPEC_FULL.md §4.9).
type LoggingConfig struct {
	Type      string // "off" | "file" | "console" | "remote"
	Level     int
	Directory string // only meaningful for Type == "file"
}

// --- JSON decoding ---

type scopeValueJSON = json.RawMessage

type initialConfigJSON struct {
	AnalysisConfig struct {
		Variables map[string]scopeValueJSON `json:"variables"`
		Config    json.RawMessage           `json:"config"`
	} `json:"analysis_config"`
	SubmitterConfig json.RawMessage `json:"submitter_config"`
	LoggingConfig   json.RawMessage `json:"logging_config"`
}

// UnmarshalJSON decodes the full InitialConfig document shape from spec.md §6.
func (ic *InitialConfig) UnmarshalJSON(data []byte) error {
	var raw initialConfigJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode initial config: %w", err)
	}

	scope := make(Scope, len(raw.AnalysisConfig.Variables))
	for k, v := range raw.AnalysisConfig.Variables {
		p, err := decodePrimitive(v)
		if err != nil {
			return fmt.Errorf("decode variable %q: %w", k, err)
		}
		scope[k] = p
	}

	if len(raw.AnalysisConfig.Config) == 0 {
		return &ValidationError{Field: "analysis_config.config", Message: "required"}
	}
	root, err := decodePipeline(raw.AnalysisConfig.Config)
	if err != nil {
		return fmt.Errorf("decode root pipeline: %w", err)
	}

	submitter, err := decodeSubmitterConfig(raw.SubmitterConfig)
	if err != nil {
		return err
	}

	logging, err := decodeLoggingConfig(raw.LoggingConfig)
	if err != nil {
		return err
	}

	ic.Config = Config{Scope: scope, Root: root}
	ic.Submitter = submitter
	ic.Logging = logging
	return nil
}

type submitterConfigJSON struct {
	Type              string `json:"type"`
	Name              string `json:"name"`
	NumConcurrentJobs *int   `json:"num_concurrent_jobs"`
}

func decodeSubmitterConfig(raw json.RawMessage) (SubmitterConfig, error) {
	if len(raw) == 0 {
		return SubmitterConfig{}, &ValidationError{Field: "submitter_config", Message: "required"}
	}
	var s submitterConfigJSON
	if err := json.Unmarshal(raw, &s); err != nil {
		return SubmitterConfig{}, fmt.Errorf("decode submitter_config: %w", err)
	}
	if s.Type != "local" {
		return SubmitterConfig{}, &ValidationError{Field: "submitter_config.type", Message: fmt.Sprintf("unsupported submitter type %q (only \"local\" is implemented)", s.Type)}
	}
	name := s.Name
	if name == "" {
		name = defaultSubmitterName
	}
	n := 1
	if s.NumConcurrentJobs != nil {
		n = *s.NumConcurrentJobs
	}
	if n < 1 {
		return SubmitterConfig{}, &ValidationError{Field: "submitter_config.num_concurrent_jobs", Message: "must be >= 1"}
	}
	return SubmitterConfig{Type: s.Type, Name: name, NumConcurrentJobs: n}, nil
}

type loggingConfigJSON struct {
	Type      string `json:"type"`
	Level     int    `json:"level"`
	Directory string `json:"directory"`
}

func decodeLoggingConfig(raw json.RawMessage) (LoggingConfig, error) {
	if len(raw) == 0 {
		return LoggingConfig{Type: "console"}, nil
	}
	var l loggingConfigJSON
	if err := json.Unmarshal(raw, &l); err != nil {
		return LoggingConfig{}, fmt.Errorf("decode logging_config: %w", err)
	}
	t := l.Type
	if t == "" {
		t = "console"
	}
	switch t {
	case "off", "file", "console", "remote":
	default:
		return LoggingConfig{}, &ValidationError{Field: "logging_config.type", Message: fmt.Sprintf("unknown logging type %q", t)}
	}
	if t == "file" && l.Directory == "" {
		return LoggingConfig{}, &ValidationError{Field: "logging_config.directory", Message: "required when type is \"file\""}
	}
	return LoggingConfig{Type: t, Level: l.Level, Directory: l.Directory}, nil
}

// MarshalJSON encodes the InitialConfig back to the spec.md §6 document shape.
func (ic InitialConfig) MarshalJSON() ([]byte, error) {
	vars := make(map[string]json.RawMessage, len(ic.Config.Scope))
	for k, v := range ic.Config.Scope {
		raw, err := encodePrimitive(v)
		if err != nil {
			return nil, fmt.Errorf("encode variable %q: %w", k, err)
		}
		vars[k] = raw
	}
	rootRaw, err := ic.Config.Root.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode root pipeline: %w", err)
	}

	return json.Marshal(struct {
		AnalysisConfig struct {
			Variables map[string]json.RawMessage `json:"variables"`
			Config    json.RawMessage             `json:"config"`
		} `json:"analysis_config"`
		SubmitterConfig struct {
			Type              string `json:"type"`
			Name              string `json:"name"`
			NumConcurrentJobs int    `json:"num_concurrent_jobs"`
		} `json:"submitter_config"`
		LoggingConfig struct {
			Type      string `json:"type"`
			Level     int    `json:"level"`
			Directory string `json:"directory,omitempty"`
		} `json:"logging_config"`
	}{
		AnalysisConfig: struct {
			Variables map[string]json.RawMessage `json:"variables"`
			Config    json.RawMessage             `json:"config"`
		}{Variables: vars, Config: rootRaw},
		SubmitterConfig: struct {
			Type              string `json:"type"`
			Name              string `json:"name"`
			NumConcurrentJobs int    `json:"num_concurrent_jobs"`
		}{Type: ic.Submitter.Type, Name: ic.Submitter.Name, NumConcurrentJobs: ic.Submitter.NumConcurrentJobs},
		LoggingConfig: struct {
			Type      string `json:"type"`
			Level     int    `json:"level"`
			Directory string `json:"directory,omitempty"`
		}{Type: ic.Logging.Type, Level: ic.Logging.Level, Directory: ic.Logging.Directory},
	})
}
