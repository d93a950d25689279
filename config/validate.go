// ABOUTME: Validation errors and the extra structural checks construction-time
// ABOUTME: decoding applies beyond what the JSON shape alone enforces.
package config

import "fmt"

// ValidationError reports a configuration document that failed
// construction-time validation: an unresolvable handler name, a missing
// required field, or an ill-typed value (spec.md §7).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// validatePipelineShape rejects structurally invalid pipelines that the
// JSON shape alone doesn't catch: a negative curr_stage (other than the
// transient -1 a mutable handler may set, which success() always advances
// past before it is ever dequeued — see pipeline.Run) and a curr_stage
// that exceeds the stage count by more than the single "pipeline just
// completed" step.
func validatePipelineShape(p Pipeline) error {
	if p.CurrStage < -1 {
		return &ValidationError{Field: "curr_stage", Message: fmt.Sprintf("must be >= -1, got %d", p.CurrStage)}
	}
	if p.CurrStage > len(p.Stages) {
		return &ValidationError{
			Field:   "curr_stage",
			Message: fmt.Sprintf("curr_stage %d exceeds stage count %d", p.CurrStage, len(p.Stages)),
		}
	}
	if p.MaxAllowedRestarts < -1 {
		return &ValidationError{Field: "max_allowed_restarts", Message: "must be >= -1"}
	}
	return nil
}

// HandlerResolver is the narrow interface config needs from the handler
// registry to validate handler names at construction time, without
// importing the registry package (which has no reason to know about
// config types either).
type HandlerResolver interface {
	Resolve(name string) error
}

// ValidateHandlers walks every job stage in p (recursively through nested
// pipelines) and confirms its Function resolves via resolver. The first
// unresolvable name is returned as a *ValidationError; spec.md §3 requires
// this to happen at validation time, never deferred to execution.
func ValidateHandlers(p Pipeline, resolver HandlerResolver) error {
	for _, stage := range p.Stages {
		switch s := stage.(type) {
		case Job:
			if err := resolver.Resolve(s.Function); err != nil {
				return &ValidationError{Field: "function", Message: fmt.Sprintf("job %q: %v", s.Name, err)}
			}
		case Pipeline:
			if err := ValidateHandlers(s, resolver); err != nil {
				return err
			}
		}
	}
	return nil
}
