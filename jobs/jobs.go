// ABOUTME: Package jobs provides a minimal built-in handler library (nop,
// ABOUTME: echo, fail, set_variable, change_variable) so the engine has
// ABOUTME: something real to run end to end; the full handler library is a
// ABOUTME: non-goal this spec treats as an external collaborator.
package jobs

import (
	"github.com/2389-research/conveyor/config"
	"github.com/2389-research/conveyor/registry"
	"github.com/2389-research/conveyor/status"
)

// Register adds every built-in handler to reg.
func Register(reg *registry.Registry) {
	reg.Register(Nop())
	reg.Register(Echo())
	reg.Register(Fail())
	reg.Register(SetVariable())
	reg.Register(ChangeVariable())
}

// Nop does nothing and always succeeds. Grounded 1:1 on
// original_source/antz/jobs/nop.py.
func Nop() registry.Handler {
	return registry.Simple("jobs.nop", func(registry.Parameters, registry.Logger) registry.StatusCode {
		return int(status.SUCCESS)
	})
}

// Echo logs its "message" parameter and succeeds.
func Echo() registry.Handler {
	return registry.Simple("jobs.echo", func(params registry.Parameters, logger registry.Logger) registry.StatusCode {
		logger.Printf("component=jobs.echo action=message detail=%v", params["message"])
		return int(status.SUCCESS)
	})
}

// Fail always errors; useful for exercising restart policies.
func Fail() registry.Handler {
	return registry.Simple("jobs.fail", func(registry.Parameters, registry.Logger) registry.StatusCode {
		return int(status.ERROR)
	})
}

// SetVariable returns a copy of the current scope with one entry set,
// leaving the scope it was given untouched: the mutable-flavor counterpart to ChangeVariable's submit-a-new-pipeline
// approach. Parameters: "name" (string), "value" (any primitive).
func SetVariable() registry.Handler {
	return registry.MutableHandler("jobs.set_variable", func(params registry.Parameters, scope registry.Scope, logger registry.Logger) (registry.StatusCode, registry.Scope) {
		name, _ := params["name"].(string)
		if name == "" {
			return int(status.ERROR), scope
		}
		next := make(registry.Scope, len(scope)+1)
		for k, v := range scope {
			next[k] = v
		}
		next[name] = params["value"]
		return int(status.SUCCESS), next
	})
}

// ChangeVariable submits a fresh pipeline from pipeline_config_template
// with left_hand_side set to right_hand_side in its variables, leaving the
// current pipeline's own scope untouched — variables cannot be changed in
// a parent context, only handed to a freshly submitted one. Grounded 1:1
// on original_source/antz/jobs/change_variable.py, translated from its
// submit_fn(Config.model_validate({...})) call to a typed
// config.Config{Scope, Root} literal.
func ChangeVariable() registry.Handler {
	return registry.SubmitterHandler("jobs.change_variable", func(params registry.Parameters, submit registry.SubmitFunc, scope registry.Scope, pipeline registry.PipelineNode, logger registry.Logger) registry.StatusCode {
		lhs, ok := params["left_hand_side"].(string)
		if !ok || lhs == "" {
			return int(status.ERROR)
		}
		template, ok := params["pipeline_config_template"].(config.Pipeline)
		if !ok {
			return int(status.ERROR)
		}

		next := make(config.Scope, len(scope)+1)
		for k, v := range scope {
			next[k] = v
		}
		next[lhs] = params["right_hand_side"]

		if err := submit(config.Config{Scope: next, Root: template}); err != nil {
			logger.Printf("component=jobs.change_variable action=submit_error detail=%v", err)
			return int(status.ERROR)
		}
		return int(status.SUCCESS)
	})
}
