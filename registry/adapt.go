// ABOUTME: Adapter constructors narrowing a registered function's natural calling
// ABOUTME: convention down to the broad Handler.Invoke signature the executor calls.
package registry

// SimpleFunc receives only parameters and a logger and returns a status.
// It cannot submit further configurations and cannot rewrite scope.
type SimpleFunc func(params Parameters, logger Logger) StatusCode

// SubmitterFunc may enqueue zero or more further configurations via
// submit, and sees the current scope for context, but cannot rewrite it.
// Its pipeline argument is whatever Args.Pipeline holds; jobexec.Run
// always passes nil, so a submitter handler run by the engine receives no
// pipeline node.
type SubmitterFunc func(params Parameters, submit SubmitFunc, scope Scope, pipeline PipelineNode, logger Logger) StatusCode

// MutableFunc receives the scope and returns a (possibly new) scope
// alongside its status; package jobexec additionally allows it to return a
// rewritten pipeline node via Result.Pipeline (see MutableFuncWithPipeline).
type MutableFunc func(params Parameters, scope Scope, logger Logger) (StatusCode, Scope)

// MutableFuncWithPipeline is the richer mutable signature used by handlers
// that also rewrite their own pipeline node (spec.md §4.5, scenario 6 in
// §8): e.g. a handler that changes its own restart policy.
type MutableFuncWithPipeline func(params Parameters, scope Scope, pipeline PipelineNode, logger Logger) (StatusCode, Scope, PipelineNode)

// Simple registers fn under name as a simple-flavor Handler.
func Simple(name string, fn SimpleFunc) Handler {
	return Handler{
		Name:   name,
		Flavor: FlavorSimple,
		Invoke: func(a Args) Result {
			return Result{Status: fn(a.Parameters, a.Logger)}
		},
	}
}

// SubmitterHandler registers fn under name as a submitter-flavor Handler.
func SubmitterHandler(name string, fn SubmitterFunc) Handler {
	return Handler{
		Name:   name,
		Flavor: FlavorSubmitter,
		Invoke: func(a Args) Result {
			return Result{Status: fn(a.Parameters, a.Submit, a.Scope, a.Pipeline, a.Logger)}
		},
	}
}

// MutableHandler registers fn under name as a mutable-flavor Handler whose
// pipeline node passes through unchanged.
func MutableHandler(name string, fn MutableFunc) Handler {
	return Handler{
		Name:   name,
		Flavor: FlavorMutable,
		Invoke: func(a Args) Result {
			status, scope := fn(a.Parameters, a.Scope, a.Logger)
			return Result{Status: status, Scope: scope, Pipeline: a.Pipeline}
		},
	}
}

// MutableHandlerWithPipeline registers fn under name as a mutable-flavor
// Handler that may also rewrite its own pipeline node.
func MutableHandlerWithPipeline(name string, fn MutableFuncWithPipeline) Handler {
	return Handler{
		Name:   name,
		Flavor: FlavorMutable,
		Invoke: func(a Args) Result {
			status, scope, pipeline := fn(a.Parameters, a.Scope, a.Pipeline, a.Logger)
			return Result{Status: status, Scope: scope, Pipeline: pipeline}
		},
	}
}
