// ABOUTME: Package jobexec runs a single job's handler invocation and turns
// ABOUTME: whatever it returns (or panics with) into a well-formed status.
package jobexec

import (
	"fmt"
	"runtime/debug"

	"github.com/2389-research/conveyor/config"
	"github.com/2389-research/conveyor/registry"
	"github.com/2389-research/conveyor/resolve"
	"github.com/2389-research/conveyor/status"
)

// SubmitFunc enqueues a fresh configuration with the submitter. jobexec
// itself never calls this directly — it passes it straight through to the
// handler's registry.Args so a submitter-flavor handler can use it.
type SubmitFunc = registry.SubmitFunc

// Run invokes a non-mutable job's handler (simple or submitter flavor) and
// returns its resulting status. A panicking handler, or one whose flavor
// adapter somehow returns a non-status value, resolves to status.ERROR —
// mirroring original_source/antz/infrastructure/core/job.py's
// try/except-to-ERROR (Go has no exceptions, so a deferred recover plays
// that role, the same shape attractor/engine.go's safeExecute uses to wrap
// a handler call). The handler's registry.Args carry no pipeline node:
// Args.Pipeline is always nil here.
func Run(h registry.Handler, job config.Job, scope config.Scope, submit SubmitFunc, logger registry.Logger) (ret status.Status) {
	ret = status.ERROR
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("component=jobexec action=panic job=%s function=%s detail=%v\n%s", job.Name, job.Function, r, debug.Stack())
			ret = status.ERROR
		}
	}()

	params, err := resolve.Parameters(job.Parameters, scope)
	if err != nil {
		logger.Printf("component=jobexec action=resolve_error job=%s function=%s detail=%v", job.Name, job.Function, err)
		return status.ERROR
	}

	res := h.Invoke(registry.Args{
		Parameters: params,
		Submit:     submit,
		Scope:      scope,
		Pipeline:   nil,
		Logger:     logger,
	})
	st := status.Status(res.Status)
	if st < status.ERROR || st > status.FINAL {
		logger.Printf("component=jobexec action=bad_status job=%s function=%s detail=%d", job.Name, job.Function, res.Status)
		return status.ERROR
	}
	return st
}

// RunMutable invokes a mutable job's handler, which additionally sees and
// may rewrite the scope and (per spec.md §4.5/§8 scenario 6) the pipeline
// node it belongs to. Grounded on the run_mutable_job contract exercised by
// original_source/test/infrastructure/core/test_mutable_job.py: on success
// the handler's returned scope and pipeline replace the inputs; on panic
// the status is ERROR and the ORIGINAL scope/pipeline are returned
// unchanged, never a partial or nil value.
func RunMutable(h registry.Handler, job config.Job, scope config.Scope, pipeline config.Pipeline, submit SubmitFunc, logger registry.Logger) (ret status.Status, retScope config.Scope, retPipeline config.Pipeline) {
	ret, retScope, retPipeline = status.ERROR, scope, pipeline
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("component=jobexec action=panic job=%s function=%s detail=%v\n%s", job.Name, job.Function, r, debug.Stack())
			ret, retScope, retPipeline = status.ERROR, scope, pipeline
		}
	}()

	params, err := resolve.Parameters(job.Parameters, scope)
	if err != nil {
		logger.Printf("component=jobexec action=resolve_error job=%s function=%s detail=%v", job.Name, job.Function, err)
		return status.ERROR, scope, pipeline
	}

	res := h.Invoke(registry.Args{
		Parameters: params,
		Submit:     submit,
		Scope:      scope,
		Pipeline:   pipeline,
		Logger:     logger,
	})

	newPipeline, ok := res.Pipeline.(config.Pipeline)
	if !ok {
		panic(fmt.Sprintf("mutable handler %q returned a pipeline node of type %T, want config.Pipeline", job.Function, res.Pipeline))
	}
	return status.Status(res.Status), res.Scope, newPipeline
}
