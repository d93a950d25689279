// ABOUTME: Package pipeline advances a pipeline configuration by exactly one
// ABOUTME: stage per call, re-enqueueing its successor instead of looping.
package pipeline

import (
	"fmt"

	"github.com/2389-research/conveyor/config"
	"github.com/2389-research/conveyor/jobexec"
	"github.com/2389-research/conveyor/registry"
	"github.com/2389-research/conveyor/status"
)

// Resolver looks up the Handler for a job's dotted function name. It is
// satisfied by *registry.Registry; declared narrowly here so this package
// doesn't otherwise depend on how handlers are registered.
type Resolver interface {
	Get(name string) (registry.Handler, bool)
}

// SubmitFunc enqueues a fresh config.Config for the submitter to pick up.
type SubmitFunc func(config.Config) error

// Run advances pipeline by exactly one stage and returns the status that
// stage produced. It does not loop internally — success/restart re-enqueue
// a successor configuration via submit rather than recursing into the next
// stage, matching spec.md §4.6/§4.7's one-stage-per-worker-step contract
// (this is the behavior that lets a bounded worker pool make progress on
// many pipelines concurrently instead of one goroutine per pipeline
// running to completion). Grounded 1:1 on
// original_source/antz/infrastructure/core/pipeline.py's run_pipeline.
func Run(resolver Resolver, p config.Pipeline, scope config.Scope, submit SubmitFunc, logger registry.Logger) (status.Status, error) {
	if p.CurrStage >= len(p.Stages) {
		return status.ERROR, fmt.Errorf("pipeline %q: curr_stage %d >= %d stages, already complete", p.Name, p.CurrStage, len(p.Stages))
	}

	stage := p.Stages[p.CurrStage]
	jobSubmit := adaptSubmit(submit, scope)

	var ret status.Status
	switch s := stage.(type) {
	case config.Pipeline:
		// pipelines of pipelines: recurse within this single worker step.
		// The nested Run already resubmits its own continuation; this
		// function's own success/restart below then separately advances
		// the outer pipeline past this stage — both levels can move in
		// one worker step (spec.md §4.6).
		childStatus, err := Run(resolver, s, scope, submit, logger)
		if err != nil {
			return status.ERROR, err
		}
		ret = childStatus
	case config.Job:
		h, ok := resolver.Get(s.Function)
		if !ok {
			return status.ERROR, fmt.Errorf("pipeline %q: unresolvable handler %q", p.Name, s.Function)
		}
		if s.Mutable {
			var newScope config.Scope
			var newPipeline config.Pipeline
			ret, newScope, newPipeline = jobexec.RunMutable(h, s, scope, p, jobSubmit, logger)
			scope = newScope
			p = newPipeline
		} else {
			ret = jobexec.Run(h, s, scope, jobSubmit, logger)
		}
	default:
		return status.ERROR, fmt.Errorf("pipeline %q: unsupported stage type %T", p.Name, stage)
	}

	switch {
	case ret == status.ERROR:
		restart(p, scope, submit)
	case !status.IsFinal(ret):
		return status.ERROR, fmt.Errorf("pipeline %q: handler for stage %d returned non-final status %v", p.Name, p.CurrStage, ret)
	default:
		success(p, scope, submit)
	}
	return ret, nil
}

// success advances p to its next stage and, unless the pipeline has just
// completed, re-enqueues it for the submitter to pick up.
func success(p config.Pipeline, scope config.Scope, submit SubmitFunc) {
	next := p.WithCurrStage(p.CurrStage + 1)
	if next.CurrStage < len(next.Stages) {
		submit(config.Config{Scope: scope, Root: next})
	}
}

// restart re-enqueues p at stage 0 with an incremented restart count, as
// long as its restart budget allows it; -1 means unlimited restarts. A
// pipeline that has exhausted its budget is dropped silently — it has
// permanently failed (spec.md §4.6).
func restart(p config.Pipeline, scope config.Scope, submit SubmitFunc) {
	if p.MaxAllowedRestarts == -1 || p.CurrRestarts < p.MaxAllowedRestarts {
		submit(config.Config{Scope: scope, Root: p.WithRestart()})
	}
}

func adaptSubmit(submit SubmitFunc, scope config.Scope) jobexec.SubmitFunc {
	return func(cfg any) error {
		switch c := cfg.(type) {
		case config.Config:
			return submit(c)
		case config.Pipeline:
			return submit(config.Config{Scope: scope, Root: c})
		default:
			return fmt.Errorf("submitted value of type %T is not a config.Config or config.Pipeline", cfg)
		}
	}
}
