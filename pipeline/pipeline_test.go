package pipeline

import (
	"testing"

	"github.com/2389-research/conveyor/config"
	"github.com/2389-research/conveyor/registry"
	"github.com/2389-research/conveyor/status"
)

type nullLogger struct{}

func (nullLogger) Printf(string, ...any) {}

func newRegistry(handlers ...registry.Handler) *registry.Registry {
	r := registry.New()
	for _, h := range handlers {
		r.Register(h)
	}
	return r
}

func nopSuccess() registry.Handler {
	return registry.Simple("jobs.nop", func(registry.Parameters, registry.Logger) registry.StatusCode {
		return int(status.SUCCESS)
	})
}

func nopError() registry.Handler {
	return registry.Simple("jobs.fail", func(registry.Parameters, registry.Logger) registry.StatusCode {
		return int(status.ERROR)
	})
}

func TestRunLastStageSuccessCompletesWithoutResubmit(t *testing.T) {
	r := newRegistry(nopSuccess())
	p := config.Pipeline{Stages: []config.Node{config.Job{Function: "jobs.nop"}}}
	var submitted []config.Config
	ret, err := Run(r, p, config.Scope{}, func(c config.Config) error { submitted = append(submitted, c); return nil }, nullLogger{})
	if err != nil {
		t.Fatal(err)
	}
	if ret != status.SUCCESS {
		t.Errorf("status = %v, want SUCCESS", ret)
	}
	if len(submitted) != 0 {
		t.Errorf("expected no resubmission on a completed pipeline, got %d", len(submitted))
	}
}

func TestRunMiddleStageSuccessResubmitsWithAdvancedStage(t *testing.T) {
	r := newRegistry(nopSuccess())
	p := config.Pipeline{Stages: []config.Node{
		config.Job{Function: "jobs.nop"},
		config.Job{Function: "jobs.nop"},
	}}
	var submitted []config.Config
	ret, err := Run(r, p, config.Scope{"a": int64(1)}, func(c config.Config) error { submitted = append(submitted, c); return nil }, nullLogger{})
	if err != nil {
		t.Fatal(err)
	}
	if ret != status.SUCCESS {
		t.Errorf("status = %v, want SUCCESS", ret)
	}
	if len(submitted) != 1 {
		t.Fatalf("expected 1 resubmission, got %d", len(submitted))
	}
	if submitted[0].Root.CurrStage != 1 {
		t.Errorf("resubmitted curr_stage = %d, want 1", submitted[0].Root.CurrStage)
	}
	if submitted[0].Scope["a"] != int64(1) {
		t.Errorf("resubmitted scope not carried through: %+v", submitted[0].Scope)
	}
}

func TestRunErrorRestartsWithinBudget(t *testing.T) {
	r := newRegistry(nopError())
	p := config.Pipeline{Stages: []config.Node{config.Job{Function: "jobs.fail"}}, MaxAllowedRestarts: 2}
	var submitted []config.Config
	ret, err := Run(r, p, config.Scope{}, func(c config.Config) error { submitted = append(submitted, c); return nil }, nullLogger{})
	if err != nil {
		t.Fatal(err)
	}
	if ret != status.ERROR {
		t.Errorf("status = %v, want ERROR", ret)
	}
	if len(submitted) != 1 {
		t.Fatalf("expected 1 restart resubmission, got %d", len(submitted))
	}
	rp := submitted[0].Root
	if rp.CurrStage != 0 || rp.CurrRestarts != 1 || rp.Status != status.READY {
		t.Errorf("restarted pipeline = %+v", rp)
	}
}

func TestRunErrorRestartExhaustedDropsSilently(t *testing.T) {
	r := newRegistry(nopError())
	p := config.Pipeline{Stages: []config.Node{config.Job{Function: "jobs.fail"}}, MaxAllowedRestarts: 1, CurrRestarts: 1}
	var submitted []config.Config
	ret, err := Run(r, p, config.Scope{}, func(c config.Config) error { submitted = append(submitted, c); return nil }, nullLogger{})
	if err != nil {
		t.Fatal(err)
	}
	if ret != status.ERROR {
		t.Errorf("status = %v, want ERROR", ret)
	}
	if len(submitted) != 0 {
		t.Errorf("expected the exhausted pipeline to be dropped, got %d resubmissions", len(submitted))
	}
}

func TestRunUnlimitedRestartsAlwaysResubmit(t *testing.T) {
	r := newRegistry(nopError())
	p := config.Pipeline{Stages: []config.Node{config.Job{Function: "jobs.fail"}}, MaxAllowedRestarts: -1, CurrRestarts: 500}
	var submitted []config.Config
	_, err := Run(r, p, config.Scope{}, func(c config.Config) error { submitted = append(submitted, c); return nil }, nullLogger{})
	if err != nil {
		t.Fatal(err)
	}
	if len(submitted) != 1 {
		t.Errorf("expected a resubmission with unlimited restart budget, got %d", len(submitted))
	}
}

func TestRunAlreadyCompletedPipelineIsError(t *testing.T) {
	r := newRegistry()
	p := config.Pipeline{Stages: []config.Node{config.Job{Function: "jobs.nop"}}, CurrStage: 1}
	_, err := Run(r, p, config.Scope{}, func(config.Config) error { return nil }, nullLogger{})
	if err == nil {
		t.Fatal("expected an error for a pipeline whose curr_stage is already past its last stage")
	}
}

func TestRunUnresolvableHandlerIsError(t *testing.T) {
	r := newRegistry()
	p := config.Pipeline{Stages: []config.Node{config.Job{Function: "jobs.nonexistent"}}}
	ret, err := Run(r, p, config.Scope{}, func(config.Config) error { return nil }, nullLogger{})
	if err == nil {
		t.Fatal("expected an error for an unresolvable handler")
	}
	if ret != status.ERROR {
		t.Errorf("status = %v, want ERROR", ret)
	}
}

func TestRunMutableJobRewritesScopeAndPipeline(t *testing.T) {
	h := registry.MutableHandlerWithPipeline("jobs.set_variable", func(params registry.Parameters, scope registry.Scope, pipelineNode registry.PipelineNode, logger registry.Logger) (registry.StatusCode, registry.Scope, registry.PipelineNode) {
		p := pipelineNode.(config.Pipeline)
		return int(status.SUCCESS), registry.Scope{"a": int64(2)}, p.WithPolicy(-1, p.CurrRestarts)
	})
	r := newRegistry(h)
	p := config.Pipeline{Stages: []config.Node{
		config.Job{Function: "jobs.set_variable", Mutable: true},
		config.Job{Function: "jobs.set_variable", Mutable: true},
	}}
	var submitted []config.Config
	ret, err := Run(r, p, config.Scope{"a": int64(1)}, func(c config.Config) error { submitted = append(submitted, c); return nil }, nullLogger{})
	if err != nil {
		t.Fatal(err)
	}
	if ret != status.SUCCESS {
		t.Errorf("status = %v, want SUCCESS", ret)
	}
	if len(submitted) != 1 {
		t.Fatalf("expected 1 resubmission, got %d", len(submitted))
	}
	if submitted[0].Scope["a"] != int64(2) {
		t.Errorf("mutated scope not carried into resubmission: %+v", submitted[0].Scope)
	}
	if submitted[0].Root.MaxAllowedRestarts != -1 {
		t.Errorf("mutated pipeline policy not carried into resubmission: %+v", submitted[0].Root)
	}
}

func TestRunNestedPipelineOfPipelines(t *testing.T) {
	r := newRegistry(nopSuccess())
	inner := config.Pipeline{Stages: []config.Node{
		config.Job{Function: "jobs.nop"},
		config.Job{Function: "jobs.nop"},
	}}
	outer := config.Pipeline{Stages: []config.Node{inner, config.Job{Function: "jobs.nop"}}}

	var submitted []config.Config
	ret, err := Run(r, outer, config.Scope{}, func(c config.Config) error { submitted = append(submitted, c); return nil }, nullLogger{})
	if err != nil {
		t.Fatal(err)
	}
	if ret != status.SUCCESS {
		t.Errorf("status = %v, want SUCCESS", ret)
	}
	// the inner pipeline resubmits itself at stage 1, and the outer pipeline
	// separately resubmits itself at stage 1 too: running a sub-pipeline
	// stage can advance both levels in the same worker step.
	if len(submitted) != 2 {
		t.Fatalf("expected 2 resubmissions (inner continuation + outer continuation), got %d", len(submitted))
	}
}
