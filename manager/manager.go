// ABOUTME: Package manager is the top-level entry point: it validates an
// ABOUTME: initial configuration, wires a worker pool, and sets it running.
package manager

import (
	"fmt"
	"time"

	"github.com/2389-research/conveyor/config"
	"github.com/2389-research/conveyor/logging"
	"github.com/2389-research/conveyor/pipeline"
	"github.com/2389-research/conveyor/registry"
	"github.com/2389-research/conveyor/store"
	"github.com/2389-research/conveyor/submit"
)

// Run validates initial against reg, builds a submit.Pool sized from
// initial.Submitter.NumConcurrentJobs, seeds it with initial.Config, and
// starts it running. The returned Pool can be waited on with Wait() for
// the run to drain. audit may be nil to disable the SQLite audit trail.
//
// Grounded on original_source/antz/infrastructure/core/manager.py, which
// is itself four lines delegating straight to run_pipeline — the
// additional responsibilities here (building the queue, starting workers,
// submitting the seed job) are what
// original_source/antz/infrastructure/submitters/local.py's
// run_local_submitter does instead, and spec/store/manager.go's
// constructor-validates-and-wires-subsystems shape is the Go idiom this
// follows.
func Run(initial *config.InitialConfig, reg *registry.Registry, logger *logging.Logger, audit *store.Store) (*submit.Pool, error) {
	if err := config.ValidateHandlers(initial.Config.Root, reg); err != nil {
		return nil, fmt.Errorf("manager: %w", err)
	}

	entry := func(cfg config.Config, sub submit.Func, log submit.Logger) {
		ret, err := pipeline.Run(reg, cfg.Root, cfg.Scope, pipeline.SubmitFunc(sub), log)
		if err != nil {
			log.Printf("component=manager action=pipeline_error pipeline=%s detail=%v", cfg.Root.Name, err)
		}
		if audit != nil {
			if auditErr := audit.RecordStageCompletion(cfg.Root, ret, time.Now()); auditErr != nil {
				log.Printf("component=manager action=audit_error pipeline=%s detail=%v", cfg.Root.Name, auditErr)
			}
		}
	}

	pool := submit.New(initial.Submitter.NumConcurrentJobs, entry, logger)
	pool.Start()
	if err := pool.Submit(initial.Config); err != nil {
		return nil, fmt.Errorf("manager: seed submission failed: %w", err)
	}
	return pool, nil
}
