// ABOUTME: Package submit is the bounded worker-goroutine pool that pulls
// ABOUTME: configurations off a shared queue and runs them to completion.
package submit

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/2389-research/conveyor/config"
)

// Logger is the narrow logging surface a Pool needs.
type Logger interface {
	Printf(format string, args ...any)
}

// Func enqueues cfg onto the pool's shared queue. It is handed to the
// pipeline engine and to submitter-flavor handlers as their submission
// surface (spec.md §4.7: "the submission function surfaced to handlers and
// to the pipeline engine simply enqueues onto this same queue").
type Func func(cfg config.Config) error

// EntryPoint is the C8 entry point a worker invokes on each dequeued
// configuration; package manager supplies the concrete implementation that
// wires a handler registry and calls pipeline.Run.
type EntryPoint func(cfg config.Config, submit Func, logger Logger)

// defaultQueueCapacity stands in for the original's unbounded mp.Queue. A
// Go channel can't be unbounded; this is large enough that a pipeline's own
// fan-out during a single worker step never blocks on it in practice. See
// DESIGN.md's Open Question on this substitution.
const defaultQueueCapacity = 4096

// pollInterval and drainCheckInterval are vars, not consts, so tests in
// this package can shorten them instead of waiting on real ~1s ticks.
var (
	pollInterval       = time.Second
	drainCheckInterval = time.Second
)

// Pool is a bounded set of worker goroutines draining one shared FIFO
// queue, plus a manager goroutine that shuts the pool down once the queue
// is empty and no worker is executing. Grounded on
// original_source/antz/infrastructure/submitters/local.py's
// LocalProcManager/LocalProc, translated from OS-process isolation
// (multiprocessing, "spawn" start method, mp.Value flags) to goroutines and
// atomic.Bool flags — see DESIGN.md for why goroutines, not a process pool,
// is the idiomatic Go substitution here — and on
// spec/core/actor.go's goroutine-consuming-a-channel shape for the worker
// loop itself.
type Pool struct {
	queue      chan config.Config
	entry      EntryPoint
	logger     Logger
	numWorkers int
	executing  []atomic.Bool
	shutdown   chan struct{}
	workersWg  sync.WaitGroup
	managerWg  sync.WaitGroup
}

// New builds a Pool with numWorkers workers (clamped to at least 1) that
// will call entry on each dequeued configuration.
func New(numWorkers int, entry EntryPoint, logger Logger) *Pool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Pool{
		queue:      make(chan config.Config, defaultQueueCapacity),
		entry:      entry,
		logger:     logger,
		numWorkers: numWorkers,
		executing:  make([]atomic.Bool, numWorkers),
		shutdown:   make(chan struct{}),
	}
}

// Submit enqueues cfg. Safe for concurrent use by multiple workers and by
// whatever seeds the initial configuration before Start.
func (p *Pool) Submit(cfg config.Config) error {
	p.queue <- cfg
	return nil
}

// Start launches the worker goroutines and the draining manager goroutine.
func (p *Pool) Start() {
	for i := 0; i < p.numWorkers; i++ {
		p.workersWg.Add(1)
		go p.worker(i)
	}
	p.managerWg.Add(1)
	go p.manage()
}

// Wait blocks until the manager has observed drain and every worker has
// exited.
func (p *Pool) Wait() {
	p.managerWg.Wait()
	p.workersWg.Wait()
}

// Snapshot is a read-only view of the pool's live state, polled by
// webstatus and condash — neither touches the queue or the executing
// flags directly (SPEC_FULL.md §4.13/§4.14).
type Snapshot struct {
	QueueDepth int
	Executing  []bool
}

// Snapshot returns the pool's current queue depth and per-worker executing
// flags. Safe for concurrent use while the pool is running.
func (p *Pool) Snapshot() Snapshot {
	executing := make([]bool, len(p.executing))
	for i := range p.executing {
		executing[i] = p.executing[i].Load()
	}
	return Snapshot{QueueDepth: len(p.queue), Executing: executing}
}

func (p *Pool) worker(idx int) {
	defer p.workersWg.Done()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.shutdown:
			return
		case cfg := <-p.queue:
			p.executing[idx].Store(true)
			p.runSafely(cfg)
			p.executing[idx].Store(false)
		case <-ticker.C:
			// idle tick: the short blocking-get-with-timeout spec.md §4.7
			// calls for, so the shutdown signal is observed promptly even
			// when the queue is empty.
		}
	}
}

// runSafely absorbs anything the entry point panics with, so one
// misbehaving pipeline cannot take down a worker (spec.md §4.7: "exceptions
// inside handler execution are absorbed so one bad pipeline cannot crash a
// worker").
func (p *Pool) runSafely(cfg config.Config) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Printf("component=submit action=panic pipeline=%s detail=%v", cfg.Root.Name, r)
		}
	}()
	p.entry(cfg, p.Submit, p.logger)
}

// manage polls at ~1Hz for drain: the queue is empty and no worker is
// executing. On drain it closes shutdown, which every worker observes on
// its next select iteration, and returns.
func (p *Pool) manage() {
	defer p.managerWg.Done()
	ticker := time.NewTicker(drainCheckInterval)
	defer ticker.Stop()
	for range ticker.C {
		if len(p.queue) == 0 && p.noneExecuting() {
			close(p.shutdown)
			return
		}
	}
}

func (p *Pool) noneExecuting() bool {
	for i := range p.executing {
		if p.executing[i].Load() {
			return false
		}
	}
	return true
}
