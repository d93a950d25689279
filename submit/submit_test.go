package submit

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/2389-research/conveyor/config"
)

type testLogger struct{}

func (testLogger) Printf(string, ...any) {}

func init() {
	pollInterval = 5 * time.Millisecond
	drainCheckInterval = 5 * time.Millisecond
}

func TestPoolDrainsAndStops(t *testing.T) {
	var processed atomic.Int32
	entry := func(cfg config.Config, submit Func, logger Logger) {
		processed.Add(1)
	}
	p := New(2, entry, testLogger{})
	p.Start()
	if err := p.Submit(config.Config{Root: config.Pipeline{Name: "seed"}}); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() { p.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not drain in time")
	}

	if processed.Load() != 1 {
		t.Errorf("processed = %d, want 1", processed.Load())
	}
}

func TestPoolRunsChainedResubmissions(t *testing.T) {
	var processed atomic.Int32
	entry := func(cfg config.Config, submit Func, logger Logger) {
		processed.Add(1)
		if cfg.Root.CurrStage < 3 {
			_ = submit(config.Config{Root: cfg.Root.WithCurrStage(cfg.Root.CurrStage + 1)})
		}
	}
	p := New(1, entry, testLogger{})
	p.Start()
	_ = p.Submit(config.Config{Root: config.Pipeline{Name: "chain", CurrStage: 0}})

	done := make(chan struct{})
	go func() { p.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not drain in time")
	}

	if processed.Load() != 4 {
		t.Errorf("processed = %d, want 4 (stages 0..3)", processed.Load())
	}
}

func TestSnapshotReportsQueueDepthAndExecuting(t *testing.T) {
	release := make(chan struct{})
	var started atomic.Bool
	entry := func(cfg config.Config, submit Func, logger Logger) {
		started.Store(true)
		<-release
	}
	p := New(2, entry, testLogger{})
	p.Start()
	_ = p.Submit(config.Config{Root: config.Pipeline{Name: "hold"}})

	for !started.Load() {
		time.Sleep(time.Millisecond)
	}

	snap := p.Snapshot()
	if snap.QueueDepth != 0 {
		t.Errorf("QueueDepth = %d, want 0 once the only submission was dequeued", snap.QueueDepth)
	}
	if len(snap.Executing) != 2 {
		t.Fatalf("len(Executing) = %d, want 2", len(snap.Executing))
	}
	if !snap.Executing[0] && !snap.Executing[1] {
		t.Errorf("expected one worker executing, got %+v", snap.Executing)
	}

	close(release)
	done := make(chan struct{})
	go func() { p.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not drain in time")
	}
}

func TestPoolSurvivesPanickingEntry(t *testing.T) {
	var processed atomic.Int32
	entry := func(cfg config.Config, submit Func, logger Logger) {
		processed.Add(1)
		panic("boom")
	}
	p := New(1, entry, testLogger{})
	p.Start()
	_ = p.Submit(config.Config{Root: config.Pipeline{Name: "boom"}})

	done := make(chan struct{})
	go func() { p.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not drain after a panicking entry point")
	}

	if processed.Load() != 1 {
		t.Errorf("processed = %d, want 1", processed.Load())
	}
}
