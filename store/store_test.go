package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/2389-research/conveyor/config"
	"github.com/2389-research/conveyor/status"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesSchemaIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open on existing file: %v", err)
	}
	defer s2.Close()
}

func TestRecordAndSummarizeRoundTrips(t *testing.T) {
	s := openTemp(t)

	p := config.Pipeline{ID: uuid.New(), Name: "demo", CurrStage: 1}
	if err := s.RecordStageCompletion(p, status.SUCCESS, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("RecordStageCompletion: %v", err)
	}
	if err := s.RecordStageCompletion(p.WithCurrStage(2), status.ERROR, time.Date(2026, 1, 1, 0, 1, 0, 0, time.UTC)); err != nil {
		t.Fatalf("RecordStageCompletion: %v", err)
	}

	summaries, err := s.Summarize()
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("len(summaries) = %d, want 1", len(summaries))
	}
	got := summaries[0]
	if got.PipelineName != "demo" || got.StageCount != 2 {
		t.Errorf("summary = %+v", got)
	}
	if got.LastStatus != status.ERROR.String() {
		t.Errorf("LastStatus = %q, want %q", got.LastStatus, status.ERROR.String())
	}
}

func TestSummarizeOrdersMostRecentFirst(t *testing.T) {
	s := openTemp(t)

	older := config.Pipeline{ID: uuid.New(), Name: "older"}
	newer := config.Pipeline{ID: uuid.New(), Name: "newer"}

	if err := s.RecordStageCompletion(older, status.SUCCESS, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordStageCompletion(newer, status.SUCCESS, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}

	summaries, err := s.Summarize()
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(summaries) != 2 || summaries[0].PipelineName != "newer" {
		t.Fatalf("summaries = %+v, want newer first", summaries)
	}
}
