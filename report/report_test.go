package report

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/2389-research/conveyor/config"
	"github.com/2389-research/conveyor/status"
	"github.com/2389-research/conveyor/store"
)

func TestMarkdownEmptyStoreSaysNoRuns(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	md, err := Markdown(s)
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if !strings.Contains(md, "No runs recorded yet") {
		t.Errorf("Markdown = %q, want a no-runs message", md)
	}
}

func TestMarkdownListsRecordedRuns(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	p := config.Pipeline{ID: uuid.New(), Name: "nightly-build"}
	if err := s.RecordStageCompletion(p, status.SUCCESS, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}

	md, err := Markdown(s)
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if !strings.Contains(md, "## nightly-build") || !strings.Contains(md, "SUCCESS") {
		t.Errorf("Markdown = %q, missing expected run section", md)
	}
}

func TestHTMLStripsScriptTags(t *testing.T) {
	out := HTML("# Title\n\n<script>alert(1)</script>\n\nbody text")
	if strings.Contains(string(out), "<script") {
		t.Errorf("HTML = %q, want script tag stripped", out)
	}
	if !strings.Contains(string(out), "<h1") {
		t.Errorf("HTML = %q, want rendered heading", out)
	}
}

func TestHTMLNeutralizesJavascriptLinks(t *testing.T) {
	out := HTML(`[click me](javascript:alert(1))`)
	if strings.Contains(string(out), "javascript:") {
		t.Errorf("HTML = %q, want javascript: scheme neutralized", out)
	}
}
