package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/2389-research/conveyor/config"
)

func TestOffSinkDiscardsQuietly(t *testing.T) {
	l, err := New(config.LoggingConfig{Type: "off"})
	if err != nil {
		t.Fatal(err)
	}
	l.Printf("component=test action=noop") // must not panic
}

func TestFileSinkWritesToDirectory(t *testing.T) {
	dir := t.TempDir()
	l, err := New(config.LoggingConfig{Type: "file", Directory: dir})
	if err != nil {
		t.Fatal(err)
	}
	l.Printf("component=test action=write key=value")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "conveyor.log"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "component=test action=write key=value") {
		t.Errorf("log file missing expected line, got %q", data)
	}
}

func TestUnknownTypeIsError(t *testing.T) {
	if _, err := New(config.LoggingConfig{Type: "carrier-pigeon"}); err == nil {
		t.Fatal("expected an error for an unrecognized logging type")
	}
}

func TestFieldsRendersKeyValuePairs(t *testing.T) {
	got := Fields("component", "test", "action", "run")
	if got != "component=test action=run" {
		t.Errorf("Fields = %q", got)
	}
}
