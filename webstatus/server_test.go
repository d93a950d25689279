package webstatus

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/2389-research/conveyor/submit"
)

func testSnapshot() submit.Snapshot {
	return submit.Snapshot{QueueDepth: 2, Executing: []bool{true, false}}
}

func TestHealthz(t *testing.T) {
	s := New(testSnapshot, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestStatusReflectsSnapshot(t *testing.T) {
	s := New(testSnapshot, nil)
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var resp statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.QueueDepth != 2 {
		t.Fatalf("queue depth = %d, want 2", resp.QueueDepth)
	}
	if len(resp.Workers) != 2 || !resp.Workers[0] || resp.Workers[1] {
		t.Fatalf("workers = %v, want [true false]", resp.Workers)
	}
}

func TestRunWithoutAuditStoreIsNotFound(t *testing.T) {
	s := New(testSnapshot, nil)
	req := httptest.NewRequest(http.MethodGet, "/runs/abc", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
