package usage

import (
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "usage.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndCount(t *testing.T) {
	s := testStore(t)

	if err := s.Record("perplexity_ask", "sonar"); err != nil {
		t.Fatalf("Failed to record: %v", err)
	}
	if err := s.Record("perplexity_search", "sonar-pro"); err != nil {
		t.Fatalf("Failed to record: %v", err)
	}

	n, err := s.CountSince(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("CountSince failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 calls in the last hour, got %d", n)
	}

	n, err = s.CountSince(time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("CountSince failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0 calls in the future, got %d", n)
	}
}

func TestRecent(t *testing.T) {
	s := testStore(t)

	if calls, err := s.Recent(10); err != nil || len(calls) != 0 {
		t.Fatalf("Expected empty ledger, got %v (%v)", calls, err)
	}

	s.Record("perplexity_ask", "sonar")
	s.Record("perplexity_search", "sonar")

	calls, err := s.Recent(1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("Expected 1 call, got %d", len(calls))
	}
	c := calls[0]
	if c.ID == "" {
		t.Error("Expected generated call id")
	}
	if c.Tool != "perplexity_ask" && c.Tool != "perplexity_search" {
		t.Errorf("Unexpected tool name: %s", c.Tool)
	}
	if time.Since(c.CreatedAt) > time.Minute {
		t.Errorf("Unexpected timestamp: %v", c.CreatedAt)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("First open failed: %v", err)
	}
	s1.Record("perplexity_ask", "sonar")
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("Second open failed: %v", err)
	}
	defer s2.Close()

	n, err := s2.CountSince(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("CountSince failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected record to survive reopen, got %d", n)
	}
}
