package usage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestTrackPersistsAndSummarizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "usage.json")
	tr := NewTracker(path, nil)

	tr.Track(Event{Tool: "web_search", Reasoning: "checking docs", ResponseTimeMs: 100, Success: true})
	tr.Track(Event{Tool: "web_search", Reasoning: "checking docs", ResponseTimeMs: 200, Success: false})
	tr.Track(Event{Tool: "package_info", Reasoning: "version check", ResponseTimeMs: 50, Success: true})

	summary := tr.Summary()
	ws := summary.Tools["web_search"]
	if ws == nil || ws.Count != 2 || ws.SuccessCount != 1 {
		t.Fatalf("unexpected web_search summary: %+v", ws)
	}
	if ws.AvgResponseTime != 150 {
		t.Fatalf("expected avg 150, got %v", ws.AvgResponseTime)
	}
	if summary.Totals.TotalCalls != 3 {
		t.Fatalf("expected 3 total calls, got %d", summary.Totals.TotalCalls)
	}
	if summary.Totals.MostUsedTool != "web_search" {
		t.Fatalf("expected web_search as most used, got %q", summary.Totals.MostUsedTool)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected usage.json to be written: %v", err)
	}
	var onDisk Store
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("expected valid json on disk: %v", err)
	}
	if len(onDisk.Sessions) != 3 {
		t.Fatalf("expected 3 persisted events, got %d", len(onDisk.Sessions))
	}
}

func TestNewTrackerToleratesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "usage.json")
	if err := os.WriteFile(path, []byte("{not valid json"), 0o644); err != nil {
		t.Fatal(err)
	}

	tr := NewTracker(path, nil)
	summary := tr.Summary()
	if len(summary.Tools) != 0 {
		t.Fatalf("expected empty summary after corrupt load, got %+v", summary)
	}
}

func TestReasoningKeyTruncatedTo50Chars(t *testing.T) {
	dir := t.TempDir()
	tr := NewTracker(filepath.Join(dir, "usage.json"), nil)

	longReasoning := "this reasoning string is intentionally longer than fifty characters to test truncation"
	tr.Track(Event{Tool: "web_search", Reasoning: longReasoning, ResponseTimeMs: 10, Success: true})

	summary := tr.Summary()
	for key := range summary.Tools["web_search"].CommonReasonings {
		if len(key) != reasoningKeyLen {
			t.Fatalf("expected reasoning key truncated to %d chars, got %d: %q", reasoningKeyLen, len(key), key)
		}
	}
}
