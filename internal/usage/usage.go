// Package usage tracks tool-invocation events in memory and persists a
// rolling summary to disk, atomically, after every call.
package usage

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hazyhaar/research-mcp/internal/model"
)

// Event is an alias for the shared usage-event record, so callers never
// need to convert between an orchestrator-facing type and a tracker-facing
// one.
type Event = model.UsageEvent

// ToolSummary is an alias for the shared per-tool aggregate.
type ToolSummary = model.ToolSummary

// Summary is an alias for the shared rolling aggregate.
type Summary = model.UsageSummary

// Store is the full on-disk/in-memory usage record.
type Store struct {
	Sessions []Event `json:"sessions"`
	Summary  Summary `json:"summary"`
}

const reasoningKeyLen = 50

// Tracker is a process-wide, thread-safe usage event log with an
// atomically-persisted JSON snapshot.
type Tracker struct {
	mu        sync.Mutex
	path      string
	store     Store
	sessionID string
	logger    *slog.Logger
}

// NewTracker loads path if present (tolerating a corrupt file by starting
// empty and logging a warning) and returns a ready Tracker.
func NewTracker(path string, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracker{
		path:      path,
		sessionID: time.Now().UTC().Format("20060102_15"),
		logger:    logger,
		store: Store{
			Summary: Summary{Tools: make(map[string]*ToolSummary)},
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return t
	}
	var loaded Store
	if err := json.Unmarshal(data, &loaded); err != nil {
		logger.Warn("usage store corrupt, starting empty", "path", path, "error", err)
		return t
	}
	if loaded.Summary.Tools == nil {
		loaded.Summary.Tools = make(map[string]*ToolSummary)
	}
	t.store = loaded
	return t
}

// Track enriches event with a timestamp and session id, appends it,
// updates the rolling summary, and persists the whole store to disk.
func (t *Tracker) Track(event Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	event.TimestampUTC = time.Now().UTC().Format(time.RFC3339)
	event.SessionID = t.sessionID
	t.store.Sessions = append(t.store.Sessions, event)

	t.applySummary(event)
	t.persist()
}

// Summary returns a snapshot of the rolling summary.
func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Summary
}

func (t *Tracker) applySummary(event Event) {
	tools := t.store.Summary.Tools
	ts, ok := tools[event.Tool]
	if !ok {
		ts = &ToolSummary{CommonReasonings: make(map[string]int)}
		tools[event.Tool] = ts
	}

	ts.AvgResponseTime = runningMean(ts.AvgResponseTime, ts.Count, event.ResponseTimeMs)
	ts.Count++
	if event.Success {
		ts.SuccessCount++
	}
	key := event.Reasoning
	if len(key) > reasoningKeyLen {
		key = key[:reasoningKeyLen]
	}
	if key != "" {
		ts.CommonReasonings[key]++
	}

	totals := &t.store.Summary.Totals
	totals.AverageResponseTime = runningMean(totals.AverageResponseTime, totals.TotalCalls, event.ResponseTimeMs)
	totals.TotalCalls++
	totals.MostUsedTool = mostUsedTool(tools)
}

func runningMean(currentMean float64, currentCount int, newValue float64) float64 {
	if currentCount == 0 {
		return newValue
	}
	return (currentMean*float64(currentCount) + newValue) / float64(currentCount+1)
}

func mostUsedTool(tools map[string]*ToolSummary) string {
	var best string
	var bestCount int
	for name, ts := range tools {
		if ts.Count > bestCount {
			best = name
			bestCount = ts.Count
		}
	}
	return best
}

// persist writes the store as JSON to a temp file in the store's directory
// then renames it into place, so concurrent readers never see a partial
// write. Caller must hold t.mu.
func (t *Tracker) persist() {
	if t.path == "" {
		return
	}
	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.logger.Warn("usage: mkdir failed", "dir", dir, "error", err)
		return
	}

	data, err := json.MarshalIndent(t.store, "", "  ")
	if err != nil {
		t.logger.Warn("usage: marshal failed", "error", err)
		return
	}

	tmp := t.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		t.logger.Warn("usage: write tmp failed", "error", err)
		return
	}
	if err := os.Rename(tmp, t.path); err != nil {
		os.Remove(tmp)
		t.logger.Warn("usage: rename failed", "error", err)
	}
}
