package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/signalsfoundry/satti-simulator/internal/logging"
	"github.com/signalsfoundry/satti-simulator/model"
)

func openTrail(t *testing.T) *Trail {
	t.Helper()
	trail, err := Open(filepath.Join(t.TempDir(), "audit.db"), logging.Noop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { trail.Close() })
	return trail
}

func TestTrailRecordsHistoryInOrder(t *testing.T) {
	trail := openTrail(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	states := []model.CommandState{model.StateQueued, model.StateAcked, model.StateCapturing, model.StateDownlinkReady}
	for i, state := range states {
		trail.CommandTransition(ctx, model.CommandEvent{
			CommandID:   "cmd-1",
			SatelliteID: "sat-1",
			State:       state,
			Message:     string(state),
			At:          base.Add(time.Duration(i) * time.Second),
		})
	}
	// A second command's entries must not leak into the first's history.
	trail.CommandTransition(ctx, model.CommandEvent{CommandID: "cmd-2", SatelliteID: "sat-1", State: model.StateQueued, At: base})

	history, err := trail.History(ctx, "cmd-1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != len(states) {
		t.Fatalf("history length = %d, want %d", len(history), len(states))
	}
	for i, entry := range history {
		if entry.State != states[i] {
			t.Errorf("history[%d].State = %s, want %s", i, entry.State, states[i])
		}
	}
	if !history[0].OccurredAt.Equal(base) {
		t.Errorf("occurred_at = %v, want %v", history[0].OccurredAt, base)
	}
}

func TestTrailHistoryEmptyForUnknownCommand(t *testing.T) {
	trail := openTrail(t)
	history, err := trail.History(context.Background(), "cmd-unknown")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("history = %v, want empty", history)
	}
}

func TestTrailSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.db")

	trail, err := Open(path, logging.Noop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	trail.CommandTransition(context.Background(), model.CommandEvent{
		CommandID:   "cmd-1",
		SatelliteID: "sat-1",
		State:       model.StateFailed,
		Message:     "Uplink transmission failed",
		At:          time.Now().UTC(),
	})
	trail.Close()

	reopened, err := Open(path, logging.Noop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	history, err := reopened.History(context.Background(), "cmd-1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].Message != "Uplink transmission failed" {
		t.Fatalf("history after reopen = %+v", history)
	}
}
