package reconciler

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStatusFileWrittenEachTick(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	clk := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	local := &stubLocal{id: "abc123"}
	remote := &stubRemote{id: "def456"}
	updater := &stubUpdater{local: local}
	loop := newTestLoop(local, remote, updater, clk, WithStatusFile(path))

	loop.tick(context.Background())

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("status file not written: %v", err)
	}
	var s Status
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("status file is not valid JSON: %v", err)
	}
	if s.State != StateBehind {
		t.Errorf("expected state %s, got %s", StateBehind, s.State)
	}
	if s.LocalRevision != "abc123" || s.RemoteRevision != "def456" {
		t.Errorf("unexpected revisions in status: %+v", s)
	}

	clk.advance(20 * time.Second)
	loop.tick(context.Background())

	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("status file not rewritten: %v", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("rewritten status file is not valid JSON: %v", err)
	}
	if s.State != StateInSync {
		t.Errorf("expected state %s after catch-up, got %s", StateInSync, s.State)
	}
}
