package reconciler

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/chainguard-dev/clog"
)

// Status is a point-in-time snapshot of the loop, written as JSON when a
// status file is configured.
type Status struct {
	State               State     `json:"state"`
	LocalRevision       string    `json:"local_revision,omitempty"`
	RemoteRevision      string    `json:"remote_revision,omitempty"`
	LastDivergenceAt    time.Time `json:"last_divergence_at"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Snapshot returns the loop's current status.
func (l *Loop) Snapshot() Status {
	return Status{
		State:               l.state,
		LocalRevision:       l.last.LocalID,
		RemoteRevision:      l.last.RemoteID,
		LastDivergenceAt:    l.lastDivergence,
		ConsecutiveFailures: l.failures,
		UpdatedAt:           l.clock.Now(),
	}
}

func (l *Loop) writeStatus(ctx context.Context) {
	if l.statusFile == "" {
		return
	}
	data, err := json.MarshalIndent(l.Snapshot(), "", "  ")
	if err != nil {
		clog.FromContext(ctx).Warnf("marshaling status: %v", err)
		return
	}
	if err := os.WriteFile(l.statusFile, append(data, '\n'), 0644); err != nil {
		clog.FromContext(ctx).Warnf("writing status file: %v", err)
	}
}
