package reconciler

import (
	"context"
	"errors"
	"time"

	"github.com/chainguard-dev/clog"

	"github.com/mfriesen42/autopull/internal/metrics"
)

// State describes whether the working copy matches the remote branch tip.
type State string

const (
	StateInSync State = "in-sync"
	StateBehind State = "behind"
)

// Updater fast-forwards the local working copy to the given target revision.
// It either fully succeeds or leaves the working copy unchanged.
type Updater interface {
	Update(ctx context.Context, target string) error
}

// Option configures a Loop.
type Option func(*Loop)

// WithClock overrides the wall clock, primarily for tests.
func WithClock(clk Clock) Option {
	return func(l *Loop) { l.clock = clk }
}

// WithStatusFile makes the loop write a JSON status snapshot to path after
// every tick.
func WithStatusFile(path string) Option {
	return func(l *Loop) { l.statusFile = path }
}

// Loop polls the comparator on a fixed cadence and fast-forwards the local
// working copy whenever it falls behind the remote. A Loop owns all of its
// mutable state; it is driven by a single goroutine and ticks never overlap.
type Loop struct {
	comparator *Comparator
	updater    Updater
	interval   time.Duration
	clock      Clock
	statusFile string

	state          State
	last           Comparison
	lastDivergence time.Time
	failures       int
}

// New returns a Loop over the given comparator and updater. The loop starts
// optimistically in sync; the first tick corrects that if needed. The last
// divergence timestamp starts at construction time.
func New(c *Comparator, u Updater, interval time.Duration, opts ...Option) *Loop {
	l := &Loop{
		comparator: c,
		updater:    u,
		interval:   interval,
		clock:      SystemClock(),
		state:      StateInSync,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.lastDivergence = l.clock.Now()
	return l
}

// Run drives the loop until ctx is cancelled. The first tick fires
// immediately; every later tick is separated by the poll interval. Per-tick
// errors are logged and contained; Run only returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.tick(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.clock.After(l.interval):
		}
	}
}

// tick runs one compare-decide-act sequence. SyncState is only ever derived
// from the comparison made in this tick, never carried over from stale data.
func (l *Loop) tick(ctx context.Context) {
	log := clog.FromContext(ctx)
	metrics.Ticks.Inc()

	cmp, err := l.comparator.Compare(ctx)
	if err != nil {
		l.failures++
		kind := errorKind(err)
		metrics.ConsecutiveFailures.Set(float64(l.failures))
		metrics.TickErrors.WithLabelValues(kind).Inc()
		log.With("kind", kind).With("consecutive_failures", l.failures).
			Errorf("revision comparison failed: %v", err)
		l.writeStatus(ctx)
		return
	}
	l.last = cmp
	l.failures = 0
	metrics.ConsecutiveFailures.Set(0)

	switch {
	case cmp.Matches && l.state == StateBehind:
		l.state = StateInSync
		log.With("revision", cmp.LocalID).Info("caught up with remote")

	case cmp.Matches:
		since := l.clock.Now().Sub(l.lastDivergence)
		metrics.TimeSinceDivergence.Set(since.Seconds())
		log.With("revision", cmp.LocalID).
			With("since_last_mismatch", since.Round(time.Second).String()).
			With("last_mismatch_at", l.lastDivergence.Format(time.RFC3339)).
			Info("in sync with remote")

	default:
		if l.state == StateInSync {
			l.state = StateBehind
			l.lastDivergence = l.clock.Now()
		}
		log.With("local", cmp.LocalID).With("remote", cmp.RemoteID).
			Info("remote has new commits, updating")
		if err := l.updater.Update(ctx, cmp.RemoteID); err != nil {
			metrics.Updates.WithLabelValues("failure").Inc()
			metrics.TickErrors.WithLabelValues(errorKind(err)).Inc()
			log.Errorf("update failed, will retry next tick: %v", err)
		} else {
			// Stay behind until the next comparison confirms the
			// identifiers actually match.
			metrics.Updates.WithLabelValues("success").Inc()
			log.With("revision", cmp.RemoteID).Info("fast-forwarded local checkout")
		}
	}
	l.writeStatus(ctx)
}

// errorKind maps an error onto its taxonomy bucket for logs and metrics.
func errorKind(err error) string {
	var (
		netErr    *NetworkError
		localErr  *LocalRepositoryError
		updateErr *UpdateError
	)
	switch {
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &localErr):
		return "local-repository"
	case errors.As(err, &updateErr):
		return "update"
	default:
		return "unknown"
	}
}
