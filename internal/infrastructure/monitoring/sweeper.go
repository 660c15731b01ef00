package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
)

// RunTracker reports how many runs are currently in-flight and how long the
// oldest one has been running, so Sweeper can gauge staleness without
// owning run bookkeeping itself.
type RunTracker interface {
	ActiveRuns() (count int, oldestStart time.Time)
}

// Sweeper periodically checks whether the oldest in-flight run is older than
// a staleness threshold, the way the teacher's outbox cleanup worker
// periodically sweeps its table, adapted here to a read-only metrics gauge
// rather than a delete. The gauge is 1 when the oldest run has been active at
// least threshold and 0 otherwise; it is not a count of stale runs.
type Sweeper struct {
	tracker    RunTracker
	threshold  time.Duration
	cron       *cron.Cron
	staleGauge prometheus.Gauge
}

// NewSweeper creates a Sweeper that flags a run active longer than
// threshold, registering its own Prometheus gauge under namespace.
func NewSweeper(namespace string, tracker RunTracker, threshold time.Duration) *Sweeper {
	if namespace == "" {
		namespace = "graphrun"
	}
	return &Sweeper{
		tracker:   tracker,
		threshold: threshold,
		cron:      cron.New(),
		staleGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runs_stale",
			Help:      fmt.Sprintf("1 if the oldest active run has been running at least %s, else 0", threshold),
		}),
	}
}

// Start schedules the sweep on the given cron spec (e.g. "*/1 * * * *" for
// every minute) and begins running it in the background.
func (s *Sweeper) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, s.sweep)
	if err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for any in-progress sweep to finish.
func (s *Sweeper) Stop(ctx context.Context) {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}

func (s *Sweeper) sweep() {
	count, oldestStart := s.tracker.ActiveRuns()
	if count == 0 || oldestStart.IsZero() {
		s.staleGauge.Set(0)
		return
	}

	if time.Since(oldestStart) >= s.threshold {
		s.staleGauge.Set(1)
		return
	}
	s.staleGauge.Set(0)
}
