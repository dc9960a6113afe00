package daemon

import (
	"context"
	"time"

	celerybridge "github.com/celerybridge/celerybridge-go"
	"github.com/celerybridge/celerybridge-go/internal/domain"
	"github.com/celerybridge/celerybridge-go/internal/metrics"
)

// SubmissionStore is the slice of the relational store the daemon needs.
type SubmissionStore interface {
	PendingSubmissions(ctx context.Context, limit int) ([]domain.Submission, error)
}

// TaskBridge is the slice of the bridge client the daemon needs.
type TaskBridge interface {
	QueueScrapeTask(ctx context.Context, submissionID, url string, opts ...celerybridge.Option) (string, error)
	TaskIDForSubmission(ctx context.Context, submissionID string) (string, error)
	StoreTaskID(ctx context.Context, submissionID, taskID string) error
}

// Config tunes the scan loop. Zero values fall back to 5s / 10.
type Config struct {
	Interval time.Duration
	Batch    int
	Logger   celerybridge.Logger
}

// Daemon periodically scans for pending submissions and dispatches a scrape
// task for each one that has no task in flight. It exists for environments
// where push-based triggers (webhooks) cannot reach the dispatcher.
type Daemon struct {
	store  SubmissionStore
	bridge TaskBridge
	cfg    Config
	log    celerybridge.Logger
}

// New creates a daemon. Dependencies are injected; nothing here owns the
// broker connection or the database pool.
func New(store SubmissionStore, bridge TaskBridge, cfg Config) *Daemon {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.Batch <= 0 {
		cfg.Batch = 10
	}
	log := cfg.Logger
	if log == nil {
		log = celerybridge.NewFmtLogger()
	}
	return &Daemon{store: store, bridge: bridge, cfg: cfg, log: log}
}

// Run loops until ctx is cancelled. A sweep runs immediately, then once per
// interval. Sweeps never abort the loop: per-submission errors are logged and
// skipped, and panics are recovered.
func (d *Daemon) Run(ctx context.Context) {
	d.log.Infof("submission poller started interval=%s batch=%d", d.cfg.Interval, d.cfg.Batch)

	tick := time.NewTicker(d.cfg.Interval)
	defer tick.Stop()

	for {
		d.sweep(ctx)
		select {
		case <-ctx.Done():
			d.log.Infof("submission poller stopping")
			return
		case <-tick.C:
		}
	}
}

func (d *Daemon) sweep(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Errorf("recovered panic in sweep: %v", r)
		}
	}()
	if err := d.RunOnce(ctx); err != nil {
		d.log.Errorf("sweep failed: %v", err)
	}
}

// RunOnce performs a single scan-and-dispatch pass. Exported so one pass can
// be driven directly in tests or cron-like setups.
func (d *Daemon) RunOnce(ctx context.Context) error {
	subs, err := d.store.PendingSubmissions(ctx, d.cfg.Batch)
	if err != nil {
		return err
	}
	defer metrics.DaemonScans.Inc()
	if len(subs) == 0 {
		return nil
	}

	for _, sub := range subs {
		if err := d.dispatchOne(ctx, sub); err != nil {
			metrics.DaemonErrors.Inc()
			d.log.Errorf("submission %s: %v", sub.ID, err)
		}
	}
	return nil
}

// dispatchOne queues a scrape task for sub unless one is already in flight.
// The check-then-dispatch window is racy across processes; a lost race means
// duplicate work, bounded by the mapping TTL, never corruption.
func (d *Daemon) dispatchOne(ctx context.Context, sub domain.Submission) error {
	existing, err := d.bridge.TaskIDForSubmission(ctx, sub.ID)
	if err != nil {
		return err
	}
	if existing != "" {
		d.log.Debugf("submission %s already has task %s", sub.ID, existing)
		return nil
	}

	taskID, err := d.bridge.QueueScrapeTask(ctx, sub.ID, sub.URL)
	if err != nil {
		metrics.DispatchFailures.WithLabelValues("scrape_product_reviews").Inc()
		return err
	}
	metrics.TasksDispatched.WithLabelValues("scrape_product_reviews").Inc()
	d.log.Infof("queued task %s for submission %s", taskID, sub.ID)
	return d.bridge.StoreTaskID(ctx, sub.ID, taskID)
}
