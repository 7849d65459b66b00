package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	gocron "github.com/go-co-op/gocron/v2"

	"github.com/maildive/maildive/internal/model"
)

// Watcher re-scans a fixed set of addresses on a schedule.
type Watcher struct {
	pipeline  *Pipeline
	queries   []model.EmailAddr
	scheduler gocron.Scheduler
	trigger   chan struct{}
}

func NewWatcher(ctx context.Context, cfg model.Config, scanner Scanner) (*Watcher, error) {
	if cfg.Watch == nil || !on(cfg.Watch.Enabled) {
		return nil, errors.New("watch is not configured")
	}
	if len(cfg.Watch.Queries) == 0 {
		return nil, errors.New("watch needs at least one address to scan")
	}

	queries := make([]model.EmailAddr, 0, len(cfg.Watch.Queries))
	for _, q := range cfg.Watch.Queries {
		email, err := model.ParseEmail(q)
		if err != nil {
			return nil, fmt.Errorf("watch query: %w", err)
		}
		queries = append(queries, email)
	}

	pipeline, err := NewPipeline(ctx, cfg, scanner)
	if err != nil {
		return nil, err
	}
	if cfg.Watch.Webhook != nil {
		hook, err := NewWebhook(*cfg.Watch.Webhook)
		if err != nil {
			pipeline.Close(ctx)
			return nil, fmt.Errorf("initializing webhook: %w", err)
		}
		pipeline.AddSink(hook)
	}

	w := &Watcher{
		pipeline: pipeline,
		queries:  queries,
		trigger:  make(chan struct{}, 1),
	}
	scheduler, err := newScheduler(ctx, cfg.Watch.Schedule, w.Trigger)
	if err != nil {
		pipeline.Close(ctx)
		return nil, err
	}
	w.scheduler = scheduler
	return w, nil
}

// Trigger requests one scan round outside the schedule. It never blocks, the
// request collapses into an already pending round.
func (w *Watcher) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Do runs the watch loop until ctx is canceled. Cancellation is a graceful
// stop, not an error.
func (w *Watcher) Do(ctx context.Context) error {
	slog.InfoContext(ctx, "starting the watch loop", "queries", len(w.queries))
	w.scheduler.Start()
	defer func() {
		if err := w.scheduler.Shutdown(); err != nil {
			slog.ErrorContext(ctx, "shutting down gocron has failed", "error", err)
		}
	}()
	defer w.pipeline.Close(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.trigger:
			w.round(ctx)
		}
	}
}

// round scans every watched address once, sequentially.
func (w *Watcher) round(ctx context.Context) {
	for _, email := range w.queries {
		if ctx.Err() != nil {
			return
		}
		rep, err := w.pipeline.Run(ctx, email)
		if err != nil {
			slog.ErrorContext(ctx, "watch scan failed", "email", email.String(), "error", err.Error())
			continue
		}
		slog.InfoContext(ctx, "watch scan finished",
			"email", email.String(),
			"session_id", rep.SessionID,
			"registered", len(rep.RegisteredSites()))
	}
}

func newScheduler(ctx context.Context, schedule string, task func()) (gocron.Scheduler, error) {
	every, err := model.ParseCron(schedule)
	if err != nil {
		return nil, fmt.Errorf("parsing watch schedule: %w", err)
	}
	slog.DebugContext(ctx, "successfully parsed", "cron", schedule, "every", every.String())

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("initializing gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.CronJob(schedule, false),
		gocron.NewTask(task),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing gocron job: %w", err)
	}
	return s, nil
}
