package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/maildive/maildive/internal/dispatch"
	"github.com/maildive/maildive/internal/log"
	"github.com/maildive/maildive/internal/model"
	"github.com/maildive/maildive/internal/osint"
	"github.com/maildive/maildive/internal/probe"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// collectGrace pads the wait for a tool result beyond the tool's own run
// budget, covering the handoff through the dispatch queue.
const collectGrace = 30 * time.Second

// Coordinator owns one dispatch manager and merges tool results, signup page
// probes and whois enrichment into a single report per scanned address.
type Coordinator struct {
	scanMu   sync.Mutex // one scan session at a time, results are matched by scan id
	adapters []dispatch.Adapter
	manager  *dispatch.Manager
	prober   *probe.Prober
	probesOn bool
	whoisOn  bool
}

// New builds a coordinator for the tool catalog described by cfg. Tool
// scripts are resolved under cfg.ToolsRoot, defaulting to the home directory.
func New(cfg model.Config) (*Coordinator, error) {
	specs, err := osint.Specs(cfg)
	if err != nil {
		return nil, err
	}

	var root string
	if cfg.ToolsRoot != nil {
		root = *cfg.ToolsRoot
	} else if home, err := os.UserHomeDir(); err == nil {
		root = home
	}

	adapters := make([]dispatch.Adapter, 0, len(specs))
	for _, spec := range specs {
		adapters = append(adapters, osint.New(spec, root))
	}

	return &Coordinator{
		adapters: adapters,
		manager:  dispatch.New(adapters...),
		prober:   probe.New(cfg),
		probesOn: cfg.Probes == nil || on(cfg.Probes.Enabled),
		whoisOn:  cfg.Whois == nil || on(cfg.Whois.Enabled),
	}, nil
}

// WithAdapters replaces the adapter catalog and the dispatch manager built
// from it. This method exists for unit testing only.
func (c *Coordinator) WithAdapters(adapters ...dispatch.Adapter) *Coordinator {
	c.adapters = adapters
	c.manager = dispatch.New(adapters...)
	return c
}

// WithProber replaces the signup page prober. This method exists for unit
// testing only.
func (c *Coordinator) WithProber(p *probe.Prober) *Coordinator {
	c.prober = p
	return c
}

// Start probes the catalog and spawns one worker per available tool. Partial
// or even zero availability is not an error.
func (c *Coordinator) Start(ctx context.Context) error {
	return c.manager.Start(ctx)
}

// Shutdown stops the dispatch workers. Safe to call more than once.
func (c *Coordinator) Shutdown(ctx context.Context) {
	c.manager.Shutdown(ctx)
}

// Availability reports the cached start-up probe results.
func (c *Coordinator) Availability() []model.ToolAvailability {
	return c.manager.Availability()
}

// Scan runs every configured source against email and blocks until all of
// them answered or ran out of budget. Failures of individual sources end up
// inside the report, Scan itself fails only when it cannot run at all.
func (c *Coordinator) Scan(ctx context.Context, email model.EmailAddr) (model.Report, error) {
	if email.IsZero() {
		return model.Report{}, fmt.Errorf("scan: %w", model.ErrInvalidEmail)
	}
	if !c.manager.Running() {
		return model.Report{}, errors.New("scan: manager is not running")
	}

	c.scanMu.Lock()
	defer c.scanMu.Unlock()

	report := model.Report{
		SessionID:    uuid.New().String(),
		Email:        email,
		Started:      time.Now().UTC(),
		Availability: make(map[model.ToolKind]model.ToolAvailability),
		Tools:        make(map[model.ToolKind]model.ToolSection),
	}
	for _, av := range c.manager.Availability() {
		report.Availability[av.Tool] = av
	}

	ctx = log.ContextAttrs(ctx,
		slog.String("session_id", report.SessionID),
		slog.String("email", email.String()))
	slog.InfoContext(ctx, "scan started")

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	if c.probesOn {
		g.Go(func() error {
			findings := c.prober.Check(gctx, email)
			mu.Lock()
			report.Probes = findings
			mu.Unlock()
			return nil
		})
	}
	if c.whoisOn {
		g.Go(func() error {
			rec, err := probe.Lookup(gctx, email.Domain())
			if err != nil {
				slog.WarnContext(gctx, "whois lookup failed",
					"domain", email.Domain(),
					"error", err.Error())
				return nil
			}
			mu.Lock()
			report.Whois = rec
			mu.Unlock()
			return nil
		})
	}
	for _, adapter := range c.adapters {
		g.Go(func() error {
			kind, section := c.runTool(gctx, adapter, email)
			mu.Lock()
			report.Tools[kind] = section
			mu.Unlock()
			return nil
		})
	}
	// every branch reports its failures inside the report
	_ = g.Wait()

	report.Finished = time.Now().UTC()
	slog.InfoContext(ctx, "scan finished",
		"tools_succeeded", report.SucceededTools(),
		"elapsed", report.Finished.Sub(report.Started).String())
	return report, nil
}

// runTool pushes one job through the dispatch manager and shapes whatever
// comes back into a report section.
func (c *Coordinator) runTool(ctx context.Context, adapter dispatch.Adapter, email model.EmailAddr) (model.ToolKind, model.ToolSection) {
	kind := adapter.Kind()
	query := email.String()
	if lp, ok := adapter.(interface{ LocalPart() bool }); ok && lp.LocalPart() {
		query = email.Local()
	}

	started := time.Now()
	id, err := c.manager.Submit(kind, query)
	if err != nil {
		slog.DebugContext(ctx, "tool skipped", "tool", kind.String(), "reason", err.Error())
		return kind, model.ToolSection{Skipped: true, SkipNote: err.Error()}
	}

	budget := collectGrace
	if bt, ok := adapter.(interface{ Timeout() time.Duration }); ok {
		budget += bt.Timeout()
	}
	res, err := c.collect(ctx, kind, id, budget)
	if err != nil {
		slog.WarnContext(ctx, "tool result never arrived",
			"tool", kind.String(),
			"scan_id", id,
			"error", err.Error())
		return kind, model.ToolSection{
			Skipped:  true,
			SkipNote: err.Error(),
			Elapsed:  time.Since(started).Seconds(),
		}
	}
	return kind, model.ToolSection{Result: res, Elapsed: time.Since(started).Seconds()}
}

// collect drains results for tool until the one matching id shows up or the
// budget is spent. Results under other scan ids are leftovers of an earlier
// abandoned wait and get dropped.
func (c *Coordinator) collect(ctx context.Context, tool model.ToolKind, id string, budget time.Duration) (model.ToolRunResult, error) {
	deadline := time.Now().Add(budget)
	for {
		res, err := c.manager.Collect(tool, time.Until(deadline))
		if err != nil {
			return model.ToolRunResult{}, err
		}
		if res.ScanID == id {
			return res, nil
		}
		slog.DebugContext(ctx, "stale result dropped",
			"tool", tool.String(),
			"want", id,
			"got", res.ScanID)
	}
}

func on(b *bool) bool {
	return b == nil || *b
}
