package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/maildive/maildive/internal/log"
	"github.com/maildive/maildive/internal/model"
)

// Lifecycle states. A Manager moves strictly forward, there is no restart.
const (
	stateCreated int32 = iota
	stateStarting
	stateRunning
	stateStopping
	stateStopped
)

// workerJoinTimeout bounds how long Shutdown waits for a single worker.
const workerJoinTimeout = 2 * time.Second

// Manager runs one worker per available tool and mediates all traffic
// between callers and the workers. All methods are safe for concurrent use.
type Manager struct {
	state    atomic.Int32
	counter  atomic.Uint64
	adapters []Adapter
	workers  map[model.ToolKind]*worker // filled by Start, read only afterwards
	avail    []model.ToolAvailability
}

// New returns a Manager in its initial state driving the given adapters.
// Nothing runs until Start.
func New(adapters ...Adapter) *Manager {
	return &Manager{adapters: adapters}
}

// Start probes every adapter once, in parallel, and spawns workers for the
// tools which answered. Unavailable tools are not an error, Submit rejects
// them later.
func (m *Manager) Start(ctx context.Context) error {
	if !m.state.CompareAndSwap(stateCreated, stateStarting) {
		return fmt.Errorf("dispatch: manager can only be started once")
	}

	m.avail = make([]model.ToolAvailability, len(m.adapters))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range m.adapters {
		g.Go(func() error {
			m.avail[i] = a.Probe(gctx)
			return nil
		})
	}
	// probes never fail, they report
	_ = g.Wait()

	m.workers = make(map[model.ToolKind]*worker, len(m.adapters))
	runCtx := context.WithoutCancel(ctx)
	for i, a := range m.adapters {
		if !m.avail[i].Available {
			continue
		}
		w := newWorker(a)
		m.workers[a.Kind()] = w
		go w.loop(log.ContextAttrs(runCtx, slog.String("tool", a.Kind().String())))
	}

	m.state.Store(stateRunning)
	slog.InfoContext(ctx, "dispatch manager started",
		"probed", len(m.adapters),
		"workers", len(m.workers))
	return nil
}

// Running reports whether Start has finished and Shutdown has not begun.
func (m *Manager) Running() bool {
	return m.state.Load() == stateRunning
}

// Availability reports the probe outcome of every adapter, in adapter order.
// It returns nil before Start has finished.
func (m *Manager) Availability() []model.ToolAvailability {
	if m.state.Load() < stateRunning {
		return nil
	}
	return slices.Clone(m.avail)
}

// Submit enqueues one query for tool and returns the scan id correlating the
// eventual result. It never waits for the execution itself.
func (m *Manager) Submit(tool model.ToolKind, query string) (string, error) {
	switch m.state.Load() {
	case stateStopping, stateStopped:
		return "", model.ErrManagerStopped
	case stateRunning:
	default:
		return "", fmt.Errorf("%s: %w", tool, model.ErrToolUnavailable)
	}
	w, ok := m.workers[tool]
	if !ok {
		return "", fmt.Errorf("%s: %w", tool, model.ErrToolUnavailable)
	}

	job := model.ScanJob{
		Query:  query,
		ScanID: fmt.Sprintf("%s-%06d", tool, m.counter.Add(1)),
	}
	select {
	case w.in <- job:
		return job.ScanID, nil
	case <-w.stop:
		return "", model.ErrManagerStopped
	}
}

// Collect blocks up to timeout for the next finished result of tool.
// Results come in completion order. A caller matching one particular
// submission compares the scan id and calls Collect again on a mismatch.
func (m *Manager) Collect(tool model.ToolKind, timeout time.Duration) (model.ToolRunResult, error) {
	switch m.state.Load() {
	case stateStopping, stateStopped:
		return model.ToolRunResult{}, model.ErrManagerStopped
	case stateRunning:
	default:
		return model.ToolRunResult{}, fmt.Errorf("%s: %w", tool, model.ErrToolUnavailable)
	}
	w, ok := m.workers[tool]
	if !ok {
		return model.ToolRunResult{}, fmt.Errorf("%s: %w", tool, model.ErrToolUnavailable)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case res := <-w.out:
		return res, nil
	case <-timer.C:
		return model.ToolRunResult{}, fmt.Errorf("%s after %s: %w", tool, timeout, model.ErrNoResult)
	}
}

// Shutdown stops every worker and waits a bounded time for each one to exit.
// Calling it again has no further effect.
func (m *Manager) Shutdown(ctx context.Context) {
	if !m.state.CompareAndSwap(stateRunning, stateStopping) {
		// never started or already stopping
		m.state.CompareAndSwap(stateCreated, stateStopped)
		return
	}

	for _, w := range m.workers {
		close(w.stop)
	}
	// TODO: forward a kill to the subprocess of a worker stuck inside a long
	// invocation instead of waiting the invocation out.
	for kind, w := range m.workers {
		timer := time.NewTimer(workerJoinTimeout)
		select {
		case <-w.done:
			timer.Stop()
		case <-timer.C:
			slog.WarnContext(ctx, "worker still busy, abandoning it", "tool", kind.String())
		}
	}

	m.state.Store(stateStopped)
	slog.InfoContext(ctx, "dispatch manager stopped")
}
