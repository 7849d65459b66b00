package dispatch

import (
	"context"
	"log/slog"

	"github.com/maildive/maildive/internal/model"
)

// queueCap bounds each per tool queue. The expected load is one submission
// per tool and scan cycle, so the queues are effectively unbounded.
const queueCap = 64

// Adapter is the dispatch view of one external tool. osint.Adapter is the
// production implementation.
type Adapter interface {
	Kind() model.ToolKind
	Probe(ctx context.Context) model.ToolAvailability
	Run(ctx context.Context, job model.ScanJob) model.ToolRunResult
}

// worker owns the single goroutine driving one tool. Jobs arrive on in and
// every picked up job leaves exactly one result on out. Closing stop ends
// the loop without draining whatever is still queued.
type worker struct {
	adapter Adapter
	in      chan model.ScanJob
	out     chan model.ToolRunResult
	stop    chan struct{}
	done    chan struct{}
}

func newWorker(adapter Adapter) *worker {
	return &worker{
		adapter: adapter,
		in:      make(chan model.ScanJob, queueCap),
		out:     make(chan model.ToolRunResult, queueCap),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// loop runs until stop is closed. The bare stop check comes first on every
// turn so that a pending stop wins over a pending job.
func (w *worker) loop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-w.stop:
			return
		default:
		}

		select {
		case <-w.stop:
			return
		case job := <-w.in:
			slog.DebugContext(ctx, "job picked up", "scan_id", job.ScanID)
			res := w.adapter.Run(ctx, job)
			select {
			case w.out <- res:
			case <-w.stop:
				slog.DebugContext(ctx, "stopped before the result was queued, dropping it",
					"scan_id", job.ScanID)
				return
			}
		}
	}
}
