package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maildive/maildive/internal/model"
	"github.com/maildive/maildive/internal/report"
	"github.com/maildive/maildive/internal/store"
)

// Scanner runs one full scan of one address. Implemented by
// scan.Coordinator.
type Scanner interface {
	Scan(ctx context.Context, email model.EmailAddr) (model.Report, error)
}

// Pipeline glues one scan to its delivery. Every report goes to all
// configured sinks and, when history is enabled, into the local database.
type Pipeline struct {
	scanner Scanner
	sinks   []model.Exporter
	db      *sql.DB
}

func NewPipeline(ctx context.Context, cfg model.Config, scanner Scanner) (*Pipeline, error) {
	sinks, err := report.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing report sinks: %w", err)
	}

	p := &Pipeline{scanner: scanner, sinks: sinks}
	if cfg.History != nil && on(cfg.History.Enabled) {
		db, err := store.InitDB(ctx, store.Path(cfg))
		if err != nil {
			p.Close(ctx)
			return nil, fmt.Errorf("initializing history: %w", err)
		}
		p.db = db
	}
	return p, nil
}

// AddSink registers one more delivery target.
func (p *Pipeline) AddSink(e model.Exporter) {
	p.sinks = append(p.sinks, e)
}

// Run scans one address and delivers the report. The report is returned even
// when a sink or the history insert failed, the error then tells what was
// not delivered.
func (p *Pipeline) Run(ctx context.Context, email model.EmailAddr) (model.Report, error) {
	rep, err := p.scanner.Scan(ctx, email)
	if err != nil {
		return model.Report{}, err
	}

	var errs []error
	if err := report.Multi(p.sinks).Export(ctx, rep); err != nil {
		errs = append(errs, err)
	}
	if p.db != nil {
		if err := store.Save(ctx, p.db, rep); err != nil {
			errs = append(errs, err)
		}
	}
	return rep, errors.Join(errs...)
}

// Close releases the sinks and the history database.
func (p *Pipeline) Close(ctx context.Context) {
	for _, sink := range p.sinks {
		if closer, ok := sink.(model.ExportCloser); ok {
			if err := closer.Close(); err != nil {
				slog.ErrorContext(ctx, "closing report sink have failed", "error", err)
			}
		}
	}
	p.sinks = nil
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			slog.ErrorContext(ctx, "closing history database have failed", "error", err)
		}
		p.db = nil
	}
}

func on(b *bool) bool {
	return b == nil || *b
}
