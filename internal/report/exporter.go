package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/maildive/maildive/internal/model"
)

// WriterExporter renders one format to a stream. Used for stdout.
type WriterExporter struct {
	w      io.Writer
	format string
}

func NewWriterExporter(w io.Writer, format string) WriterExporter {
	return WriterExporter{w: w, format: format}
}

func (e WriterExporter) Export(_ context.Context, rep model.Report) error {
	if e.w == nil {
		e.w = os.Stdout
	}
	b, err := Render(rep, e.format)
	if err != nil {
		return err
	}
	_, err = e.w.Write(b)
	return err
}

// DirExporter writes every configured format of a report into one directory.
type DirExporter struct {
	root    *os.Root
	formats []string
}

// NewDirExporter opens dir, creating it first when missing, and renders the
// given formats into it on every Export.
func NewDirExporter(dir string, formats ...string) (*DirExporter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, err
	}
	return &DirExporter{root: root, formats: formats}, nil
}

func (e *DirExporter) Export(ctx context.Context, rep model.Report) error {
	if e.root == nil {
		return errors.New("exporter already closed")
	}
	for _, format := range e.formats {
		b, err := Render(rep, format)
		if err != nil {
			return err
		}
		name := FileName(rep, format)
		f, err := e.root.Create(name)
		if err != nil {
			return fmt.Errorf("creating report: %w", err)
		}
		if _, err := f.Write(b); err != nil {
			_ = f.Close()
			return fmt.Errorf("saving report: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing report: %w", err)
		}
		slog.InfoContext(ctx, "report saved", "path", name)
	}
	return nil
}

func (e *DirExporter) Close() error {
	if e.root == nil {
		return errors.New("exporter already closed")
	}
	err := e.root.Close()
	e.root = nil
	return err
}

// Multi fans one report out to every sink. Sinks are independent, a failing
// one does not stop the others.
type Multi []model.Exporter

func (m Multi) Export(ctx context.Context, rep model.Report) error {
	var errs []error
	for _, e := range m {
		if err := e.Export(ctx, rep); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, e := range m {
		if c, ok := e.(model.ExportCloser); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Dir returns the configured report directory.
func Dir(cfg model.Config) string {
	if cfg.Reports != nil && cfg.Reports.Dir != nil {
		return *cfg.Reports.Dir
	}
	return "reports"
}

// Formats returns the configured export formats.
func Formats(cfg model.Config) []string {
	if cfg.Reports != nil && len(cfg.Reports.Formats) > 0 {
		return cfg.Reports.Formats
	}
	return []string{model.FormatJSON, model.FormatText}
}

// Paths tells where the files of one report end up. Nil without a reports
// section, the report then goes to stdout instead of disk.
func Paths(cfg model.Config, rep model.Report) []string {
	if cfg.Reports == nil {
		return nil
	}
	formats := Formats(cfg)
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		paths = append(paths, filepath.Join(Dir(cfg), FileName(rep, format)))
	}
	return paths
}

// FromConfig builds the sinks for cfg. Without a reports section everything
// goes to stdout as text.
func FromConfig(cfg model.Config) ([]model.Exporter, error) {
	if cfg.Reports == nil {
		return []model.Exporter{NewWriterExporter(os.Stdout, model.FormatText)}, nil
	}
	e, err := NewDirExporter(Dir(cfg), Formats(cfg)...)
	if err != nil {
		return nil, err
	}
	return []model.Exporter{e}, nil
}

// List names the saved reports under dir, sorted by name. A missing
// directory is not an error, there is simply nothing saved yet.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "email_scan_") {
			continue
		}
		names = append(names, entry.Name())
	}
	slices.Sort(names)
	return names, nil
}
