package model

import "context"

// Exporter delivers one finished report to a sink.
type Exporter interface {
	Export(ctx context.Context, rep Report) error
}

// ExportCloser is an Exporter holding a resource which must be released.
type ExportCloser interface {
	Exporter
	Close() error
}
