// Package store keeps the local scan history in a sqlite database. Every
// finished scan is stored as one row carrying the full report document, the
// remaining columns exist for listing and filtering.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maildive/maildive/internal/model"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

// ScanRow is the listing view of one stored scan. Started and Finished hold
// RFC 3339 in UTC, which also makes them sort chronologically as text.
type ScanRow struct {
	ID              int
	SessionID       string
	Email           string
	Started         string
	Finished        string
	ToolsSucceeded  int
	SitesRegistered int
}

func (r ScanRow) String() string {
	return fmt.Sprintf("%s  %s  %s  tools: %d  registered: %d",
		r.Started, r.SessionID, r.Email, r.ToolsSucceeded, r.SitesRegistered)
}

// Path returns the configured history database location.
func Path(cfg model.Config) string {
	if cfg.History != nil && cfg.History.Path != nil {
		return *cfg.History.Path
	}
	return "history.db"
}

func InitDB(ctx context.Context, dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	_, err = db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS scans (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL,
			started TEXT NOT NULL,
			finished TEXT NOT NULL,
			tools_succeeded INTEGER NOT NULL,
			sites_registered INTEGER NOT NULL,
			report TEXT NOT NULL
		)`,
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Save persists one finished report. The session id must not have been saved
// before.
func Save(ctx context.Context, db *sql.DB, rep model.Report) error {
	doc, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encoding report failed: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO scans
			(session_id, email, started, finished, tools_succeeded, sites_registered, report)
		 VALUES (?,?,?,?,?,?,?);`,
		rep.SessionID,
		rep.Email.String(),
		rep.Started.UTC().Format(time.RFC3339),
		rep.Finished.UTC().Format(time.RFC3339),
		rep.SucceededTools(),
		len(rep.RegisteredSites()),
		string(doc),
	)
	if err != nil {
		return fmt.Errorf("executing sql insert failed: %w", err)
	}
	return nil
}

// Recent returns up to limit stored scans, newest first.
func Recent(ctx context.Context, db *sql.DB, limit int) ([]ScanRow, error) {
	return listRows(ctx, db,
		`SELECT id, session_id, email, started, finished, tools_succeeded, sites_registered
		 FROM scans ORDER BY started DESC, id DESC LIMIT ?`, limit)
}

// ByEmail returns all stored scans of one address, newest first.
func ByEmail(ctx context.Context, db *sql.DB, email string) ([]ScanRow, error) {
	return listRows(ctx, db,
		`SELECT id, session_id, email, started, finished, tools_succeeded, sites_registered
		 FROM scans WHERE email=? ORDER BY started DESC, id DESC`, email)
}

func listRows(ctx context.Context, db *sql.DB, query string, args ...any) ([]ScanRow, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing sql query failed: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []ScanRow
	for rows.Next() {
		var r ScanRow
		err := rows.Scan(
			&r.ID,
			&r.SessionID,
			&r.Email,
			&r.Started,
			&r.Finished,
			&r.ToolsSucceeded,
			&r.SitesRegistered,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning sql row failed: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sql rows failed: %w", err)
	}
	return out, nil
}

// Load returns the full report stored under sessionID, ErrNotFound when no
// scan with that session id exists.
func Load(ctx context.Context, db *sql.DB, sessionID string) (model.Report, error) {
	var doc string
	row := db.QueryRowContext(ctx,
		`SELECT report FROM scans WHERE session_id=?`, sessionID,
	)
	err := row.Scan(&doc)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return model.Report{}, ErrNotFound
	case err != nil:
		return model.Report{}, fmt.Errorf("executing sql query failed: %w", err)
	}

	var rep model.Report
	if err := json.Unmarshal([]byte(doc), &rep); err != nil {
		return model.Report{}, fmt.Errorf("decoding report failed: %w", err)
	}
	return rep, nil
}

// Delete removes the scan stored under sessionID, ErrNotFound when no scan
// with that session id exists.
func Delete(ctx context.Context, db *sql.DB, sessionID string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func(ctx context.Context, sessionID string) {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.ErrorContext(ctx, "Calling `tx.Rollback()` failed.", slog.String("session_id", sessionID))
		}
	}(ctx, sessionID)

	result, err := tx.ExecContext(ctx,
		`DELETE FROM scans WHERE session_id=?`, sessionID,
	)
	if err != nil {
		return fmt.Errorf("executing sql delete failed: %w", err)
	}

	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("fetching affected rows failed: %w", err)
	}
	if ra != 1 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction failed: %w", err)
	}

	return nil
}
