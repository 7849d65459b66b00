package store_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/maildive/maildive/internal/model"
	"github.com/maildive/maildive/internal/store"

	"github.com/stretchr/testify/require"
)

func initDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.InitDB(t.Context(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return db
}

func testReport(session, email string, started time.Time) model.Report {
	return model.Report{
		SessionID: session,
		Email:     model.MustParseEmail(email),
		Started:   started,
		Finished:  started.Add(time.Minute),
		Tools: map[model.ToolKind]model.ToolSection{
			model.ToolHolehe: {Result: model.ToolRunResult{Tool: model.ToolHolehe, Succeeded: true}},
		},
		Probes: []model.ProbeFinding{
			{Site: "spotify", Status: model.ProbeRegistered},
		},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()
	db := initDB(t)

	rep := testReport("s-1", "jane.doe@example.com", time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC))
	require.NoError(t, store.Save(t.Context(), db, rep))

	back, err := store.Load(t.Context(), db, "s-1")
	require.NoError(t, err)
	require.Equal(t, "s-1", back.SessionID)
	require.Equal(t, "jane.doe@example.com", back.Email.String())
	require.True(t, rep.Started.Equal(back.Started))
	require.True(t, back.Tools[model.ToolHolehe].Result.Succeeded)
	require.Equal(t, []string{"spotify"}, back.RegisteredSites())

	_, err = store.Load(t.Context(), db, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestStoreListing(t *testing.T) {
	t.Parallel()
	db := initDB(t)

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(t.Context(), db, testReport("s-1", "jane.doe@example.com", base)))
	require.NoError(t, store.Save(t.Context(), db, testReport("s-2", "john@example.com", base.Add(time.Hour))))
	require.NoError(t, store.Save(t.Context(), db, testReport("s-3", "jane.doe@example.com", base.Add(2*time.Hour))))

	rows, err := store.Recent(t.Context(), db, 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "s-3", rows[0].SessionID)
	require.Equal(t, "s-2", rows[1].SessionID)
	require.Equal(t, "s-1", rows[2].SessionID)
	require.Equal(t, 1, rows[0].ToolsSucceeded)
	require.Equal(t, 1, rows[0].SitesRegistered)
	require.Equal(t, "2026-03-14T11:00:00Z", rows[0].Started)

	rows, err = store.Recent(t.Context(), db, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	rows, err = store.ByEmail(t.Context(), db, "jane.doe@example.com")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "s-3", rows[0].SessionID)
	require.Equal(t, "s-1", rows[1].SessionID)
}

func TestStoreDelete(t *testing.T) {
	t.Parallel()
	db := initDB(t)

	rep := testReport("s-1", "jane.doe@example.com", time.Now().UTC())
	require.NoError(t, store.Save(t.Context(), db, rep))

	require.NoError(t, store.Delete(t.Context(), db, "s-1"))

	rows, err := store.Recent(t.Context(), db, 10)
	require.NoError(t, err)
	require.Empty(t, rows)

	require.ErrorIs(t, store.Delete(t.Context(), db, "s-1"), store.ErrNotFound)
}

func TestStore_DuplicateSession(t *testing.T) {
	t.Parallel()
	db := initDB(t)

	rep := testReport("s-1", "jane.doe@example.com", time.Now().UTC())
	require.NoError(t, store.Save(t.Context(), db, rep))
	require.Error(t, store.Save(t.Context(), db, rep))
}
