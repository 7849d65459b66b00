package ui_test

import (
	"testing"
	"time"

	"github.com/maildive/maildive/internal/model"
	"github.com/maildive/maildive/internal/store"
	"github.com/maildive/maildive/internal/ui"

	"github.com/stretchr/testify/require"
)

func TestTools(t *testing.T) {
	t.Parallel()

	out := ui.Tools([]model.ToolAvailability{
		{Tool: model.ToolMaigret, Available: true},
		{Tool: model.ToolSherlock, Available: false},
	})
	require.Contains(t, out, "maigret")
	require.Contains(t, out, "ok")
	require.Contains(t, out, "sherlock")
	require.Contains(t, out, "missing")

	require.Contains(t, ui.Tools(nil), "no tools configured")
}

func TestSummary(t *testing.T) {
	t.Parallel()

	started := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	rep := model.Report{
		SessionID: "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		Email:     model.MustParseEmail("jane.doe@example.com"),
		Started:   started,
		Finished:  started.Add(42 * time.Second),
		Tools: map[model.ToolKind]model.ToolSection{
			model.ToolHolehe: {Result: model.ToolRunResult{Succeeded: true}},
			model.ToolMaigret: {Skipped: true, SkipNote: "tool unavailable"},
		},
		Probes: []model.ProbeFinding{
			{Site: "spotify", Status: model.ProbeRegistered},
		},
	}

	out := ui.Summary(rep, []string{"reports/a.json", "reports/a.txt"})
	require.Contains(t, out, "Scan jane.doe@example.com")
	require.Contains(t, out, "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	require.Contains(t, out, "42s")
	require.Contains(t, out, "1/2 succeeded")
	require.Contains(t, out, "spotify")
	require.Contains(t, out, "reports/a.json")
	require.Contains(t, out, "reports/a.txt")
}

func TestHistory(t *testing.T) {
	t.Parallel()

	out := ui.History([]store.ScanRow{
		{
			SessionID:       "s-1",
			Email:           "jane.doe@example.com",
			Started:         "2026-03-14T09:30:00Z",
			ToolsSucceeded:  2,
			SitesRegistered: 1,
		},
	})
	require.Contains(t, out, "s-1")
	require.Contains(t, out, "jane.doe@example.com")
	require.Contains(t, out, "tools: 2")
	require.Contains(t, out, "registered: 1")

	require.Contains(t, ui.History(nil), "history is empty")
}
