// Package ui renders CLI output for humans. Styles degrade to plain text on
// a non terminal, so the content can be piped and grepped.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/maildive/maildive/internal/model"
	"github.com/maildive/maildive/internal/store"
)

// Tools renders the start-up probe outcome, one line per tool.
func Tools(avs []model.ToolAvailability) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Tools") + "\n")
	for _, av := range avs {
		status := "ok"
		if !av.Available {
			status = "missing"
		}
		fmt.Fprintf(&b, "  %s %s\n",
			LabelStyle.Render(av.Tool.String()),
			StatusStyle(av.Available).Render(status))
	}
	if len(avs) == 0 {
		b.WriteString(MutedStyle.Render("  no tools configured") + "\n")
	}
	return b.String()
}

// Summary renders the outcome of one finished scan. files names the export
// files the scan produced, nil when the report went to stdout.
func Summary(rep model.Report, files []string) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Scan "+rep.Email.String()) + "\n")

	row := func(label, value string) {
		fmt.Fprintf(&b, "  %s %s\n", LabelStyle.Render(label), value)
	}
	row("session", MutedStyle.Render(rep.SessionID))
	row("took", ValueStyle.Render(rep.Finished.Sub(rep.Started).Round(time.Millisecond).String()))
	row("tools", ValueStyle.Render(fmt.Sprintf("%d/%d succeeded", rep.SucceededTools(), len(rep.Tools))))

	if sites := rep.RegisteredSites(); len(sites) > 0 {
		row("registered", WarnStyle.Render(strings.Join(sites, ", ")))
	}
	for i, file := range files {
		label := "saved"
		if i > 0 {
			label = ""
		}
		row(label, PathStyle.Render(file))
	}
	return b.String()
}

// History renders stored scan rows, newest first as the store returns them.
func History(rows []store.ScanRow) string {
	if len(rows) == 0 {
		return MutedStyle.Render("history is empty") + "\n"
	}
	var b strings.Builder
	for _, r := range rows {
		registered := fmt.Sprintf("registered: %d", r.SitesRegistered)
		if r.SitesRegistered > 0 {
			registered = WarnStyle.Render(registered)
		}
		fmt.Fprintf(&b, "%s  %s  %s  tools: %d  %s\n",
			MutedStyle.Render(r.Started),
			r.SessionID,
			ValueStyle.Render(r.Email),
			r.ToolsSucceeded,
			registered,
		)
	}
	return b.String()
}
