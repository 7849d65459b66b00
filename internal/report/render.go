// Package report renders finished scans into their export formats and ships
// them to the configured sinks.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/maildive/maildive/internal/model"
)

// Render produces the raw bytes of rep in the given format, one of
// model.FormatJSON, model.FormatText or model.FormatPDF.
func Render(rep model.Report, format string) ([]byte, error) {
	switch format {
	case model.FormatJSON:
		return renderJSON(rep)
	case model.FormatText:
		return renderText(rep)
	case model.FormatPDF:
		return renderPDF(rep)
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// Ext maps a report format to its file extension.
func Ext(format string) string {
	switch format {
	case model.FormatText:
		return ".txt"
	case model.FormatPDF:
		return ".pdf"
	default:
		return ".json"
	}
}

// FileName is the canonical file name of one rendered report. All formats of
// one scan share the timestamp of its start.
func FileName(rep model.Report, format string) string {
	return fmt.Sprintf("email_scan_%s_%s%s",
		rep.Email.Slug(),
		rep.Started.Format("20060102-150405"),
		Ext(format))
}

func renderJSON(rep model.Report) ([]byte, error) {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func renderText(rep model.Report) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Email scan  %s\n", rep.Email)
	fmt.Fprintf(&b, "session     %s\n", rep.SessionID)
	fmt.Fprintf(&b, "started     %s\n", rep.Started.Format(time.RFC3339))
	fmt.Fprintf(&b, "took        %s\n", rep.Finished.Sub(rep.Started).Round(time.Millisecond))

	if len(rep.Probes) > 0 {
		b.WriteString("\nSignup probes\n")
		for _, p := range rep.Probes {
			fmt.Fprintf(&b, "  %-14s %-11s %s\n", p.Site, p.Status, p.Detail)
		}
	}

	if w := rep.Whois; w != nil {
		fmt.Fprintf(&b, "\nDomain %s\n", w.Domain)
		if w.Registrar != "" {
			fmt.Fprintf(&b, "  registrar     %s\n", w.Registrar)
		}
		if w.Created != "" {
			fmt.Fprintf(&b, "  created       %s\n", w.Created)
		}
		if w.Expires != "" {
			fmt.Fprintf(&b, "  expires       %s\n", w.Expires)
		}
		if len(w.NameServers) > 0 {
			fmt.Fprintf(&b, "  name servers  %s\n", strings.Join(w.NameServers, ", "))
		}
		if len(w.Statuses) > 0 {
			fmt.Fprintf(&b, "  status        %s\n", strings.Join(w.Statuses, ", "))
		}
	}

	b.WriteString("\nTools\n")
	for _, kind := range model.Kinds() {
		sec, ok := rep.Tools[kind]
		if !ok {
			continue
		}
		switch {
		case sec.Skipped:
			fmt.Fprintf(&b, "  %-10s skipped: %s\n", kind, sec.SkipNote)
		case sec.Result.Succeeded:
			fmt.Fprintf(&b, "  %-10s ok (%.1fs)\n", kind, sec.Elapsed)
		default:
			fmt.Fprintf(&b, "  %-10s failed, exit %d (%.1fs)\n", kind, sec.Result.ExitCode, sec.Elapsed)
		}
		if sec.Result.Succeeded {
			writeIndented(&b, sec.Result.Stdout)
		} else {
			writeIndented(&b, sec.Result.Stderr)
		}
	}
	return []byte(b.String()), nil
}

func writeIndented(b *strings.Builder, text string) {
	for line := range strings.Lines(strings.TrimRight(text, "\n")) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.WriteString("    ")
		b.WriteString(strings.TrimRight(line, "\n"))
		b.WriteByte('\n')
	}
}
