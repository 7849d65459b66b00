package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	gofpdf "github.com/go-pdf/fpdf"

	"github.com/maildive/maildive/internal/model"
)

// maxToolOutput bounds how much captured tool output goes into the PDF, the
// JSON export keeps the full text.
const maxToolOutput = 4000

func renderPDF(rep model.Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(30, 41, 59)
	pdf.CellFormat(0, 10, "Email scan report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.CellFormat(0, 6, rep.Email.String(), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "session "+rep.SessionID, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, rep.Started.Format("2006-01-02 15:04:05 UTC"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	addProbeTable(pdf, rep)
	addWhoisSection(pdf, rep)
	addToolSections(pdf, rep)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(30, 41, 59)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func addProbeTable(pdf *gofpdf.Fpdf, rep model.Report) {
	if len(rep.Probes) == 0 {
		return
	}
	sectionHeader(pdf, "Signup probes")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(30, 41, 59)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(45, 7, "Site", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 7, "Status", "1", 0, "C", true, 0, "")
	pdf.CellFormat(0, 7, "Detail", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, p := range rep.Probes {
		if p.Status == model.ProbeRegistered {
			pdf.SetTextColor(220, 38, 38)
		} else {
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.CellFormat(45, 7, p.Site, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, string(p.Status), "1", 0, "C", false, 0, "")
		pdf.CellFormat(0, 7, p.Detail, "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addWhoisSection(pdf *gofpdf.Fpdf, rep model.Report) {
	w := rep.Whois
	if w == nil {
		return
	}
	sectionHeader(pdf, "Domain "+w.Domain)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	rows := []struct{ label, value string }{
		{"Registrar", w.Registrar},
		{"Created", w.Created},
		{"Expires", w.Expires},
		{"Name servers", strings.Join(w.NameServers, ", ")},
		{"Status", strings.Join(w.Statuses, ", ")},
	}
	for _, row := range rows {
		if row.value == "" {
			continue
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(35, 6, row.label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, row.value, "", "L", false)
	}
	pdf.Ln(4)
}

func addToolSections(pdf *gofpdf.Fpdf, rep model.Report) {
	sectionHeader(pdf, "Tools")

	for _, kind := range model.Kinds() {
		sec, ok := rep.Tools[kind]
		if !ok {
			continue
		}

		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(0, 0, 0)
		var status string
		switch {
		case sec.Skipped:
			pdf.SetTextColor(128, 128, 128)
			status = "skipped: " + sec.SkipNote
		case sec.Result.Succeeded:
			status = fmt.Sprintf("ok (%s)", time.Duration(sec.Elapsed*float64(time.Second)).Round(time.Millisecond))
		default:
			pdf.SetTextColor(220, 38, 38)
			status = fmt.Sprintf("failed, exit %d", sec.Result.ExitCode)
		}
		pdf.CellFormat(0, 7, fmt.Sprintf("%s  -  %s", kind, status), "", 1, "L", false, 0, "")

		output := sec.Result.Stdout
		if !sec.Result.Succeeded {
			output = sec.Result.Stderr
		}
		output = strings.TrimSpace(output)
		if output == "" {
			continue
		}
		if len(output) > maxToolOutput {
			output = output[:maxToolOutput] + "\n[truncated]"
		}
		pdf.SetFont("Courier", "", 8)
		pdf.SetTextColor(60, 60, 60)
		pdf.MultiCell(0, 4, output, "", "L", false)
		pdf.Ln(2)
	}
}
