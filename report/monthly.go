// Package report renders monthly earnings summaries as PDF documents.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/warp/earnings-engine/earnings"
	"github.com/warp/earnings-engine/generic"
)

var dayColumns = []struct {
	title string
	width float64
}{
	{"Date", 24},
	{"Kind", 18},
	{"Work h", 16},
	{"Travel h", 16},
	{"Ordinary", 24},
	{"Overtime", 22},
	{"Standby", 22},
	{"Travel all.", 22},
	{"Total", 26},
}

// MonthlyPDF writes the summary as a one-table A4 report to w.
func MonthlyPDF(w io.Writer, summary *earnings.MonthlySummary) error {
	return build(summary).Output(w)
}

// WriteMonthlyPDF writes the report to dir and returns the file path.
func WriteMonthlyPDF(dir string, summary *earnings.MonthlySummary) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report dir: %w", err)
	}
	path := filepath.Join(dir, FileName(summary.Period))
	if err := build(summary).OutputFileAndClose(path); err != nil {
		return "", err
	}
	return path, nil
}

// FileName is the report file name of a period, e.g. earnings-2025-03.pdf.
func FileName(p generic.Period) string {
	return fmt.Sprintf("earnings-%s.pdf", p.Start.Time.Format("2006-01"))
}

func build(s *earnings.MonthlySummary) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Monthly earnings")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s to %s", s.Period.Start, s.Period.End))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range dayColumns {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, d := range s.Days {
		standby := decimal.Zero
		if d.Standby != nil {
			standby = d.Standby.TotalEarnings
		}
		o := d.Ordinary
		cells := []string{
			d.Date,
			string(d.Details.DayKind),
			o.Hours.Work.StringFixed(2),
			o.Hours.Travel.StringFixed(2),
			generic.FormatEuro(o.Earnings.Daily.Add(o.Earnings.Prorated).Add(o.Earnings.SpecialDay)),
			generic.FormatEuro(o.Earnings.Overtime()),
			generic.FormatEuro(standby),
			generic.FormatEuro(d.Allowances.Travel),
			generic.FormatEuro(d.TotalEarnings),
		}
		for i, c := range dayColumns {
			align := "R"
			if i < 2 {
				align = "L"
			}
			pdf.CellFormat(c.width, 6, cells[i], "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, "Totals")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	lines := []struct {
		label string
		value decimal.Decimal
	}{
		{"Ordinary earnings", s.OrdinaryTotal},
		{"  of which overtime", s.Earnings.Overtime()},
		{"  of which night bonus", s.Earnings.NightBonus},
		{"Standby earnings", s.Standby.Total},
		{"  of which indemnity", s.Standby.Indemnity},
		{"Travel allowance", s.Allowances.Travel},
		{"Total earnings", s.TotalEarnings},
		{"Meal reimbursement (not taxable)", s.Allowances.Meal},
	}
	for _, l := range lines {
		pdf.CellFormat(90, 6, l.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, generic.FormatEuro(l.value)+" EUR", "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
	pdf.CellFormat(0, 6, fmt.Sprintf("Days: %d worked, %d full, %d partial, %d special, %d leave, %d standby",
		s.Counts.Worked, s.Counts.Full, s.Counts.Partial, s.Counts.Special, s.Counts.Leave, s.Counts.Standby),
		"", 1, "L", false, 0, "")
	if len(s.Skipped) > 0 {
		pdf.CellFormat(0, 6, fmt.Sprintf("Skipped entries: %d", len(s.Skipped)), "", 1, "L", false, 0, "")
	}
	return pdf
}
