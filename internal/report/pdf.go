// Package report renders the portal's downloadable PDF exports.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"

	"emportal/internal/backend"
)

// HolidayCalendar renders a year's holidays grouped by month.
func HolidayCalendar(year int, holidays []backend.Holiday) ([]byte, error) {
	sorted := make([]backend.Holiday, len(holidays))
	copy(sorted, holidays)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DateString < sorted[j].DateString
	})

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, fmt.Sprintf("Holiday Calendar %d", year))
	pdf.Ln(12)

	currentMonth := time.Month(0)
	for _, holiday := range sorted {
		date, err := holiday.Date()
		if err != nil {
			continue
		}
		if date.Month() != currentMonth {
			currentMonth = date.Month()
			pdf.Ln(3)
			pdf.SetFont("Helvetica", "B", 13)
			pdf.Cell(0, 8, currentMonth.String())
			pdf.Ln(8)
		}
		pdf.SetFont("Helvetica", "", 11)
		kind := holiday.Type
		if holiday.Optional {
			kind += ", optional"
		}
		pdf.Cell(0, 7, fmt.Sprintf("%s  %s (%s)", date.Format("Mon 02 Jan"), holiday.Name, kind))
		pdf.Ln(6)
	}
	if len(sorted) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.Cell(0, 8, "No holidays recorded for this year.")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LeaveHistory renders a leave list as a table, one row per request.
func LeaveHistory(title string, leaves []backend.Leave) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 10)
	widths := []float64{35, 25, 25, 25, 15, 25, 40}
	headers := []string{"Employee", "Type", "From", "To", "Days", "Status", "Reason"}
	for i, header := range headers {
		pdf.CellFormat(widths[i], 7, header, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, leave := range leaves {
		cells := []string{
			leave.EmployeeName,
			leave.LeaveType,
			leave.StartDate,
			leave.EndDate,
			fmt.Sprintf("%d", leave.TotalDays),
			leave.Status,
			truncate(leave.Reason, 32),
		}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 6, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// truncate shortens by runes so a multi-byte reason is never cut
// mid-character.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
