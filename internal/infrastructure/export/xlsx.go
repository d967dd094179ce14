// Package export renders records for download: one spreadsheet row per
// record, or a printable PDF report grouped by day. Exporters only read.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/safad/worklog/internal/core/domain"
)

var xlsxHeader = []any{"Project Name", "Description", "Date", "Time", "Department", "Attachments", "Employee"}

// RecordFileName is the download name of a single-record spreadsheet.
func RecordFileName(r domain.Record, loc *time.Location) string {
	return "Record_" + r.Day(loc) + ".xlsx"
}

// WriteXLSX writes records as one sheet. A single record goes to a sheet
// named "Record", several to "Records".
func WriteXLSX(w io.Writer, records []domain.Record, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	sheet := "Records"
	if len(records) == 1 {
		sheet = "Record"
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &xlsxHeader); err != nil {
		return fmt.Errorf("xlsx: header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: style: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "G1", bold); err != nil {
		return fmt.Errorf("xlsx: style: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
		values := []any{
			r.ProjectName,
			r.Description,
			r.Date.In(loc).Format("January 2, 2006"),
			TimeRange(r),
			r.Department,
			len(r.Attachments),
			r.UserName,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("xlsx: row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(sheet, "A", "B", 32); err != nil {
		return fmt.Errorf("xlsx: column width: %w", err)
	}
	if err := f.SetColWidth(sheet, "C", "G", 18); err != nil {
		return fmt.Errorf("xlsx: column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

// TimeRange formats start and end as "09:30 AM - 11:59 PM". Unparsable
// values are passed through.
func TimeRange(r domain.Record) string {
	return twelveHour(r.StartTime) + " - " + twelveHour(r.EndTime)
}

func twelveHour(hhmm string) string {
	t, err := time.Parse(domain.ClockLayout, hhmm)
	if err != nil {
		return hhmm
	}
	return t.Format("03:04 PM")
}
