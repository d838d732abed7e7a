// Package export renders result tables for people: spreadsheets and charts.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/RMahshie/sparam/internal/sparams"
	"github.com/xuri/excelize/v2"
)

// XLSXContentType is the media type of WriteXLSX output.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteXLSX writes table as a workbook with a single sheet: a header row of
// column names followed by one row per frequency point.
func WriteXLSX(w io.Writer, table *sparams.Table, sheet string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(table.Columns))
	for i, name := range table.Header() {
		header[i] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := 0; i < table.Rows(); i++ {
		values := table.Row(i)
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ExportFileName returns {param}_{suffix}_data_{YYYYMMDD_HHMMSS}.xlsx.
func ExportFileName(p sparams.Parameter, mode sparams.DisplayMode, at time.Time) string {
	return fmt.Sprintf("%s_%s_data_%s.xlsx", p, mode.Suffix(), at.Format("20060102_150405"))
}
