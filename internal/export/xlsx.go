package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"contractocr/internal/domain"
)

const sheetName = "Extractions"

// WriteXLSX writes a batch of extraction records as an Excel workbook with a
// single sheet, one row per extraction, using the same column layout as the
// CSV export.
func WriteXLSX(w io.Writer, extractions []domain.Extraction) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := range extractions {
		row := extractionToRow(&extractions[i])
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("computing cell name: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
