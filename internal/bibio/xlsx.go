package bibio

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/shogo/internal/models"
)

// ReadXLSX loads records from the first sheet of an Excel workbook.
func ReadXLSX(path string) ([]models.BibRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("read Excel %s: workbook has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheets[0], err)
	}
	return rowsToRecords(rows, path)
}
