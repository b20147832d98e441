package bibio

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/hyperjump/shogo/internal/models"
)

// ReadCSV loads records from a CSV file with a header row.
func ReadCSV(path string) ([]models.BibRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CSV: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows are common in hand-edited exports
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV %s: %w", path, err)
	}
	return rowsToRecords(rows, path)
}
