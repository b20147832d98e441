package bibio

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeTempXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetList()[0]
	for i, row := range rows {
		for j, cell := range row {
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellStr(sheet, ref, cell); err != nil {
				t.Fatal(err)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "bib.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestReadXLSX(t *testing.T) {
	path := writeTempXLSX(t, [][]string{
		{"Title", "Authors", "Year", "Journal", "Volume", "Issue", "Pages", "DOI"},
		{"On Denoting", "Russell, Bertrand", "1905", "Mind", "14", "56", "479--493", "10.1093/mind/XIV.4.479"},
		{"Naming and Necessity", "Kripke, Saul", "1980", "", "", "", "", ""},
	})

	records, err := ReadXLSX(path)
	if err != nil {
		t.Fatalf("ReadXLSX: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	r := records[0]
	if r.Title != "On Denoting" || r.Journal != "Mind" || r.DOI != "10.1093/mind/XIV.4.479" {
		t.Errorf("unexpected first record: %+v", r)
	}
	if y, ok := r.YearValue(); !ok || y != 1905 {
		t.Errorf("year = %d, %v; want 1905, true", y, ok)
	}
	if len(r.Authors) != 1 || r.Authors[0].Family != "Russell" {
		t.Errorf("authors = %+v", r.Authors)
	}
	if records[1].Title != "Naming and Necessity" {
		t.Errorf("second record title = %q", records[1].Title)
	}
}

func TestReadXLSX_MissingFile(t *testing.T) {
	if _, err := ReadXLSX(filepath.Join(t.TempDir(), "nope.xlsx")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReadFile_DispatchesXLSX(t *testing.T) {
	path := writeTempXLSX(t, [][]string{
		{"title", "authors", "year"},
		{"Zettel", "Wittgenstein, Ludwig", "1967"},
	})
	records, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(records) != 1 || records[0].Title != "Zettel" {
		t.Errorf("records = %+v", records)
	}
}
