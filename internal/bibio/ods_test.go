package bibio

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func writeTempODS(t *testing.T, contentXML string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bib.ods")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create(odsContentPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(contentXML)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func odsRowXML(cells ...string) string {
	out := "<table-row>"
	for _, c := range cells {
		out += "<table-cell><p>" + c + "</p></table-cell>"
	}
	return out + "</table-row>"
}

func TestReadODS(t *testing.T) {
	content := `<?xml version="1.0"?>
<document-content><body><spreadsheet><table>` +
		odsRowXML("Title", "Authors", "Year", "Journal", "Volume", "Issue", "Pages", "DOI") +
		odsRowXML("On Denoting", "Russell, Bertrand", "1905", "Mind", "14", "56", "479--493", "10.1093/mind/XIV.4.479") +
		`</table></spreadsheet></body></document-content>`

	records, err := ReadODS(writeTempODS(t, content))
	if err != nil {
		t.Fatalf("ReadODS: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	r := records[0]
	if r.Title != "On Denoting" || r.Journal != "Mind" || r.Volume != "14" {
		t.Errorf("unexpected record: %+v", r)
	}
	if r.Pages == nil || r.Pages.Start != "479" || r.Pages.End != "493" {
		t.Errorf("pages = %+v", r.Pages)
	}
}

func TestReadODS_RepeatedColumns(t *testing.T) {
	// An empty cell with number-columns-repeated stands in for several
	// columns; the year must land in the right position.
	content := `<?xml version="1.0"?>
<document-content><body><spreadsheet><table>` +
		odsRowXML("title", "authors", "year") +
		`<table-row>` +
		`<table-cell><p>Zettel</p></table-cell>` +
		`<table-cell number-columns-repeated="1"><p></p></table-cell>` +
		`<table-cell><p>1967</p></table-cell>` +
		`</table-row>` +
		`</table></spreadsheet></body></document-content>`

	records, err := ReadODS(writeTempODS(t, content))
	if err != nil {
		t.Fatalf("ReadODS: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Title != "Zettel" {
		t.Errorf("title = %q", records[0].Title)
	}
	if y, ok := records[0].YearValue(); !ok || y != 1967 {
		t.Errorf("year = %d, %v; want 1967, true", y, ok)
	}
}

func TestReadODS_TrailingPaddingTrimmed(t *testing.T) {
	// Writers pad the last cell out to the sheet width with huge repeat
	// counts; the padding must not survive as cells.
	content := `<?xml version="1.0"?>
<document-content><body><spreadsheet><table>` +
		odsRowXML("title", "year") +
		`<table-row>` +
		`<table-cell><p>Zettel</p></table-cell>` +
		`<table-cell><p>1967</p></table-cell>` +
		`<table-cell number-columns-repeated="16384"><p></p></table-cell>` +
		`</table-row>` +
		`</table></spreadsheet></body></document-content>`

	records, err := ReadODS(writeTempODS(t, content))
	if err != nil {
		t.Fatalf("ReadODS: %v", err)
	}
	if len(records) != 1 || records[0].Title != "Zettel" {
		t.Errorf("records = %+v", records)
	}
}

func TestReadODS_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bib.ods")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadODS(path); err == nil {
		t.Error("expected error for non-zip input")
	}
}

func TestReadODS_NoTable(t *testing.T) {
	content := `<?xml version="1.0"?>
<document-content><body><spreadsheet></spreadsheet></body></document-content>`
	if _, err := ReadODS(writeTempODS(t, content)); err == nil {
		t.Error("expected error when no table present")
	}
}
