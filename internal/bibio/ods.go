package bibio

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/hyperjump/shogo/internal/models"
)

// odsContentPath is the path to the main content inside an .ods zip
// (OpenDocument Spreadsheet).
const odsContentPath = "content.xml"

// odsMaxRepeat bounds table:number-columns-repeated expansion; ODS pads the
// last cell of a row out to the sheet width with huge repeat counts.
const odsMaxRepeat = 256

type odsContent struct {
	Tables []odsTable `xml:"body>spreadsheet>table"`
}

type odsTable struct {
	Rows []odsRow `xml:"table-row"`
}

type odsRow struct {
	Cells []odsCell `xml:"table-cell"`
}

type odsCell struct {
	Repeated   int      `xml:"number-columns-repeated,attr"`
	Paragraphs []string `xml:"p"`
}

// ReadODS loads records from the first table of an OpenDocument spreadsheet.
// ODS is a ZIP containing content.xml; rows and cells are parsed from the
// table markup, honoring repeated-column shorthand.
func ReadODS(path string) ([]models.BibRecord, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open ODS %s: not a zip: %w", path, err)
	}
	defer zr.Close()

	var content *odsContent
	for _, f := range zr.File {
		if f.Name != odsContentPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open ODS %s: %w", f.Name, err)
		}
		var c odsContent
		err = xml.NewDecoder(rc).Decode(&c)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("parse ODS %s: %w", f.Name, err)
		}
		content = &c
		break
	}
	if content == nil || len(content.Tables) == 0 {
		return nil, fmt.Errorf("read ODS %s: no spreadsheet table found", path)
	}

	var rows [][]string
	for _, row := range content.Tables[0].Rows {
		var cells []string
		for _, cell := range row.Cells {
			text := strings.Join(cell.Paragraphs, "\n")
			repeat := cell.Repeated
			if repeat < 1 {
				repeat = 1
			}
			if repeat > odsMaxRepeat {
				repeat = odsMaxRepeat
			}
			for i := 0; i < repeat; i++ {
				cells = append(cells, text)
			}
		}
		// Trim the padding cells ODS appends to fill the sheet width.
		for len(cells) > 0 && cells[len(cells)-1] == "" {
			cells = cells[:len(cells)-1]
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	return rowsToRecords(rows, path)
}
