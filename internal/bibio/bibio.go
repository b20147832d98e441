// Package bibio reads bibliographic records from tabular files (CSV, XLSX,
// ODS) and writes ranked match output. It is a thin adapter layer: the
// matching engine itself never performs I/O.
package bibio

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperjump/shogo/internal/models"
)

// ReadFile loads records from path, dispatching on the file extension.
// Supported: .csv, .xlsx, .ods.
func ReadFile(path string) ([]models.BibRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(path)
	case ".xlsx":
		return ReadXLSX(path)
	case ".ods":
		return ReadODS(path)
	default:
		return nil, fmt.Errorf("unsupported bibliography format %q (use .csv, .xlsx, or .ods)", filepath.Ext(path))
	}
}

// columnAliases maps folded header names to canonical field names.
var columnAliases = map[string]string{
	"title":   "title",
	"author":  "author",
	"authors": "author",
	"editor":  "author",
	"year":    "year",
	"date":    "year",
	"journal": "journal",
	"volume":  "volume",
	"number":  "number",
	"issue":   "number",
	"pages":   "pages",
	"doi":     "doi",
	"url":     "url",
}

var yearRe = regexp.MustCompile(`\b(\d{4})\b`)

// rowsToRecords converts header-plus-data rows into records. The first row is
// the header; rows without a title and authors are skipped. Only a missing
// title column is an error, since no downstream block can work without one.
func rowsToRecords(rows [][]string, source string) ([]models.BibRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: file has no rows", source)
	}

	cols := make(map[string]int)
	for i, h := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(h))
		if canonical, ok := columnAliases[key]; ok {
			if _, taken := cols[canonical]; !taken {
				cols[canonical] = i
			}
		}
	}
	if _, ok := cols["title"]; !ok {
		return nil, fmt.Errorf("%s: no title column in header %v", source, rows[0])
	}

	cell := func(row []string, field string) string {
		i, ok := cols[field]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []models.BibRecord
	for _, row := range rows[1:] {
		rec := models.BibRecord{
			Title:   cell(row, "title"),
			Authors: ParseAuthors(cell(row, "author")),
			Journal: cell(row, "journal"),
			Volume:  cell(row, "volume"),
			Number:  cell(row, "number"),
			Pages:   ParsePages(cell(row, "pages")),
			DOI:     cell(row, "doi"),
			URL:     cell(row, "url"),
		}
		if year, ok := ParseYear(cell(row, "year")); ok {
			rec.Year = &year
		}
		if rec.Title == "" && len(rec.Authors) == 0 {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// ParseAuthors splits an author field on " and " separators. Each name is
// either "Family, Given" or "Given Family" (last token is the family name).
func ParseAuthors(field string) []models.Author {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil
	}

	var authors []models.Author
	for _, name := range strings.Split(field, " and ") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if idx := strings.Index(name, ","); idx >= 0 {
			authors = append(authors, models.Author{
				Family: strings.TrimSpace(name[:idx]),
				Given:  strings.TrimSpace(name[idx+1:]),
			})
			continue
		}
		parts := strings.Fields(name)
		if len(parts) == 1 {
			authors = append(authors, models.Author{Family: parts[0]})
			continue
		}
		authors = append(authors, models.Author{
			Given:  strings.Join(parts[:len(parts)-1], " "),
			Family: parts[len(parts)-1],
		})
	}
	return authors
}

// ParseYear extracts the first four-digit year from a date field
// ("2003", "2003-05-01", "ca. 2003").
func ParseYear(field string) (int, bool) {
	m := yearRe.FindStringSubmatch(field)
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return year, true
}

// ParsePages parses "12-34", "12--34", or a single page into a range.
func ParsePages(field string) *models.PageRange {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil
	}
	for _, sep := range []string{"--", "-", "–"} {
		if idx := strings.Index(field, sep); idx > 0 {
			return &models.PageRange{
				Start: strings.TrimSpace(field[:idx]),
				End:   strings.TrimSpace(field[idx+len(sep):]),
			}
		}
	}
	return &models.PageRange{Start: field}
}

// Citation renders a record as a single human-readable line for match output:
// Family, Given and ... (Year). Title. Journal(Volume): Number, Pages.
func Citation(rec models.BibRecord) string {
	var parts []string

	var names []string
	for _, a := range rec.Authors {
		if a.Given != "" {
			names = append(names, a.Family+", "+a.Given)
		} else if a.Family != "" {
			names = append(names, a.Family)
		}
	}
	head := strings.Join(names, " and ")
	if year, ok := rec.YearValue(); ok {
		if head != "" {
			head += " "
		}
		head += "(" + strconv.Itoa(year) + ")"
	}
	if head != "" {
		parts = append(parts, head)
	}

	if rec.Title != "" {
		parts = append(parts, rec.Title)
	}

	if rec.Journal != "" {
		j := rec.Journal
		if rec.Volume != "" {
			j += "(" + rec.Volume + ")"
		}
		if rec.Number != "" {
			j += ": " + rec.Number
		}
		if rec.Pages != nil {
			j += ", " + rec.Pages.Start
			if rec.Pages.End != "" {
				j += "--" + rec.Pages.End
			}
		}
		parts = append(parts, j)
	}

	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ". ") + "."
}
