package bibio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/hyperjump/shogo/internal/index"
	"github.com/hyperjump/shogo/internal/models"
)

// WriteMatches writes one CSV row per query with its top matches: the query's
// identifying fields, then match_N_item / match_N_score / match_N_entry
// columns for each match slot, then the per-query diagnostics.
func WriteMatches(path string, queries []models.BibRecord, results []models.MatchResult, idx *index.Index, topN int) error {
	if len(queries) < len(results) {
		return fmt.Errorf("write matches: %d results for %d queries", len(results), len(queries))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"title", "authors", "year", "journal", "doi"}
	for j := 1; j <= topN; j++ {
		header = append(header,
			fmt.Sprintf("match_%d_item", j),
			fmt.Sprintf("match_%d_score", j),
			fmt.Sprintf("match_%d_entry", j),
		)
	}
	header = append(header, "candidates_searched", "search_time_ms")
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, res := range results {
		q := queries[i]

		year := ""
		if y, ok := q.YearValue(); ok {
			year = strconv.Itoa(y)
		}
		var authors []string
		for _, a := range q.Authors {
			authors = append(authors, a.Family)
		}
		row := []string{q.Title, joinComma(authors), year, q.Journal, q.DOI}

		for j := 0; j < topN; j++ {
			if j < len(res.Matches) {
				m := res.Matches[j]
				row = append(row,
					strconv.Itoa(m.ItemID),
					strconv.FormatFloat(m.Score, 'f', 2, 64),
					Citation(idx.Record(m.ItemID)),
				)
			} else {
				row = append(row, "", "", "")
			}
		}
		row = append(row,
			strconv.Itoa(res.CandidatesSearched),
			strconv.FormatFloat(float64(res.Elapsed.Microseconds())/1000.0, 'f', 1, 64),
		)
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	w.Flush()
	return w.Error()
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
