// Package cli provides CLI output utilities for Shogo.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/shogo/internal/models"
	"github.com/hyperjump/shogo/pkg/utils"
)

// MatchOutputFormat is the format for match result output.
type MatchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText MatchOutputFormat = "text"
	// OutputCompact is one line per query.
	OutputCompact MatchOutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON MatchOutputFormat = "json"
)

// WriteMatchResults writes per-query match results to w in the given format.
// entry renders a bibliographic citation for an item id.
func WriteMatchResults(w io.Writer, queries []models.BibRecord, results []models.MatchResult, entry func(int) string, format MatchOutputFormat) error {
	switch format {
	case OutputJSON:
		return writeMatchResultsJSON(w, queries, results, entry)
	case OutputCompact:
		writeMatchResultsCompact(w, queries, results)
		return nil
	default:
		writeMatchResultsText(w, queries, results, entry)
		return nil
	}
}

type jsonMatch struct {
	ItemID   int     `json:"item_id"`
	Score    float64 `json:"score"`
	DOIMatch bool    `json:"doi_match,omitempty"`
	Entry    string  `json:"entry"`
}

type jsonResult struct {
	QueryIndex         int         `json:"query_index"`
	QueryTitle         string      `json:"query_title"`
	Matches            []jsonMatch `json:"matches"`
	CandidatesSearched int         `json:"candidates_searched"`
	SearchTimeMS       float64     `json:"search_time_ms"`
}

func writeMatchResultsJSON(w io.Writer, queries []models.BibRecord, results []models.MatchResult, entry func(int) string) error {
	out := make([]jsonResult, 0, len(results))
	for _, res := range results {
		jr := jsonResult{
			QueryIndex:         res.QueryIndex,
			QueryTitle:         queries[res.QueryIndex].Title,
			Matches:            make([]jsonMatch, 0, len(res.Matches)),
			CandidatesSearched: res.CandidatesSearched,
			SearchTimeMS:       float64(res.Elapsed.Microseconds()) / 1000.0,
		}
		for _, m := range res.Matches {
			jr.Matches = append(jr.Matches, jsonMatch{
				ItemID:   m.ItemID,
				Score:    m.Score,
				DOIMatch: m.DOIMatch,
				Entry:    entry(m.ItemID),
			})
		}
		out = append(out, jr)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeMatchResultsCompact(w io.Writer, queries []models.BibRecord, results []models.MatchResult) {
	for _, res := range results {
		title := utils.Truncate(queries[res.QueryIndex].Title, 60)
		if len(res.Matches) == 0 {
			fmt.Fprintf(w, "%d\t%s\t-\n", res.QueryIndex, title)
			continue
		}
		best := res.Matches[0]
		fmt.Fprintf(w, "%d\t%s\t%d\t%.1f\n", res.QueryIndex, title, best.ItemID, best.Score)
	}
}

func writeMatchResultsText(w io.Writer, queries []models.BibRecord, results []models.MatchResult, entry func(int) string) {
	for _, res := range results {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Query %d: %s\n", res.QueryIndex, utils.Truncate(queries[res.QueryIndex].Title, 100))
		fmt.Fprintf(w, "Searched %d candidates in %.1fms\n",
			res.CandidatesSearched, float64(res.Elapsed.Microseconds())/1000.0)
		if len(res.Matches) == 0 {
			fmt.Fprintln(w, "No matches above threshold")
			fmt.Fprintln(w)
			continue
		}
		for rank, m := range res.Matches {
			marker := ""
			if m.DOIMatch {
				marker = " [doi]"
			}
			fmt.Fprintf(w, "  %d. item %d | score %.1f%s (title %.1f, author %.1f, date %.1f, bonus %.1f)\n",
				rank+1, m.ItemID, m.Score, marker,
				m.Breakdown.Title, m.Breakdown.Author, m.Breakdown.Date, m.Breakdown.Bonus)
			fmt.Fprintf(w, "     %s\n", utils.Truncate(entry(m.ItemID), 160))
		}
		fmt.Fprintln(w)
	}
}
