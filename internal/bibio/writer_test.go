package bibio

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/shogo/internal/index"
	"github.com/hyperjump/shogo/internal/models"
)

func TestWriteMatches(t *testing.T) {
	year1905, year1980 := 1905, 1980
	refs := []models.BibRecord{
		{
			Title:   "On Denoting",
			Authors: []models.Author{{Given: "Bertrand", Family: "Russell"}},
			Year:    &year1905,
			Journal: "Mind",
			Volume:  "14",
			Number:  "56",
			Pages:   &models.PageRange{Start: "479", End: "493"},
		},
		{
			Title:   "Naming and Necessity",
			Authors: []models.Author{{Given: "Saul", Family: "Kripke"}},
			Year:    &year1980,
		},
	}
	idx, err := index.Build(refs, nil)
	if err != nil {
		t.Fatal(err)
	}

	queries := []models.BibRecord{
		{
			Title:   "Naming & Necessity",
			Authors: []models.Author{{Family: "Kripke"}},
			Year:    &year1980,
		},
		{Title: "unmatched"},
	}
	results := []models.MatchResult{
		{
			QueryIndex: 0,
			Matches: []models.ScoredMatch{
				{ItemID: 1, Score: 92.5},
			},
			CandidatesSearched: 2,
			Elapsed:            1500 * time.Microsecond,
		},
		{
			QueryIndex:         1,
			CandidatesSearched: 1,
			Elapsed:            300 * time.Microsecond,
		},
	}

	path := filepath.Join(t.TempDir(), "matches.csv")
	if err := WriteMatches(path, queries, results, idx, 2); err != nil {
		t.Fatalf("WriteMatches: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	header := rows[0]
	wantHeader := []string{
		"title", "authors", "year", "journal", "doi",
		"match_1_item", "match_1_score", "match_1_entry",
		"match_2_item", "match_2_score", "match_2_entry",
		"candidates_searched", "search_time_ms",
	}
	if len(header) != len(wantHeader) {
		t.Fatalf("header has %d columns, want %d", len(header), len(wantHeader))
	}
	for i := range wantHeader {
		if header[i] != wantHeader[i] {
			t.Errorf("header[%d] = %q, want %q", i, header[i], wantHeader[i])
		}
	}

	matched := rows[1]
	if matched[0] != "Naming & Necessity" || matched[1] != "Kripke" || matched[2] != "1980" {
		t.Errorf("query columns = %v", matched[:5])
	}
	if matched[5] != "1" || matched[6] != "92.50" {
		t.Errorf("match slot 1 = item %q score %q", matched[5], matched[6])
	}
	if matched[7] != Citation(refs[1]) {
		t.Errorf("entry = %q, want %q", matched[7], Citation(refs[1]))
	}
	// Unused second slot stays empty.
	if matched[8] != "" || matched[9] != "" || matched[10] != "" {
		t.Errorf("empty slot = %v", matched[8:11])
	}
	if matched[11] != "2" || matched[12] != "1.5" {
		t.Errorf("diagnostics = %q, %q", matched[11], matched[12])
	}

	unmatched := rows[2]
	if unmatched[5] != "" || unmatched[11] != "1" || unmatched[12] != "0.3" {
		t.Errorf("unmatched row = %v", unmatched)
	}
}

func TestWriteMatches_MoreResultsThanQueries(t *testing.T) {
	idx, err := index.Build([]models.BibRecord{{Title: "Zettel"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.csv")
	err = WriteMatches(path, nil, []models.MatchResult{{}}, idx, 1)
	if err == nil {
		t.Error("expected error when results outnumber queries")
	}
}

func TestWriteMatches_FewerResultsThanQueries(t *testing.T) {
	// A cancelled batch yields a prefix of results; only those rows appear.
	idx, err := index.Build([]models.BibRecord{{Title: "Zettel"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	queries := []models.BibRecord{{Title: "a"}, {Title: "b"}}
	results := []models.MatchResult{{QueryIndex: 0, CandidatesSearched: 1}}

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteMatches(path, queries, results, idx, 1); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Errorf("got %d rows, want header + 1", len(rows))
	}
}
