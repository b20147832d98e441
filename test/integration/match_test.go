// Package integration provides end-to-end tests (requires real storage on disk).
package integration

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/shogo/internal/bibio"
	"github.com/hyperjump/shogo/internal/index"
	"github.com/hyperjump/shogo/internal/match"
	"github.com/hyperjump/shogo/internal/storage"
)

func writeBibliography(t *testing.T, path string) {
	t.Helper()
	rows := [][]string{
		{"title", "authors", "year", "journal", "volume", "number", "pages", "doi"},
		{"Naming and Necessity", "Kripke, Saul", "1980", "", "", "", "", ""},
		{"On Denoting", "Russell, Bertrand", "1905", "Mind", "14", "56", "479--493", "10.1093/mind/XIV.4.479"},
		{"Two Dogmas of Empiricism", "Quine, W. V.", "1951", "Philosophical Review", "60", "1", "20--43", ""},
		{"Epistemic Operators", "Dretske, Fred", "1970", "Journal of Philosophy", "67", "24", "1007--1023", ""},
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		t.Fatal(err)
	}
}

func TestIntegration_MatchPipeline(t *testing.T) {
	dir := t.TempDir()
	bibPath := filepath.Join(dir, "bibliography.csv")
	writeBibliography(t, bibPath)

	records, err := bibio.ReadFile(bibPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}

	store, err := storage.NewSQLiteStore(filepath.Join(dir, "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	idx, err := index.LoadOrBuild(ctx, records, store, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Second load must come from the cache and produce the same index.
	idx2, err := index.LoadOrBuild(ctx, records, store, nil)
	if err != nil {
		t.Fatal(err)
	}
	if idx2.Len() != idx.Len() {
		t.Errorf("cached index has %d records, want %d", idx2.Len(), idx.Len())
	}
	entries, err := store.Entries(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected one cache entry, got %d", len(entries))
	}

	cfg := match.DefaultConfig()
	matcher, err := match.NewBatchMatcher(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	queries, err := bibio.ReadFile(writeQueries(t, dir))
	if err != nil {
		t.Fatal(err)
	}
	results, err := matcher.MatchBatch(ctx, queries, idx)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(queries) {
		t.Fatalf("expected %d results, got %d", len(queries), len(results))
	}

	// Query 0 is a near-exact title and must resolve to Naming and Necessity.
	if len(results[0].Matches) == 0 {
		t.Fatal("query 0 produced no matches")
	}
	if got := idx.Record(results[0].Matches[0].ItemID).Title; got != "Naming and Necessity" {
		t.Errorf("query 0 best match = %q", got)
	}

	// Query 1 carries the DOI and must short-circuit to On Denoting.
	if len(results[1].Matches) != 1 || !results[1].Matches[0].DOIMatch {
		t.Fatalf("query 1 should be a DOI match, got %+v", results[1].Matches)
	}
	if got := idx.Record(results[1].Matches[0].ItemID).Title; got != "On Denoting" {
		t.Errorf("query 1 best match = %q", got)
	}

	outPath := filepath.Join(dir, "matched.csv")
	if err := bibio.WriteMatches(outPath, queries, results, idx, cfg.TopN); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("output CSV missing: %v", err)
	}
}

func writeQueries(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "staged.csv")
	rows := [][]string{
		{"title", "authors", "year", "doi"},
		{"Naming & Necessity", "Kripke, S.", "1980", ""},
		{"Denoting", "", "", "https://doi.org/10.1093/mind/XIV.4.479"},
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		t.Fatal(err)
	}
	return path
}
