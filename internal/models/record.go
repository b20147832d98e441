// Package models defines core data structures for bibliographic records and match results.
package models

// Author is a single author name split into given and family parts.
type Author struct {
	Given  string `json:"given,omitempty"`
	Family string `json:"family"`
}

// PageRange is an article's start/end page. End may be empty for single pages.
type PageRange struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// BibRecord is one bibliographic entry. Records are immutable once constructed;
// the reference collection side is owned by the index, query records by the caller.
type BibRecord struct {
	Title   string     `json:"title"`
	Authors []Author   `json:"authors,omitempty"`
	Year    *int       `json:"year,omitempty"`
	Journal string     `json:"journal,omitempty"`
	Volume  string     `json:"volume,omitempty"`
	Number  string     `json:"number,omitempty"`
	Pages   *PageRange `json:"pages,omitempty"`
	DOI     string     `json:"doi,omitempty"`
	URL     string     `json:"url,omitempty"`
}

// YearValue returns the year and whether it is present.
func (r *BibRecord) YearValue() (int, bool) {
	if r.Year == nil {
		return 0, false
	}
	return *r.Year, true
}

// NormalizedRecord is the derived, read-only comparison view of a BibRecord.
// It is created once per record and never mutated afterwards.
type NormalizedRecord struct {
	// Title is the folded title: lowercased, diacritics and punctuation
	// stripped, whitespace collapsed.
	Title string
	// Trigrams is the set of 3-rune windows over the folded title. Folded
	// titles shorter than the window contribute themselves as a single token.
	Trigrams map[string]struct{}
	// Surnames are the folded author family names, in author order.
	Surnames []string
	// Year is the publication year; valid only when HasYear is true.
	Year    int
	HasYear bool
	// Decade is Year - Year%10; valid only when HasYear is true.
	Decade int
	// Journal is the folded journal key.
	Journal string
	// DOI is the normalized DOI (lowercased, resolver prefix stripped).
	DOI string
}

// IsEmpty reports whether the record has no usable normalized fields at all.
// Such a query is under-specified: no blocking strategy can retrieve
// candidates for it.
func (n *NormalizedRecord) IsEmpty() bool {
	return n.Title == "" && len(n.Surnames) == 0 && !n.HasYear && n.Journal == "" && n.DOI == ""
}
