// Package normalize canonicalizes bibliographic record fields into comparable
// forms. All functions are pure and total: missing fields yield empty derived
// values, never errors.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/hyperjump/shogo/internal/models"
)

// TrigramSize is the title blocking window in runes. It must be identical at
// index build time and query time; the index carries it as a build parameter.
const TrigramSize = 3

// doiPrefixes are resolver prefixes stripped from DOIs before comparison.
var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi:",
}

// stripDiacritics decomposes to NFD, drops combining marks, and recomposes.
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases s, strips diacritics and punctuation, and collapses
// whitespace. Non-letter, non-digit runes become spaces so that hyphenated and
// punctuated titles still tokenize.
func Fold(s string) string {
	s = strings.ToLower(s)
	if out, _, err := transform.String(stripDiacritics, s); err == nil {
		s = out
	}

	var sb strings.Builder
	sb.Grow(len(s))
	prevSpace := true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			prevSpace = false
		default:
			if !prevSpace {
				sb.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

// FoldDOI normalizes a DOI for exact comparison: trim, lowercase, strip
// resolver prefixes.
func FoldDOI(doi string) string {
	d := strings.ToLower(strings.TrimSpace(doi))
	for _, p := range doiPrefixes {
		if strings.HasPrefix(d, p) {
			d = d[len(p):]
			break
		}
	}
	return d
}

// Trigrams returns the set of TrigramSize-rune windows over folded text.
// Folded text shorter than the window (but non-empty) yields itself as a
// single token; empty text yields an empty set.
func Trigrams(folded string) map[string]struct{} {
	set := make(map[string]struct{})
	if folded == "" {
		return set
	}
	r := []rune(folded)
	if len(r) < TrigramSize {
		set[folded] = struct{}{}
		return set
	}
	for i := 0; i+TrigramSize <= len(r); i++ {
		set[string(r[i:i+TrigramSize])] = struct{}{}
	}
	return set
}

// Decade buckets a year to its decade (1995 -> 1990).
func Decade(year int) int {
	return year - year%10
}

// Surnames folds each author's family name, dropping authors with no family
// name after folding.
func Surnames(authors []models.Author) []string {
	var out []string
	for _, a := range authors {
		if s := Fold(a.Family); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Normalize derives the comparison view of a record.
func Normalize(rec models.BibRecord) models.NormalizedRecord {
	n := models.NormalizedRecord{
		Title:    Fold(rec.Title),
		Surnames: Surnames(rec.Authors),
		Journal:  Fold(rec.Journal),
		DOI:      FoldDOI(rec.DOI),
	}
	n.Trigrams = Trigrams(n.Title)
	if year, ok := rec.YearValue(); ok {
		n.Year = year
		n.HasYear = true
		n.Decade = Decade(year)
	}
	return n
}
