// Package match implements candidate selection, weighted multi-field fuzzy
// scoring, and batch matching of bibliographic records against an index.
package match

import (
	"sort"
	"strings"
)

// JaroWinkler calculates the Jaro-Winkler similarity of two strings in [0, 1].
// This is a pure function with no side effects.
func JaroWinkler(a, b string) float64 {
	// Convert to runes for proper Unicode handling
	runesA := []rune(a)
	runesB := []rune(b)
	j := jaro(runesA, runesB)

	// Winkler prefix boost: up to 4 common leading characters
	prefix := 0
	for prefix < len(runesA) && prefix < len(runesB) && prefix < 4 && runesA[prefix] == runesB[prefix] {
		prefix++
	}
	return j + float64(prefix)*0.1*(1.0-j)
}

// jaro calculates the plain Jaro similarity of two rune slices.
func jaro(a, b []rune) float64 {
	lenA := len(a)
	lenB := len(b)
	if lenA == 0 && lenB == 0 {
		return 1.0
	}
	if lenA == 0 || lenB == 0 {
		return 0.0
	}

	matchDist := maxInt(lenA, lenB)/2 - 1
	if matchDist < 0 {
		matchDist = 0
	}

	matchedA := make([]bool, lenA)
	matchedB := make([]bool, lenB)
	matches := 0

	for i := 0; i < lenA; i++ {
		lo := i - matchDist
		if lo < 0 {
			lo = 0
		}
		hi := i + matchDist + 1
		if hi > lenB {
			hi = lenB
		}
		for j := lo; j < hi; j++ {
			if matchedB[j] || a[i] != b[j] {
				continue
			}
			matchedA[i] = true
			matchedB[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0.0
	}

	// Count transpositions between matched characters
	transpositions := 0
	j := 0
	for i := 0; i < lenA; i++ {
		if !matchedA[i] {
			continue
		}
		for !matchedB[j] {
			j++
		}
		if a[i] != b[j] {
			transpositions++
		}
		j++
	}

	m := float64(matches)
	return (m/float64(lenA) + m/float64(lenB) + (m-float64(transpositions)/2.0)/m) / 3.0
}

// TokenSortRatio tokenizes both strings, sorts the tokens alphabetically, and
// returns the Jaro-Winkler similarity of the rejoined strings scaled to 0-100.
// Word order therefore does not matter ("knowledge and belief" matches
// "belief and knowledge" at 100). Empty input scores 0.
func TokenSortRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	return JaroWinkler(sortTokens(a), sortTokens(b)) * 100.0
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func maxInt(a, b int) int {
	if a >= b {
		return a
	}
	return b
}
