package models

import "time"

// ScoreBreakdown holds the weighted per-field sub-scores for one
// (query, candidate) pair.
type ScoreBreakdown struct {
	Title  float64 `json:"title"`
	Author float64 `json:"author"`
	Date   float64 `json:"date"`
	Bonus  float64 `json:"bonus"`
}

// ScoredMatch is one candidate with its composite score and field breakdown.
type ScoredMatch struct {
	ItemID    int            `json:"item_id"`
	Score     float64        `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	// DOIMatch marks a match found by exact DOI identity, which bypasses
	// candidate selection and is treated as definitive.
	DOIMatch bool `json:"doi_match,omitempty"`
}

// MatchResult is the outcome for a single query record: up to top-N matches
// ordered by score descending, ties broken by ascending item id.
type MatchResult struct {
	// QueryIndex is the position of the query in the input batch.
	QueryIndex int           `json:"query_index"`
	Matches    []ScoredMatch `json:"matches"`
	// CandidatesSearched is how many reference records were fully scored.
	CandidatesSearched int           `json:"candidates_searched"`
	Elapsed            time.Duration `json:"elapsed_ns"`
}
