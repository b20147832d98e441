package match

import (
	"sort"

	"github.com/hyperjump/shogo/internal/index"
	"github.com/hyperjump/shogo/internal/models"
)

// SelectCandidates returns a bounded set of item ids likely to match the
// query, using the index's blocking maps.
//
// A DOI exact match is definitive identity: it returns that single id with
// doiHit true, bypassing both the other blocks and the maxCandidates cap.
// Otherwise the result is the union of the trigram, surname, decade (query
// decade and both adjacent decades), and journal blocks. When the union
// exceeds maxCandidates, the ids that matched the most distinct blocks are
// kept, remaining ties broken by ascending item id, biasing retained
// candidates toward multi-field agreement.
//
// An empty result is a valid outcome, not an error: either the query has no
// usable normalized fields, or nothing in the collection shares a block with
// it.
func SelectCandidates(query models.NormalizedRecord, idx *index.Index, maxCandidates int) (ids []int, doiHit bool) {
	if query.DOI != "" {
		if id, ok := idx.DOILookup(query.DOI); ok {
			return []int{id}, true
		}
	}
	if query.IsEmpty() {
		return nil, false
	}

	// votes[id] = number of distinct blocking strategies that retrieved id
	votes := make(map[int]int)

	if len(query.Trigrams) > 0 {
		seen := make(map[int]struct{})
		for tg := range query.Trigrams {
			for _, id := range idx.TrigramIDs(tg) {
				seen[id] = struct{}{}
			}
		}
		for id := range seen {
			votes[id]++
		}
	}

	if len(query.Surnames) > 0 {
		seen := make(map[int]struct{})
		for _, s := range query.Surnames {
			for _, id := range idx.SurnameIDs(s) {
				seen[id] = struct{}{}
			}
		}
		for id := range seen {
			votes[id]++
		}
	}

	if query.HasYear {
		seen := make(map[int]struct{})
		for _, decade := range []int{query.Decade - 10, query.Decade, query.Decade + 10} {
			for _, id := range idx.DecadeIDs(decade) {
				seen[id] = struct{}{}
			}
		}
		for id := range seen {
			votes[id]++
		}
	}

	if query.Journal != "" {
		seen := make(map[int]struct{})
		for _, id := range idx.JournalIDs(query.Journal) {
			seen[id] = struct{}{}
		}
		for id := range seen {
			votes[id]++
		}
	}

	ids = make([]int, 0, len(votes))
	for id := range votes {
		ids = append(ids, id)
	}

	if len(ids) <= maxCandidates {
		sort.Ints(ids)
		return ids, false
	}

	// Over budget: keep multi-block agreement first, then low item ids.
	sort.Slice(ids, func(i, j int) bool {
		if votes[ids[i]] != votes[ids[j]] {
			return votes[ids[i]] > votes[ids[j]]
		}
		return ids[i] < ids[j]
	})
	ids = ids[:maxCandidates]
	sort.Ints(ids)
	return ids, false
}
