// Package index builds and queries the immutable blocking index over a
// reference bibliography. The index is constructed once per bibliography
// snapshot and is read-only afterwards, so concurrent readers never race.
package index

import (
	"errors"

	"go.uber.org/zap"

	"github.com/hyperjump/shogo/internal/models"
	"github.com/hyperjump/shogo/internal/normalize"
)

// ErrEmptyCollection is returned when an index is built from zero records.
var ErrEmptyCollection = errors.New("index: reference collection is empty")

// Index holds the reference records, their normalized views, and the blocking
// maps used for candidate retrieval. Item ids are sequential build-order
// positions, stable for the lifetime of the index.
type Index struct {
	records    []models.BibRecord
	normalized []models.NormalizedRecord

	doi     map[string]int
	trigram map[string][]int
	surname map[string][]int
	decade  map[int][]int
	journal map[string][]int

	trigramSize int
}

// Build constructs an Index from the full reference collection. Records
// sharing a DOI are a data-quality signal, not an error: the first-seen
// mapping wins and the collision is logged; the later record stays reachable
// through the other blocking maps.
func Build(records []models.BibRecord, logger *zap.Logger) (*Index, error) {
	if len(records) == 0 {
		return nil, ErrEmptyCollection
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	idx := &Index{
		records:     records,
		normalized:  make([]models.NormalizedRecord, len(records)),
		doi:         make(map[string]int),
		trigram:     make(map[string][]int),
		surname:     make(map[string][]int),
		decade:      make(map[int][]int),
		journal:     make(map[string][]int),
		trigramSize: normalize.TrigramSize,
	}

	for id, rec := range records {
		n := normalize.Normalize(rec)
		idx.normalized[id] = n

		if n.DOI != "" {
			if prev, ok := idx.doi[n.DOI]; ok {
				logger.Warn("duplicate DOI in reference collection",
					zap.String("doi", n.DOI),
					zap.Int("first_item", prev),
					zap.Int("item", id))
			} else {
				idx.doi[n.DOI] = id
			}
		}
		for tg := range n.Trigrams {
			idx.trigram[tg] = append(idx.trigram[tg], id)
		}
		for _, s := range n.Surnames {
			idx.surname[s] = append(idx.surname[s], id)
		}
		if n.HasYear {
			idx.decade[n.Decade] = append(idx.decade[n.Decade], id)
		}
		if n.Journal != "" {
			idx.journal[n.Journal] = append(idx.journal[n.Journal], id)
		}
	}

	logger.Debug("index built",
		zap.Int("records", len(records)),
		zap.Int("trigrams", len(idx.trigram)),
		zap.Int("surnames", len(idx.surname)),
		zap.Int("dois", len(idx.doi)))
	return idx, nil
}

// Len returns the number of indexed records.
func (idx *Index) Len() int { return len(idx.records) }

// Record returns the record for an item id.
func (idx *Index) Record(id int) models.BibRecord { return idx.records[id] }

// Normalized returns the cached normalized view for an item id.
func (idx *Index) Normalized(id int) models.NormalizedRecord { return idx.normalized[id] }

// DOILookup returns the item id holding the given normalized DOI.
func (idx *Index) DOILookup(doi string) (int, bool) {
	id, ok := idx.doi[doi]
	return id, ok
}

// TrigramIDs returns the ids of records whose folded title contains trigram.
func (idx *Index) TrigramIDs(trigram string) []int { return idx.trigram[trigram] }

// SurnameIDs returns the ids of records with the given folded surname.
func (idx *Index) SurnameIDs(surname string) []int { return idx.surname[surname] }

// DecadeIDs returns the ids of records published in the given decade.
func (idx *Index) DecadeIDs(decade int) []int { return idx.decade[decade] }

// JournalIDs returns the ids of records with the given folded journal key.
func (idx *Index) JournalIDs(journal string) []int { return idx.journal[journal] }

// TrigramSize returns the title blocking window the index was built with.
func (idx *Index) TrigramSize() int { return idx.trigramSize }
