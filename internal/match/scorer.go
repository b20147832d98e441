package match

import (
	"strconv"
	"strings"

	"github.com/hyperjump/shogo/internal/models"
)

// reviewPrefixes are academic review/reply title prefixes, in folded form.
// When exactly one of two titles starts with such a prefix the records cannot
// refer to the same work (a review of a paper is not the paper), so the pair
// scores zero.
var reviewPrefixes = []string{
	"reply to",
	"comments on",
	"precis of",
	"review of",
	"critical notice",
	"symposium on",
	"discussion of",
	"response to",
	"a reply to",
	"responses to",
}

// undesiredKeywords flag title pairs where one side is an erratum or review of
// the other; a mismatch suppresses the high-similarity bonus and draws a
// penalty per mismatched keyword.
var undesiredKeywords = []string{"errata", "review"}

// Scorer computes the composite similarity of a (query, candidate) pair of
// normalized records. Scoring is a total function: missing fields yield
// zero/neutral sub-scores, never errors, so a defect in one pair can never
// abort a batch.
type Scorer struct {
	cfg *Config
}

// NewScorer validates cfg and returns a Scorer. A populated config is taken
// as-is: invalid values are rejected by Validate, never rewritten, so an
// explicit zero set by the caller (e.g. MinScore) is honored.
func NewScorer(cfg *Config) (*Scorer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

// Score computes the weighted field breakdown and composite score for one
// pair. The raw records supply the bonus fields (volume, number, pages) that
// the normalized view does not carry.
func (s *Scorer) Score(
	qRec models.BibRecord, qn models.NormalizedRecord,
	cRec models.BibRecord, cn models.NormalizedRecord,
) (models.ScoreBreakdown, float64) {
	if hasReviewPrefix(qn.Title) != hasReviewPrefix(cn.Title) {
		return models.ScoreBreakdown{}, 0
	}

	bd := models.ScoreBreakdown{
		Title:  s.scoreTitle(qn.Title, cn.Title) * s.cfg.Weights.Title,
		Author: s.scoreAuthor(qn.Surnames, cn.Surnames) * s.cfg.Weights.Author,
		Date:   scoreDate(qn, cn) * s.cfg.Weights.Date,
		Bonus:  s.scoreBonus(qRec, qn, cRec, cn) * s.cfg.Weights.Bonus,
	}
	return bd, bd.Title + bd.Author + bd.Date + bd.Bonus
}

func hasReviewPrefix(foldedTitle string) bool {
	for _, p := range reviewPrefixes {
		if strings.HasPrefix(foldedTitle, p) {
			return true
		}
	}
	return false
}

// scoreTitle returns the title sub-score for a pair of folded titles: the
// token-sort similarity ratio, plus the high-similarity bonus when the ratio
// clears the threshold or one title contains the other (a title missing its
// subtitle), minus a penalty when exactly one side carries an errata/review
// keyword.
func (s *Scorer) scoreTitle(q, c string) float64 {
	if q == "" || c == "" {
		return 0
	}

	raw := TokenSortRatio(q, c)
	oneContainsOther := strings.Contains(q, c) || strings.Contains(c, q)

	mismatches := 0
	for _, kw := range undesiredKeywords {
		if strings.Contains(q, kw) != strings.Contains(c, kw) {
			mismatches++
		}
	}

	score := raw
	if (raw > s.cfg.HighSimThreshold || oneContainsOther) && mismatches == 0 {
		score += s.cfg.HighSimBonus
	}
	score -= float64(mismatches) * s.cfg.KeywordPenalty
	if score < 0 {
		score = 0
	}
	return score
}

// scoreAuthor compares the two small, unordered surname sets: each query
// surname contributes its best-matching candidate surname similarity, and the
// sub-score is the mean of those bests, with the same high-similarity bonus
// as titles.
func (s *Scorer) scoreAuthor(q, c []string) float64 {
	if len(q) == 0 || len(c) == 0 {
		return 0
	}

	var total float64
	for _, qs := range q {
		best := 0.0
		for _, cs := range c {
			if sim := TokenSortRatio(qs, cs); sim > best {
				best = sim
			}
		}
		total += best
	}
	mean := total / float64(len(q))
	if mean > s.cfg.HighSimThreshold {
		mean += s.cfg.HighSimBonus
	}
	return mean
}

// scoreDate is 100 for equal years, decaying linearly to 0 at a three-year
// difference, and 0 (neutral, not an error) when either year is absent.
func scoreDate(q, c models.NormalizedRecord) float64 {
	if !q.HasYear || !c.HasYear {
		return 0
	}
	diff := q.Year - c.Year
	if diff < 0 {
		diff = -diff
	}
	score := 100 - 100*float64(diff)/3
	if score < 0 {
		return 0
	}
	return score
}

// scoreBonus accumulates the independent bonus fields: DOI exact match,
// journal+volume+number agreement, and overlapping page ranges. The sum is
// capped at 100 before weighting.
func (s *Scorer) scoreBonus(
	qRec models.BibRecord, qn models.NormalizedRecord,
	cRec models.BibRecord, cn models.NormalizedRecord,
) float64 {
	var bonus float64

	if qn.DOI != "" && qn.DOI == cn.DOI {
		bonus += s.cfg.DOIBonus
	}

	if qn.Journal != "" && qn.Journal == cn.Journal {
		volMatch := qRec.Volume != "" && strings.TrimSpace(qRec.Volume) == strings.TrimSpace(cRec.Volume)
		numMatch := qRec.Number != "" && strings.TrimSpace(qRec.Number) == strings.TrimSpace(cRec.Number)
		if volMatch && numMatch {
			bonus += s.cfg.JournalBonus
		}
	}

	if pagesOverlap(qRec.Pages, cRec.Pages) {
		bonus += s.cfg.PagesBonus
	}

	if bonus > 100 {
		bonus = 100
	}
	return bonus
}

// pagesOverlap reports whether two page ranges intersect. Numeric ranges are
// compared as intervals (a missing end is a single page); non-numeric pages
// fall back to exact string equality.
func pagesOverlap(a, b *models.PageRange) bool {
	if a == nil || b == nil || a.Start == "" || b.Start == "" {
		return false
	}

	aStart, aOK := pageNum(a.Start)
	bStart, bOK := pageNum(b.Start)
	if aOK && bOK {
		aEnd := aStart
		if n, ok := pageNum(a.End); ok {
			aEnd = n
		}
		bEnd := bStart
		if n, ok := pageNum(b.End); ok {
			bEnd = n
		}
		return aStart <= bEnd && bStart <= aEnd
	}

	return a.Start == b.Start && a.End == b.End
}

func pageNum(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}
