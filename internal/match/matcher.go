package match

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/shogo/internal/index"
	"github.com/hyperjump/shogo/internal/models"
	"github.com/hyperjump/shogo/internal/normalize"
)

// BatchMatcher runs the full candidate-selection + scoring + top-N pipeline
// for batches of query records against a shared read-only index.
type BatchMatcher struct {
	cfg     *Config
	scorer  *Scorer
	backend ScoringBackend
	workers int
	logger  *zap.Logger
}

// NewBatchMatcher validates cfg, probes for a scoring backend, and returns a
// matcher. The backend choice is made here, once, never per call.
func NewBatchMatcher(cfg *Config, logger *zap.Logger) (*BatchMatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	scorer, err := NewScorer(cfg)
	if err != nil {
		return nil, err
	}
	cfg = scorer.cfg

	backend, err := NewBackend(cfg.Backend, cfg.Workers)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	logger.Info("batch matcher ready",
		zap.String("backend", backend.Name()),
		zap.Int("workers", workers),
		zap.Int("top_n", cfg.TopN),
		zap.Float64("min_score", cfg.MinScore))

	return &BatchMatcher{
		cfg:     cfg,
		scorer:  scorer,
		backend: backend,
		workers: workers,
		logger:  logger,
	}, nil
}

// Backend reports the name of the selected scoring backend.
func (m *BatchMatcher) Backend() string { return m.backend.Name() }

// MatchOne runs the pipeline for a single query record.
func (m *BatchMatcher) MatchOne(query models.BibRecord, idx *index.Index) models.MatchResult {
	return m.matchQuery(0, query, idx)
}

// MatchBatch matches each query against the index and returns results in
// query order: result i always corresponds to query i, regardless of which
// worker finished first.
//
// Cancellation is cooperative and checked between queries. On cancellation
// the already-completed leading results are returned with a nil error; a
// truncated result sequence is a partial success, not a failure.
func (m *BatchMatcher) MatchBatch(ctx context.Context, queries []models.BibRecord, idx *index.Index) ([]models.MatchResult, error) {
	results := make([]models.MatchResult, len(queries))
	done := make([]bool, len(queries))

	next := make(chan int)
	var wg sync.WaitGroup

	workers := m.workers
	if workers > len(queries) {
		workers = len(queries)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				results[i] = m.matchQuery(i, queries[i], idx)
				done[i] = true
			}
		}()
	}

dispatch:
	for i := range queries {
		select {
		case <-ctx.Done():
			break dispatch
		case next <- i:
		}
	}
	close(next)
	wg.Wait()

	if ctx.Err() != nil {
		// Keep the completed leading run; later results would leave a gap in
		// the order-preserving sequence.
		completed := 0
		for completed < len(done) && done[completed] {
			completed++
		}
		m.logger.Info("batch cancelled",
			zap.Int("completed", completed),
			zap.Int("total", len(queries)))
		return results[:completed], nil
	}
	return results, nil
}

// matchQuery runs normalize -> select -> score -> rank for one query. Workers
// share only the read-only index; everything else here is privately owned.
func (m *BatchMatcher) matchQuery(queryIndex int, query models.BibRecord, idx *index.Index) models.MatchResult {
	start := time.Now()
	qn := normalize.Normalize(query)

	result := models.MatchResult{QueryIndex: queryIndex}

	if qn.IsEmpty() {
		// Under-specified query: nothing to block on. Valid, empty outcome.
		m.logger.Debug("query has no usable fields", zap.Int("query", queryIndex))
		result.Elapsed = time.Since(start)
		return result
	}

	ids, doiHit := SelectCandidates(qn, idx, m.cfg.MaxCandidates)
	scored := m.backend.ScoreCandidates(m.scorer, idx, query, qn, ids)
	result.CandidatesSearched = len(ids)

	if doiHit {
		// DOI identity is definitive: the single match is returned regardless
		// of min-score, with the breakdown populated by the scorer as usual.
		scored[0].DOIMatch = true
		result.Matches = scored
		result.Elapsed = time.Since(start)
		return result
	}

	kept := scored[:0]
	for _, sm := range scored {
		if sm.Score >= m.cfg.MinScore {
			kept = append(kept, sm)
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Score != kept[j].Score {
			return kept[i].Score > kept[j].Score
		}
		return kept[i].ItemID < kept[j].ItemID
	})
	if len(kept) > m.cfg.TopN {
		kept = kept[:m.cfg.TopN]
	}

	result.Matches = kept
	result.Elapsed = time.Since(start)
	return result
}
