package match

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/hyperjump/shogo/internal/index"
	"github.com/hyperjump/shogo/internal/models"
)

// Backend kinds accepted in configuration.
const (
	// BackendAuto probes capabilities at startup and picks the best backend.
	BackendAuto = "auto"
	// BackendParallel fans candidate scoring out across workers.
	BackendParallel = "parallel"
	// BackendSerial scores candidates on the calling goroutine.
	BackendSerial = "serial"
)

// parallelThreshold is the candidate count below which the parallel backend
// scores inline; fan-out overhead dominates for small sets.
const parallelThreshold = 64

// ScoringBackend scores a query against a set of candidate ids. The two
// implementations differ only in throughput: score computation is pure and
// deterministic, so both produce identical results for identical inputs. The
// backend is selected once at startup, never branched on per call.
type ScoringBackend interface {
	Name() string
	ScoreCandidates(scorer *Scorer, idx *index.Index, qRec models.BibRecord, qn models.NormalizedRecord, ids []int) []models.ScoredMatch
}

// NewBackend creates a scoring backend of the given kind. BackendAuto probes
// the available compute units and picks the parallel backend when more than
// one is available.
func NewBackend(kind string, workers int) (ScoringBackend, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	switch kind {
	case BackendSerial:
		return &serialBackend{}, nil
	case BackendParallel:
		return &parallelBackend{workers: workers}, nil
	case BackendAuto, "":
		if workers > 1 {
			return &parallelBackend{workers: workers}, nil
		}
		return &serialBackend{}, nil
	default:
		return nil, fmt.Errorf("unknown scoring backend: %s (supported: auto, parallel, serial)", kind)
	}
}

// serialBackend scores candidates sequentially. It is the in-process fallback
// for single-unit hosts and the reference behavior for tests.
type serialBackend struct{}

func (b *serialBackend) Name() string { return BackendSerial }

func (b *serialBackend) ScoreCandidates(scorer *Scorer, idx *index.Index, qRec models.BibRecord, qn models.NormalizedRecord, ids []int) []models.ScoredMatch {
	out := make([]models.ScoredMatch, len(ids))
	for i, id := range ids {
		out[i] = scoreOne(scorer, idx, qRec, qn, id)
	}
	return out
}

// parallelBackend subdivides a query's candidate set across workers. Results
// are written to fixed positions, so output order matches the input id order
// regardless of which worker finishes first.
type parallelBackend struct {
	workers int
}

func (b *parallelBackend) Name() string { return BackendParallel }

func (b *parallelBackend) ScoreCandidates(scorer *Scorer, idx *index.Index, qRec models.BibRecord, qn models.NormalizedRecord, ids []int) []models.ScoredMatch {
	if len(ids) < parallelThreshold {
		out := make([]models.ScoredMatch, len(ids))
		for i, id := range ids {
			out[i] = scoreOne(scorer, idx, qRec, qn, id)
		}
		return out
	}

	out := make([]models.ScoredMatch, len(ids))
	chunk := (len(ids) + b.workers - 1) / b.workers

	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		start := w * chunk
		if start >= len(ids) {
			break
		}
		end := start + chunk
		if end > len(ids) {
			end = len(ids)
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				out[i] = scoreOne(scorer, idx, qRec, qn, ids[i])
			}
		}(start, end)
	}
	wg.Wait()
	return out
}

func scoreOne(scorer *Scorer, idx *index.Index, qRec models.BibRecord, qn models.NormalizedRecord, id int) models.ScoredMatch {
	bd, total := scorer.Score(qRec, qn, idx.Record(id), idx.Normalized(id))
	return models.ScoredMatch{ItemID: id, Score: total, Breakdown: bd}
}
