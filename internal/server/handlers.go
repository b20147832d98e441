package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/hyperjump/shogo/internal/bibio"
	"github.com/hyperjump/shogo/internal/models"
	"go.uber.org/zap"
)

type matchRequest struct {
	Queries []models.BibRecord `json:"queries"`
}

type matchEntry struct {
	ItemID    int                   `json:"item_id"`
	Score     float64               `json:"score"`
	Breakdown models.ScoreBreakdown `json:"breakdown"`
	DOIMatch  bool                  `json:"doi_match,omitempty"`
	Entry     string                `json:"entry"`
}

type matchResult struct {
	QueryIndex         int          `json:"query_index"`
	Matches            []matchEntry `json:"matches"`
	CandidatesSearched int          `json:"candidates_searched"`
	SearchTimeMS       float64      `json:"search_time_ms"`
}

type matchResponse struct {
	RunID   string        `json:"run_id"`
	Results []matchResult `json:"results"`
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Queries) == 0 {
		s.respondError(w, http.StatusBadRequest, "queries is required")
		return
	}
	runID := uuid.New().String()
	idx := s.current()
	s.logger.Debug("match request",
		zap.String("run_id", runID),
		zap.Int("queries", len(req.Queries)))

	results, err := s.matcher.MatchBatch(r.Context(), req.Queries, idx)
	if err != nil {
		s.logger.Error("match failed", zap.String("run_id", runID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := matchResponse{RunID: runID, Results: make([]matchResult, 0, len(results))}
	for _, res := range results {
		out := matchResult{
			QueryIndex:         res.QueryIndex,
			Matches:            make([]matchEntry, 0, len(res.Matches)),
			CandidatesSearched: res.CandidatesSearched,
			SearchTimeMS:       float64(res.Elapsed.Microseconds()) / 1000.0,
		}
		for _, m := range res.Matches {
			out.Matches = append(out.Matches, matchEntry{
				ItemID:    m.ItemID,
				Score:     m.Score,
				Breakdown: m.Breakdown,
				DOIMatch:  m.DOIMatch,
				Entry:     bibio.Citation(idx.Record(m.ItemID)),
			})
		}
		resp.Results = append(resp.Results, out)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	idx := s.current()
	resp := map[string]interface{}{
		"records": idx.Len(),
		"backend": s.matcher.Backend(),
	}

	configInfo := map[string]interface{}{
		"top_n":          s.cfg.Matcher.TopN,
		"min_score":      s.cfg.Matcher.MinScore,
		"max_candidates": s.cfg.Matcher.MaxCandidates,
		"bibliography":   s.cfg.Bibliography.Path,
	}
	resp["config"] = configInfo

	if s.store != nil {
		entries, err := s.store.Entries(r.Context())
		if err != nil {
			s.logger.Error("status: list cache entries failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		cache := make([]map[string]interface{}, 0, len(entries))
		for _, e := range entries {
			cache = append(cache, map[string]interface{}{
				"fingerprint":  e.Fingerprint,
				"record_count": e.RecordCount,
				"size_bytes":   e.SizeBytes,
				"created_at":   e.CreatedAt,
			})
		}
		resp["cache"] = cache
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
