package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rickgao/tradeentry-hackathon/internal/log"
	"github.com/rickgao/tradeentry-hackathon/internal/model"
	"github.com/rickgao/tradeentry-hackathon/internal/store"
	"github.com/rickgao/tradeentry-hackathon/internal/version"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// writeStoreError maps store errors to a status code.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	logger := log.FromContext(r.Context())
	logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeError(w, http.StatusInternalServerError, err)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version.String()})
}

func (s *Server) handleListSolutions(w http.ResponseWriter, r *http.Request) {
	specs, err := s.store.ListSolutions(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if specs == nil {
		specs = []model.SolutionSpec{}
	}
	writeJSON(w, http.StatusOK, specs)
}

func (s *Server) handleGetSolution(w http.ResponseWriter, r *http.Request) {
	spec, err := s.store.GetSolution(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, spec)
}

func (s *Server) handleInputs(w http.ResponseWriter, r *http.Request) {
	spec, err := s.store.GetSolution(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	inputs, err := s.scorer.Inputs(r.Context(), spec)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inputs)
}

// handleOutputs lists outputs, optionally for a single trial (?trial=N).
func (s *Server) handleOutputs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.GetSolution(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	outputs, err := s.store.ListOutputs(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	trial := r.URL.Query().Get("trial")
	filtered := make([]model.Output, 0, len(outputs))
	for _, o := range outputs {
		if trial == "" || o.TrialID == trial {
			filtered = append(filtered, o)
		}
	}
	writeJSON(w, http.StatusOK, filtered)
}

type scoreResponse struct {
	model.Scoring
	Percent float64 `json:"percent"`
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	sc, err := s.store.GetScoring(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{Scoring: sc, Percent: sc.Percent()})
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.scorer.Statistics(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	hm, err := s.scorer.Heatmap(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hm)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	stats, err := s.scorer.Generate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"inputs":      stats.Inputs,
		"processed":   stats.Processed,
		"duration_ms": stats.Duration.Milliseconds(),
	})
}

// handleRunScore runs a scoring pass (?trials=N, default 1).
func (s *Server) handleRunScore(w http.ResponseWriter, r *http.Request) {
	trials := 1
	if v := r.URL.Query().Get("trials"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, errors.New("trials must be a positive integer"))
			return
		}
		trials = n
	}
	sc, err := s.scorer.Run(r.Context(), chi.URLParam(r, "id"), trials)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{Scoring: sc, Percent: sc.Percent()})
}

type validateRequest struct {
	Description string `json:"description"`
	Answer      string `json:"answer"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if s.validator == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("no validator configured"))
		return
	}
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Description == "" {
		writeError(w, http.StatusBadRequest, errors.New("description is required"))
		return
	}
	ok, verdict, err := s.validator.Validate(r.Context(), req.Description, req.Answer)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": ok, "verdict": verdict})
}
