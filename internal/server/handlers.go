package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/leadgen/internal/pipeline"
	"github.com/jonathan/leadgen/internal/store"
	"github.com/jonathan/leadgen/internal/types"
)

// LeadsResponse is the body of GET /leads.
type LeadsResponse struct {
	Leads []types.Lead `json:"leads"`
	Count int          `json:"count"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	State  string `json:"state"`
	Store  string `json:"store,omitempty"`
}

// decodeGenerate parses and validates a generate request, filling defaults.
func (s *Server) decodeGenerate(r *http.Request) (pipeline.Request, error) {
	var req types.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return pipeline.Request{}, &ErrValidation{Field: "body", Message: err.Error()}
	}

	if req.Limit == 0 {
		req.Limit = s.defaultLimit
	}
	if len(req.Sources) == 0 {
		req.Sources = s.defaultSources
	}
	if err := req.Validate(); err != nil {
		return pipeline.Request{}, validationError(err)
	}

	return pipeline.Request{
		Criteria: req.SearchCriteria.Trimmed(),
		Limit:    req.Limit,
		Sources:  req.Sources,
		Dedupe:   req.ShouldDedupe(),
	}, nil
}

// validationError converts validator errors into an ErrValidation for the first field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		field := fe.Field()
		if field == "" {
			field = "limit"
		}
		return &ErrValidation{Field: field, Message: fmt.Sprintf("failed %q check", fe.Tag())}
	}
	return &ErrValidation{Field: "request", Message: err.Error()}
}

// handleGenerate runs one acquisition and returns its report.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeGenerate(r)
	if err != nil {
		s.failure(w, err)
		return
	}

	report, err := s.orchestrator.GenerateLeads(r.Context(), req)
	if err != nil {
		s.failure(w, err)
		return
	}

	status := http.StatusOK
	if report.Status == types.RunStatusError {
		status = http.StatusServiceUnavailable
	}
	s.jsonResponse(w, status, report)
}

// handleGenerateStream runs one acquisition, streaming progress as server-sent events.
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeGenerate(r)
	if err != nil {
		s.failure(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	req.OnProgress = func(message string) {
		if err := sse.WriteProgress(message); err != nil {
			zap.L().Warn("error writing SSE event", zap.Error(err))
		}
	}

	report, err := s.orchestrator.GenerateLeads(r.Context(), req)
	if err != nil {
		sse.WriteError(err.Error())
		return
	}
	sse.WriteReport(report)
}

// handleLeads lists stored leads with optional filters and limit.
func (s *Server) handleLeads(w http.ResponseWriter, r *http.Request) {
	filters := filtersFromQuery(r)
	limit, err := limitFromQuery(r)
	if err != nil {
		s.failure(w, err)
		return
	}

	leads, err := s.store.Query(r.Context(), filters, limit)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, LeadsResponse{Leads: leads, Count: len(leads)})
}

func filtersFromQuery(r *http.Request) store.Filters {
	q := r.URL.Query()
	return store.Filters{
		City:    q.Get("city"),
		Country: q.Get("country"),
		Niche:   q.Get("niche"),
		Source:  q.Get("source"),
	}
}

func limitFromQuery(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, &ErrValidation{Field: "limit", Message: "must be a non-negative integer"}
	}
	return limit, nil
}

// handleStats returns aggregate store statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, stats)
}

// handleExport streams matching leads as a CSV attachment.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	filters := filtersFromQuery(r)
	leads, err := s.store.Query(r.Context(), filters, 0)
	if err != nil {
		s.failure(w, err)
		return
	}
	if len(leads) == 0 {
		s.failure(w, &store.EmptyResultError{Filters: filters})
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", store.DefaultExportFilename(time.Now())))
	w.WriteHeader(http.StatusOK)
	if err := store.WriteCSV(w, leads); err != nil {
		zap.L().Warn("error writing CSV export", zap.Error(err))
	}
}

// handleCleanup collapses duplicate groups in the store.
func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	result, err := s.store.CleanupDuplicates(r.Context())
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleSources lists the source catalog.
func (s *Server) handleSources(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.registry.Sources())
}

// handleDedupLog lists dedup log entries, newest first.
func (s *Server) handleDedupLog(w http.ResponseWriter, r *http.Request) {
	limit, err := limitFromQuery(r)
	if err != nil {
		s.failure(w, err)
		return
	}

	entries, err := s.store.DedupLog(r.Context(), limit)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, entries)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", State: string(s.orchestrator.State())}

	if p, ok := s.store.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Store = err.Error()
			s.jsonResponse(w, http.StatusServiceUnavailable, resp)
			return
		}
		resp.Store = "ok"
	}

	s.jsonResponse(w, http.StatusOK, resp)
}
