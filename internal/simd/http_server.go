package simd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/GoSim-25-26J-441/vaccination-sim/internal/eventstore"
	"github.com/GoSim-25-26J-441/vaccination-sim/internal/report"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/logger"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/models"
)

// ArchiveReader is implemented by archives that can list and replay runs
type ArchiveReader interface {
	ListRuns(ctx context.Context) ([]eventstore.RunSummary, error)
	LoadRun(ctx context.Context, runID string) ([]models.EventRecord, error)
}

type HTTPServer struct {
	router   *mux.Router
	store    *RunStore
	Executor *RunExecutor
	archive  ArchiveReader
	// createLimiter throttles POST /v1/runs; nil allows everything
	createLimiter *RateLimiter
}

func NewHTTPServer(store *RunStore, executor *RunExecutor) *HTTPServer {
	s := &HTTPServer{
		router:   mux.NewRouter(),
		store:    store,
		Executor: executor,
	}

	r := s.router
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/v1/scenarios", s.handleScenarios).Methods(http.MethodGet)
	r.HandleFunc("/v1/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/v1/runs", s.handleCreateRunLimited).Methods(http.MethodPost)
	r.HandleFunc("/v1/runs", s.handleListRuns).Methods(http.MethodGet)
	// ids never contain ':' so the stop action cannot be mistaken for an id
	r.HandleFunc("/v1/runs/{id:[^/:]+}:stop", s.handleStopRun).Methods(http.MethodPost)
	r.HandleFunc("/v1/runs/{id:[^/:]+}", s.handleGetRun).Methods(http.MethodGet)
	r.HandleFunc("/v1/runs/{id:[^/:]+}/metrics", s.handleGetRunMetrics).Methods(http.MethodGet)
	r.HandleFunc("/v1/runs/{id:[^/:]+}/events", s.handleGetRunEvents).Methods(http.MethodGet)
	r.HandleFunc("/v1/runs/{id:[^/:]+}/daily", s.handleGetRunDaily).Methods(http.MethodGet)
	r.HandleFunc("/v1/archive/runs", s.handleArchiveList).Methods(http.MethodGet)
	r.HandleFunc("/v1/archive/runs/{id:[^/:]+}/events", s.handleArchiveEvents).Methods(http.MethodGet)

	return s
}

// SetArchiveReader exposes archived runs under /v1/archive
func (s *HTTPServer) SetArchiveReader(a ArchiveReader) {
	s.archive = a
}

// SetCreateRateLimit throttles run creation per client
func (s *HTTPServer) SetCreateRateLimit(l *RateLimiter) {
	s.createLimiter = l
}

func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"runs":      s.store.Len(),
	})
}

// handleScenarios handles GET /v1/scenarios
func (s *HTTPServer) handleScenarios(w http.ResponseWriter, _ *http.Request) {
	cat := s.Executor.Catalog()
	scenarios := make([]any, 0, cat.Len())
	for _, name := range cat.Names() {
		sc, err := cat.Lookup(name)
		if err != nil {
			continue
		}
		scenarios = append(scenarios, sc)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"scenarios": scenarios,
		"costs":     cat.Costs,
	})
}

// handleStats handles GET /v1/stats
func (s *HTTPServer) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Executor.Stats().Summary())
}

func (s *HTTPServer) handleCreateRunLimited(w http.ResponseWriter, r *http.Request) {
	s.createLimiter.Middleware(http.HandlerFunc(s.handleCreateRun)).ServeHTTP(w, r)
}

// handleCreateRun handles POST /v1/runs
func (s *HTTPServer) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Input == nil {
		s.writeError(w, http.StatusBadRequest, "input is required")
		return
	}
	if req.Input.CallbackURL != "" {
		if err := validateCallbackURL(req.Input.CallbackURL); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	req.Input.CallbackSecret = req.CallbackSecret

	rec, err := s.Executor.Submit(req.RunID, *req.Input)
	if err != nil {
		switch {
		case errors.Is(err, ErrRunExists):
			s.writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, ErrInvalidScenario),
			errors.Is(err, ErrScenarioMissing),
			errors.Is(err, ErrInvalidRunID):
			s.writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	logger.Info("run created (HTTP)", "run_id", rec.Run.ID, "scenario", rec.Input.Scenario)
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"run": rec.Run,
	})
}

// handleListRuns handles GET /v1/runs with pagination and filtering
func (s *HTTPServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 50
	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
			if limit > 1000 {
				limit = 1000
			}
		}
	}
	offset := 0
	if v := q.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	var status models.RunStatus
	if v := q.Get("status"); v != "" {
		parsed, ok := parseRunStatus(v)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "unknown status: "+v)
			return
		}
		status = parsed
	}

	recs := s.store.List(limit, offset, status)
	runs := make([]models.Run, 0, len(recs))
	for _, rec := range recs {
		run := rec.Run
		run.Metrics = nil // listed without metrics; fetch them per run
		runs = append(runs, run)
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"runs": runs,
		"pagination": map[string]any{
			"limit":  limit,
			"offset": offset,
			"count":  len(runs),
		},
	})
}

// parseRunStatus parses a status string, case-insensitively
func parseRunStatus(v string) (models.RunStatus, bool) {
	status := models.RunStatus(strings.ToLower(strings.TrimSpace(v)))
	switch status {
	case models.RunStatusPending, models.RunStatusRunning, models.RunStatusCompleted,
		models.RunStatusFailed, models.RunStatusCancelled:
		return status, true
	}
	return "", false
}

func (s *HTTPServer) lookup(w http.ResponseWriter, r *http.Request) (*RunRecord, bool) {
	runID := mux.Vars(r)["id"]
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return nil, false
	}
	return rec, true
}

// handleGetRun handles GET /v1/runs/{id}
func (s *HTTPServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run": rec.Run,
	})
}

// handleStopRun handles POST /v1/runs/{id}:stop
func (s *HTTPServer) handleStopRun(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]
	updated, err := s.Executor.Stop(runID)
	if err != nil {
		switch {
		case errors.Is(err, ErrRunNotFound):
			s.writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrRunTerminal):
			s.writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, ErrRunIDMissing):
			s.writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	logger.Info("run cancelled (HTTP)", "run_id", runID)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run": updated.Run,
	})
}

// handleGetRunMetrics handles GET /v1/runs/{id}/metrics
func (s *HTTPServer) handleGetRunMetrics(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if rec.Run.Metrics == nil {
		s.writeError(w, http.StatusPreconditionFailed, ErrMetricsUnavailable.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"metrics": rec.Run.Metrics,
	})
}

// handleGetRunEvents handles GET /v1/runs/{id}/events as CSV
func (s *HTTPServer) handleGetRunEvents(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if !rec.Run.Status.IsTerminal() {
		s.writeError(w, http.StatusPreconditionFailed, "event log not available until the run ends")
		return
	}
	s.writeEventsCSV(w, rec.Run.ID, rec.Records)
}

// handleGetRunDaily handles GET /v1/runs/{id}/daily, JSON by default or ?format=csv
func (s *HTTPServer) handleGetRunDaily(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if !rec.Run.Status.IsTerminal() {
		s.writeError(w, http.StatusPreconditionFailed, "daily series not available until the run ends")
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+rec.Run.ID+`-daily.csv"`)
		if err := report.WriteDailyCSV(w, rec.Daily); err != nil {
			logger.Error("failed to write daily csv", "run_id", rec.Run.ID, "error", err)
		}
		return
	}
	daily := rec.Daily
	if daily == nil {
		daily = []models.DayStats{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run_id": rec.Run.ID,
		"days":   daily,
	})
}

// handleArchiveList handles GET /v1/archive/runs
func (s *HTTPServer) handleArchiveList(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		s.writeError(w, http.StatusNotImplemented, "no event archive configured")
		return
	}
	runs, err := s.archive.ListRuns(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []eventstore.RunSummary{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleArchiveEvents handles GET /v1/archive/runs/{id}/events as CSV
func (s *HTTPServer) handleArchiveEvents(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		s.writeError(w, http.StatusNotImplemented, "no event archive configured")
		return
	}
	runID := mux.Vars(r)["id"]
	records, err := s.archive.LoadRun(r.Context(), runID)
	if err != nil {
		if errors.Is(err, eventstore.ErrRunNotFound) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeEventsCSV(w, runID, records)
}

func (s *HTTPServer) writeEventsCSV(w http.ResponseWriter, runID string, records []models.EventRecord) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+runID+`-events.csv"`)
	if err := report.WriteEventsCSV(w, records); err != nil {
		logger.Error("failed to write events csv", "run_id", runID, "error", err)
	}
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{"error": message})
}
