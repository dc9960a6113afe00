package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	celerybridge "github.com/celerybridge/celerybridge-go"
	"github.com/celerybridge/celerybridge-go/internal/domain"
	"github.com/celerybridge/celerybridge-go/internal/metrics"
)

// SubmissionStore is the slice of the relational store the API needs.
type SubmissionStore interface {
	InsertSubmission(ctx context.Context, url string, isCompetitor bool) (*domain.Submission, error)
	GetSubmission(ctx context.Context, id string) (*domain.Submission, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) error
}

// TaskBridge is the slice of the bridge client the API needs.
type TaskBridge interface {
	QueueScrapeTask(ctx context.Context, submissionID, url string, opts ...celerybridge.Option) (string, error)
	StoreTaskID(ctx context.Context, submissionID, taskID string) error
	TaskIDForSubmission(ctx context.Context, submissionID string) (string, error)
	GetResult(ctx context.Context, taskID string) (*celerybridge.Result, error)
}

// Server exposes the submission endpoints plus /metrics.
type Server struct {
	store  SubmissionStore
	bridge TaskBridge
	log    celerybridge.Logger
}

func New(store SubmissionStore, bridge TaskBridge, log celerybridge.Logger) *Server {
	if log == nil {
		log = celerybridge.NewFmtLogger()
	}
	return &Server{store: store, bridge: bridge, log: log}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/v1/submissions", s.createSubmission)
	r.Get("/v1/submissions/{id}", s.getSubmission)
	r.Get("/v1/submissions/{id}/status", s.getSubmissionStatus)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

type createSubmissionRequest struct {
	URL                 string `json:"url"`
	IsCompetitorProduct bool   `json:"is_competitor_product"`
}

type submissionResponse struct {
	ID     string        `json:"id"`
	URL    string        `json:"url"`
	Status domain.Status `json:"status"`
	TaskID string        `json:"task_id,omitempty"`
}

// createSubmission persists the row first, then dispatches. A dispatch failure
// flips the row to failed so nothing stays pending forever without a task.
func (s *Server) createSubmission(w http.ResponseWriter, r *http.Request) {
	var req createSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	ctx := r.Context()
	sub, err := s.store.InsertSubmission(ctx, req.URL, req.IsCompetitorProduct)
	if err != nil {
		s.log.Errorf("insert submission: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create submission")
		return
	}

	taskID, err := s.bridge.QueueScrapeTask(ctx, sub.ID, sub.URL)
	if err != nil {
		metrics.DispatchFailures.WithLabelValues("scrape_product_reviews").Inc()
		s.log.Errorf("queue task for submission %s: %v", sub.ID, err)
		if uerr := s.store.UpdateStatus(ctx, sub.ID, domain.StatusFailed); uerr != nil {
			s.log.Errorf("mark submission %s failed: %v", sub.ID, uerr)
		}
		writeError(w, http.StatusInternalServerError, "failed to queue task")
		return
	}
	metrics.TasksDispatched.WithLabelValues("scrape_product_reviews").Inc()

	// The mapping only suppresses duplicate dispatch; losing it is tolerable.
	if err := s.bridge.StoreTaskID(ctx, sub.ID, taskID); err != nil {
		s.log.Warnf("store task mapping for submission %s: %v", sub.ID, err)
	}

	writeJSON(w, http.StatusCreated, submissionResponse{
		ID:     sub.ID,
		URL:    sub.URL,
		Status: sub.Status,
		TaskID: taskID,
	})
}

func (s *Server) getSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	sub, err := s.store.GetSubmission(ctx, id)
	if err != nil {
		writeError(w, http.StatusNotFound, "submission not found")
		return
	}

	taskID, err := s.bridge.TaskIDForSubmission(ctx, id)
	if err != nil {
		s.log.Warnf("task mapping lookup for submission %s: %v", id, err)
	}

	writeJSON(w, http.StatusOK, submissionResponse{
		ID:     sub.ID,
		URL:    sub.URL,
		Status: sub.Status,
		TaskID: taskID,
	})
}

type statusResponse struct {
	Status celerybridge.State   `json:"status"`
	Result *celerybridge.Result `json:"result,omitempty"`
}

// getSubmissionStatus resolves submission → task id → result record. An absent
// record reads as PENDING; only terminal states come from the worker.
func (s *Server) getSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if _, err := s.store.GetSubmission(ctx, id); err != nil {
		writeError(w, http.StatusNotFound, "submission not found")
		return
	}

	taskID, err := s.bridge.TaskIDForSubmission(ctx, id)
	if err != nil {
		s.log.Errorf("task mapping lookup for submission %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to check task status")
		return
	}
	if taskID == "" {
		writeError(w, http.StatusBadRequest, "no task associated with this submission")
		return
	}

	res, err := s.bridge.GetResult(ctx, taskID)
	if err != nil {
		s.log.Errorf("result lookup for task %s: %v", taskID, err)
		writeError(w, http.StatusInternalServerError, "failed to check task status")
		return
	}

	out := statusResponse{Status: celerybridge.StatePending}
	if res != nil {
		out.Status = res.Status
		out.Result = res
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
