// Package server provides the HTTP API for the planner: read access to
// projects, tasks, slots and completion estimates, plus an endpoint that
// triggers a scheduling run.
package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matthiashuenaerts/prodplan/internal/db"
	"github.com/matthiashuenaerts/prodplan/internal/logging"
	"github.com/matthiashuenaerts/prodplan/internal/scheduler"
	"github.com/matthiashuenaerts/prodplan/pkg/models"
)

// Server is the planner HTTP API server.
type Server struct {
	db     *db.DB
	engine *scheduler.Engine
	log    *logging.Logger

	// planMu serializes scheduling runs; concurrent POST /api/plan calls
	// would otherwise race on the shared calendar and employee data.
	planMu sync.Mutex
}

// New creates a new API server around the store and engine.
func New(database *db.DB, engine *scheduler.Engine, log *logging.Logger) *Server {
	return &Server{db: database, engine: engine, log: log}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/projects", s.handleListProjects)
		r.Get("/tasks", s.handleListTasks)
		r.Get("/slots", s.handleListSlots)
		r.Get("/completions", s.handleListCompletions)
		r.Post("/plan", s.handlePlan)
	})

	return r
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.db.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if projects == nil {
		projects = []*models.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	var status *models.TaskStatus
	if v := r.URL.Query().Get("status"); v != "" {
		st := models.TaskStatus(v)
		status = &st
	}
	var projectID *string
	if v := r.URL.Query().Get("project_id"); v != "" {
		projectID = &v
	}

	tasks, err := s.db.ListTasks(r.Context(), status, projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleListSlots(w http.ResponseWriter, r *http.Request) {
	var (
		slots []*models.ScheduleSlot
		err   error
	)
	if v := r.URL.Query().Get("day"); v != "" {
		day, perr := time.Parse("2006-01-02", v)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "day must be YYYY-MM-DD")
			return
		}
		slots, err = s.db.SlotsForDay(r.Context(), day)
	} else {
		slots, err = s.db.ListSlots(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if slots == nil {
		slots = []*models.ScheduleSlot{}
	}
	writeJSON(w, http.StatusOK, slots)
}

func (s *Server) handleListCompletions(w http.ResponseWriter, r *http.Request) {
	recs, err := s.db.ListCompletions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []*models.ProjectCompletion{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// handlePlan runs the engine and commits the resulting plan. An optional
// from query parameter (RFC 3339) overrides the start instant.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	from := time.Now().UTC()
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "from must be RFC 3339")
			return
		}
		from = t
	}

	s.planMu.Lock()
	defer s.planMu.Unlock()

	result, err := s.engine.Run(r.Context(), from)
	if err != nil {
		s.log.Printf("scheduling run failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.db.ReplaceSlots(r.Context(), result.Slots); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.db.ReplaceCompletions(r.Context(), result.Completions); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.log.Printf("scheduling run committed: %d slots, %d unscheduled", len(result.Slots), len(result.Unscheduled))
	writeJSON(w, http.StatusOK, result)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
