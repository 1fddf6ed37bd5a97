// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	service "github.com/okian/tally/internal/app"
	"github.com/okian/tally/internal/domain/types"
	"github.com/okian/tally/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider
	OpsDependencies
	EventDependencies
	RecordDependencies
	SummaryDependencies
}

var _ Dependencies = (*service.Service)(nil)

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	eventsHandler  *EventsHandler
	recordsHandler *RecordsHandler
	summaryHandler *SummaryHandler
	logger         logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets the access logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps, deps),
		eventsHandler:  NewEventsHandler(deps),
		recordsHandler: NewRecordsHandler(deps),
		summaryHandler: NewSummaryHandler(deps),
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Post("/refresh", MetricsMiddleware(s.statsHandler.HandleRefresh, "refresh"))
	r.Get("/ping", MetricsMiddleware(s.statsHandler.HandlePing, "ping"))

	r.Route("/events", func(r chi.Router) {
		r.Get("/", MetricsMiddleware(s.eventsHandler.HandleList, "events"))
		r.Post("/", MetricsMiddleware(s.eventsHandler.HandleCreate, "events"))
		r.Get("/available", MetricsMiddleware(s.eventsHandler.HandleAvailable, "events_available"))
		r.Get("/stats", MetricsMiddleware(s.eventsHandler.HandleStats, "events_stats"))
		r.Put("/{id}", MetricsMiddleware(s.eventsHandler.HandleUpdate, "event"))
		r.Delete("/{id}", MetricsMiddleware(s.eventsHandler.HandleDelete, "event"))
	})

	r.Get("/users/{code}", MetricsMiddleware(s.recordsHandler.HandleUser, "user"))
	r.Get("/records", MetricsMiddleware(s.recordsHandler.HandleList, "records"))
	r.Post("/records", MetricsMiddleware(s.recordsHandler.HandleSubmit, "records"))

	r.Get("/summary", MetricsMiddleware(s.summaryHandler.HandleSummary, "summary"))
	r.Get("/summary.csv", MetricsMiddleware(s.summaryHandler.HandleCSV, "summary_csv"))
	r.Get("/summary/records", MetricsMiddleware(s.summaryHandler.HandleRecords, "summary_records"))
	r.Get("/summary/filters", MetricsMiddleware(s.summaryHandler.HandleFilters, "summary_filters"))
	r.Get("/participants/{name}", MetricsMiddleware(s.summaryHandler.HandleParticipant, "participant"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure classifies err and writes the matching status.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

// summaryQuery reads from, to, event, department, limit and q.
func summaryQuery(r *http.Request) (types.SummaryQuery, error) {
	const op = "api.summary_query"
	v := r.URL.Query()
	q := types.SummaryQuery{
		From:       strings.TrimSpace(v.Get("from")),
		To:         strings.TrimSpace(v.Get("to")),
		Event:      v.Get("event"),
		Department: v.Get("department"),
		Limit:      -1,
		Search:     v.Get("q"),
	}
	if raw := strings.TrimSpace(v.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return q, NewKind(op+": limit must be a non-negative integer", ErrBadRequest)
		}
		q.Limit = n
	}
	return q, nil
}

// pathParam returns a decoded chi URL parameter.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
