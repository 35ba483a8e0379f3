// Package api is the HTTP surface: sync submission, leaderboard reads,
// health, stats, and metrics.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opskitchen/shiftboard/internal/domain/attribution"
	"github.com/opskitchen/shiftboard/internal/domain/model"
	"github.com/opskitchen/shiftboard/pkg/metrics"
)

// Dependencies are the service operations the handlers call.
type Dependencies interface {
	// SyncOrderAttributions runs a synchronous attribution pass.
	SyncOrderAttributions(ctx context.Context, locationID, storeID string, startDate, endDate time.Time) (attribution.Result, error)

	// EnqueueSync submits an async sync job. Returns false on backpressure.
	EnqueueSync(ctx context.Context, locationID, storeID string, startDate, endDate time.Time) (string, bool)

	// CalculateLeaderboard builds the ranked leadership leaderboard.
	CalculateLeaderboard(ctx context.Context, storeID string) ([]model.LeaderboardEntry, error)

	// Stats reports an operational snapshot.
	Stats(ctx context.Context) map[string]any
}

// Server wires HTTP routes for the attribution API.
type Server struct {
	deps Dependencies
	auth *Authenticator
}

// NewServer creates the API server. A nil authenticator leaves the sync
// endpoint open, which only makes sense in development.
func NewServer(deps Dependencies, auth *Authenticator) *Server {
	return &Server{deps: deps, auth: auth}
}

// Router builds the chi router with middleware and all routes attached.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", withMetrics("healthz", s.handleHealth))
	router.Get("/stats", withMetrics("stats", s.handleStats))
	router.Get("/leaderboard", withMetrics("leaderboard", s.handleLeaderboard))
	router.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	sync := withMetrics("sync", s.handleSync)
	if s.auth != nil {
		router.With(s.auth.Middleware).Post("/sync", sync)
	} else {
		router.Post("/sync", sync)
	}

	return router
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
