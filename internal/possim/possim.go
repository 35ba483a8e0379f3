// Package possim is a development stand-in for the point-of-sale API. It
// serves /auth, /orders, /labor/timeEntries and /labor/jobs with generated
// data so the attribution pipeline can run end to end without the real
// upstream.
package possim

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/opskitchen/shiftboard/internal/domain/model"
	"github.com/opskitchen/shiftboard/pkg/logger"
)

const simToken = "sim-token"

// Simulator serves a deterministic fake point-of-sale API.
type Simulator struct {
	gen    *generator
	logger logger.Logger
}

// Option applies a configuration option to the Simulator.
type Option func(*Simulator)

// WithSeed fixes the data generation seed.
func WithSeed(seed int64) Option {
	return func(s *Simulator) {
		s.gen.seed = seed
	}
}

// WithOrdersPerDay sets how many orders each business day carries.
func WithOrdersPerDay(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.gen.ordersPerDay = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Simulator) {
		if log != nil {
			s.logger = log
		}
	}
}

// New creates a simulator with configuration options.
func New(opts ...Option) *Simulator {
	s := &Simulator{gen: newGenerator()}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("possim")
	}

	return s
}

// Handler builds the simulator's router.
func (s *Simulator) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Post("/auth", s.handleAuth)
	router.Get("/orders", s.requireToken(s.handleOrders))
	router.Get("/labor/timeEntries", s.requireToken(s.handleTimeEntries))
	router.Get("/labor/jobs", s.requireToken(s.handleJobs))

	return router
}

func (s *Simulator) handleAuth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID     string `json:"clientId"`
		ClientSecret string `json:"clientSecret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ClientID == "" || req.ClientSecret == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	writeJSON(w, map[string]any{
		"accessToken": simToken,
		"expiresIn":   int((24 * time.Hour).Seconds()),
	})
}

// requireToken mirrors the real upstream's bearer check.
func (s *Simulator) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+simToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	}
}

func (s *Simulator) handleOrders(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse(model.DateKey, r.URL.Query().Get("startDate"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	end, err := time.Parse(model.DateKey, r.URL.Query().Get("endDate"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 100
	}

	orders := s.gen.ordersForRange(start, end)
	if len(orders) == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	lo := (page - 1) * pageSize
	if lo >= len(orders) {
		writeJSON(w, []any{})
		return
	}
	hi := lo + pageSize
	if hi > len(orders) {
		hi = len(orders)
	}
	writeJSON(w, orders[lo:hi])
}

func (s *Simulator) handleTimeEntries(w http.ResponseWriter, r *http.Request) {
	day, err := time.Parse(model.BusinessDateKey, r.URL.Query().Get("businessDate"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	writeJSON(w, s.gen.timeEntriesForDay(day))
}

func (s *Simulator) handleJobs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.gen.jobs())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}
