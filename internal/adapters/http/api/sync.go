package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/opskitchen/shiftboard/internal/adapters/pos"
	"github.com/opskitchen/shiftboard/internal/domain/model"
)

// syncRequest is the POST /sync body.
type syncRequest struct {
	LocationID string `json:"locationId"`
	StoreID    string `json:"storeId"`
	StartDate  string `json:"startDate"` // 2006-01-02
	EndDate    string `json:"endDate"`
	Async      bool   `json:"async"`
}

func (r syncRequest) validate() (start, end time.Time, err error) {
	switch {
	case strings.TrimSpace(r.LocationID) == "":
		return start, end, errors.New("missing locationId")
	case strings.TrimSpace(r.StoreID) == "":
		return start, end, errors.New("missing storeId")
	}

	start, err = time.Parse(model.DateKey, r.StartDate)
	if err != nil {
		return start, end, errors.New("invalid startDate; must be yyyy-mm-dd")
	}
	end, err = time.Parse(model.DateKey, r.EndDate)
	if err != nil {
		return start, end, errors.New("invalid endDate; must be yyyy-mm-dd")
	}
	if end.Before(start) {
		return start, end, errors.New("endDate before startDate")
	}
	return start, end, nil
}

// syncResponse summarizes a synchronous run.
type syncResponse struct {
	Attributed  int         `json:"attributed"`
	SkippedDays int         `json:"skippedDays"`
	Days        []dayResult `json:"days"`
}

type dayResult struct {
	Date       string `json:"date"`
	Outcome    string `json:"outcome"`
	Attributed int    `json:"attributed"`
	NoLeader   int    `json:"noLeader"`
}

// asyncAccepted is the 202 body for queued jobs.
type asyncAccepted struct {
	JobID string `json:"jobId"`
}

// handleSync handles POST /sync: run an attribution pass now, or queue it.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	start, end, err := req.validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	if req.Async {
		jobID, ok := s.deps.EnqueueSync(r.Context(), req.LocationID, req.StoreID, start, end)
		if !ok {
			writeError(w, http.StatusServiceUnavailable, "backpressure", ErrBackpressure)
			return
		}
		writeJSON(w, http.StatusAccepted, asyncAccepted{JobID: jobID})
		return
	}

	result, err := s.deps.SyncOrderAttributions(r.Context(), req.LocationID, req.StoreID, start, end)
	if err != nil {
		switch {
		case errors.Is(err, pos.ErrConfiguration), errors.Is(err, pos.ErrAuth):
			writeError(w, http.StatusBadGateway, "upstream_auth", err)
		case errors.Is(err, pos.ErrRateLimited):
			writeError(w, http.StatusTooManyRequests, "rate_limited", err)
		case errors.Is(err, pos.ErrUpstream):
			writeError(w, http.StatusBadGateway, "upstream_error", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}

	resp := syncResponse{
		Attributed:  result.AttributedCount(),
		SkippedDays: result.SkippedDays(),
		Days:        make([]dayResult, 0, len(result.Days)),
	}
	for _, day := range result.Days {
		resp.Days = append(resp.Days, dayResult{
			Date:       day.Date,
			Outcome:    string(day.Outcome),
			Attributed: day.Attributed,
			NoLeader:   day.NoLeader,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
