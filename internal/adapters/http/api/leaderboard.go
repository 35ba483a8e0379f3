package api

import (
	"errors"
	"net/http"
	"strings"
)

// leaderboardEntry is the read shape for GET /leaderboard.
type leaderboardEntry struct {
	Rank               int     `json:"rank"`
	LeaderID           string  `json:"leaderId"`
	LeaderName         string  `json:"leaderName"`
	ShiftCount         int     `json:"shiftCount"`
	AvgTimeliness      float64 `json:"avgTimeliness"`
	AvgTurnTimeScore   float64 `json:"avgTurnTimeScore"`
	AvgTicketScore     float64 `json:"avgTicketScore"`
	AvgTurnTimeMinutes float64 `json:"avgTurnTimeMinutes"`
	AvgTicketSize      float64 `json:"avgTicketSize"`
	CompositePercent   float64 `json:"compositePercent"`
	OnTimeRate         float64 `json:"onTimeRate"`
	ReviewBonusPoints  float64 `json:"reviewBonusPoints"`
	FiveStarReviews    int     `json:"fiveStarReviews"`
	EffectiveScore     float64 `json:"effectiveScore"`
}

// handleLeaderboard handles GET /leaderboard?store=ID.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	storeID := strings.TrimSpace(r.URL.Query().Get("store"))
	if storeID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing store parameter"))
		return
	}

	entries, err := s.deps.CalculateLeaderboard(r.Context(), storeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	out := make([]leaderboardEntry, 0, len(entries))
	for i, entry := range entries {
		out = append(out, leaderboardEntry{
			Rank:               i + 1,
			LeaderID:           entry.LeaderID,
			LeaderName:         entry.LeaderName,
			ShiftCount:         entry.ShiftCount,
			AvgTimeliness:      entry.AvgTimeliness,
			AvgTurnTimeScore:   entry.AvgTurnTimeScore,
			AvgTicketScore:     entry.AvgTicketScore,
			AvgTurnTimeMinutes: entry.AvgTurnTimeMinutes,
			AvgTicketSize:      entry.AvgTicketSize,
			CompositePercent:   entry.CompositePercent,
			OnTimeRate:         entry.OnTimeRate,
			ReviewBonusPoints:  entry.ReviewBonusPoints,
			FiveStarReviews:    entry.FiveStarReviews,
			EffectiveScore:     entry.EffectiveScore,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
