// Package leaderboard rolls per-shift scores up per leader over a lookback
// window, folds in review bonuses, ranks, and breaks ties.
package leaderboard

import (
	"sort"
	"time"

	"github.com/opskitchen/shiftboard/internal/domain/model"
	"github.com/opskitchen/shiftboard/internal/domain/scoring"
)

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithClock overrides the time source, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(a *Aggregator) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// WithScoringEngine sets a custom shift scoring engine.
func WithScoringEngine(engine *scoring.Engine) Option {
	return func(a *Aggregator) {
		if engine != nil {
			a.scorer = engine
		}
	}
}

// Aggregator builds the ranked leadership leaderboard. It is a pure
// function of its inputs and safe to call repeatedly for a live UI refresh.
type Aggregator struct {
	scorer *scoring.Engine
	clock  func() time.Time
}

// New creates an aggregator with default configuration.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		scorer: scoring.NewEngine(),
		clock:  time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Build computes the ranked leaderboard over the lookback window.
//
// Only managerial/administrative identities are ranked. Leaders with zero
// qualifying shifts are still included, ranked last, so an inactive manager
// stays visible instead of silently vanishing.
func (a *Aggregator) Build(
	submissions []model.Submission,
	templates []model.Template,
	identities []model.Identity,
	lookbackDays int,
	reviews []model.Review,
	orders []model.AttributedOrder,
) []model.LeaderboardEntry {
	now := a.clock()
	windowStart := now.AddDate(0, 0, -lookbackDays)

	templateByName := make(map[string]model.Template, len(templates))
	for _, template := range templates {
		templateByName[template.Name] = template
	}

	entries := make([]model.LeaderboardEntry, 0, len(identities))
	for _, identity := range identities {
		if !identity.IsManagerial() {
			continue
		}
		entries = append(entries, a.buildEntry(identity, submissions, templateByName, windowStart, now, reviews, orders))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		hasShiftsI := entries[i].ShiftCount > 0
		hasShiftsJ := entries[j].ShiftCount > 0
		if hasShiftsI != hasShiftsJ {
			return hasShiftsI
		}
		if entries[i].EffectiveScore != entries[j].EffectiveScore {
			return entries[i].EffectiveScore > entries[j].EffectiveScore
		}
		return entries[i].LeaderName < entries[j].LeaderName
	})

	return entries
}

func (a *Aggregator) buildEntry(
	identity model.Identity,
	submissions []model.Submission,
	templateByName map[string]model.Template,
	windowStart, windowEnd time.Time,
	reviews []model.Review,
	orders []model.AttributedOrder,
) model.LeaderboardEntry {
	entry := model.LeaderboardEntry{
		LeaderID:   identity.ID,
		LeaderName: identity.Name,
	}

	leaderOrders := make([]model.AttributedOrder, 0)
	ordersByDate := make(map[string][]model.AttributedOrder)
	for _, order := range orders {
		if order.LeaderID != identity.ID {
			continue
		}
		opened := order.Transaction.OpenedAt
		if opened.Before(windowStart) || opened.After(windowEnd) {
			continue
		}
		leaderOrders = append(leaderOrders, order)
		key := opened.Format(model.DateKey)
		ordersByDate[key] = append(ordersByDate[key], order)
	}

	var timelinessSum, turnScoreSum, ticketScoreSum float64
	onTimeShifts := 0
	for _, submission := range submissions {
		if submission.Date.Before(windowStart) || submission.Date.After(windowEnd) {
			continue
		}
		if !submission.CompletedBy(identity.ID) {
			continue
		}
		template, ok := templateByName[submission.TemplateName]
		if !ok {
			// No template means no deadline to score against; the shift
			// cannot be evaluated.
			continue
		}

		shiftOrders := ordersByDate[submission.Date.Format(model.DateKey)]
		score := a.scorer.ScoreShift(submission, template, shiftOrders)

		entry.ShiftCount++
		timelinessSum += score.Timeliness
		turnScoreSum += score.TurnTime
		ticketScoreSum += score.Ticket
		if score.Timeliness == scoring.TimelinessOnTime {
			onTimeShifts++
		}
	}

	if entry.ShiftCount > 0 {
		shifts := float64(entry.ShiftCount)
		entry.AvgTimeliness = timelinessSum / shifts
		entry.AvgTurnTimeScore = turnScoreSum / shifts
		entry.AvgTicketScore = ticketScoreSum / shifts
		entry.OnTimeRate = float64(onTimeShifts) / shifts

		// Dual normalization path, preserved deliberately: a leader with any
		// attributed-order data is held to the full 105-point maximum even
		// when some individual shifts lacked point-of-sale data.
		maxPossible := scoring.MaxWithoutPOS
		if len(leaderOrders) > 0 {
			maxPossible = scoring.MaxWithPOS
		}
		entry.CompositePercent = (entry.AvgTimeliness + entry.AvgTurnTimeScore + entry.AvgTicketScore) / maxPossible * 100
	}

	if figures := scoring.FiguresFromOrders(leaderOrders); figures.Available {
		entry.AvgTurnTimeMinutes = figures.AvgTurnTimeMinutes
		entry.AvgTicketSize = figures.AvgTicket
	}

	for _, review := range reviews {
		if review.LeaderID != identity.ID || !review.BonusEligible {
			continue
		}
		if review.CreatedAt.Before(windowStart) || review.CreatedAt.After(windowEnd) {
			continue
		}
		if review.Rating >= 5 {
			entry.ReviewBonusPoints += model.FiveStarBonusPoints
			entry.FiveStarReviews++
		}
	}

	entry.EffectiveScore = entry.CompositePercent + entry.ReviewBonusPoints
	return entry
}
