// Package scoring computes per-shift timeliness, turn-time and ticket-size
// sub-scores from checklist submissions and attributed orders.
package scoring

import (
	"time"

	"github.com/opskitchen/shiftboard/internal/domain/model"
)

// Fixed sub-score breakpoints. These are business constants, not tunables.
const (
	TimelinessOnTime   = 40.0
	TimelinessLate     = -10.0
	TimelinessVeryLate = -20.0

	lateGraceMinutes = 60.0

	TurnTimeExcellent = 40.0
	TurnTimeGood      = 35.0
	TurnTimePoor      = -10.0
	TurnTimeCritical  = -20.0

	excellentTurnTimeMinutes = 3.5
	goodTurnTimeMinutes      = 4.5

	// MaxWithPOS and MaxWithoutPOS are the attainable per-shift maxima; the
	// leaderboard normalizes against whichever applied.
	MaxWithPOS    = 105.0
	MaxWithoutPOS = 40.0
)

// defaultCriticalTurnTimeMinutes is the threshold beyond which a shift earns
// the worst turn-time sub-score. Surfaced as configuration.
const defaultCriticalTurnTimeMinutes = 5.0

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithCriticalTurnTime overrides the critical turn-time threshold in minutes.
func WithCriticalTurnTime(minutes float64) Option {
	return func(e *Engine) {
		if minutes > 0 {
			e.criticalTurnTime = minutes
		}
	}
}

// Engine scores individual shifts.
type Engine struct {
	criticalTurnTime float64
}

// NewEngine creates a scoring engine with default thresholds.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		criticalTurnTime: defaultCriticalTurnTimeMinutes,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// TimelinessScore scores submission lateness against a deadline.
// No submission timestamp scores zero.
func TimelinessScore(submittedAt *time.Time, deadline time.Time) float64 {
	if submittedAt == nil {
		return 0
	}
	delay := submittedAt.Sub(deadline).Minutes()
	switch {
	case delay <= 0:
		return TimelinessOnTime
	case delay <= lateGraceMinutes:
		return TimelinessLate
	default:
		return TimelinessVeryLate
	}
}

// TurnTimeScore scores an average turn time in minutes.
func (e *Engine) TurnTimeScore(avgMinutes float64) float64 {
	switch {
	case avgMinutes < excellentTurnTimeMinutes:
		return TurnTimeExcellent
	case avgMinutes < goodTurnTimeMinutes:
		return TurnTimeGood
	case avgMinutes < e.criticalTurnTime:
		return TurnTimePoor
	default:
		return TurnTimeCritical
	}
}

// TicketScore scores an average pre-tax ticket size.
func TicketScore(avgTicket float64) float64 {
	switch {
	case avgTicket >= 10:
		return 25
	case avgTicket >= 8:
		return 20
	case avgTicket >= 6:
		return 15
	case avgTicket >= 4:
		return 5
	default:
		return 0
	}
}

// Deadline computes the template deadline instant on the shift's date.
func Deadline(shiftDate time.Time, template model.Template) time.Time {
	return time.Date(shiftDate.Year(), shiftDate.Month(), shiftDate.Day(),
		template.DeadlineHour, 0, 0, 0, shiftDate.Location())
}

// POSFigures is the turn-time/ticket input for one shift.
type POSFigures struct {
	AvgTurnTimeMinutes float64
	AvgTicket          float64
	Available          bool
}

// FiguresFromOrders averages turn time and ticket size across attributed
// orders. Available is false for an empty slice.
func FiguresFromOrders(orders []model.AttributedOrder) POSFigures {
	if len(orders) == 0 {
		return POSFigures{}
	}
	var turnSum, ticketSum float64
	for _, order := range orders {
		turnSum += order.Transaction.TurnTimeMinutes()
		ticketSum += order.Transaction.NetAmount
	}
	n := float64(len(orders))
	return POSFigures{
		AvgTurnTimeMinutes: turnSum / n,
		AvgTicket:          ticketSum / n,
		Available:          true,
	}
}

// figuresForShift prefers attributed orders and falls back to the snapshot
// embedded in the submission (the legacy degraded-data path).
func figuresForShift(submission model.Submission, orders []model.AttributedOrder) POSFigures {
	if figures := FiguresFromOrders(orders); figures.Available {
		return figures
	}
	if snapshot := submission.POSSnapshot; snapshot != nil && snapshot.TransactionCount > 0 {
		return POSFigures{
			AvgTurnTimeMinutes: snapshot.AvgTurnTimeMinutes,
			AvgTicket:          snapshot.AvgTicket,
			Available:          true,
		}
	}
	return POSFigures{}
}

// ScoreShift computes the per-shift score from a checklist submission, its
// template, and the leader's attributed orders for that shift. Turn-time and
// ticket sub-scores are only awarded when point-of-sale data exists; the
// attainable maximum shrinks to timeliness-only otherwise.
func (e *Engine) ScoreShift(submission model.Submission, template model.Template, orders []model.AttributedOrder) model.ShiftScore {
	score := model.ShiftScore{
		Date:         submission.Date.Format(model.DateKey),
		TemplateName: template.Name,
	}

	score.Timeliness = TimelinessScore(submission.SubmittedAt, Deadline(submission.Date, template))

	figures := figuresForShift(submission, orders)
	score.HasPOSData = figures.Available
	if figures.Available {
		score.TurnTime = e.TurnTimeScore(figures.AvgTurnTimeMinutes)
		score.Ticket = TicketScore(figures.AvgTicket)
		score.MaxPossible = MaxWithPOS
	} else {
		score.MaxPossible = MaxWithoutPOS
	}

	score.Total = score.Timeliness + score.TurnTime + score.Ticket
	return score
}
