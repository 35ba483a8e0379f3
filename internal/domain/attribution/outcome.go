package attribution

import "github.com/opskitchen/shiftboard/internal/domain/model"

// DayOutcome classifies what happened to one calendar day of a sync run.
type DayOutcome string

// Day outcomes. A skipped day is not an error at the run level; the run
// reports it and carries on.
const (
	DayAttributed          DayOutcome = "attributed"
	DaySkippedNoAttendance DayOutcome = "skipped_no_attendance"
	DaySkippedNoLeader     DayOutcome = "skipped_no_leader"
	DaySkippedLaborFetch   DayOutcome = "skipped_labor_fetch_error"
)

// DayResult reports how a single day fared within a sync run.
type DayResult struct {
	Date       string // DateKey form
	Outcome    DayOutcome
	Attributed int
	NoLeader   int // transactions with nobody leading at open time
	Err        error
}

// Result is the outcome of a full attribution run.
type Result struct {
	Attributed []model.AttributedOrder
	Days       []DayResult
}

// AttributedCount sums the attributed transactions across all days.
func (r Result) AttributedCount() int {
	return len(r.Attributed)
}

// SkippedDays counts the days that produced no attributions.
func (r Result) SkippedDays() int {
	var n int
	for _, day := range r.Days {
		if day.Outcome != DayAttributed {
			n++
		}
	}
	return n
}
