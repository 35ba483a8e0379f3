// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// DateKey is the calendar-date layout used to partition transactions.
const DateKey = "2006-01-02"

// BusinessDateKey is the compact operational-day key the point of sale
// expects for labor queries.
const BusinessDateKey = "20060102"

// Transaction is a closed, non-voided point-of-sale transaction.
// Immutable once closed; consumed read-only.
type Transaction struct {
	ID            string
	DisplayNumber string
	OpenedAt      time.Time
	ClosedAt      time.Time
	NetAmount     float64 // pre-tax sum of closed checks
	GuestCount    int
	CheckID       string
	PaymentStatus string
}

// TurnTimeMinutes is the open-to-close duration in minutes.
func (t Transaction) TurnTimeMinutes() float64 {
	return t.ClosedAt.Sub(t.OpenedAt).Minutes()
}

// AttendanceRecord is a single clock-in/clock-out entry for an employee.
type AttendanceRecord struct {
	EmployeeID   string // external point-of-sale identifier
	EmployeeName string
	RoleTitle    string
	ClockIn      time.Time
	ClockOut     *time.Time // nil while still clocked in
}

// OnDutyAt reports whether the record's interval contains the instant,
// inclusive on both ends. An open record is treated as clocked out at now.
func (a AttendanceRecord) OnDutyAt(instant, now time.Time) bool {
	out := now
	if a.ClockOut != nil {
		out = *a.ClockOut
	}
	return !instant.Before(a.ClockIn) && !instant.After(out)
}

// Role is the internal account role.
type Role string

// Internal account roles.
const (
	RoleStaff   Role = "staff"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// Identity is an internal user account, read-only to the engine.
type Identity struct {
	ID            string
	Name          string
	Role          Role
	POSEmployeeID string // optional external point-of-sale identifier
}

// IsManagerial reports whether the identity qualifies for the leaderboard.
func (i Identity) IsManagerial() bool {
	return i.Role == RoleManager || i.Role == RoleAdmin
}

// UnknownUserPrefix marks leader candidates whose identity resolution failed.
const UnknownUserPrefix = "unknown-"

// LeaderCandidate is an on-duty employee matched to a leadership role.
// Produced fresh on every detection call; never persisted.
type LeaderCandidate struct {
	UserID     string // internal id, or UnknownUserPrefix + ExternalID
	Name       string
	RoleTitle  string // canonicalized leadership title
	Priority   int    // lower = higher authority
	ExternalID string
}

// Resolved reports whether the candidate carries a real internal identity.
func (c LeaderCandidate) Resolved() bool {
	return c.UserID != "" && !strings.HasPrefix(c.UserID, UnknownUserPrefix)
}

// AttributedOrder is a transaction assigned to the leader on duty when it
// opened. Idempotent by transaction identifier.
type AttributedOrder struct {
	ID               string // record identifier
	Transaction      Transaction
	StoreID          string
	LeaderID         string
	LeaderName       string
	LeaderExternalID string
	AttributedAt     time.Time
}

// ShiftScore is the per-shift scoring breakdown.
type ShiftScore struct {
	Date         string // DateKey form
	TemplateName string
	Timeliness   float64
	TurnTime     float64
	Ticket       float64
	HasPOSData   bool
	MaxPossible  float64
	Total        float64
}

// LeaderboardEntry is one row of the ranked leadership leaderboard.
type LeaderboardEntry struct {
	LeaderID           string
	LeaderName         string
	ShiftCount         int
	AvgTimeliness      float64
	AvgTurnTimeScore   float64
	AvgTicketScore     float64
	AvgTurnTimeMinutes float64
	AvgTicketSize      float64
	CompositePercent   float64
	OnTimeRate         float64
	ReviewBonusPoints  float64
	FiveStarReviews    int
	EffectiveScore     float64
}

// TaskCompletion records who completed a checklist task and when.
type TaskCompletion struct {
	TaskID      string
	CompletedBy string // internal user id
	CompletedAt time.Time
}

// POSSnapshot is the point-of-sale summary embedded in a submission.
// Legacy path used only when no attributed orders exist for the shift.
type POSSnapshot struct {
	AvgTurnTimeMinutes float64
	AvgTicket          float64
	TransactionCount   int
}

// Submission is a completed checklist run for one shift.
type Submission struct {
	ID           string
	Date         time.Time // shift calendar date
	TemplateName string
	SubmittedAt  *time.Time // nil when never submitted
	Tasks        []TaskCompletion
	POSSnapshot  *POSSnapshot
}

// CompletedBy reports whether the given user completed at least one task.
func (s Submission) CompletedBy(userID string) bool {
	for _, task := range s.Tasks {
		if task.CompletedBy == userID {
			return true
		}
	}
	return false
}

// Template describes a checklist template and its submission deadline.
type Template struct {
	Name         string
	DeadlineHour int // deadline hour on the shift's date, 24h clock
}

// Review is a tracked customer review attributed to a leader.
type Review struct {
	ID            string
	LeaderID      string
	Rating        float64
	BonusEligible bool
	CreatedAt     time.Time
}

// FiveStarBonusPoints is the flat bonus for a bonus-eligible 5-star review.
const FiveStarBonusPoints = 25.0

// SyncJob is a queued request to attribute a date range for a location.
type SyncJob struct {
	ID         string // unique id for idempotency
	LocationID string
	StoreID    string
	StartDate  time.Time
	EndDate    time.Time
	EnqueuedAt time.Time
}
