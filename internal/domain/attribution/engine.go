// Package attribution assigns closed transactions to the leader who was
// on duty when each one opened.
package attribution

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/opskitchen/shiftboard/internal/domain/model"
	"github.com/opskitchen/shiftboard/internal/domain/roster"
	"github.com/opskitchen/shiftboard/pkg/logger"
	"github.com/opskitchen/shiftboard/pkg/metrics"
)

const defaultLaborBatchSize = 5

// OrderFetcher retrieves closed transactions for a date range.
type OrderFetcher interface {
	FetchClosedOrders(ctx context.Context, locationID string, startDate, endDate time.Time) ([]model.Transaction, error)
}

// LaborFetcher retrieves the job catalog and per-day attendance.
type LaborFetcher interface {
	FetchJobTitles(ctx context.Context) (map[string]string, error)
	FetchAttendance(ctx context.Context, locationID string, businessDate time.Time, jobTitles map[string]string) ([]model.AttendanceRecord, error)
}

// Engine runs attribution: fetch, partition by day, find the leader on
// duty at each transaction's open time, and assign. Attribution is a pure
// function of its inputs; rerunning a range reproduces the same records.
type Engine struct {
	orders    OrderFetcher
	labor     LaborFetcher
	detector  *roster.Detector
	location  *time.Location
	batchSize int
	now       func() time.Time
	logger    logger.Logger
}

// NewEngine creates an attribution engine over the given fetchers.
func NewEngine(orders OrderFetcher, labor LaborFetcher, opts ...Option) *Engine {
	e := &Engine{
		orders:    orders,
		labor:     labor,
		detector:  roster.NewDetector(),
		location:  time.UTC,
		batchSize: defaultLaborBatchSize,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logger.Get().Named("attribution")
	}

	return e
}

// laborDay is the fan-in result of one per-date attendance fetch.
type laborDay struct {
	records []model.AttendanceRecord
	err     error
}

// Attribute fetches and attributes every closed transaction in the job's
// date range. Per-day labor failures skip that day and never abort the
// run; only order-fetch and job-catalog failures do.
func (e *Engine) Attribute(ctx context.Context, job model.SyncJob, identities []model.Identity) (Result, error) {
	transactions, err := e.orders.FetchClosedOrders(ctx, job.LocationID, job.StartDate, job.EndDate)
	if err != nil {
		return Result{}, err
	}

	byDate := e.partitionByDate(transactions)
	if len(byDate) == 0 {
		return Result{}, nil
	}

	jobTitles, err := e.labor.FetchJobTitles(ctx)
	if err != nil {
		return Result{}, err
	}

	dates := sortedDates(byDate)
	attendance := e.fetchAttendanceBatched(ctx, job.LocationID, dates, jobTitles)

	result := Result{}
	for _, date := range dates {
		day := e.attributeDay(ctx, job, date, byDate[date], attendance[date], identities)
		result.Days = append(result.Days, day.result)
		result.Attributed = append(result.Attributed, day.orders...)
	}

	return result, nil
}

// partitionByDate groups transactions by the calendar date, in the
// engine's location, on which each one opened.
func (e *Engine) partitionByDate(transactions []model.Transaction) map[string][]model.Transaction {
	byDate := make(map[string][]model.Transaction)
	for _, tx := range transactions {
		key := tx.OpenedAt.In(e.location).Format(model.DateKey)
		byDate[key] = append(byDate[key], tx)
	}
	return byDate
}

// fetchAttendanceBatched fans out per-date attendance fetches with bounded
// concurrency and fans the results back in keyed by date.
func (e *Engine) fetchAttendanceBatched(ctx context.Context, locationID string, dates []string, jobTitles map[string]string) map[string]laborDay {
	results := make(map[string]laborDay, len(dates))

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, e.batchSize)
	)

	for _, date := range dates {
		wg.Add(1)
		go func(date string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			day, _ := time.ParseInLocation(model.DateKey, date, e.location)
			records, err := e.labor.FetchAttendance(ctx, locationID, day, jobTitles)

			mu.Lock()
			results[date] = laborDay{records: records, err: err}
			mu.Unlock()
		}(date)
	}

	wg.Wait()
	return results
}

// dayAttribution is the outcome of attributing one day.
type dayAttribution struct {
	result DayResult
	orders []model.AttributedOrder
}

// attributeDay assigns each of the day's transactions to the highest
// priority leader on duty at its open time.
func (e *Engine) attributeDay(ctx context.Context, job model.SyncJob, date string, transactions []model.Transaction, labor laborDay, identities []model.Identity) dayAttribution {
	if labor.err != nil {
		e.logger.Warn(ctx, "skipping day, labor fetch failed",
			logger.String("date", date),
			logger.Error(labor.err))
		metrics.RecordDaySkipped("labor_fetch_error")
		return dayAttribution{result: DayResult{Date: date, Outcome: DaySkippedLaborFetch, Err: labor.err}}
	}
	if len(labor.records) == 0 {
		metrics.RecordDaySkipped("no_attendance")
		return dayAttribution{result: DayResult{Date: date, Outcome: DaySkippedNoAttendance}}
	}

	// Deterministic output order regardless of upstream paging.
	sort.SliceStable(transactions, func(i, j int) bool {
		if transactions[i].OpenedAt.Equal(transactions[j].OpenedAt) {
			return transactions[i].ID < transactions[j].ID
		}
		return transactions[i].OpenedAt.Before(transactions[j].OpenedAt)
	})

	now := e.now()
	attributedAt := now

	var (
		orders   []model.AttributedOrder
		noLeader int
	)
	for _, tx := range transactions {
		onDuty := onDutyAt(labor.records, tx.OpenedAt, now)
		leaders := e.detector.DetectLeaders(onDuty, identities)
		if len(leaders) == 0 {
			noLeader++
			metrics.RecordTransactionNoLeader()
			continue
		}

		leader := leaders[0]
		orders = append(orders, model.AttributedOrder{
			ID:               tx.ID,
			Transaction:      tx,
			StoreID:          job.StoreID,
			LeaderID:         leader.UserID,
			LeaderName:       leader.Name,
			LeaderExternalID: leader.ExternalID,
			AttributedAt:     attributedAt,
		})
		metrics.RecordTransactionAttributed()
	}

	outcome := DayAttributed
	if len(orders) == 0 {
		outcome = DaySkippedNoLeader
		metrics.RecordDaySkipped("no_leader")
	}

	return dayAttribution{
		result: DayResult{
			Date:       date,
			Outcome:    outcome,
			Attributed: len(orders),
			NoLeader:   noLeader,
		},
		orders: orders,
	}
}

// onDutyAt filters attendance to the records whose interval covers the
// instant.
func onDutyAt(records []model.AttendanceRecord, instant, now time.Time) []model.AttendanceRecord {
	onDuty := make([]model.AttendanceRecord, 0, len(records))
	for _, record := range records {
		if record.OnDutyAt(instant, now) {
			onDuty = append(onDuty, record)
		}
	}
	return onDuty
}

func sortedDates(byDate map[string][]model.Transaction) []string {
	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}
