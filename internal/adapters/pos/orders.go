package pos

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/opskitchen/shiftboard/internal/domain/model"
	"github.com/opskitchen/shiftboard/pkg/logger"
	"github.com/opskitchen/shiftboard/pkg/metrics"
)

const paymentStatusClosed = "CLOSED"

// queryDateLayout is the date form the order listing endpoint expects.
const queryDateLayout = "2006-01-02"

// FetchClosedOrders retrieves closed, non-voided transactions for a date
// range, paginating until a short or empty page. Upstream 404 means "no
// orders" and short-circuits to an empty result; other failures propagate
// as ErrUpstream (or ErrRateLimited).
func (c *Client) FetchClosedOrders(ctx context.Context, locationID string, startDate, endDate time.Time) ([]model.Transaction, error) {
	transactions := make([]model.Transaction, 0)

	for page := 1; page <= c.maxPages; page++ {
		var orders []orderDTO
		err := c.get(ctx, "/orders", map[string]string{
			"location":  locationID,
			"startDate": startDate.Format(queryDateLayout),
			"endDate":   endDate.Format(queryDateLayout),
			"page":      strconv.Itoa(page),
			"pageSize":  strconv.Itoa(c.pageSize),
		}, &orders)
		if errors.Is(err, errNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		metrics.RecordOrderPageFetched()

		for _, order := range orders {
			if tx, ok := c.toTransaction(ctx, order); ok {
				transactions = append(transactions, tx)
			}
		}

		if len(orders) < c.pageSize {
			break
		}
	}

	metrics.RecordOrdersFetched(len(transactions))
	return transactions, nil
}

// toTransaction converts an order into a Transaction, filtering voided
// orders, non-closed checks, and instrumentation errors.
func (c *Client) toTransaction(ctx context.Context, order orderDTO) (model.Transaction, bool) {
	if order.Voided {
		metrics.RecordOrderDiscarded("voided")
		return model.Transaction{}, false
	}

	closed := closedChecks(order.Checks)
	if len(closed) == 0 {
		metrics.RecordOrderDiscarded("not_closed")
		return model.Transaction{}, false
	}

	openedAt, ok := resolveOpenedAt(order, closed)
	if !ok {
		metrics.RecordOrderDiscarded("no_timestamps")
		return model.Transaction{}, false
	}
	closedAt, ok := resolveClosedAt(order, closed)
	if !ok {
		metrics.RecordOrderDiscarded("no_timestamps")
		return model.Transaction{}, false
	}

	tx := model.Transaction{
		ID:            order.GUID,
		DisplayNumber: order.DisplayNumber,
		OpenedAt:      openedAt,
		ClosedAt:      closedAt,
		NetAmount:     netAmount(closed),
		GuestCount:    order.GuestCount,
		CheckID:       closed[0].GUID,
		PaymentStatus: paymentStatusClosed,
	}

	turn := tx.TurnTimeMinutes()
	if turn < 0 {
		metrics.RecordOrderDiscarded("negative_turn_time")
		c.logger.Debug(ctx, "discarding order with negative turn time",
			logger.String("order", order.GUID))
		return model.Transaction{}, false
	}
	if turn > c.turnTimeCeiling {
		metrics.RecordOrderDiscarded("turn_time_ceiling")
		c.logger.Debug(ctx, "discarding order beyond turn time ceiling",
			logger.String("order", order.GUID),
			logger.Float64("turnMinutes", turn))
		return model.Transaction{}, false
	}

	return tx, true
}

// closedChecks filters to checks that actually contribute revenue.
func closedChecks(checks []checkDTO) []checkDTO {
	closed := make([]checkDTO, 0, len(checks))
	for _, check := range checks {
		if check.Voided {
			continue
		}
		if !strings.EqualFold(check.PaymentStatus, paymentStatusClosed) {
			continue
		}
		closed = append(closed, check)
	}
	return closed
}

// netAmount sums the pre-tax amounts of the closed checks.
func netAmount(closed []checkDTO) float64 {
	var sum float64
	for _, check := range closed {
		sum += check.Amount
	}
	return sum
}

// resolveOpenedAt resolves the opened timestamp: order-level, then the
// earliest check-level opened date.
func resolveOpenedAt(order orderDTO, closed []checkDTO) (time.Time, bool) {
	if order.OpenedDate != nil {
		return *order.OpenedDate, true
	}
	var earliest time.Time
	for _, check := range closed {
		if check.OpenedDate == nil {
			continue
		}
		if earliest.IsZero() || check.OpenedDate.Before(earliest) {
			earliest = *check.OpenedDate
		}
	}
	return earliest, !earliest.IsZero()
}

// resolveClosedAt resolves the closed timestamp: order-level, then the
// latest check-level closed date.
func resolveClosedAt(order orderDTO, closed []checkDTO) (time.Time, bool) {
	if order.ClosedDate != nil {
		return *order.ClosedDate, true
	}
	var latest time.Time
	for _, check := range closed {
		if check.ClosedDate == nil {
			continue
		}
		if check.ClosedDate.After(latest) {
			latest = *check.ClosedDate
		}
	}
	return latest, !latest.IsZero()
}
