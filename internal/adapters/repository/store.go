// Package repository persists attributed orders.
package repository

import (
	"context"
	"time"

	"github.com/opskitchen/shiftboard/internal/domain/model"
)

// Store provides read/write access to attributed orders. SaveAll upserts
// by transaction identifier, so replaying a sync range is idempotent.
type Store interface {
	// SaveAll upserts the given attributed orders. Returns how many were
	// newly inserted as opposed to overwritten.
	SaveAll(ctx context.Context, orders []model.AttributedOrder) (int, error)

	// ByLeader returns a leader's attributed orders whose transactions
	// opened within [from, to], ordered by open time.
	ByLeader(ctx context.Context, leaderID string, from, to time.Time) ([]model.AttributedOrder, error)

	// ByWindow returns all attributed orders for a store whose
	// transactions opened within [from, to], ordered by open time.
	ByWindow(ctx context.Context, storeID string, from, to time.Time) ([]model.AttributedOrder, error)

	// Count returns the number of attributed orders held.
	Count(ctx context.Context) (int, error)
}
