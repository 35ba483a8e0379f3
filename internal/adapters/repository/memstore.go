package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/opskitchen/shiftboard/internal/domain/model"
	"github.com/opskitchen/shiftboard/pkg/metrics"
)

// MemStore is an in-memory Store, the default when no database is
// configured and the workhorse for tests.
type MemStore struct {
	mu     sync.RWMutex
	orders map[string]model.AttributedOrder // keyed by transaction id
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{orders: make(map[string]model.AttributedOrder)}
}

// SaveAll upserts by transaction identifier.
func (s *MemStore) SaveAll(_ context.Context, orders []model.AttributedOrder) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var inserted int
	for _, order := range orders {
		if _, ok := s.orders[order.ID]; !ok {
			inserted++
		}
		s.orders[order.ID] = order
	}

	metrics.UpdateStoredOrders(len(s.orders))
	return inserted, nil
}

// ByLeader returns a leader's orders opened within [from, to].
func (s *MemStore) ByLeader(_ context.Context, leaderID string, from, to time.Time) ([]model.AttributedOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]model.AttributedOrder, 0)
	for _, order := range s.orders {
		if order.LeaderID != leaderID {
			continue
		}
		if inWindow(order.Transaction.OpenedAt, from, to) {
			matched = append(matched, order)
		}
	}
	sortByOpenedAt(matched)
	return matched, nil
}

// ByWindow returns all of a store's orders opened within [from, to].
func (s *MemStore) ByWindow(_ context.Context, storeID string, from, to time.Time) ([]model.AttributedOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]model.AttributedOrder, 0)
	for _, order := range s.orders {
		if order.StoreID != storeID {
			continue
		}
		if inWindow(order.Transaction.OpenedAt, from, to) {
			matched = append(matched, order)
		}
	}
	sortByOpenedAt(matched)
	return matched, nil
}

// Count returns the number of orders held.
func (s *MemStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders), nil
}

func inWindow(instant, from, to time.Time) bool {
	return !instant.Before(from) && !instant.After(to)
}

func sortByOpenedAt(orders []model.AttributedOrder) {
	sort.Slice(orders, func(i, j int) bool {
		a, b := orders[i].Transaction.OpenedAt, orders[j].Transaction.OpenedAt
		if a.Equal(b) {
			return orders[i].ID < orders[j].ID
		}
		return a.Before(b)
	})
}
