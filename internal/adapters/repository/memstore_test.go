package repository

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/opskitchen/shiftboard/internal/domain/model"
)

func attributed(id, leaderID, storeID string, openedAt time.Time) model.AttributedOrder {
	return model.AttributedOrder{
		ID:      id,
		StoreID: storeID,
		Transaction: model.Transaction{
			ID:        id,
			OpenedAt:  openedAt,
			ClosedAt:  openedAt.Add(4 * time.Minute),
			NetAmount: 20,
		},
		LeaderID:     leaderID,
		LeaderName:   "Leader " + leaderID,
		AttributedAt: openedAt.Add(time.Hour),
	}
}

func TestMemStore(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	Convey("Given an empty store", t, func() {
		store := NewMemStore()

		Convey("SaveAll reports every order as newly inserted", func() {
			inserted, err := store.SaveAll(ctx, []model.AttributedOrder{
				attributed("t-1", "u-ana", "store-1", base),
				attributed("t-2", "u-ben", "store-1", base.Add(time.Hour)),
			})
			So(err, ShouldBeNil)
			So(inserted, ShouldEqual, 2)

			count, err := store.Count(ctx)
			So(err, ShouldBeNil)
			So(count, ShouldEqual, 2)
		})

		Convey("Replaying the same orders inserts nothing new", func() {
			orders := []model.AttributedOrder{attributed("t-1", "u-ana", "store-1", base)}
			_, err := store.SaveAll(ctx, orders)
			So(err, ShouldBeNil)

			inserted, err := store.SaveAll(ctx, orders)
			So(err, ShouldBeNil)
			So(inserted, ShouldEqual, 0)

			count, err := store.Count(ctx)
			So(err, ShouldBeNil)
			So(count, ShouldEqual, 1)
		})

		Convey("A replay overwrites the stored record", func() {
			_, err := store.SaveAll(ctx, []model.AttributedOrder{attributed("t-1", "u-ana", "store-1", base)})
			So(err, ShouldBeNil)

			reassigned := attributed("t-1", "u-ben", "store-1", base)
			_, err = store.SaveAll(ctx, []model.AttributedOrder{reassigned})
			So(err, ShouldBeNil)

			orders, err := store.ByLeader(ctx, "u-ben", base.Add(-time.Hour), base.Add(time.Hour))
			So(err, ShouldBeNil)
			So(orders, ShouldHaveLength, 1)
		})
	})

	Convey("Given a store holding orders across leaders and days", t, func() {
		store := NewMemStore()
		_, err := store.SaveAll(ctx, []model.AttributedOrder{
			attributed("t-3", "u-ana", "store-1", base.Add(48*time.Hour)),
			attributed("t-1", "u-ana", "store-1", base),
			attributed("t-2", "u-ben", "store-1", base.Add(time.Hour)),
			attributed("t-4", "u-ana", "store-2", base),
		})
		So(err, ShouldBeNil)

		Convey("ByLeader filters to the leader and window, ordered by open time", func() {
			orders, err := store.ByLeader(ctx, "u-ana", base.Add(-time.Hour), base.Add(72*time.Hour))
			So(err, ShouldBeNil)
			So(orders, ShouldHaveLength, 3)
			So(orders[0].ID, ShouldBeIn, []string{"t-1", "t-4"})
			So(orders[2].ID, ShouldEqual, "t-3")
		})

		Convey("A narrow window excludes orders outside it", func() {
			orders, err := store.ByLeader(ctx, "u-ana", base.Add(-time.Hour), base.Add(time.Hour))
			So(err, ShouldBeNil)
			So(orders, ShouldHaveLength, 2)
		})

		Convey("ByWindow filters by store", func() {
			orders, err := store.ByWindow(ctx, "store-1", base.Add(-time.Hour), base.Add(72*time.Hour))
			So(err, ShouldBeNil)
			So(orders, ShouldHaveLength, 3)

			orders, err = store.ByWindow(ctx, "store-2", base.Add(-time.Hour), base.Add(72*time.Hour))
			So(err, ShouldBeNil)
			So(orders, ShouldHaveLength, 1)
			So(orders[0].ID, ShouldEqual, "t-4")
		})

		Convey("The window bounds are inclusive", func() {
			orders, err := store.ByLeader(ctx, "u-ana", base, base)
			So(err, ShouldBeNil)
			So(orders, ShouldHaveLength, 2)
		})
	})
}
