package dedupe

import (
	"context"
	"strconv"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryGuard(t *testing.T) {
	ctx := context.Background()

	Convey("Given a fresh guard", t, func() {
		guard := NewMemoryGuard()

		Convey("The first sighting records, the second reports seen", func() {
			So(guard.SeenAndRecord(ctx, "tx-1"), ShouldBeFalse)
			So(guard.SeenAndRecord(ctx, "tx-1"), ShouldBeTrue)
			So(guard.Size(), ShouldEqual, 1)
		})

		Convey("Distinct IDs are tracked independently", func() {
			So(guard.SeenAndRecord(ctx, "tx-1"), ShouldBeFalse)
			So(guard.SeenAndRecord(ctx, "tx-2"), ShouldBeFalse)
			So(guard.Size(), ShouldEqual, 2)
		})

		Convey("Forget allows a retry", func() {
			So(guard.SeenAndRecord(ctx, "tx-1"), ShouldBeFalse)
			guard.Forget(ctx, "tx-1")
			So(guard.Size(), ShouldEqual, 0)
			So(guard.SeenAndRecord(ctx, "tx-1"), ShouldBeFalse)
		})

		Convey("Forgetting an unknown ID is a no-op", func() {
			guard.Forget(ctx, "tx-never")
			So(guard.Size(), ShouldEqual, 0)
		})
	})

	Convey("Given a guard at its bound", t, func() {
		guard := NewMemoryGuard(WithMaxSize(3))
		for i := range 3 {
			So(guard.SeenAndRecord(ctx, "tx-"+strconv.Itoa(i)), ShouldBeFalse)
		}

		Convey("A new ID evicts the oldest", func() {
			So(guard.SeenAndRecord(ctx, "tx-3"), ShouldBeFalse)
			So(guard.Size(), ShouldEqual, 3)
			So(guard.SeenAndRecord(ctx, "tx-0"), ShouldBeFalse) // evicted, so unseen again
			So(guard.SeenAndRecord(ctx, "tx-3"), ShouldBeTrue)
		})
	})

	Convey("Given concurrent recorders", t, func() {
		guard := NewMemoryGuard()
		done := make(chan bool, 10)

		for range 10 {
			go func() {
				done <- guard.SeenAndRecord(ctx, "tx-contended")
			}()
		}

		Convey("Exactly one caller records first", func() {
			var recorded int
			for range 10 {
				if !<-done {
					recorded++
				}
			}
			So(recorded, ShouldEqual, 1)
			So(guard.Size(), ShouldEqual, 1)
		})
	})
}
