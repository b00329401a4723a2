package idempotency_test

import (
	"context"
	"strconv"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	idempotency "github.com/vikashgd/liverTracker-sub000/internal/adapters/idempotency"
)

func TestTracker(t *testing.T) {
	Convey("Given an in-memory tracker", t, func() {
		ctx := context.Background()
		tracker := idempotency.NewTracker()

		Convey("When a document ID is recorded for the first time", func() {
			seen := tracker.SeenAndRecord(ctx, "doc-1")

			Convey("Then it is reported as new", func() {
				So(seen, ShouldBeFalse)
				So(tracker.Size(), ShouldEqual, 1)
			})

			Convey("And resubmitting it reports it as seen", func() {
				So(tracker.SeenAndRecord(ctx, "doc-1"), ShouldBeTrue)
				So(tracker.Size(), ShouldEqual, 1)
			})
		})

		Convey("When an ID is unrecorded after a failed enqueue", func() {
			tracker.SeenAndRecord(ctx, "doc-1")
			tracker.Unrecord(ctx, "doc-1")

			Convey("Then the same document can be resubmitted", func() {
				So(tracker.SeenAndRecord(ctx, "doc-1"), ShouldBeFalse)
				So(tracker.Size(), ShouldEqual, 1)
			})
		})

		Convey("When unrecording an ID that was never recorded", func() {
			tracker.Unrecord(ctx, "doc-x")

			Convey("Then nothing changes", func() {
				So(tracker.Size(), ShouldEqual, 0)
			})
		})
	})
}

func TestTrackerEviction(t *testing.T) {
	Convey("Given a tracker bounded to three IDs", t, func() {
		ctx := context.Background()
		tracker := idempotency.NewTracker(idempotency.WithMaxSize(3))
		for i := 0; i < 3; i++ {
			tracker.SeenAndRecord(ctx, "doc-"+strconv.Itoa(i))
		}

		Convey("When a fourth ID arrives", func() {
			tracker.SeenAndRecord(ctx, "doc-3")

			Convey("Then the oldest ID is evicted and the size stays bounded", func() {
				So(tracker.Size(), ShouldEqual, 3)
				So(tracker.SeenAndRecord(ctx, "doc-0"), ShouldBeFalse)
			})

			Convey("Then recent IDs are still tracked", func() {
				So(tracker.SeenAndRecord(ctx, "doc-3"), ShouldBeTrue)
				So(tracker.SeenAndRecord(ctx, "doc-2"), ShouldBeTrue)
			})
		})

		Convey("When eviction interleaves with unrecords", func() {
			tracker.Unrecord(ctx, "doc-1")
			tracker.SeenAndRecord(ctx, "doc-3")
			tracker.SeenAndRecord(ctx, "doc-4")

			Convey("Then the size never exceeds the bound", func() {
				So(tracker.Size(), ShouldEqual, 3)
			})
		})
	})
}

func TestTrackerUnbounded(t *testing.T) {
	Convey("Given an unbounded tracker", t, func() {
		ctx := context.Background()
		tracker := idempotency.NewTracker(idempotency.WithMaxSize(0))

		Convey("When many IDs are recorded", func() {
			for i := 0; i < 1000; i++ {
				So(tracker.SeenAndRecord(ctx, "doc-"+strconv.Itoa(i)), ShouldBeFalse)
			}

			Convey("Then nothing is evicted", func() {
				So(tracker.Size(), ShouldEqual, 1000)
				So(tracker.SeenAndRecord(ctx, "doc-0"), ShouldBeTrue)
			})
		})
	})
}
