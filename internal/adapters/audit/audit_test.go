package audit_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	audit "github.com/vikashgd/liverTracker-sub000/internal/adapters/audit"
	consolidate "github.com/vikashgd/liverTracker-sub000/internal/domain/consolidate"
	metric "github.com/vikashgd/liverTracker-sub000/internal/domain/metric"
	model "github.com/vikashgd/liverTracker-sub000/internal/domain/model"
)

func openTestStore(t *testing.T) *audit.Store {
	t.Helper()
	frozen := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	store, err := audit.Open(
		filepath.Join(t.TempDir(), "audit.db"),
		audit.WithClock(func() time.Time { return frozen }),
	)
	if err != nil {
		t.Fatalf("open audit store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordUnresolved(t *testing.T) {
	Convey("Given an audit store", t, func() {
		ctx := context.Background()
		store := openTestStore(t)
		doc := model.Document{DocumentID: "doc-1", PatientID: "patient-1"}

		Convey("When an unresolved candidate is recorded", func() {
			err := store.RecordUnresolved(ctx, doc, model.RawMetricCandidate{
				RawName:  "Serum Widget",
				RawValue: 12,
				RawUnit:  "U/L",
			})
			So(err, ShouldBeNil)

			Convey("Then it reads back with its reason and timestamp", func() {
				entries, err := store.List(ctx, audit.KindUnresolved, 10)
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].Kind, ShouldEqual, audit.KindUnresolved)
				So(entries[0].DocumentID, ShouldEqual, "doc-1")
				So(entries[0].PatientID, ShouldEqual, "patient-1")
				So(entries[0].RawName, ShouldEqual, "Serum Widget")
				So(entries[0].RawValue, ShouldEqual, 12)
				So(entries[0].RawUnit, ShouldEqual, "U/L")
				So(entries[0].Reason, ShouldEqual, "no alias matched")
				So(entries[0].RecordedAt, ShouldEqual, "2026-02-01T12:00:00Z")
			})

			Convey("Then the kind count reflects it", func() {
				n, err := store.Count(ctx, audit.KindUnresolved)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)

				n, err = store.Count(ctx, audit.KindDiscarded)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)
			})
		})
	})
}

func TestRecordDiscarded(t *testing.T) {
	Convey("Given an audit store", t, func() {
		ctx := context.Background()
		store := openTestStore(t)
		doc := model.Document{DocumentID: "doc-1", PatientID: "patient-1"}

		Convey("When a losing duplicate is recorded", func() {
			err := store.RecordDiscarded(ctx, doc, consolidate.Discard{
				Candidate:    model.RawMetricCandidate{RawName: "SGPT", RawValue: 74, CategoryHint: "LFT"},
				Metric:       metric.ALT,
				ObservedDate: model.Date{Year: 2026, Month: time.January, Day: 15},
				Reason:       "lost duplicate tie-break",
			})
			So(err, ShouldBeNil)

			Convey("Then the resolved metric and date are preserved", func() {
				entries, err := store.List(ctx, audit.KindDiscarded, 10)
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].MetricID, ShouldEqual, string(metric.ALT))
				So(entries[0].ObservedDate, ShouldEqual, "2026-01-15")
				So(entries[0].CategoryHint, ShouldEqual, "LFT")
				So(entries[0].Reason, ShouldEqual, "lost duplicate tie-break")
			})
		})
	})
}

func TestList(t *testing.T) {
	Convey("Given a store with several entries", t, func() {
		ctx := context.Background()
		store := openTestStore(t)
		doc := model.Document{DocumentID: "doc-1", PatientID: "patient-1"}
		names := []string{"Widget A", "Widget B", "Widget C"}
		for _, name := range names {
			So(store.RecordUnresolved(ctx, doc, model.RawMetricCandidate{RawName: name}), ShouldBeNil)
		}

		Convey("When listing with a limit", func() {
			entries, err := store.List(ctx, audit.KindUnresolved, 2)

			Convey("Then the newest entries come first", func() {
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 2)
				So(entries[0].RawName, ShouldEqual, "Widget C")
				So(entries[1].RawName, ShouldEqual, "Widget B")
			})
		})

		Convey("When listing with a non-positive limit", func() {
			entries, err := store.List(ctx, audit.KindUnresolved, 0)

			Convey("Then the default limit applies", func() {
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 3)
			})
		})

		Convey("When listing a kind with no entries", func() {
			entries, err := store.List(ctx, audit.KindDiscarded, 10)

			Convey("Then the result is empty", func() {
				So(err, ShouldBeNil)
				So(entries, ShouldBeEmpty)
			})
		})
	})
}
