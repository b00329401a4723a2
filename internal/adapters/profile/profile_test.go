package profile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	profile "github.com/vikashgd/liverTracker-sub000/internal/adapters/profile"
	model "github.com/vikashgd/liverTracker-sub000/internal/domain/model"
)

func TestMemStore(t *testing.T) {
	Convey("Given a profile store with a frozen clock", t, func() {
		ctx := context.Background()
		frozen := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
		store := profile.NewMemStore(profile.WithClock(func() time.Time { return frozen }))

		Convey("When a profile is stored", func() {
			p := model.ClinicalProfile{
				PatientID:               "patient-1",
				OnDialysis:              true,
				DialysisSessionsPerWeek: 3,
				Ascites:                 model.GradeMild,
				Encephalopathy:          model.GradeNone,
			}
			So(store.Put(ctx, p), ShouldBeNil)

			Convey("Then it reads back with the update stamp", func() {
				got, err := store.Get(ctx, "patient-1")
				So(err, ShouldBeNil)
				So(got.DialysisSessionsPerWeek, ShouldEqual, 3)
				So(got.Ascites, ShouldEqual, model.GradeMild)
				So(got.UpdatedAt, ShouldResemble, frozen)
				So(store.Count(ctx), ShouldEqual, 1)
			})

			Convey("And a second put replaces it", func() {
				p.OnDialysis = false
				p.DialysisSessionsPerWeek = 0
				So(store.Put(ctx, p), ShouldBeNil)

				got, err := store.Get(ctx, "patient-1")
				So(err, ShouldBeNil)
				So(got.OnDialysis, ShouldBeFalse)
				So(store.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When fetching a patient with no profile", func() {
			_, err := store.Get(ctx, "patient-x")

			Convey("Then the sentinel error is returned", func() {
				So(errors.Is(err, profile.ErrProfileNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given profile validation", t, func() {
		valid := model.ClinicalProfile{
			PatientID:      "patient-1",
			Ascites:        model.GradeNone,
			Encephalopathy: model.GradeSevere,
		}

		Convey("Then a well-formed profile passes", func() {
			So(profile.Validate(valid), ShouldBeNil)
		})

		Convey("Then an empty patient ID is rejected", func() {
			p := valid
			p.PatientID = ""
			So(errors.Is(profile.Validate(p), profile.ErrInvalidProfile), ShouldBeTrue)
		})

		Convey("Then negative dialysis sessions are rejected", func() {
			p := valid
			p.OnDialysis = true
			p.DialysisSessionsPerWeek = -1
			So(errors.Is(profile.Validate(p), profile.ErrInvalidProfile), ShouldBeTrue)
		})

		Convey("Then sessions without the dialysis flag are rejected", func() {
			p := valid
			p.DialysisSessionsPerWeek = 2
			So(errors.Is(profile.Validate(p), profile.ErrInvalidProfile), ShouldBeTrue)
		})

		Convey("Then out-of-range grades are rejected", func() {
			p := valid
			p.Ascites = model.Grade(42)
			So(errors.Is(profile.Validate(p), profile.ErrInvalidProfile), ShouldBeTrue)

			p = valid
			p.Encephalopathy = model.Grade(-1)
			So(errors.Is(profile.Validate(p), profile.ErrInvalidProfile), ShouldBeTrue)
		})

		Convey("Then unassessed grades are allowed", func() {
			p := valid
			p.Ascites = model.GradeUnassessed
			p.Encephalopathy = model.GradeUnassessed
			So(profile.Validate(p), ShouldBeNil)
		})
	})
}
