package trend_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	metric "github.com/vikashgd/liverTracker-sub000/internal/domain/metric"
	model "github.com/vikashgd/liverTracker-sub000/internal/domain/model"
	series "github.com/vikashgd/liverTracker-sub000/internal/domain/series"
	trend "github.com/vikashgd/liverTracker-sub000/internal/domain/trend"
)

func labSeries(id metric.ID, values ...float64) series.Series {
	points := make([]model.Observation, len(values))
	for i, v := range values {
		points[i] = model.Observation{
			PatientID:    "patient-1",
			Metric:       id,
			Value:        v,
			ObservedDate: model.Date{Year: 2026, Month: time.January, Day: i + 1},
		}
	}
	return series.Series{PatientID: "patient-1", Metric: id, Points: points}
}

func scoreAt(day, value int) model.ScoreResult {
	return model.ScoreResult{
		PatientID: "patient-1",
		Type:      model.ScoreMELD,
		Value:     &value,
		AsOf:      model.Date{Year: 2026, Month: time.January, Day: day},
	}
}

func TestClassifySeries(t *testing.T) {
	Convey("Given the default classifier and metric table", t, func() {
		c := trend.NewClassifier()
		r := metric.NewRegistry()
		alt, _ := r.Get(metric.ALT)
		albumin, _ := r.Get(metric.Albumin)

		Convey("When a worse-when-higher metric rises past its step", func() {
			res := c.ClassifySeries(labSeries(metric.ALT, 50, 52, 55, 100, 110), alt)

			Convey("Then the trend is declining with full confidence", func() {
				So(res.Direction, ShouldEqual, trend.Declining)
				So(res.Confidence, ShouldEqual, model.ConfidenceHigh)
				So(res.Delta, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the same metric falls past its step", func() {
			res := c.ClassifySeries(labSeries(metric.ALT, 110, 100, 60, 40, 38), alt)

			Convey("Then the trend is improving", func() {
				So(res.Direction, ShouldEqual, trend.Improving)
				So(res.Delta, ShouldBeLessThan, 0)
			})
		})

		Convey("When movement stays inside the step", func() {
			res := c.ClassifySeries(labSeries(metric.ALT, 50, 52, 51, 53, 50), alt)

			Convey("Then the trend is stable", func() {
				So(res.Direction, ShouldEqual, trend.Stable)
			})
		})

		Convey("When a better-when-higher metric rises", func() {
			res := c.ClassifySeries(labSeries(metric.Albumin, 2.5, 2.6, 2.7, 3.4, 3.5), albumin)

			Convey("Then the orientation flips to improving", func() {
				So(res.Direction, ShouldEqual, trend.Improving)
				So(res.Delta, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the baseline window is only partly filled", func() {
			res := c.ClassifySeries(labSeries(metric.ALT, 50, 52, 100, 110), alt)

			Convey("Then the confidence drops to medium", func() {
				So(res.Direction, ShouldEqual, trend.Declining)
				So(res.Confidence, ShouldEqual, model.ConfidenceMedium)
			})
		})

		Convey("When only two points exist", func() {
			res := c.ClassifySeries(labSeries(metric.ALT, 50, 100), alt)

			Convey("Then a direction is still produced at low confidence", func() {
				So(res.Direction, ShouldEqual, trend.Declining)
				So(res.Confidence, ShouldEqual, model.ConfidenceLow)
			})
		})

		Convey("When the series has fewer than two points", func() {
			res := c.ClassifySeries(labSeries(metric.ALT, 50), alt)

			Convey("Then the trend is unknown", func() {
				So(res.Direction, ShouldEqual, trend.Unknown)
				So(res.Confidence, ShouldEqual, model.ConfidenceUnknown)
			})
		})
	})
}

func TestClassifyScores(t *testing.T) {
	Convey("Given the default classifier", t, func() {
		c := trend.NewClassifier()

		Convey("When a MELD history worsens past two points", func() {
			res := c.ClassifyScores([]model.ScoreResult{
				scoreAt(1, 10), scoreAt(5, 10), scoreAt(9, 11), scoreAt(13, 14), scoreAt(17, 15),
			})

			Convey("Then the trend is declining", func() {
				So(res.Direction, ShouldEqual, trend.Declining)
				So(res.Confidence, ShouldEqual, model.ConfidenceHigh)
			})
		})

		Convey("When the history arrives out of order", func() {
			res := c.ClassifyScores([]model.ScoreResult{
				scoreAt(17, 15), scoreAt(1, 10), scoreAt(13, 14), scoreAt(5, 10), scoreAt(9, 11),
			})

			Convey("Then ordering by as-of date gives the same answer", func() {
				So(res.Direction, ShouldEqual, trend.Declining)
			})
		})

		Convey("When the history contains non-computable results", func() {
			gap := model.ScoreResult{
				PatientID:         "patient-1",
				Type:              model.ScoreMELD,
				AsOf:              model.Date{Year: 2026, Month: time.January, Day: 7},
				MissingParameters: []string{"sodium"},
			}
			res := c.ClassifyScores([]model.ScoreResult{
				scoreAt(1, 10), scoreAt(5, 10), gap, scoreAt(9, 11), scoreAt(13, 14), scoreAt(17, 15),
			})

			Convey("Then the gaps are skipped, not treated as zeros", func() {
				So(res.Direction, ShouldEqual, trend.Declining)
			})
		})

		Convey("When a Child-Pugh history drops by its smaller step", func() {
			history := []model.ScoreResult{}
			for i, v := range []int{9, 9, 9, 7, 7} {
				r := scoreAt(i*4+1, v)
				r.Type = model.ScoreChildPugh
				history = append(history, r)
			}
			res := c.ClassifyScores(history)

			Convey("Then a two-point drop registers as improving", func() {
				So(res.Direction, ShouldEqual, trend.Improving)
			})
		})

		Convey("When nothing in the history is computable", func() {
			res := c.ClassifyScores([]model.ScoreResult{{Type: model.ScoreMELD}, {Type: model.ScoreMELD}})

			Convey("Then the trend is unknown", func() {
				So(res.Direction, ShouldEqual, trend.Unknown)
			})
		})
	})
}

func TestClassifierOptions(t *testing.T) {
	Convey("Given a classifier with custom windows and steps", t, func() {
		c := trend.NewClassifier(
			trend.WithRecentWindow(1),
			trend.WithBaselineWindow(2),
			trend.WithScoreStep(model.ScoreMELD, 10),
		)

		Convey("Then the wider score step absorbs a small rise", func() {
			res := c.ClassifyScores([]model.ScoreResult{
				scoreAt(1, 10), scoreAt(5, 10), scoreAt(9, 14),
			})
			So(res.Direction, ShouldEqual, trend.Stable)
		})

		Convey("Then the narrow windows reach full confidence sooner", func() {
			r := metric.NewRegistry()
			alt, _ := r.Get(metric.ALT)
			res := c.ClassifySeries(labSeries(metric.ALT, 50, 52, 100), alt)
			So(res.Direction, ShouldEqual, trend.Declining)
			So(res.Confidence, ShouldEqual, model.ConfidenceHigh)
		})
	})
}
