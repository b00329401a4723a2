package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	api "github.com/vikashgd/liverTracker-sub000/internal/adapters/http/api"
	profile "github.com/vikashgd/liverTracker-sub000/internal/adapters/profile"
	repository "github.com/vikashgd/liverTracker-sub000/internal/adapters/repository"
	metric "github.com/vikashgd/liverTracker-sub000/internal/domain/metric"
	model "github.com/vikashgd/liverTracker-sub000/internal/domain/model"
	series "github.com/vikashgd/liverTracker-sub000/internal/domain/series"
	trend "github.com/vikashgd/liverTracker-sub000/internal/domain/trend"
)

// fakeDeps implements api.Dependencies against in-memory state so the
// handler layer is tested without the asynchronous pipeline.
type fakeDeps struct {
	registry *metric.Registry

	seen       map[string]bool
	enqueueOK  bool
	enqueued   []model.Document
	unrecorded []string

	profiles map[string]model.ClinicalProfile

	sets map[string]series.Set

	scoreResults map[model.ScoreType]model.ScoreResult
	scoreErr     error

	trendResult trend.Result
	trendErr    error
}

func newFakeDeps() *fakeDeps {
	return &fakeDeps{
		registry:     metric.NewRegistry(),
		seen:         make(map[string]bool),
		enqueueOK:    true,
		profiles:     make(map[string]model.ClinicalProfile),
		sets:         make(map[string]series.Set),
		scoreResults: make(map[model.ScoreType]model.ScoreResult),
	}
}

func (f *fakeDeps) SeenAndRecord(_ context.Context, documentID string) bool {
	if f.seen[documentID] {
		return true
	}
	f.seen[documentID] = true
	return false
}

func (f *fakeDeps) Unrecord(_ context.Context, documentID string) {
	delete(f.seen, documentID)
	f.unrecorded = append(f.unrecorded, documentID)
}

func (f *fakeDeps) Enqueue(_ context.Context, doc model.Document) bool {
	if !f.enqueueOK {
		return false
	}
	f.enqueued = append(f.enqueued, doc)
	return true
}

func (f *fakeDeps) Profile(_ context.Context, patientID string) (model.ClinicalProfile, error) {
	p, ok := f.profiles[patientID]
	if !ok {
		return model.ClinicalProfile{}, profile.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeDeps) SaveProfile(_ context.Context, p model.ClinicalProfile) error {
	if err := profile.Validate(p); err != nil {
		return err
	}
	p.UpdatedAt = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	f.profiles[p.PatientID] = p
	return nil
}

func (f *fakeDeps) SeriesSet(_ context.Context, patientID string) (series.Set, error) {
	set, ok := f.sets[patientID]
	if !ok {
		return nil, repository.ErrPatientNotFound
	}
	return set, nil
}

func (f *fakeDeps) Series(_ context.Context, patientID string, id metric.ID) (series.Series, error) {
	set, ok := f.sets[patientID]
	if !ok {
		return series.Series{}, repository.ErrPatientNotFound
	}
	s, ok := set[id]
	if !ok {
		return series.Series{}, repository.ErrSeriesNotFound
	}
	return s, nil
}

func (f *fakeDeps) MetricByID(id metric.ID) (metric.Metric, bool) {
	return f.registry.Get(id)
}

func (f *fakeDeps) Score(_ context.Context, patientID string, t model.ScoreType, asOf model.Date) (model.ScoreResult, error) {
	if f.scoreErr != nil {
		return model.ScoreResult{}, f.scoreErr
	}
	res, ok := f.scoreResults[t]
	if !ok {
		res = model.ScoreResult{Type: t, MissingParameters: []string{"bilirubin"}}
	}
	res.PatientID = patientID
	res.AsOf = asOf
	return res, nil
}

func (f *fakeDeps) MetricTrend(_ context.Context, _ string, id metric.ID) (trend.Result, error) {
	if _, ok := f.registry.Get(id); !ok {
		return trend.Result{}, repository.ErrSeriesNotFound
	}
	return f.trendResult, f.trendErr
}

func (f *fakeDeps) ScoreTrend(_ context.Context, _ string, _ model.ScoreType) (trend.Result, error) {
	return f.trendResult, f.trendErr
}

type fakeStats struct{}

func (fakeStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"patients_tracked": 1}
}

func newTestServer(deps *fakeDeps) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(deps, fakeStats{}).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func decodeBody(t *testing.T, res *http.Response, v any) {
	t.Helper()
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestPostDocument(t *testing.T) {
	Convey("Given the documents endpoint", t, func() {
		deps := newFakeDeps()
		srv := newTestServer(deps)
		Reset(srv.Close)

		body := `{
			"document_id": "doc-1",
			"patient_id": "patient-1",
			"document_date": "2026-01-15",
			"candidates": [
				{"name": "ALT", "value": 72, "unit": "U/L", "confidence": "high"},
				{"name": "Bilirubin", "value": 2.0, "unit": "mg/dL", "observed_date": "2026-01-10"}
			]
		}`

		Convey("When a well-formed document is posted", func() {
			res, err := http.Post(srv.URL+"/documents", "application/json", strings.NewReader(body))
			So(err, ShouldBeNil)

			Convey("Then it is accepted and enqueued", func() {
				So(res.StatusCode, ShouldEqual, http.StatusAccepted)
				var ack struct {
					Status     string `json:"status"`
					Duplicate  bool   `json:"duplicate"`
					DocumentID string `json:"document_id"`
				}
				decodeBody(t, res, &ack)
				So(ack.Status, ShouldEqual, "accepted")
				So(ack.Duplicate, ShouldBeFalse)
				So(ack.DocumentID, ShouldEqual, "doc-1")

				So(deps.enqueued, ShouldHaveLength, 1)
				doc := deps.enqueued[0]
				So(doc.PatientID, ShouldEqual, "patient-1")
				So(doc.DocumentDate, ShouldResemble, model.Date{Year: 2026, Month: time.January, Day: 15})
				So(doc.Candidates, ShouldHaveLength, 2)
				So(doc.Candidates[0].Confidence, ShouldEqual, model.ConfidenceHigh)
				So(doc.Candidates[1].ObservedDate, ShouldResemble, model.Date{Year: 2026, Month: time.January, Day: 10})
			})

			Convey("And posting it again acknowledges the duplicate", func() {
				res2, err := http.Post(srv.URL+"/documents", "application/json", strings.NewReader(body))
				So(err, ShouldBeNil)
				So(res2.StatusCode, ShouldEqual, http.StatusOK)
				var ack struct {
					Status    string `json:"status"`
					Duplicate bool   `json:"duplicate"`
				}
				decodeBody(t, res2, &ack)
				So(ack.Status, ShouldEqual, "duplicate")
				So(ack.Duplicate, ShouldBeTrue)
				So(deps.enqueued, ShouldHaveLength, 1)
			})
		})

		Convey("When the client sends no document ID", func() {
			noID := `{"patient_id": "patient-1", "candidates": [{"name": "ALT", "value": 72}]}`
			res, err := http.Post(srv.URL+"/documents", "application/json", strings.NewReader(noID))
			So(err, ShouldBeNil)

			Convey("Then the server assigns one", func() {
				So(res.StatusCode, ShouldEqual, http.StatusAccepted)
				var ack struct {
					DocumentID string `json:"document_id"`
				}
				decodeBody(t, res, &ack)
				So(ack.DocumentID, ShouldNotBeEmpty)
			})
		})

		Convey("When the queue is saturated", func() {
			deps.enqueueOK = false
			res, err := http.Post(srv.URL+"/documents", "application/json", strings.NewReader(body))
			So(err, ShouldBeNil)
			res.Body.Close()

			Convey("Then the client gets backpressure and may retry", func() {
				So(res.StatusCode, ShouldEqual, http.StatusTooManyRequests)
				So(deps.unrecorded, ShouldResemble, []string{"doc-1"})
				So(deps.seen["doc-1"], ShouldBeFalse)
			})
		})

		Convey("When the body is malformed", func() {
			for _, bad := range []string{
				`{not json`,
				`{"patient_id": "", "candidates": [{"name": "ALT", "value": 1}]}`,
				`{"patient_id": "patient-1", "candidates": []}`,
				`{"patient_id": "patient-1", "document_date": "15/01/2026", "candidates": [{"name": "ALT", "value": 1}]}`,
				`{"patient_id": "patient-1", "candidates": [{"name": "", "value": 1}]}`,
				`{"patient_id": "patient-1", "candidates": [{"name": "ALT", "value": 1, "observed_date": "soon"}]}`,
			} {
				res, err := http.Post(srv.URL+"/documents", "application/json", strings.NewReader(bad))
				So(err, ShouldBeNil)
				res.Body.Close()
				So(res.StatusCode, ShouldEqual, http.StatusBadRequest)
			}
			So(deps.enqueued, ShouldBeEmpty)
		})

		Convey("When the method is not POST", func() {
			res, err := http.Get(srv.URL + "/documents")
			So(err, ShouldBeNil)
			res.Body.Close()
			So(res.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestProfileEndpoint(t *testing.T) {
	Convey("Given the profile endpoint", t, func() {
		deps := newFakeDeps()
		srv := newTestServer(deps)
		Reset(srv.Close)
		client := srv.Client()

		put := func(patientID, body string) *http.Response {
			req, err := http.NewRequest(http.MethodPut, srv.URL+"/patients/"+patientID+"/profile", strings.NewReader(body))
			So(err, ShouldBeNil)
			res, err := client.Do(req)
			So(err, ShouldBeNil)
			return res
		}

		Convey("When a profile is stored", func() {
			res := put("patient-1", `{
				"on_dialysis": true,
				"dialysis_sessions_per_week": 3,
				"last_dialysis_date": "2026-01-30",
				"ascites": "mild",
				"encephalopathy": "none"
			}`)

			Convey("Then the stored profile is echoed back", func() {
				So(res.StatusCode, ShouldEqual, http.StatusOK)
				var got struct {
					PatientID        string `json:"patient_id"`
					OnDialysis       bool   `json:"on_dialysis"`
					Sessions         int    `json:"dialysis_sessions_per_week"`
					LastDialysisDate string `json:"last_dialysis_date"`
					Ascites          string `json:"ascites"`
					Encephalopathy   string `json:"encephalopathy"`
				}
				decodeBody(t, res, &got)
				So(got.PatientID, ShouldEqual, "patient-1")
				So(got.OnDialysis, ShouldBeTrue)
				So(got.Sessions, ShouldEqual, 3)
				So(got.LastDialysisDate, ShouldEqual, "2026-01-30")
				So(got.Ascites, ShouldEqual, "mild")
				So(got.Encephalopathy, ShouldEqual, "none")
			})

			Convey("And a GET returns the same profile", func() {
				res.Body.Close()
				res2, err := client.Get(srv.URL + "/patients/patient-1/profile")
				So(err, ShouldBeNil)
				So(res2.StatusCode, ShouldEqual, http.StatusOK)
				var got struct {
					Ascites string `json:"ascites"`
				}
				decodeBody(t, res2, &got)
				So(got.Ascites, ShouldEqual, "mild")
			})
		})

		Convey("When the grades are misspelled", func() {
			res := put("patient-1", `{"ascites": "moderate"}`)
			res.Body.Close()
			So(res.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the profile is internally inconsistent", func() {
			res := put("patient-1", `{"on_dialysis": false, "dialysis_sessions_per_week": 2}`)
			res.Body.Close()
			So(res.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the dialysis date is malformed", func() {
			res := put("patient-1", `{"last_dialysis_date": "Jan 30"}`)
			res.Body.Close()
			So(res.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When no profile was ever stored", func() {
			res, err := client.Get(srv.URL + "/patients/patient-x/profile")
			So(err, ShouldBeNil)
			res.Body.Close()
			So(res.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSeriesEndpoint(t *testing.T) {
	Convey("Given stored series for one patient", t, func() {
		deps := newFakeDeps()
		deps.sets["patient-1"] = series.Build([]model.Observation{
			{
				PatientID:    "patient-1",
				Metric:       metric.ALT,
				Value:        72,
				Unit:         "U/L",
				ObservedDate: model.Date{Year: 2026, Month: time.January, Day: 15},
				Confidence:   model.ConfidenceHigh,
			},
			{
				PatientID:     "patient-1",
				Metric:        metric.Bilirubin,
				Value:         2.0,
				Unit:          "mg/dL",
				ObservedDate:  model.Date{Year: 2026, Month: time.January, Day: 15},
				Confidence:    model.ConfidenceMedium,
				WasConverted:  true,
				OriginalValue: 34.2098,
				OriginalUnit:  "µmol/L",
			},
		})
		srv := newTestServer(deps)
		Reset(srv.Close)

		Convey("When fetching all series", func() {
			res, err := http.Get(srv.URL + "/patients/patient-1/series")
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusOK)

			var got []struct {
				Metric string `json:"metric"`
				Unit   string `json:"unit"`
				Stats  struct {
					Count int `json:"count"`
				} `json:"stats"`
			}
			decodeBody(t, res, &got)

			Convey("Then they come back sorted by metric", func() {
				So(got, ShouldHaveLength, 2)
				So(got[0].Metric, ShouldEqual, "ALT")
				So(got[1].Metric, ShouldEqual, "BILIRUBIN")
				So(got[0].Unit, ShouldEqual, "U/L")
				So(got[0].Stats.Count, ShouldEqual, 1)
			})
		})

		Convey("When fetching one metric with conversion provenance", func() {
			res, err := http.Get(srv.URL + "/patients/patient-1/series/BILIRUBIN")
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusOK)

			var got struct {
				Points []struct {
					Value         float64  `json:"value"`
					Flag          string   `json:"flag"`
					Converted     bool     `json:"converted"`
					OriginalValue *float64 `json:"original_value"`
					OriginalUnit  string   `json:"original_unit"`
				} `json:"points"`
			}
			decodeBody(t, res, &got)

			Convey("Then the point carries flag and original value", func() {
				So(got.Points, ShouldHaveLength, 1)
				So(got.Points[0].Value, ShouldEqual, 2.0)
				So(got.Points[0].Flag, ShouldEqual, "above_range")
				So(got.Points[0].Converted, ShouldBeTrue)
				So(*got.Points[0].OriginalValue, ShouldEqual, 34.2098)
				So(got.Points[0].OriginalUnit, ShouldEqual, "µmol/L")
			})
		})

		Convey("When the metric name is unknown", func() {
			res, err := http.Get(srv.URL + "/patients/patient-1/series/WIDGET")
			So(err, ShouldBeNil)
			res.Body.Close()
			So(res.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the patient has no data for a known metric", func() {
			res, err := http.Get(srv.URL + "/patients/patient-1/series/SODIUM")
			So(err, ShouldBeNil)
			res.Body.Close()
			So(res.StatusCode, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the patient is unknown", func() {
			res, err := http.Get(srv.URL + "/patients/patient-x/series")
			So(err, ShouldBeNil)
			res.Body.Close()
			So(res.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestScoresEndpoint(t *testing.T) {
	Convey("Given computable scores for one patient", t, func() {
		deps := newFakeDeps()
		meld := 13
		deps.scoreResults[model.ScoreMELD] = model.ScoreResult{
			Type:       model.ScoreMELD,
			Value:      &meld,
			Confidence: model.ConfidenceHigh,
			Components: map[string]float64{"bilirubin": 2.0},
		}
		meldNa := 14
		deps.scoreResults[model.ScoreMELDNa] = model.ScoreResult{
			Type:       model.ScoreMELDNa,
			Value:      &meldNa,
			Confidence: model.ConfidenceHigh,
		}
		cp := 9
		deps.scoreResults[model.ScoreChildPugh] = model.ScoreResult{
			Type:       model.ScoreChildPugh,
			Value:      &cp,
			Class:      "B",
			Confidence: model.ConfidenceHigh,
		}
		srv := newTestServer(deps)
		Reset(srv.Close)

		Convey("When fetching without a type filter", func() {
			res, err := http.Get(srv.URL + "/patients/patient-1/scores?as_of=2026-02-01")
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusOK)

			var got []struct {
				Type  string `json:"type"`
				Value *int   `json:"value"`
				Class string `json:"class"`
				AsOf  string `json:"as_of"`
			}
			decodeBody(t, res, &got)

			Convey("Then all three score types are returned", func() {
				So(got, ShouldHaveLength, 3)
				So(got[0].Type, ShouldEqual, "MELD")
				So(*got[0].Value, ShouldEqual, 13)
				So(got[1].Type, ShouldEqual, "MELD_NA")
				So(got[2].Type, ShouldEqual, "CHILD_PUGH")
				So(got[2].Class, ShouldEqual, "B")
				So(got[0].AsOf, ShouldEqual, "2026-02-01")
			})
		})

		Convey("When filtering to one type", func() {
			res, err := http.Get(srv.URL + "/patients/patient-1/scores?type=MELD")
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusOK)
			var got []struct {
				Type string `json:"type"`
			}
			decodeBody(t, res, &got)
			So(got, ShouldHaveLength, 1)
			So(got[0].Type, ShouldEqual, "MELD")
		})

		Convey("When a score is not computable", func() {
			delete(deps.scoreResults, model.ScoreMELD)
			res, err := http.Get(srv.URL + "/patients/patient-1/scores?type=MELD")
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusOK)
			var got []struct {
				Value             *int     `json:"value"`
				MissingParameters []string `json:"missing_parameters"`
			}
			decodeBody(t, res, &got)

			Convey("Then the value is null and the gaps are listed", func() {
				So(got[0].Value, ShouldBeNil)
				So(got[0].MissingParameters, ShouldResemble, []string{"bilirubin"})
			})
		})

		Convey("When the query is malformed", func() {
			for _, q := range []string{"?as_of=yesterday", "?type=APRI"} {
				res, err := http.Get(srv.URL + "/patients/patient-1/scores" + q)
				So(err, ShouldBeNil)
				res.Body.Close()
				So(res.StatusCode, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When the patient is unknown", func() {
			deps.scoreErr = repository.ErrPatientNotFound
			res, err := http.Get(srv.URL + "/patients/patient-x/scores")
			So(err, ShouldBeNil)
			res.Body.Close()
			So(res.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestTrendsEndpoint(t *testing.T) {
	Convey("Given a classified trend", t, func() {
		deps := newFakeDeps()
		deps.trendResult = trend.Result{
			Direction:  trend.Declining,
			Confidence: model.ConfidenceHigh,
			Delta:      4.5,
		}
		srv := newTestServer(deps)
		Reset(srv.Close)

		Convey("When asking for a metric trend", func() {
			res, err := http.Get(srv.URL + "/patients/patient-1/trends?metric=ALT")
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusOK)

			var got struct {
				Subject    string  `json:"subject"`
				Direction  string  `json:"direction"`
				Confidence string  `json:"confidence"`
				Delta      float64 `json:"delta"`
			}
			decodeBody(t, res, &got)
			So(got.Subject, ShouldEqual, "ALT")
			So(got.Direction, ShouldEqual, "declining")
			So(got.Confidence, ShouldEqual, "high")
			So(got.Delta, ShouldEqual, 4.5)
		})

		Convey("When asking for a score trend", func() {
			res, err := http.Get(srv.URL + "/patients/patient-1/trends?score=MELD")
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusOK)
			var got struct {
				Subject string `json:"subject"`
			}
			decodeBody(t, res, &got)
			So(got.Subject, ShouldEqual, "MELD")
		})

		Convey("When the query is ambiguous or empty", func() {
			for _, q := range []string{"?metric=ALT&score=MELD", "", "?score=APRI"} {
				res, err := http.Get(srv.URL + "/patients/patient-1/trends" + q)
				So(err, ShouldBeNil)
				res.Body.Close()
				So(res.StatusCode, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When the metric has no series", func() {
			res, err := http.Get(srv.URL + "/patients/patient-1/trends?metric=WIDGET")
			So(err, ShouldBeNil)
			res.Body.Close()
			So(res.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestPatientsRouting(t *testing.T) {
	Convey("Given the patients router", t, func() {
		deps := newFakeDeps()
		srv := newTestServer(deps)
		Reset(srv.Close)

		Convey("Then incomplete or unknown paths are not found", func() {
			for _, path := range []string{
				"/patients/",
				"/patients/patient-1",
				"/patients//profile",
				"/patients/patient-1/unknown",
				"/patients/patient-1/profile/extra",
				"/patients/patient-1/scores/extra",
				"/patients/patient-1/trends/extra",
			} {
				res, err := http.Get(srv.URL + path)
				So(err, ShouldBeNil)
				res.Body.Close()
				So(res.StatusCode, ShouldEqual, http.StatusNotFound)
			}
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given the stats endpoint", t, func() {
		deps := newFakeDeps()
		srv := newTestServer(deps)
		Reset(srv.Close)

		Convey("When fetching stats", func() {
			res, err := http.Get(srv.URL + "/stats")
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusOK)

			var got map[string]interface{}
			decodeBody(t, res, &got)
			So(got["patients_tracked"], ShouldEqual, float64(1))
		})
	})
}
