// Package scoring computes the MELD, MELD-Na and Child-Pugh clinical
// risk scores from latest-as-of lab observations plus the patient's
// clinical profile.
//
// There is exactly one implementation of each formula in the codebase;
// every caller, including the cache layer, goes through this engine.
// Missing labs and unassessed grades are normal outcomes reported on
// the result, never errors.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/vikashgd/liverTracker-sub000/internal/domain/metric"
	"github.com/vikashgd/liverTracker-sub000/internal/domain/model"
)

// Lookup answers the single query scoring needs from a patient's data.
type Lookup interface {
	LatestAsOf(id metric.ID, asOf model.Date) (model.Observation, bool)
}

// MELD formula constants (UNOS coefficients; inputs in mg/dL and ratio).
const (
	meldBilirubinCoeff  = 3.78
	meldINRCoeff        = 11.2
	meldCreatinineCoeff = 9.57
	meldIntercept       = 6.43

	meldFloor = 6
	meldCeil  = 40

	// dialysisCreatinine replaces measured creatinine for patients on
	// regular dialysis.
	dialysisCreatinine = 4.0
	// dialysisMinSessionsPerWeek gates the override.
	dialysisMinSessionsPerWeek = 2
	// dialysisLookbackDays is the trailing window the last session must
	// fall into for the override to apply.
	dialysisLookbackDays = 7
)

// MELD-Na adjustment constants; sodium is clamped into [125,137] first.
const (
	meldNaSodiumFloor = 125.0
	meldNaSodiumCeil  = 137.0
	meldNaLinearCoeff = 1.32
	meldNaCrossCoeff  = 0.033
)

// Child-Pugh breakpoints.
const (
	cpBilirubinLow  = 2.0
	cpBilirubinHigh = 3.0
	cpAlbuminHigh   = 3.5
	cpAlbuminLow    = 2.8
	cpINRLow        = 1.7
	cpINRHigh       = 2.3

	cpClassBMin = 7
	cpClassCMin = 10
)

// Parameter names used in MissingParameters and Components.
const (
	paramBilirubin      = "bilirubin"
	paramCreatinine     = "creatinine"
	paramINR            = "inr"
	paramSodium         = "sodium"
	paramAlbumin        = "albumin"
	paramAscites        = "ascites"
	paramEncephalopathy = "encephalopathy"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithClock overrides the wall clock used for ComputedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine computes clinical scores. It holds no patient state; every
// computation is a pure function of its arguments.
type Engine struct {
	now func() time.Time
}

// NewEngine creates a scoring engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute dispatches to the formula for the requested score type.
func (e *Engine) Compute(scoreType model.ScoreType, patientID string, asOf model.Date, profile model.ClinicalProfile, labs Lookup) (model.ScoreResult, error) {
	switch scoreType {
	case model.ScoreMELD:
		return e.MELD(patientID, asOf, profile, labs), nil
	case model.ScoreMELDNa:
		return e.MELDNa(patientID, asOf, profile, labs), nil
	case model.ScoreChildPugh:
		return e.ChildPugh(patientID, asOf, profile, labs), nil
	default:
		return model.ScoreResult{}, fmt.Errorf("%w: %q", ErrUnknownScoreType, scoreType)
	}
}

// MELD computes the Model for End-Stage Liver Disease score as of the
// given date. Requires bilirubin, creatinine and INR; absent inputs
// yield a nil-valued result listing them.
func (e *Engine) MELD(patientID string, asOf model.Date, profile model.ClinicalProfile, labs Lookup) model.ScoreResult {
	res := e.newResult(patientID, model.ScoreMELD, asOf)

	bili, biliOK := labs.LatestAsOf(metric.Bilirubin, asOf)
	creat, creatOK := labs.LatestAsOf(metric.Creatinine, asOf)
	inr, inrOK := labs.LatestAsOf(metric.INR, asOf)
	if !biliOK {
		res.MissingParameters = append(res.MissingParameters, paramBilirubin)
	}
	if !creatOK {
		res.MissingParameters = append(res.MissingParameters, paramCreatinine)
	}
	if !inrOK {
		res.MissingParameters = append(res.MissingParameters, paramINR)
	}
	if len(res.MissingParameters) > 0 {
		return res
	}

	res.Components[paramBilirubin] = bili.Value
	res.Components[paramCreatinine] = creat.Value
	res.Components[paramINR] = inr.Value
	e.absorb(&res, bili, creat, inr)

	safeCreatinine := math.Max(creat.Value, 1.0)
	if dialysisOverride(profile, asOf) {
		safeCreatinine = dialysisCreatinine
		res.Components[paramCreatinine+"_dialysis_adjusted"] = dialysisCreatinine
		res.Warnings = append(res.Warnings, "creatinine set to 4.0 (regular dialysis)")
	}

	raw := meldBilirubinCoeff*math.Log(math.Max(bili.Value, 1.0)) +
		meldINRCoeff*math.Log(math.Max(inr.Value, 1.0)) +
		meldCreatinineCoeff*math.Log(safeCreatinine) +
		meldIntercept
	value := clampInt(int(math.Round(raw)), meldFloor, meldCeil)
	res.Value = &value
	return res
}

// MELDNa computes the sodium-adjusted MELD. When sodium is unavailable
// the score is not computed; the result carries a warning instead of an
// approximation.
func (e *Engine) MELDNa(patientID string, asOf model.Date, profile model.ClinicalProfile, labs Lookup) model.ScoreResult {
	meld := e.MELD(patientID, asOf, profile, labs)

	res := e.newResult(patientID, model.ScoreMELDNa, asOf)
	res.Components = meld.Components
	res.Warnings = meld.Warnings
	res.Confidence = meld.Confidence
	if !meld.Computable() {
		res.MissingParameters = meld.MissingParameters
		return res
	}

	sodium, ok := labs.LatestAsOf(metric.Sodium, asOf)
	if !ok {
		res.MissingParameters = append(res.MissingParameters, paramSodium)
		res.Warnings = append(res.Warnings, "sodium unavailable; MELD-Na not computed")
		return res
	}
	res.Components[paramSodium] = sodium.Value
	e.absorb(&res, sodium)

	safeNa := clampFloat(sodium.Value, meldNaSodiumFloor, meldNaSodiumCeil)
	naDelta := meldNaSodiumCeil - safeNa
	m := float64(*meld.Value)
	raw := m + meldNaLinearCoeff*naDelta - meldNaCrossCoeff*m*naDelta
	value := clampInt(int(math.Round(raw)), meldFloor, meldCeil)
	res.Value = &value
	return res
}

// ChildPugh computes the five-component Child-Pugh score and class.
// Ascites and encephalopathy grades come from the clinical profile and
// are never approximated when unassessed.
func (e *Engine) ChildPugh(patientID string, asOf model.Date, profile model.ClinicalProfile, labs Lookup) model.ScoreResult {
	res := e.newResult(patientID, model.ScoreChildPugh, asOf)

	bili, biliOK := labs.LatestAsOf(metric.Bilirubin, asOf)
	alb, albOK := labs.LatestAsOf(metric.Albumin, asOf)
	inr, inrOK := labs.LatestAsOf(metric.INR, asOf)
	if !biliOK {
		res.MissingParameters = append(res.MissingParameters, paramBilirubin)
	}
	if !albOK {
		res.MissingParameters = append(res.MissingParameters, paramAlbumin)
	}
	if !inrOK {
		res.MissingParameters = append(res.MissingParameters, paramINR)
	}
	if profile.Ascites == model.GradeUnassessed {
		res.MissingParameters = append(res.MissingParameters, paramAscites)
	}
	if profile.Encephalopathy == model.GradeUnassessed {
		res.MissingParameters = append(res.MissingParameters, paramEncephalopathy)
	}
	if len(res.MissingParameters) > 0 {
		return res
	}

	res.Components[paramBilirubin] = bili.Value
	res.Components[paramAlbumin] = alb.Value
	res.Components[paramINR] = inr.Value
	e.absorb(&res, bili, alb, inr)

	points := map[string]int{
		paramBilirubin:      bilirubinPoints(bili.Value),
		paramAlbumin:        albuminPoints(alb.Value),
		paramINR:            inrPoints(inr.Value),
		paramAscites:        profile.Ascites.Points(),
		paramEncephalopathy: profile.Encephalopathy.Points(),
	}
	total := 0
	for name, p := range points {
		res.Components[name+"_points"] = float64(p)
		total += p
	}

	res.Value = &total
	switch {
	case total >= cpClassCMin:
		res.Class = "C"
	case total >= cpClassBMin:
		res.Class = "B"
	default:
		res.Class = "A"
	}
	return res
}

func (e *Engine) newResult(patientID string, t model.ScoreType, asOf model.Date) model.ScoreResult {
	return model.ScoreResult{
		PatientID:  patientID,
		Type:       t,
		AsOf:       asOf,
		ComputedAt: e.now().UTC(),
		Components: make(map[string]float64),
		Confidence: model.ConfidenceHigh,
	}
}

// absorb folds observation confidence into the result: the score's
// confidence is the minimum across contributing inputs, and a
// low-confidence input adds an explicit caveat instead of blocking the
// computation.
func (e *Engine) absorb(res *model.ScoreResult, observations ...model.Observation) {
	for _, o := range observations {
		res.Confidence = model.MinConfidence(res.Confidence, o.Confidence)
		if o.Confidence <= model.ConfidenceLow {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"%s input flagged low confidence", strings.ToLower(string(o.Metric))))
		}
	}
	sort.Strings(res.Warnings)
}

func dialysisOverride(profile model.ClinicalProfile, asOf model.Date) bool {
	if !profile.OnDialysis || profile.DialysisSessionsPerWeek < dialysisMinSessionsPerWeek {
		return false
	}
	if profile.LastDialysisDate.IsZero() {
		// No session date recorded; the regular-dialysis flags alone apply.
		return true
	}
	cutoff := asOf.AddDays(-dialysisLookbackDays)
	return profile.LastDialysisDate.After(cutoff) && !profile.LastDialysisDate.After(asOf)
}

func bilirubinPoints(v float64) int {
	switch {
	case v < cpBilirubinLow:
		return 1
	case v <= cpBilirubinHigh:
		return 2
	default:
		return 3
	}
}

func albuminPoints(v float64) int {
	switch {
	case v > cpAlbuminHigh:
		return 1
	case v >= cpAlbuminLow:
		return 2
	default:
		return 3
	}
}

func inrPoints(v float64) int {
	switch {
	case v < cpINRLow:
		return 1
	case v <= cpINRHigh:
		return 2
	default:
		return 3
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
