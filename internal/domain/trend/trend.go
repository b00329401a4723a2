// Package trend classifies multi-point movements in lab series and
// score histories as improving, stable or declining.
//
// Direction compares a short recent window's mean against an earlier
// baseline window's mean relative to the metric's clinically meaningful
// step size, so a 1-point MELD wobble is noise while a 4-point rise
// over two measurements is a decline.
package trend

import (
	"sort"

	"github.com/vikashgd/liverTracker-sub000/internal/domain/metric"
	"github.com/vikashgd/liverTracker-sub000/internal/domain/model"
	"github.com/vikashgd/liverTracker-sub000/internal/domain/series"
)

// Direction is the classified movement of a series.
type Direction string

// Direction values. Unknown means the series is too short to classify.
const (
	Improving Direction = "improving"
	Stable    Direction = "stable"
	Declining Direction = "declining"
	Unknown   Direction = "unknown"
)

// Result is one classification outcome. Delta is the recent-mean minus
// baseline-mean difference in the metric's canonical unit.
type Result struct {
	Direction  Direction
	Confidence model.Confidence
	Delta      float64
}

// Default window sizes and score step thresholds.
const (
	defaultRecentWindow   = 2
	defaultBaselineWindow = 3

	defaultMELDStep      = 2.0
	defaultChildPughStep = 1.0
)

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithRecentWindow sets how many trailing points form the recent mean.
func WithRecentWindow(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.recentWindow = n
		}
	}
}

// WithBaselineWindow sets how many preceding points form the baseline mean.
func WithBaselineWindow(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.baselineWindow = n
		}
	}
}

// WithScoreStep overrides the meaningful step size for a score type.
func WithScoreStep(t model.ScoreType, step float64) Option {
	return func(c *Classifier) {
		if step > 0 {
			c.scoreSteps[t] = step
		}
	}
}

// Classifier classifies trends. Step thresholds are configuration data,
// per metric and per score type, not per call site.
type Classifier struct {
	recentWindow   int
	baselineWindow int
	scoreSteps     map[model.ScoreType]float64
}

// NewClassifier creates a classifier with configuration options.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		recentWindow:   defaultRecentWindow,
		baselineWindow: defaultBaselineWindow,
		scoreSteps: map[model.ScoreType]float64{
			model.ScoreMELD:      defaultMELDStep,
			model.ScoreMELDNa:    defaultMELDStep,
			model.ScoreChildPugh: defaultChildPughStep,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClassifySeries classifies a lab series using the metric's configured
// step size and orientation.
func (c *Classifier) ClassifySeries(s series.Series, m metric.Metric) Result {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return c.classify(values, m.Step, m.HigherIsWorse)
}

// ClassifyScores classifies a score history. Results that were not
// computable are skipped; the rest are ordered by as-of date. Higher
// scores always mean greater severity.
func (c *Classifier) ClassifyScores(history []model.ScoreResult) Result {
	computable := make([]model.ScoreResult, 0, len(history))
	var scoreType model.ScoreType
	for _, r := range history {
		if r.Computable() {
			computable = append(computable, r)
			scoreType = r.Type
		}
	}
	sort.SliceStable(computable, func(i, j int) bool {
		return computable[i].AsOf.Before(computable[j].AsOf)
	})

	values := make([]float64, len(computable))
	for i, r := range computable {
		values[i] = float64(*r.Value)
	}
	step, ok := c.scoreSteps[scoreType]
	if !ok {
		step = defaultMELDStep
	}
	return c.classify(values, step, true)
}

func (c *Classifier) classify(values []float64, step float64, higherIsWorse bool) Result {
	if len(values) < 2 {
		return Result{Direction: Unknown, Confidence: model.ConfidenceUnknown}
	}

	recentN := c.recentWindow
	if recentN > len(values)-1 {
		recentN = len(values) - 1
	}
	recent := values[len(values)-recentN:]
	baselineStart := len(values) - recentN - c.baselineWindow
	if baselineStart < 0 {
		baselineStart = 0
	}
	baseline := values[baselineStart : len(values)-recentN]

	delta := mean(recent) - mean(baseline)

	res := Result{Delta: delta, Confidence: c.confidence(len(recent), len(baseline))}
	switch {
	case delta >= step:
		res.Direction = Declining
		if !higherIsWorse {
			res.Direction = Improving
		}
	case delta <= -step:
		res.Direction = Improving
		if !higherIsWorse {
			res.Direction = Declining
		}
	default:
		res.Direction = Stable
	}
	return res
}

// confidence grades the classification by how full both windows are.
func (c *Classifier) confidence(recentN, baselineN int) model.Confidence {
	switch {
	case recentN >= c.recentWindow && baselineN >= c.baselineWindow:
		return model.ConfidenceHigh
	case baselineN >= 2:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
