// Package eligibility decides whether a player has enough recent workload
// to be scored and assigns a sample-size confidence tier.
package eligibility

import (
	"math"

	"github.com/openflank/fire/internal/domain/model"
)

// Default threshold configuration. Base thresholds are domain-tuned
// constants; changing them is a behavior-affecting tuning decision.
const (
	defaultBaseRB    = 50.0
	defaultBaseOther = 80.0
	defaultFloorRB   = 8.0
	defaultFloorOther = 12.0
	defaultHighFactor = 1.5

	fullWindowWeeks = 4
	highGamesMin    = 4
	medGamesMin     = 3
	lowGamesMax     = 2
)

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithBaseThresholds overrides the full-window workload thresholds.
func WithBaseThresholds(rb, other float64) Option {
	return func(c *Classifier) {
		if rb > 0 {
			c.baseRB = rb
		}
		if other > 0 {
			c.baseOther = other
		}
	}
}

// WithFloors overrides the early-season threshold floors.
func WithFloors(rb, other float64) Option {
	return func(c *Classifier) {
		if rb > 0 {
			c.floorRB = rb
		}
		if other > 0 {
			c.floorOther = other
		}
	}
}

// WithHighConfidenceFactor overrides the HIGH-tier workload multiplier.
func WithHighConfidenceFactor(f float64) Option {
	return func(c *Classifier) {
		if f > 1 {
			c.highFactor = f
		}
	}
}

// Classifier is a pure function of (position, games, workload, width)
// once configured. Safe for concurrent use.
type Classifier struct {
	baseRB     float64
	baseOther  float64
	floorRB    float64
	floorOther float64
	highFactor float64
}

// New creates a Classifier with configuration options.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		baseRB:     defaultBaseRB,
		baseOther:  defaultBaseOther,
		floorRB:    defaultFloorRB,
		floorOther: defaultFloorOther,
		highFactor: defaultHighFactor,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseThreshold returns the full-window threshold for a position.
// Quarterbacks and receivers carry a higher base than running backs.
func (c *Classifier) BaseThreshold(pos model.Position) float64 {
	if pos == model.PositionRB {
		return c.baseRB
	}
	return c.baseOther
}

// ScaledThreshold scales the base threshold by the fraction of the
// theoretical window actually available, floored so early-season
// thresholds never collapse to zero. Non-decreasing in windowWidth.
func (c *Classifier) ScaledThreshold(pos model.Position, windowWidth int) float64 {
	w := windowWidth
	if w > fullWindowWeeks {
		w = fullWindowWeeks
	}
	if w < 1 {
		w = 1
	}
	scaled := math.Round(c.BaseThreshold(pos) * float64(w) / fullWindowWeeks)
	floor := c.floorOther
	if pos == model.PositionRB {
		floor = c.floorRB
	}
	if scaled < floor {
		scaled = floor
	}
	return scaled
}

// Workload returns the eligibility workload for an aggregate: dropbacks
// for quarterbacks (snaps as a proxy when no dropback data exists),
// snaps otherwise.
func (c *Classifier) Workload(agg *model.WindowAggregate) float64 {
	if agg.Position == model.PositionQB {
		if agg.Dropbacks > 0 {
			return agg.Dropbacks
		}
		return agg.Snaps
	}
	return agg.Snaps
}

// Result is the classification outcome for one player.
type Result struct {
	Eligible   bool
	Confidence model.Confidence
	Workload   float64
	Threshold  float64
}

// Classify applies the scaled threshold and confidence rules to one
// aggregate. Confidence is always defined, LOW being the catch-all.
func (c *Classifier) Classify(agg *model.WindowAggregate) Result {
	threshold := c.ScaledThreshold(agg.Position, agg.WindowWidth)
	workload := c.Workload(agg)

	r := Result{
		Eligible:  workload >= threshold,
		Workload:  workload,
		Threshold: threshold,
	}

	switch {
	case agg.GamesPlayed >= highGamesMin && workload >= c.highFactor*threshold:
		r.Confidence = model.ConfidenceHigh
	case agg.GamesPlayed <= lowGamesMax || workload < threshold:
		r.Confidence = model.ConfidenceLow
	case agg.GamesPlayed >= medGamesMin && workload >= threshold:
		r.Confidence = model.ConfidenceMed
	default:
		r.Confidence = model.ConfidenceLow
	}
	return r
}
