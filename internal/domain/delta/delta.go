// Package delta compares the engine's short-horizon composite against an
// externally supplied long-horizon alpha and classifies the divergence.
package delta

import (
	"math"
	"sort"

	"github.com/openflank/fire/internal/domain/model"
	"github.com/openflank/fire/internal/domain/percentile"
)

// Default classification cutoffs. The z-space cutoff drives sorting and
// the primary classification; the percentile gap is the display-space
// fallback and requires non-LOW confidence.
const (
	defaultZCutoff          = 1.0
	defaultPercentileCutoff = 20.0
)

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithZCutoff overrides the z-score divergence cutoff.
func WithZCutoff(z float64) Option {
	return func(g *Generator) {
		if z > 0 {
			g.zCutoff = z
		}
	}
}

// WithPercentileCutoff overrides the percentile-gap cutoff.
func WithPercentileCutoff(p float64) Option {
	return func(g *Generator) {
		if p > 0 {
			g.pctCutoff = p
		}
	}
}

// Input joins one player's composite score with its long-horizon alpha.
type Input struct {
	PlayerID   string
	Name       string
	Position   model.Position
	FireScore  float64
	ForgeAlpha float64
	Confidence model.Confidence
}

// Generator derives divergence signals for one position pool.
type Generator struct {
	zCutoff   float64
	pctCutoff float64
}

// New creates a Generator with configuration options.
func New(opts ...Option) *Generator {
	g := &Generator{
		zCutoff:   defaultZCutoff,
		pctCutoff: defaultPercentileCutoff,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate computes percentile-space and z-space deltas for a joined
// pool and classifies each entry. Quarterbacks are excluded until a
// conversion pillar exists for them. Output is sorted by descending
// absolute z-delta, stable on input order.
func (g *Generator) Generate(pool []Input) []model.DeltaSignal {
	joined := make([]Input, 0, len(pool))
	for _, in := range pool {
		if in.Position == model.PositionQB {
			continue
		}
		joined = append(joined, in)
	}
	if len(joined) == 0 {
		return nil
	}

	fireVals := make([]float64, len(joined))
	forgeVals := make([]float64, len(joined))
	for i, in := range joined {
		fireVals[i] = in.FireScore
		forgeVals[i] = in.ForgeAlpha
	}
	fire := percentile.New(fireVals)
	forge := percentile.New(forgeVals)

	out := make([]model.DeltaSignal, len(joined))
	for i, in := range joined {
		firePct := fire.Rank(in.FireScore)
		forgePct := forge.Rank(in.ForgeAlpha)
		rankZ := forge.Z(in.ForgeAlpha) - fire.Z(in.FireScore)
		displayPct := forgePct - firePct

		out[i] = model.DeltaSignal{
			PlayerID:   in.PlayerID,
			Name:       in.Name,
			Position:   in.Position,
			FireScore:  in.FireScore,
			ForgeAlpha: in.ForgeAlpha,
			FirePct:    firePct,
			ForgePct:   forgePct,
			DisplayPct: displayPct,
			RankZ:      rankZ,
			Direction:  g.classify(rankZ, displayPct, in.Confidence),
			Confidence: in.Confidence,
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		return math.Abs(out[a].RankZ) > math.Abs(out[b].RankZ)
	})
	return out
}

func (g *Generator) classify(rankZ, displayPct float64, conf model.Confidence) model.Direction {
	trusted := conf != model.ConfidenceLow
	switch {
	case rankZ >= g.zCutoff || (displayPct >= g.pctCutoff && trusted):
		return model.DirectionBuyLow
	case rankZ <= -g.zCutoff || (displayPct <= -g.pctCutoff && trusted):
		return model.DirectionSellHigh
	default:
		return model.DirectionNeutral
	}
}
