// Package composite blends normalized pillar scores into one final score
// per player and ranks each position pool.
package composite

import (
	"sort"

	"github.com/openflank/fire/internal/domain/eligibility"
	"github.com/openflank/fire/internal/domain/model"
	"github.com/openflank/fire/internal/domain/percentile"
)

// Role blend component keys.
const (
	ComponentRoute    = "route"
	ComponentTarget   = "target"
	ComponentSnap     = "snap"
	ComponentCarry    = "carry"
	ComponentRedZone  = "red_zone"
	ComponentDropback = "dropback"
	ComponentRush     = "rush"
)

// Default pillar and blend weights. Domain-tuned; override via options,
// never inline.
const (
	defaultOpportunityWeight = 0.60
	defaultRoleWeight        = 0.25
	defaultConversionWeight  = 0.15

	defaultQBOpportunityWeight = 0.75
	defaultQBRoleWeight        = 0.25

	defaultDynastyPassEPWeight = 0.9
	defaultDynastyRushEPWeight = 1.25
)

func defaultReceiverRoleWeights() map[string]float64 {
	return map[string]float64{
		ComponentRoute:   0.35,
		ComponentTarget:  0.35,
		ComponentSnap:    0.15,
		ComponentRedZone: 0.15,
	}
}

func defaultRBRoleWeights() map[string]float64 {
	return map[string]float64{
		ComponentCarry:   0.35,
		ComponentTarget:  0.25,
		ComponentSnap:    0.20,
		ComponentRedZone: 0.20,
	}
}

func defaultQBRoleWeights() map[string]float64 {
	return map[string]float64{
		ComponentDropback: 0.60,
		ComponentRush:     0.25,
		ComponentRedZone:  0.15,
	}
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithPillarWeights overrides the non-quarterback pillar blend.
func WithPillarWeights(opportunity, role, conversion float64) Option {
	return func(s *Scorer) {
		if opportunity > 0 && role > 0 && conversion > 0 {
			s.oppWeight = opportunity
			s.roleWeight = role
			s.convWeight = conversion
		}
	}
}

// WithQBPillarWeights overrides the quarterback pillar blend.
func WithQBPillarWeights(opportunity, role float64) Option {
	return func(s *Scorer) {
		if opportunity > 0 && role > 0 {
			s.qbOppWeight = opportunity
			s.qbRoleWeight = role
		}
	}
}

// WithRoleWeights overrides a position group's role blend weights.
// Unknown or non-positive weights are dropped.
func WithRoleWeights(pos model.Position, weights map[string]float64) Option {
	return func(s *Scorer) {
		if len(weights) == 0 {
			return
		}
		clean := make(map[string]float64, len(weights))
		for k, w := range weights {
			if w > 0 {
				clean[k] = w
			}
		}
		if len(clean) == 0 {
			return
		}
		switch pos {
		case model.PositionRB:
			s.rbRoleWeights = clean
		case model.PositionQB:
			s.qbRoleWeights = clean
		case model.PositionWR, model.PositionTE:
			s.receiverRoleWeights = clean
		}
	}
}

// WithDynastyEPWeights overrides the dynasty-preset QB expected-value
// weighting.
func WithDynastyEPWeights(pass, rush float64) Option {
	return func(s *Scorer) {
		if pass > 0 && rush > 0 {
			s.dynastyPassEP = pass
			s.dynastyRushEP = rush
		}
	}
}

// Candidate is one player entering the scorer: its window aggregate, the
// resolved role sources, and the eligibility classification.
type Candidate struct {
	Agg  *model.WindowAggregate
	Role model.RoleMeta
	Elig eligibility.Result
}

// Scorer computes pillar percentiles and the final composite score for
// one position pool at a time. Safe for concurrent use.
type Scorer struct {
	oppWeight  float64
	roleWeight float64
	convWeight float64

	qbOppWeight  float64
	qbRoleWeight float64

	receiverRoleWeights map[string]float64
	rbRoleWeights       map[string]float64
	qbRoleWeights       map[string]float64

	dynastyPassEP float64
	dynastyRushEP float64
}

// New creates a Scorer with configuration options.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		oppWeight:           defaultOpportunityWeight,
		roleWeight:          defaultRoleWeight,
		convWeight:          defaultConversionWeight,
		qbOppWeight:         defaultQBOpportunityWeight,
		qbRoleWeight:        defaultQBRoleWeight,
		receiverRoleWeights: defaultReceiverRoleWeights(),
		rbRoleWeights:       defaultRBRoleWeights(),
		qbRoleWeights:       defaultQBRoleWeights(),
		dynastyPassEP:       defaultDynastyPassEPWeight,
		dynastyRushEP:       defaultDynastyRushEPWeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScorePool scores one position pool. Every candidate produces an output
// row; ineligible players come back with eligible=false, nil score, and
// no rank, and never enter the percentile pools. Output preserves the
// candidate order; ranks are assigned by stable descending score.
func (s *Scorer) ScorePool(pos model.Position, preset model.ScoringPreset, cands []Candidate) []model.PlayerScore {
	scores := make([]model.PlayerScore, len(cands))

	type rawPillars struct {
		opp  float64
		role float64
		conv float64
		meta model.RoleMeta
	}

	// Raw pillar aggregates for the eligible pool only.
	raws := make(map[int]rawPillars, len(cands))
	var oppPool, rolePool, convPool []float64
	for i, c := range cands {
		if !c.Elig.Eligible {
			continue
		}
		r := rawPillars{
			opp:  s.opportunityRaw(pos, preset, c.Agg),
			conv: c.Agg.PointsOverExpected,
		}
		r.role, r.meta = s.roleRaw(pos, c)
		raws[i] = r
		oppPool = append(oppPool, r.opp)
		rolePool = append(rolePool, r.role)
		if pos != model.PositionQB {
			convPool = append(convPool, r.conv)
		}
	}
	opp := percentile.New(oppPool)
	role := percentile.New(rolePool)
	conv := percentile.New(convPool)

	for i, c := range cands {
		ps := model.PlayerScore{
			PlayerID:    c.Agg.PlayerID,
			Name:        c.Agg.Name,
			Team:        c.Agg.Team,
			Position:    pos,
			Eligible:    c.Elig.Eligible,
			Confidence:  c.Elig.Confidence,
			GamesPlayed: c.Agg.GamesPlayed,
			WeeksUsed:   c.Agg.WeeksPresent,
			Workload:    c.Elig.Workload,
			Threshold:   c.Elig.Threshold,
			RoleMeta:    c.Role,
		}
		if r, ok := raws[i]; ok {
			ps.RoleMeta = r.meta
			oppPct := opp.Rank(r.opp)
			rolePct := role.Rank(r.role)
			ps.Pillars.Opportunity = &oppPct
			ps.Pillars.Role = &rolePct

			var final float64
			if pos == model.PositionQB {
				// Quarterback conversion is an explicit known gap.
				final = s.qbOppWeight*oppPct + s.qbRoleWeight*rolePct
			} else {
				convPct := conv.Rank(r.conv)
				ps.Pillars.Conversion = &convPct
				final = s.oppWeight*oppPct + s.roleWeight*rolePct + s.convWeight*convPct
			}
			ps.FireScore = &final
		}
		scores[i] = ps
	}

	rank(scores)
	return scores
}

// opportunityRaw returns the expected-value aggregate for the
// Opportunity pillar. Quarterback aggregates split pass and rush
// expected value and apply the preset weighting; when neither split is
// recorded the combined aggregate is used preset-neutral.
func (s *Scorer) opportunityRaw(pos model.Position, preset model.ScoringPreset, agg *model.WindowAggregate) float64 {
	if pos != model.PositionQB {
		return agg.ExpectedPoints
	}
	if agg.PassExpectedPoints == 0 && agg.RushExpectedPoints == 0 {
		return agg.ExpectedPoints
	}
	passW, rushW := 1.0, 1.0
	if preset == model.PresetDynasty {
		passW, rushW = s.dynastyPassEP, s.dynastyRushEP
	}
	return passW*agg.PassExpectedPoints + rushW*agg.RushExpectedPoints
}

// roleRaw blends the position's role components into one raw index.
// Components whose source resolved to none (or whose share is nil) are
// excluded from both numerator and denominator: the remaining weights
// are renormalized, never treated as zero.
func (s *Scorer) roleRaw(pos model.Position, c Candidate) (float64, model.RoleMeta) {
	meta := c.Role
	agg := c.Agg

	var weights map[string]float64
	components := make(map[string]*float64)
	switch pos {
	case model.PositionQB:
		weights = s.qbRoleWeights
		components[ComponentDropback] = agg.DropbackShare
		components[ComponentRush] = agg.RushShare
		components[ComponentRedZone] = agg.RedZoneDropbackShare
	case model.PositionRB:
		weights = s.rbRoleWeights
		components[ComponentCarry] = agg.RushShare
		components[ComponentTarget] = meta.TargetRate
		components[ComponentSnap] = agg.SnapShare
		components[ComponentRedZone] = agg.RedZoneShare
	default:
		weights = s.receiverRoleWeights
		components[ComponentRoute] = meta.RouteRate
		components[ComponentTarget] = meta.TargetRate
		components[ComponentSnap] = agg.SnapShare
		components[ComponentRedZone] = agg.RedZoneShare
	}

	var num, den float64
	for key, w := range weights {
		v, ok := components[key]
		if !ok || v == nil {
			meta.WeightRedistributed = true
			continue
		}
		num += w * *v
		den += w
	}
	if den == 0 {
		return 0, meta
	}
	return num / den, meta
}

// rank stable-sorts the eligible entries by descending score and assigns
// 1-based ranks with no gaps. Ties keep their original relative order.
func rank(scores []model.PlayerScore) {
	idx := make([]int, 0, len(scores))
	for i := range scores {
		if scores[i].Eligible && scores[i].FireScore != nil {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return *scores[idx[a]].FireScore > *scores[idx[b]].FireScore
	})
	for pos, i := range idx {
		r := pos + 1
		scores[i].FireRank = &r
	}
}
