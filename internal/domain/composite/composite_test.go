package composite_test

import (
	"testing"

	composite "github.com/openflank/fire/internal/domain/composite"
	"github.com/openflank/fire/internal/domain/eligibility"
	"github.com/openflank/fire/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func ptr(v float64) *float64 { return &v }

func eligible() eligibility.Result {
	return eligibility.Result{Eligible: true, Confidence: model.ConfidenceMed, Workload: 200, Threshold: 80}
}

func receiverCand(id string, ep, poe float64) composite.Candidate {
	rate := 20.0
	return composite.Candidate{
		Agg: &model.WindowAggregate{
			PlayerID:           id,
			Name:               id,
			Position:           model.PositionWR,
			GamesPlayed:        4,
			ExpectedPoints:     ep,
			PointsOverExpected: poe,
			SnapShare:          ptr(80),
			RedZoneShare:       ptr(15),
		},
		Role: model.RoleMeta{
			TargetSource: model.TargetSourceShare,
			RouteSource:  model.RouteSourceParticipation,
			TargetRate:   &rate,
			RouteRate:    ptr(85),
		},
		Elig: eligible(),
	}
}

func TestScorer_ScorePool(t *testing.T) {
	Convey("Given a receiver pool", t, func() {
		s := composite.New()

		Convey("When candidates differ only in expected points", func() {
			cands := []composite.Candidate{
				receiverCand("low", 20, 1),
				receiverCand("mid", 30, 1),
				receiverCand("high", 40, 1),
			}

			out := s.ScorePool(model.PositionWR, model.PresetRedraft, cands)

			Convey("Then order follows the candidate slice", func() {
				So(out, ShouldHaveLength, 3)
				So(out[0].PlayerID, ShouldEqual, "low")
				So(out[2].PlayerID, ShouldEqual, "high")
			})

			Convey("Then ranks follow the score, 1-based with no gaps", func() {
				So(out[2].FireRank, ShouldNotBeNil)
				So(*out[2].FireRank, ShouldEqual, 1)
				So(*out[1].FireRank, ShouldEqual, 2)
				So(*out[0].FireRank, ShouldEqual, 3)
			})

			Convey("Then all three pillars are populated", func() {
				So(out[1].Pillars.Opportunity, ShouldNotBeNil)
				So(out[1].Pillars.Role, ShouldNotBeNil)
				So(out[1].Pillars.Conversion, ShouldNotBeNil)
			})

			Convey("Then the score is the weighted pillar blend", func() {
				// high: opp 100, role 50 (all tied), conv 50 (all tied)
				So(out[2].FireScore, ShouldNotBeNil)
				So(*out[2].FireScore, ShouldAlmostEqual, 0.60*100+0.25*50+0.15*50, 1e-9)
			})
		})

		Convey("When an ineligible candidate is mixed in", func() {
			bench := receiverCand("bench", 99, 99)
			bench.Elig = eligibility.Result{Eligible: false, Confidence: model.ConfidenceLow}
			cands := []composite.Candidate{
				receiverCand("a", 20, 1),
				bench,
				receiverCand("b", 40, 1),
			}

			out := s.ScorePool(model.PositionWR, model.PresetRedraft, cands)

			Convey("Then it gets no score, rank, or pillars", func() {
				So(out[1].Eligible, ShouldBeFalse)
				So(out[1].FireScore, ShouldBeNil)
				So(out[1].FireRank, ShouldBeNil)
				So(out[1].Pillars.Opportunity, ShouldBeNil)
			})

			Convey("Then it never enters the percentile pools", func() {
				// With bench excluded, "b" tops a two-player pool.
				So(*out[2].Pillars.Opportunity, ShouldEqual, 100.0)
				So(*out[2].FireRank, ShouldEqual, 1)
				So(*out[0].FireRank, ShouldEqual, 2)
			})
		})

		Convey("When scores tie", func() {
			cands := []composite.Candidate{
				receiverCand("first", 30, 1),
				receiverCand("second", 30, 1),
			}

			out := s.ScorePool(model.PositionWR, model.PresetRedraft, cands)

			Convey("Then ties keep candidate order", func() {
				So(*out[0].FireScore, ShouldEqual, *out[1].FireScore)
				So(*out[0].FireRank, ShouldEqual, 1)
				So(*out[1].FireRank, ShouldEqual, 2)
			})
		})
	})
}

func TestScorer_RoleRenormalization(t *testing.T) {
	Convey("Given receivers with and without a snap share", t, func() {
		s := composite.New()

		full := receiverCand("full", 30, 1)
		gappy := receiverCand("gappy", 30, 1)
		gappy.Agg.SnapShare = nil
		low := receiverCand("low", 30, 1)
		low.Agg.SnapShare = ptr(20)

		out := s.ScorePool(model.PositionWR, model.PresetRedraft,
			[]composite.Candidate{full, gappy, low})

		Convey("Then the gap is flagged on the affected player only", func() {
			So(out[0].RoleMeta.WeightRedistributed, ShouldBeFalse)
			So(out[1].RoleMeta.WeightRedistributed, ShouldBeTrue)
			So(out[2].RoleMeta.WeightRedistributed, ShouldBeFalse)
		})

		Convey("Then the remaining weights renormalize instead of zeroing", func() {
			// Raw role indices: full 0.35*85+0.35*20+0.15*80+0.15*15 = 51.0,
			// low swaps snap 80 for 20 giving 42.0, and gappy's missing snap
			// renormalizes to (0.35*85+0.35*20+0.15*15)/0.85 = 45.88. Zeroing
			// the missing component would give 39.0 and drop gappy below low.
			So(*out[0].Pillars.Role, ShouldEqual, 100.0)
			So(*out[1].Pillars.Role, ShouldEqual, 50.0)
			So(*out[2].Pillars.Role, ShouldEqual, 0.0)
		})

		Convey("Then the role pillar carries through the blend", func() {
			// Opportunity and conversion pools are all tied at 50.
			So(*out[1].FireScore, ShouldAlmostEqual, 0.60*50+0.25*50+0.15*50, 1e-9)
			So(*out[0].FireScore, ShouldAlmostEqual, 0.60*50+0.25*100+0.15*50, 1e-9)
		})
	})

	Convey("Given a receiver with every role component missing", t, func() {
		s := composite.New()
		c := receiverCand("empty", 30, 1)
		c.Agg.SnapShare = nil
		c.Agg.RedZoneShare = nil
		c.Role = model.RoleMeta{
			TargetSource: model.TargetSourceNone,
			RouteSource:  model.RouteSourceNone,
		}

		out := s.ScorePool(model.PositionWR, model.PresetRedraft,
			[]composite.Candidate{c, receiverCand("other", 30, 1)})

		Convey("Then the raw role index degrades to zero, not a panic", func() {
			So(out[0].FireScore, ShouldNotBeNil)
			So(out[0].RoleMeta.WeightRedistributed, ShouldBeTrue)
		})
	})
}

func qbCand(id string, passEP, rushEP float64) composite.Candidate {
	return composite.Candidate{
		Agg: &model.WindowAggregate{
			PlayerID:             id,
			Position:             model.PositionQB,
			GamesPlayed:          4,
			PassExpectedPoints:   passEP,
			RushExpectedPoints:   rushEP,
			DropbackShare:        ptr(95),
			RushShare:            ptr(8),
			RedZoneDropbackShare: ptr(90),
		},
		Role: model.RoleMeta{TargetSource: model.TargetSourceNone, RouteSource: model.RouteSourceNone},
		Elig: eligible(),
	}
}

func TestScorer_Quarterbacks(t *testing.T) {
	Convey("Given a quarterback pool", t, func() {
		s := composite.New()

		Convey("When scoring under the redraft preset", func() {
			cands := []composite.Candidate{
				qbCand("pocket", 60, 2),
				qbCand("dual", 50, 15),
			}

			out := s.ScorePool(model.PositionQB, model.PresetRedraft, cands)

			Convey("Then conversion stays nil for every quarterback", func() {
				So(out[0].Pillars.Conversion, ShouldBeNil)
				So(out[1].Pillars.Conversion, ShouldBeNil)
			})

			Convey("Then pass and rush expected value weigh equally", func() {
				// pocket 62 vs dual 65: dual ranks first
				So(*out[1].FireRank, ShouldEqual, 1)
			})

			Convey("Then the blend uses the quarterback pillar weights", func() {
				// dual: opp 100, role 50 (all shares tied)
				So(*out[1].FireScore, ShouldAlmostEqual, 0.75*100+0.25*50, 1e-9)
			})
		})

		Convey("When scoring under the dynasty preset", func() {
			cands := []composite.Candidate{
				qbCand("pocket", 64, 0),
				qbCand("dual", 50, 8),
			}

			out := s.ScorePool(model.PositionQB, model.PresetDynasty, cands)

			Convey("Then rushing value is amplified", func() {
				// pocket: 0.9*64 = 57.6; dual: 0.9*50 + 1.25*8 = 55.0
				So(*out[0].FireRank, ShouldEqual, 1)
				So(*out[1].FireRank, ShouldEqual, 2)
			})
		})

		Convey("When no pass/rush split was recorded", func() {
			flat := qbCand("flat", 0, 0)
			flat.Agg.ExpectedPoints = 70
			split := qbCand("split", 40, 10)

			out := s.ScorePool(model.PositionQB, model.PresetDynasty, cands(flat, split))

			Convey("Then the combined aggregate is used preset-neutral", func() {
				// flat 70 vs split 0.9*40+1.25*10 = 48.5
				So(*out[0].FireRank, ShouldEqual, 1)
			})
		})
	})
}

func cands(cs ...composite.Candidate) []composite.Candidate { return cs }

func TestScorer_Options(t *testing.T) {
	Convey("Given custom pillar weights", t, func() {
		s := composite.New(composite.WithPillarWeights(0.8, 0.1, 0.1))

		out := s.ScorePool(model.PositionWR, model.PresetRedraft, []composite.Candidate{
			receiverCand("a", 20, 1),
			receiverCand("b", 40, 1),
		})

		Convey("Then the override drives the blend", func() {
			// b: opp 100, role 50, conv 50
			So(*out[1].FireScore, ShouldAlmostEqual, 0.8*100+0.1*50+0.1*50, 1e-9)
		})
	})

	Convey("Given custom role weights with junk entries", t, func() {
		s := composite.New(composite.WithRoleWeights(model.PositionWR, map[string]float64{
			composite.ComponentTarget: 1.0,
			"bogus":                   -3.0,
		}))

		out := s.ScorePool(model.PositionWR, model.PresetRedraft, []composite.Candidate{
			receiverCand("a", 30, 1),
		})

		Convey("Then non-positive weights are dropped and scoring proceeds", func() {
			So(out[0].Pillars.Role, ShouldNotBeNil)
		})
	})
}
