package service_test

import (
	"context"
	"errors"
	"os"
	"testing"

	service "github.com/openflank/fire/internal/app"
	"github.com/openflank/fire/internal/domain/model"
	"github.com/openflank/fire/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func ptr(v float64) *float64 { return &v }

// memStore is an in-memory FactStore and AlphaProvider for pipeline tests.
type memStore struct {
	facts  []model.WeeklyPlayerFact
	totals []model.TeamWeeklyTotal
	alphas map[model.Position]map[string]float64

	factsErr error
}

func (m *memStore) PlayerWeeks(_ context.Context, season, weekFrom, weekTo int, positions []model.Position, playerIDs []string) ([]model.WeeklyPlayerFact, error) {
	if m.factsErr != nil {
		return nil, m.factsErr
	}
	var out []model.WeeklyPlayerFact
	for _, f := range m.facts {
		if f.Season != season || f.Week < weekFrom || f.Week > weekTo {
			continue
		}
		if len(positions) > 0 && !containsPos(positions, f.Position) {
			continue
		}
		if len(playerIDs) > 0 && !containsStr(playerIDs, f.PlayerID) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (m *memStore) TeamWeeks(_ context.Context, season, weekFrom, weekTo int) ([]model.TeamWeeklyTotal, error) {
	var out []model.TeamWeeklyTotal
	for _, t := range m.totals {
		if t.Season == season && t.Week >= weekFrom && t.Week <= weekTo {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) Alphas(_ context.Context, _, _ int, position model.Position) (map[string]float64, error) {
	return m.alphas[position], nil
}

func containsPos(ps []model.Position, p model.Position) bool {
	for _, x := range ps {
		if x == p {
			return true
		}
	}
	return false
}

func containsStr(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

// seasonStore builds a store with a small but complete week 5-8 slate:
// three receivers, two backs, and one quarterback, all on one team.
func seasonStore() *memStore {
	m := &memStore{alphas: map[model.Position]map[string]float64{
		model.PositionWR: {"wr1": 80, "wr2": 50, "wr3": 20},
		model.PositionRB: {"rb1": 70, "rb2": 30},
	}}

	type slate struct {
		id    string
		pos   model.Position
		snaps float64
		ep    float64
	}
	players := []slate{
		{"wr1", model.PositionWR, 60, 14},
		{"wr2", model.PositionWR, 55, 11},
		{"wr3", model.PositionWR, 50, 8},
		{"rb1", model.PositionRB, 45, 13},
		{"rb2", model.PositionRB, 30, 9},
		{"qb1", model.PositionQB, 65, 20},
	}
	for wk := 5; wk <= 8; wk++ {
		for _, p := range players {
			f := model.WeeklyPlayerFact{
				PlayerID: p.id,
				Name:     "Player " + p.id,
				Team:     "KC",
				Position: p.pos,
				Season:   2024,
				Week:     wk,
				Snaps:    ptr(p.snaps),
				Targets:  ptr(6),
				Carries:  ptr(4),

				RedZoneTouches:     ptr(2),
				ExpectedPoints:     ptr(p.ep),
				PointsOverExpected: ptr(p.ep / 10),
			}
			if p.pos == model.PositionQB {
				f.Dropbacks = ptr(35)
				f.RedZoneDropbacks = ptr(4)
				f.PassExpectedPoints = ptr(p.ep * 0.8)
				f.RushExpectedPoints = ptr(p.ep * 0.2)
			}
			m.facts = append(m.facts, f)
		}
		m.totals = append(m.totals, model.TeamWeeklyTotal{
			Team: "KC", Season: 2024, Week: wk,
			RushAttempts: 26, Targets: 34, Snaps: 65,
			RedZoneTouches: 8, Dropbacks: 36, RedZoneDropbacks: 5,
		})
	}
	return m
}

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestService_ScoreBatch(t *testing.T) {
	Convey("Given a service over a seeded fact store", t, func() {
		ctx := context.Background()
		store := seasonStore()
		svc := service.New(store, store)

		Convey("When the query parameters are invalid", func() {
			cases := []struct {
				q     service.ScoreQuery
				field string
			}{
				{service.ScoreQuery{Season: 0, AnchorWeek: 8}, "season"},
				{service.ScoreQuery{Season: 2024, AnchorWeek: 0}, "anchorWeek"},
				{service.ScoreQuery{Season: 2024, AnchorWeek: 19}, "anchorWeek"},
			}

			Convey("Then a validation error names the offending field", func() {
				for _, c := range cases {
					_, _, err := svc.ScoreBatch(ctx, c.q)
					So(errors.Is(err, service.ErrValidation), ShouldBeTrue)
					var ve *service.ValidationError
					So(errors.As(err, &ve), ShouldBeTrue)
					So(ve.Field, ShouldEqual, c.field)
				}
			})
		})

		Convey("When scoring all pools at week 8", func() {
			meta, scores, err := svc.ScoreBatch(ctx, service.ScoreQuery{Season: 2024, AnchorWeek: 8})

			Convey("Then every known player is scored", func() {
				So(err, ShouldBeNil)
				So(scores, ShouldHaveLength, 6)
			})

			Convey("Then the metadata echoes the resolved window", func() {
				So(meta.Season, ShouldEqual, 2024)
				So(meta.AnchorWeek, ShouldEqual, 8)
				So(meta.Window.Start, ShouldEqual, 5)
				So(meta.Window.Width, ShouldEqual, 4)
				So(meta.ScoringPreset, ShouldEqual, model.PresetRedraft)
				So(meta.Thresholds["RB"], ShouldEqual, 50.0)
				So(meta.Thresholds["WR"], ShouldEqual, 80.0)
			})

			Convey("Then ranks never cross position pools", func() {
				byPos := make(map[model.Position][]int)
				for _, sc := range scores {
					So(sc.Eligible, ShouldBeTrue)
					So(sc.FireRank, ShouldNotBeNil)
					byPos[sc.Position] = append(byPos[sc.Position], *sc.FireRank)
				}
				So(byPos[model.PositionWR], ShouldContain, 1)
				So(byPos[model.PositionWR], ShouldContain, 3)
				So(byPos[model.PositionRB], ShouldContain, 1)
				So(byPos[model.PositionRB], ShouldContain, 2)
				So(byPos[model.PositionQB], ShouldResemble, []int{1})
			})

			Convey("Then the best receiver outranks the rest", func() {
				for _, sc := range scores {
					if sc.PlayerID == "wr1" {
						So(*sc.FireRank, ShouldEqual, 1)
					}
				}
			})
		})

		Convey("When filtering to one position", func() {
			pos := model.PositionRB
			_, scores, err := svc.ScoreBatch(ctx, service.ScoreQuery{Season: 2024, AnchorWeek: 8, Position: &pos})

			Convey("Then only that pool is computed", func() {
				So(err, ShouldBeNil)
				So(scores, ShouldHaveLength, 2)
				for _, sc := range scores {
					So(sc.Position, ShouldEqual, model.PositionRB)
				}
			})
		})

		Convey("When no facts exist for the requested week", func() {
			_, scores, err := svc.ScoreBatch(ctx, service.ScoreQuery{Season: 2024, AnchorWeek: 18})

			Convey("Then the result is empty, not an error", func() {
				So(err, ShouldBeNil)
				So(scores, ShouldBeEmpty)
			})
		})

		Convey("When the fact store fails", func() {
			store.factsErr = errors.New("disk on fire")
			_, _, err := svc.ScoreBatch(ctx, service.ScoreQuery{Season: 2024, AnchorWeek: 8})

			Convey("Then the failure propagates", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestService_ScorePlayer(t *testing.T) {
	Convey("Given a service over a seeded fact store", t, func() {
		ctx := context.Background()
		store := seasonStore()
		svc := service.New(store, store)

		Convey("When scoring a known player", func() {
			meta, score, err := svc.ScorePlayer(ctx, 2024, 8, "wr2", model.PresetRedraft)

			Convey("Then the single score is returned with metadata", func() {
				So(err, ShouldBeNil)
				So(score.PlayerID, ShouldEqual, "wr2")
				So(score.Eligible, ShouldBeTrue)
				So(score.FireScore, ShouldNotBeNil)
				So(meta.AnchorWeek, ShouldEqual, 8)
			})
		})

		Convey("When scoring an unknown player", func() {
			_, score, err := svc.ScorePlayer(ctx, 2024, 8, "ghost", model.PresetRedraft)

			Convey("Then an ineligible shape comes back, not an error", func() {
				So(err, ShouldBeNil)
				So(score.PlayerID, ShouldEqual, "ghost")
				So(score.Eligible, ShouldBeFalse)
				So(score.FireScore, ShouldBeNil)
				So(score.Confidence, ShouldEqual, model.ConfidenceLow)
			})
		})
	})
}

func TestService_DeltaBatch(t *testing.T) {
	Convey("Given a service over a seeded fact store", t, func() {
		ctx := context.Background()
		store := seasonStore()
		svc := service.New(store, store)

		Convey("When requesting the QB pool", func() {
			pos := model.PositionQB
			_, _, _, err := svc.DeltaBatch(ctx, service.DeltaQuery{Season: 2024, AnchorWeek: 8, Position: &pos})

			Convey("Then it is rejected as a validation error", func() {
				So(errors.Is(err, service.ErrValidation), ShouldBeTrue)
			})
		})

		Convey("When requesting all covered pools", func() {
			meta, signals, total, err := svc.DeltaBatch(ctx, service.DeltaQuery{Season: 2024, AnchorWeek: 8})

			Convey("Then signals cover RB/WR/TE players with alphas", func() {
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 5)
				So(signals, ShouldHaveLength, 5)
				for _, sig := range signals {
					So(sig.Position, ShouldNotEqual, model.PositionQB)
				}
			})

			Convey("Then signals sort by descending absolute divergence", func() {
				for i := 1; i < len(signals); i++ {
					So(abs(signals[i-1].RankZ), ShouldBeGreaterThanOrEqualTo, abs(signals[i].RankZ))
				}
			})

			Convey("Then metadata spans the compared pools", func() {
				So(meta.Thresholds, ShouldContainKey, "RB")
				So(meta.Thresholds, ShouldContainKey, "WR")
				So(meta.Thresholds, ShouldContainKey, "TE")
				So(meta.Thresholds, ShouldNotContainKey, "QB")
			})
		})

		Convey("When paginating", func() {
			_, page1, total, err := svc.DeltaBatch(ctx, service.DeltaQuery{Season: 2024, AnchorWeek: 8, Limit: 2})
			So(err, ShouldBeNil)
			_, page2, _, err := svc.DeltaBatch(ctx, service.DeltaQuery{Season: 2024, AnchorWeek: 8, Limit: 2, Offset: 2})
			So(err, ShouldBeNil)

			Convey("Then pages partition the sorted signals", func() {
				So(total, ShouldEqual, 5)
				So(page1, ShouldHaveLength, 2)
				So(page2, ShouldHaveLength, 2)
				So(page1[0].PlayerID, ShouldNotEqual, page2[0].PlayerID)
			})

			Convey("Then an offset past the end yields an empty page", func() {
				_, page, _, err := svc.DeltaBatch(ctx, service.DeltaQuery{Season: 2024, AnchorWeek: 8, Offset: 50})
				So(err, ShouldBeNil)
				So(page, ShouldBeEmpty)
			})
		})

		Convey("When a player has no long-horizon alpha", func() {
			delete(store.alphas[model.PositionWR], "wr3")
			_, signals, total, err := svc.DeltaBatch(ctx, service.DeltaQuery{Season: 2024, AnchorWeek: 8})

			Convey("Then that player is silently skipped", func() {
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 4)
				for _, sig := range signals {
					So(sig.PlayerID, ShouldNotEqual, "wr3")
				}
			})
		})
	})
}

func TestService_DeltaTrend(t *testing.T) {
	Convey("Given a service over a seeded fact store", t, func() {
		ctx := context.Background()
		store := seasonStore()
		svc := service.New(store, store)

		Convey("When the week range is inverted", func() {
			_, _, err := svc.DeltaTrend(ctx, 2024, "wr1", 8, 6)

			Convey("Then a validation error is returned", func() {
				So(errors.Is(err, service.ErrValidation), ShouldBeTrue)
			})
		})

		Convey("When a trend bound is out of range", func() {
			cases := []struct {
				from, to int
				field    string
			}{
				{0, 8, "weekFrom"},
				{6, 19, "weekTo"},
			}

			Convey("Then the error names the offending bound", func() {
				for _, c := range cases {
					_, _, err := svc.DeltaTrend(ctx, 2024, "wr1", c.from, c.to)
					So(errors.Is(err, service.ErrValidation), ShouldBeTrue)
					var ve *service.ValidationError
					So(errors.As(err, &ve), ShouldBeTrue)
					So(ve.Field, ShouldEqual, c.field)
				}
			})
		})

		Convey("When tracing a covered player across weeks", func() {
			meta, points, err := svc.DeltaTrend(ctx, 2024, "wr1", 6, 8)

			Convey("Then one point per anchor week, ascending", func() {
				So(err, ShouldBeNil)
				So(points, ShouldHaveLength, 3)
				So(points[0].AnchorWeek, ShouldEqual, 6)
				So(points[2].AnchorWeek, ShouldEqual, 8)
				for _, p := range points {
					So(p.PlayerID, ShouldEqual, "wr1")
				}
				So(meta.Season, ShouldEqual, 2024)
			})
		})

		Convey("When tracing an unknown player", func() {
			_, points, err := svc.DeltaTrend(ctx, 2024, "ghost", 6, 8)

			Convey("Then the trend is empty, not an error", func() {
				So(err, ShouldBeNil)
				So(points, ShouldBeEmpty)
			})
		})

		Convey("When tracing a quarterback", func() {
			_, points, err := svc.DeltaTrend(ctx, 2024, "qb1", 6, 8)

			Convey("Then the pool is not covered and the trend is empty", func() {
				So(err, ShouldBeNil)
				So(points, ShouldBeEmpty)
			})
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a service that has handled requests", t, func() {
		ctx := context.Background()
		store := seasonStore()
		svc := service.New(store, store)

		_, _, err := svc.ScoreBatch(ctx, service.ScoreQuery{Season: 2024, AnchorWeek: 8})
		So(err, ShouldBeNil)

		Convey("When reading the stats snapshot", func() {
			stats := svc.GetStats()

			Convey("Then counters reflect the traffic", func() {
				So(stats["requests_total"], ShouldEqual, int64(1))
				So(stats["players_scored_total"], ShouldEqual, int64(6))
				So(stats, ShouldContainKey, "uptime_seconds")
			})
		})
	})

	Convey("Given a service that has handled one unfiltered delta request", t, func() {
		ctx := context.Background()
		store := seasonStore()
		svc := service.New(store, store)

		_, _, _, err := svc.DeltaBatch(ctx, service.DeltaQuery{Season: 2024, AnchorWeek: 8})
		So(err, ShouldBeNil)

		Convey("When reading the stats snapshot", func() {
			stats := svc.GetStats()

			Convey("Then the request counts once despite spanning three pools", func() {
				So(stats["requests_total"], ShouldEqual, int64(1))
			})
		})
	})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
