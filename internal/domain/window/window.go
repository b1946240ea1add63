// Package window assembles trailing-window aggregates from weekly facts
// and resolves team-relative shares against team weekly totals.
package window

import (
	"sort"

	"github.com/openflank/fire/internal/domain/model"
)

// Default aggregation constants.
const (
	defaultWindowWeeks = 4
	minWeek            = 1
	maxWeek            = 18
)

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithWindowWeeks overrides the trailing window width cap.
func WithWindowWeeks(n int) Option {
	return func(a *Aggregator) {
		if n > 0 && n <= defaultWindowWeeks {
			a.windowWeeks = n
		}
	}
}

// Aggregator sums weekly facts over a trailing window anchored at a
// requested week. It is stateless across calls.
type Aggregator struct {
	windowWeeks int
}

// New creates an Aggregator with configuration options.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{windowWeeks: defaultWindowWeeks}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Bounds returns the window start and effective width for an anchor week,
// clamped to season start.
func (a *Aggregator) Bounds(anchorWeek int) (start, width int) {
	start = anchorWeek - (a.windowWeeks - 1)
	if start < minWeek {
		start = minWeek
	}
	return start, anchorWeek - start + 1
}

// shareAccum accumulates one share family's numerator and denominator
// across qualifying weeks. Weeks with a zero team denominator never
// qualify; a share with no qualifying weeks resolves to nil, not zero.
type shareAccum struct {
	num   float64
	den   float64
	weeks int
}

func (s *shareAccum) add(playerCount *float64, teamTotal float64) {
	if teamTotal <= 0 {
		return
	}
	if playerCount != nil {
		s.num += *playerCount
	}
	s.den += teamTotal
	s.weeks++
}

func (s *shareAccum) share() *float64 {
	if s.weeks == 0 || s.den <= 0 {
		return nil
	}
	v := s.num / s.den * 100
	return &v
}

type accum struct {
	agg *model.WindowAggregate

	weeksPresent map[int]struct{}

	rush        shareAccum
	target      shareAccum
	redZone     shareAccum
	snap        shareAccum
	dropback    shareAccum
	rzDropback  shareAccum
	routePctSum float64
	routePctN   int
}

// Aggregate builds one WindowAggregate per player that has at least one
// fact row inside the window. Anchor weeks outside [1,18] and unknown
// players simply produce no output.
func (a *Aggregator) Aggregate(season, anchorWeek int, facts []model.WeeklyPlayerFact, totals []model.TeamWeeklyTotal) []*model.WindowAggregate {
	if anchorWeek < minWeek || anchorWeek > maxWeek {
		return nil
	}
	start, width := a.Bounds(anchorWeek)

	teamWeek := make(map[string]map[int]model.TeamWeeklyTotal, len(totals))
	for _, t := range totals {
		if t.Season != season {
			continue
		}
		if teamWeek[t.Team] == nil {
			teamWeek[t.Team] = make(map[int]model.TeamWeeklyTotal, width)
		}
		teamWeek[t.Team][t.Week] = t
	}

	byPlayer := make(map[string]*accum)
	var order []string // preserves insertion order for stable downstream sorts

	for _, f := range facts {
		if f.Season != season || f.Week < start || f.Week > anchorWeek {
			continue
		}
		acc, ok := byPlayer[f.PlayerID]
		if !ok {
			acc = &accum{
				agg: &model.WindowAggregate{
					PlayerID:    f.PlayerID,
					Name:        f.Name,
					Team:        f.Team,
					Position:    f.Position,
					Season:      season,
					AnchorWeek:  anchorWeek,
					WindowStart: start,
					WindowWidth: width,
				},
				weeksPresent: make(map[int]struct{}, width),
			}
			byPlayer[f.PlayerID] = acc
			order = append(order, f.PlayerID)
		}
		addFact(acc, f, teamWeek)
	}

	out := make([]*model.WindowAggregate, 0, len(order))
	for _, id := range order {
		acc := byPlayer[id]
		finish(acc)
		out = append(out, acc.agg)
	}
	return out
}

func addFact(acc *accum, f model.WeeklyPlayerFact, teamWeek map[string]map[int]model.TeamWeeklyTotal) {
	agg := acc.agg
	// Track latest team/name in case of midseason moves.
	agg.Team = f.Team
	if f.Name != "" {
		agg.Name = f.Name
	}

	agg.Snaps += deref(f.Snaps)
	agg.Targets += deref(f.Targets)
	agg.Routes += deref(f.Routes)
	agg.Carries += deref(f.Carries)
	agg.RedZoneTouches += deref(f.RedZoneTouches)
	agg.AirYards += deref(f.AirYards)
	agg.Dropbacks += deref(f.Dropbacks)
	agg.RedZoneDropbacks += deref(f.RedZoneDropbacks)
	agg.ExpectedPoints += deref(f.ExpectedPoints)
	agg.PointsOverExpected += deref(f.PointsOverExpected)
	agg.PassExpectedPoints += deref(f.PassExpectedPoints)
	agg.RushExpectedPoints += deref(f.RushExpectedPoints)

	if f.Snaps != nil {
		agg.HasSnapData = true
	}
	if f.RouteParticipation != nil {
		acc.routePctSum += *f.RouteParticipation
		acc.routePctN++
	}
	if present(f) {
		acc.weeksPresent[f.Week] = struct{}{}
	}

	if t, ok := teamWeek[f.Team][f.Week]; ok {
		acc.rush.add(f.Carries, t.RushAttempts)
		acc.target.add(f.Targets, t.Targets)
		acc.redZone.add(f.RedZoneTouches, t.RedZoneTouches)
		acc.snap.add(f.Snaps, t.Snaps)
		acc.dropback.add(f.Dropbacks, t.Dropbacks)
		acc.rzDropback.add(f.RedZoneDropbacks, t.RedZoneDropbacks)
	}
}

// present reports whether the row carries nonzero workload. When snap
// data is entirely absent for the row, targets+carries act as a
// last-resort presence signal.
func present(f model.WeeklyPlayerFact) bool {
	if f.Snaps != nil && *f.Snaps > 0 {
		return true
	}
	if f.Dropbacks != nil && *f.Dropbacks > 0 {
		return true
	}
	if f.Snaps == nil && deref(f.Targets)+deref(f.Carries) > 0 {
		return true
	}
	return false
}

func finish(acc *accum) {
	agg := acc.agg
	weeks := make([]int, 0, len(acc.weeksPresent))
	for w := range acc.weeksPresent {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	agg.WeeksPresent = weeks
	agg.GamesPlayed = len(weeks)

	if acc.routePctN > 0 {
		v := acc.routePctSum / float64(acc.routePctN)
		agg.RouteParticipationAvg = &v
	}
	agg.RushShare = acc.rush.share()
	agg.TargetShare = acc.target.share()
	agg.RedZoneShare = acc.redZone.share()
	agg.SnapShare = acc.snap.share()
	agg.DropbackShare = acc.dropback.share()
	agg.RedZoneDropbackShare = acc.rzDropback.share()
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
