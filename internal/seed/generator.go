package seed

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/openflank/fire/internal/domain/model"
)

// player is one synthetic roster entry. Quality drives both usage and
// the long-horizon alpha so divergence signals show up in seeded data.
type player struct {
	id       string
	name     string
	team     string
	position model.Position
	// quality in [0,1]; depth-chart slot sets the baseline.
	quality float64
}

func buildRosters(rng *rand.Rand, teams int) []player {
	var players []player
	for t := 0; t < teams; t++ {
		team := fmt.Sprintf("TM%02d", t+1)
		addSlots := func(pos model.Position, count int) {
			for slot := 0; slot < count; slot++ {
				// Depth slot 0 is the starter; quality decays down the chart.
				q := 0.9 - 0.22*float64(slot) + rng.Float64()*0.1
				if q < 0.05 {
					q = 0.05
				}
				players = append(players, player{
					id:       uuid.NewString(),
					name:     fmt.Sprintf("%s %s%d", team, pos, slot+1),
					team:     team,
					position: pos,
					quality:  q,
				})
			}
		}
		addSlots(model.PositionQB, qbPerTeam)
		addSlots(model.PositionRB, rbPerTeam)
		addSlots(model.PositionWR, wrPerTeam)
		addSlots(model.PositionTE, tePerTeam)
	}
	return players
}

// weekFact builds one weekly fact row for a player. Roughly 6% of
// player-weeks are missed games and produce no row.
func weekFact(rng *rand.Rand, p player, season, week int) (model.WeeklyPlayerFact, bool) {
	if rng.Float64() < 0.06 {
		return model.WeeklyPlayerFact{}, false
	}
	jitter := func(base, spread float64) float64 {
		v := base*p.quality + (rng.Float64()-0.5)*spread
		if v < 0 {
			v = 0
		}
		return v
	}
	f := model.WeeklyPlayerFact{
		PlayerID: p.id,
		Name:     p.name,
		Team:     p.team,
		Position: p.position,
		Season:   season,
		Week:     week,
	}
	switch p.position {
	case model.PositionQB:
		f.Snaps = ptr(jitter(68, 10))
		f.Dropbacks = ptr(jitter(38, 8))
		f.Carries = ptr(jitter(5, 4))
		f.RedZoneDropbacks = ptr(jitter(4, 3))
		f.PassExpectedPoints = ptr(jitter(16, 6))
		f.RushExpectedPoints = ptr(jitter(3, 3))
		f.ExpectedPoints = ptr(*f.PassExpectedPoints + *f.RushExpectedPoints)
		f.PointsOverExpected = ptr((rng.Float64() - 0.5) * 8)
	case model.PositionRB:
		f.Snaps = ptr(jitter(45, 12))
		f.Carries = ptr(jitter(14, 6))
		f.Targets = ptr(jitter(4, 3))
		f.RedZoneTouches = ptr(jitter(3, 2))
		f.ExpectedPoints = ptr(jitter(11, 5))
		f.PointsOverExpected = ptr((rng.Float64() - 0.5) * 6)
	default: // WR, TE
		f.Snaps = ptr(jitter(52, 14))
		f.Routes = ptr(jitter(32, 10))
		f.Targets = ptr(jitter(7, 4))
		f.RedZoneTouches = ptr(jitter(1.5, 1.5))
		f.AirYards = ptr(jitter(80, 40))
		f.ExpectedPoints = ptr(jitter(10, 5))
		f.PointsOverExpected = ptr((rng.Float64() - 0.5) * 6)
		// Route participation is the preferred source but not always
		// tracked; drop it sometimes so fallbacks get exercised.
		if rng.Float64() < 0.85 {
			f.RouteParticipation = ptr(60*p.quality + rng.Float64()*20)
		}
	}
	return f, true
}

// teamTotal aggregates a team's weekly facts into share denominators,
// padded for the roster depth the generator does not model.
func teamTotal(facts []model.WeeklyPlayerFact, team string, season, week int) model.TeamWeeklyTotal {
	t := model.TeamWeeklyTotal{Team: team, Season: season, Week: week, Snaps: 65}
	for _, f := range facts {
		if f.Team != team || f.Week != week {
			continue
		}
		t.RushAttempts += val(f.Carries)
		t.Targets += val(f.Targets)
		t.RedZoneTouches += val(f.RedZoneTouches)
		t.Dropbacks += val(f.Dropbacks)
		t.RedZoneDropbacks += val(f.RedZoneDropbacks)
	}
	return t
}

// alpha derives a long-horizon score loosely correlated with quality,
// with enough noise that FIRE and FORGE disagree on some players.
func alpha(rng *rand.Rand, p player) float64 {
	return p.quality*100 + (rng.Float64()-0.5)*30
}

func ptr(v float64) *float64 { return &v }

func val(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
