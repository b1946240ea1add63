package seed

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/openflank/fire/internal/adapters/repository"
	"github.com/openflank/fire/internal/domain/model"
	"github.com/openflank/fire/pkg/logger"
)

// Run generates a synthetic season and writes it to the SQLite store.
func Run(ctx context.Context, cfg *Config) (Stats, error) {
	var stats Stats
	if cfg.Teams < 2 {
		return stats, fmt.Errorf("at least 2 teams required, got %d", cfg.Teams)
	}
	if cfg.Weeks < 1 || cfg.Weeks > 18 {
		return stats, fmt.Errorf("weeks must be in [1,18], got %d", cfg.Weeks)
	}

	store, err := repository.OpenSQLite(cfg.DBPath)
	if err != nil {
		return stats, err
	}
	defer func() {
		_ = store.Close()
	}()

	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // deterministic seed for reproducible data
	players := buildRosters(rng, cfg.Teams)
	stats.Players = len(players)

	log := logger.Get().Named("seed")
	log.Info(ctx, "generating synthetic season",
		logger.Int("season", cfg.Season),
		logger.Int("teams", cfg.Teams),
		logger.Int("weeks", cfg.Weeks),
		logger.Int("players", len(players)))

	for week := 1; week <= cfg.Weeks; week++ {
		var weekFacts []model.WeeklyPlayerFact
		for _, p := range players {
			f, ok := weekFact(rng, p, cfg.Season, week)
			if !ok {
				continue
			}
			weekFacts = append(weekFacts, f)
			if err := store.UpsertPlayerWeek(ctx, f); err != nil {
				return stats, err
			}
			stats.FactRows++
		}
		for t := 0; t < cfg.Teams; t++ {
			team := fmt.Sprintf("TM%02d", t+1)
			total := teamTotal(weekFacts, team, cfg.Season, week)
			if err := store.UpsertTeamWeek(ctx, total); err != nil {
				return stats, err
			}
			stats.TeamRows++
		}
		for _, p := range players {
			if err := store.UpsertAlpha(ctx, p.id, cfg.Season, week, p.position, alpha(rng, p)); err != nil {
				return stats, err
			}
			stats.AlphaRows++
		}
	}

	log.Info(ctx, "seed complete",
		logger.Int("factRows", stats.FactRows),
		logger.Int("teamRows", stats.TeamRows),
		logger.Int("alphaRows", stats.AlphaRows))
	return stats, nil
}
