// Package repository defines the fact store contracts and errors.
package repository

import (
	"context"

	"github.com/openflank/fire/internal/domain/model"
)

// FactStore supplies already-materialized weekly facts. Implementations
// must answer a whole window in one query per table so a request never
// degrades into per-player round-trips.
type FactStore interface {
	// PlayerWeeks returns fact rows for [weekFrom, weekTo]. Empty
	// positions or playerIDs mean no filter on that dimension.
	PlayerWeeks(ctx context.Context, season, weekFrom, weekTo int, positions []model.Position, playerIDs []string) ([]model.WeeklyPlayerFact, error)

	// TeamWeeks returns team totals for [weekFrom, weekTo].
	TeamWeeks(ctx context.Context, season, weekFrom, weekTo int) ([]model.TeamWeeklyTotal, error)
}

// AlphaProvider supplies the externally computed long-horizon alpha the
// delta generator consumes. The engine never recomputes it.
type AlphaProvider interface {
	// Alphas returns player id -> alpha for one position pool as of
	// throughWeek. Missing players are simply absent from the map.
	Alphas(ctx context.Context, season, throughWeek int, position model.Position) (map[string]float64, error)
}
