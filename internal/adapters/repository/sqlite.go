package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openflank/fire/internal/domain/model"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements FactStore and AlphaProvider over a local SQLite
// database. Single writer; WAL allows concurrent readers.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at dbPath. An empty dbPath
// defaults to $TMPDIR/fire/facts.db.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "fire", "facts.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data directory: %w", ErrOpenStore, err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenStore, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("%w: set WAL mode: %w", ErrOpenStore, err)
	}
	s := &SQLiteStore{db: db}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("%w: create tables: %w", ErrOpenStore, err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS weekly_player_facts (
			player_id            TEXT NOT NULL,
			name                 TEXT NOT NULL DEFAULT '',
			team                 TEXT NOT NULL,
			position             TEXT NOT NULL,
			season               INTEGER NOT NULL,
			week                 INTEGER NOT NULL,
			snaps                REAL,
			targets              REAL,
			routes               REAL,
			route_participation  REAL,
			carries              REAL,
			red_zone_touches     REAL,
			air_yards            REAL,
			expected_points      REAL,
			points_over_expected REAL,
			dropbacks            REAL,
			red_zone_dropbacks   REAL,
			pass_expected_points REAL,
			rush_expected_points REAL,
			PRIMARY KEY (player_id, season, week)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_facts_season_week ON weekly_player_facts(season, week)`,
		`CREATE INDEX IF NOT EXISTS idx_facts_position ON weekly_player_facts(season, position)`,
		`CREATE TABLE IF NOT EXISTS team_weekly_totals (
			team               TEXT NOT NULL,
			season             INTEGER NOT NULL,
			week               INTEGER NOT NULL,
			rush_attempts      REAL NOT NULL DEFAULT 0,
			targets            REAL NOT NULL DEFAULT 0,
			snaps              REAL NOT NULL DEFAULT 0,
			red_zone_touches   REAL NOT NULL DEFAULT 0,
			dropbacks          REAL NOT NULL DEFAULT 0,
			red_zone_dropbacks REAL NOT NULL DEFAULT 0,
			PRIMARY KEY (team, season, week)
		)`,
		`CREATE TABLE IF NOT EXISTS forge_alpha (
			player_id    TEXT NOT NULL,
			season       INTEGER NOT NULL,
			through_week INTEGER NOT NULL,
			position     TEXT NOT NULL,
			alpha        REAL NOT NULL,
			PRIMARY KEY (player_id, season, through_week)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alpha_pool ON forge_alpha(season, through_week, position)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

const factCols = `player_id, name, team, position, season, week,
	snaps, targets, routes, route_participation, carries, red_zone_touches, air_yards,
	expected_points, points_over_expected,
	dropbacks, red_zone_dropbacks, pass_expected_points, rush_expected_points`

// PlayerWeeks implements FactStore with a single batched query.
func (s *SQLiteStore) PlayerWeeks(ctx context.Context, season, weekFrom, weekTo int, positions []model.Position, playerIDs []string) ([]model.WeeklyPlayerFact, error) {
	q := `SELECT ` + factCols + ` FROM weekly_player_facts
		WHERE season = ? AND week BETWEEN ? AND ?`
	args := []any{season, weekFrom, weekTo}
	if len(positions) > 0 {
		q += ` AND position IN (` + placeholders(len(positions)) + `)`
		for _, p := range positions {
			args = append(args, string(p))
		}
	}
	if len(playerIDs) > 0 {
		q += ` AND player_id IN (` + placeholders(len(playerIDs)) + `)`
		for _, id := range playerIDs {
			args = append(args, id)
		}
	}
	q += ` ORDER BY player_id, week`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: player weeks: %w", ErrQuery, err)
	}
	defer rows.Close()

	var facts []model.WeeklyPlayerFact
	for rows.Next() {
		f, err := scanFact(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan fact: %w", ErrQuery, err)
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

// TeamWeeks implements FactStore.
func (s *SQLiteStore) TeamWeeks(ctx context.Context, season, weekFrom, weekTo int) ([]model.TeamWeeklyTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT team, season, week, rush_attempts, targets, snaps,
		       red_zone_touches, dropbacks, red_zone_dropbacks
		FROM team_weekly_totals
		WHERE season = ? AND week BETWEEN ? AND ?`, season, weekFrom, weekTo)
	if err != nil {
		return nil, fmt.Errorf("%w: team weeks: %w", ErrQuery, err)
	}
	defer rows.Close()

	var totals []model.TeamWeeklyTotal
	for rows.Next() {
		var t model.TeamWeeklyTotal
		if err := rows.Scan(&t.Team, &t.Season, &t.Week, &t.RushAttempts, &t.Targets,
			&t.Snaps, &t.RedZoneTouches, &t.Dropbacks, &t.RedZoneDropbacks); err != nil {
			return nil, fmt.Errorf("%w: scan team total: %w", ErrQuery, err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// Alphas implements AlphaProvider.
func (s *SQLiteStore) Alphas(ctx context.Context, season, throughWeek int, position model.Position) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT player_id, alpha FROM forge_alpha
		WHERE season = ? AND through_week = ? AND position = ?`,
		season, throughWeek, string(position))
	if err != nil {
		return nil, fmt.Errorf("%w: alphas: %w", ErrQuery, err)
	}
	defer rows.Close()

	alphas := make(map[string]float64)
	for rows.Next() {
		var id string
		var a float64
		if err := rows.Scan(&id, &a); err != nil {
			return nil, fmt.Errorf("%w: scan alpha: %w", ErrQuery, err)
		}
		alphas[id] = a
	}
	return alphas, rows.Err()
}

// UpsertPlayerWeek writes one fact row. Used by the seed tool and tests;
// the engine itself is read-only against this table.
func (s *SQLiteStore) UpsertPlayerWeek(ctx context.Context, f model.WeeklyPlayerFact) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO weekly_player_facts (`+factCols+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		f.PlayerID, f.Name, f.Team, string(f.Position), f.Season, f.Week,
		nullable(f.Snaps), nullable(f.Targets), nullable(f.Routes), nullable(f.RouteParticipation),
		nullable(f.Carries), nullable(f.RedZoneTouches), nullable(f.AirYards),
		nullable(f.ExpectedPoints), nullable(f.PointsOverExpected),
		nullable(f.Dropbacks), nullable(f.RedZoneDropbacks),
		nullable(f.PassExpectedPoints), nullable(f.RushExpectedPoints))
	if err != nil {
		return fmt.Errorf("%w: upsert player week: %w", ErrQuery, err)
	}
	return nil
}

// UpsertTeamWeek writes one team total row.
func (s *SQLiteStore) UpsertTeamWeek(ctx context.Context, t model.TeamWeeklyTotal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO team_weekly_totals
			(team, season, week, rush_attempts, targets, snaps,
			 red_zone_touches, dropbacks, red_zone_dropbacks)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		t.Team, t.Season, t.Week, t.RushAttempts, t.Targets, t.Snaps,
		t.RedZoneTouches, t.Dropbacks, t.RedZoneDropbacks)
	if err != nil {
		return fmt.Errorf("%w: upsert team week: %w", ErrQuery, err)
	}
	return nil
}

// UpsertAlpha writes one long-horizon alpha row.
func (s *SQLiteStore) UpsertAlpha(ctx context.Context, playerID string, season, throughWeek int, position model.Position, alpha float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO forge_alpha (player_id, season, through_week, position, alpha)
		VALUES (?,?,?,?,?)`,
		playerID, season, throughWeek, string(position), alpha)
	if err != nil {
		return fmt.Errorf("%w: upsert alpha: %w", ErrQuery, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFact(sc scanner) (model.WeeklyPlayerFact, error) {
	var f model.WeeklyPlayerFact
	var pos string
	var snaps, targets, routes, routePct, carries, rzTouches, airYards sql.NullFloat64
	var ep, poe, dropbacks, rzDropbacks, passEP, rushEP sql.NullFloat64

	err := sc.Scan(&f.PlayerID, &f.Name, &f.Team, &pos, &f.Season, &f.Week,
		&snaps, &targets, &routes, &routePct, &carries, &rzTouches, &airYards,
		&ep, &poe, &dropbacks, &rzDropbacks, &passEP, &rushEP)
	if err != nil {
		return f, err
	}
	f.Position = model.Position(pos)
	f.Snaps = fromNull(snaps)
	f.Targets = fromNull(targets)
	f.Routes = fromNull(routes)
	f.RouteParticipation = fromNull(routePct)
	f.Carries = fromNull(carries)
	f.RedZoneTouches = fromNull(rzTouches)
	f.AirYards = fromNull(airYards)
	f.ExpectedPoints = fromNull(ep)
	f.PointsOverExpected = fromNull(poe)
	f.Dropbacks = fromNull(dropbacks)
	f.RedZoneDropbacks = fromNull(rzDropbacks)
	f.PassExpectedPoints = fromNull(passEP)
	f.RushExpectedPoints = fromNull(rushEP)
	return f, nil
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
