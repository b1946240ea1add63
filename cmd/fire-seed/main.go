package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/openflank/fire/internal/seed"
	"github.com/openflank/fire/pkg/logger"
)

// Default configuration constants.
const (
	defaultSeason  = 2024
	defaultTeams   = 12
	defaultWeeks   = 14
	defaultSeed    = 42
	defaultTimeout = 5 * time.Minute
)

func main() {
	var (
		dbPath = flag.String("db", "", "SQLite database path (default: $TMPDIR/fire/facts.db)")
		season = flag.Int("season", defaultSeason, "Season to generate")
		teams  = flag.Int("teams", defaultTeams, "Number of teams")
		weeks  = flag.Int("weeks", defaultWeeks, "Weeks of facts to generate")
		seedV  = flag.Int64("seed", defaultSeed, "RNG seed for reproducible data")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	cfg := &seed.Config{
		DBPath: *dbPath,
		Season: *season,
		Teams:  *teams,
		Weeks:  *weeks,
		Seed:   *seedV,
	}
	if _, err := seed.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("seed failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
