// Package seed generates a synthetic season of weekly facts so the
// service can run end-to-end against a local database.
package seed

// Config holds configuration for a seed run.
type Config struct {
	DBPath string // SQLite database path
	Season int    // season to generate
	Teams  int    // number of teams
	Weeks  int    // weeks of facts to generate
	Seed   int64  // RNG seed for reproducible data
}

// Stats holds seed run statistics.
type Stats struct {
	Players   int
	FactRows  int
	TeamRows  int
	AlphaRows int
}

// Roster slots generated per team.
const (
	qbPerTeam = 2
	rbPerTeam = 4
	wrPerTeam = 6
	tePerTeam = 3
)
