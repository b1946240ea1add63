// Package model contains domain models passed between layers.
package model

import "fmt"

// Position identifies the player position pool a score is computed within.
// Percentiles and ranks never cross position boundaries.
type Position string

// Supported positions.
const (
	PositionQB Position = "QB"
	PositionRB Position = "RB"
	PositionWR Position = "WR"
	PositionTE Position = "TE"
)

// Positions lists every supported position in processing order.
func Positions() []Position {
	return []Position{PositionQB, PositionRB, PositionWR, PositionTE}
}

// ParsePosition validates a raw position string.
func ParsePosition(s string) (Position, error) {
	switch Position(s) {
	case PositionQB, PositionRB, PositionWR, PositionTE:
		return Position(s), nil
	default:
		return "", fmt.Errorf("unsupported position: %q", s)
	}
}

// ScoringPreset selects the quarterback expected-value weighting profile.
type ScoringPreset string

// Supported scoring presets. Redraft is the default.
const (
	PresetRedraft ScoringPreset = "redraft"
	PresetDynasty ScoringPreset = "dynasty"
)

// ParsePreset validates a raw preset string; empty means redraft.
func ParsePreset(s string) (ScoringPreset, error) {
	switch ScoringPreset(s) {
	case "":
		return PresetRedraft, nil
	case PresetRedraft, PresetDynasty:
		return ScoringPreset(s), nil
	default:
		return "", fmt.Errorf("unsupported scoring preset: %q", s)
	}
}

// WeeklyPlayerFact is one immutable row per (player, week) from the fact
// store. Optional columns are pointers so "not recorded" stays distinct
// from zero.
type WeeklyPlayerFact struct {
	PlayerID string
	Name     string
	Team     string
	Position Position
	Season   int
	Week     int

	Snaps              *float64
	Targets            *float64
	Routes             *float64
	RouteParticipation *float64 // 0-100, directly measured when present
	Carries            *float64
	RedZoneTouches     *float64
	AirYards           *float64

	ExpectedPoints     *float64 // expected fantasy value for the week
	PointsOverExpected *float64 // actual fantasy points minus expected

	// Quarterback-specific facts.
	Dropbacks          *float64
	RedZoneDropbacks   *float64
	PassExpectedPoints *float64
	RushExpectedPoints *float64
}

// TeamWeeklyTotal is one row per (team, week): share denominators.
type TeamWeeklyTotal struct {
	Team   string
	Season int
	Week   int

	RushAttempts     float64
	Targets          float64
	Snaps            float64
	RedZoneTouches   float64
	Dropbacks        float64
	RedZoneDropbacks float64
}

// WindowAggregate is the trailing-window sum of a player's weekly facts,
// anchored at AnchorWeek and clamped to season start.
type WindowAggregate struct {
	PlayerID string
	Name     string
	Team     string
	Position Position
	Season   int

	AnchorWeek  int
	WindowStart int
	WindowWidth int

	// WeeksPresent lists weeks with nonzero workload, ascending.
	// GamesPlayed is its cardinality, never the raw window width.
	WeeksPresent []int
	GamesPlayed  int

	Snaps            float64
	Targets          float64
	Routes           float64
	Carries          float64
	RedZoneTouches   float64
	AirYards         float64
	Dropbacks        float64
	RedZoneDropbacks float64

	ExpectedPoints     float64
	PointsOverExpected float64
	PassExpectedPoints float64
	RushExpectedPoints float64

	// HasSnapData is false when no week in the window recorded snaps,
	// which switches presence detection to a targets+carries proxy.
	HasSnapData bool

	// Direct weekly-rate averages (nil when never recorded).
	RouteParticipationAvg *float64

	// Team-relative shares, 0-100, nil when no week had a nonzero
	// team denominator. A nil share is not a zero share.
	RushShare            *float64
	TargetShare          *float64
	RedZoneShare         *float64
	SnapShare            *float64
	DropbackShare        *float64
	RedZoneDropbackShare *float64
}

// TargetSource tags which fallback branch produced the target rate.
type TargetSource string

// Target-rate sources in fallback order.
const (
	TargetSourceShare    TargetSource = "target_share"
	TargetSourcePerSnap  TargetSource = "targets_per_snap"
	TargetSourcePerRoute TargetSource = "targets_per_route"
	TargetSourceNone     TargetSource = "none"
)

// RouteSource tags which fallback branch produced the route rate.
type RouteSource string

// Route-rate sources in fallback order.
const (
	RouteSourceParticipation RouteSource = "route_participation"
	RouteSourceRaw           RouteSource = "routes"
	RouteSourceNone          RouteSource = "none"
)

// RoleMeta records the role-source resolution outcome for one player.
// It is resolved exactly once, before any weighting occurs.
type RoleMeta struct {
	TargetSource TargetSource `json:"target_source"`
	RouteSource  RouteSource  `json:"route_source"`

	// Resolved rates; nil when the matching source is none.
	TargetRate *float64 `json:"target_rate,omitempty"`
	RouteRate  *float64 `json:"route_rate,omitempty"`

	// WeightRedistributed is set when a missing component's blend
	// weight was renormalized across the remaining components.
	WeightRedistributed bool `json:"weight_redistributed"`
}

// Confidence is a qualitative sample-size tier. Recomputed per query,
// never persisted, and never empty for a classified player.
type Confidence string

// Confidence tiers.
const (
	ConfidenceHigh Confidence = "HIGH"
	ConfidenceMed  Confidence = "MED"
	ConfidenceLow  Confidence = "LOW"
)

// Pillars holds the normalized sub-scores blended into the composite.
// Conversion is nil for quarterbacks: their conversion pillar is an
// explicit known gap, not a data gap.
type Pillars struct {
	Opportunity *float64 `json:"opportunity"`
	Role        *float64 `json:"role"`
	Conversion  *float64 `json:"conversion"`
}

// PlayerScore is the engine's primary output. FireScore and FireRank are
// nil for ineligible players so callers can tell "below threshold" from
// "not found". Computed fresh per request, never cached.
type PlayerScore struct {
	PlayerID   string     `json:"player_id"`
	Name       string     `json:"name,omitempty"`
	Team       string     `json:"team,omitempty"`
	Position   Position   `json:"position"`
	Pillars    Pillars    `json:"pillars"`
	FireScore  *float64   `json:"fire_score"`
	FireRank   *int       `json:"fire_rank,omitempty"`
	Eligible   bool       `json:"eligible"`
	Confidence Confidence `json:"confidence"`

	GamesPlayed int      `json:"games_played"`
	WeeksUsed   []int    `json:"weeks_used,omitempty"`
	Workload    float64  `json:"workload"`
	Threshold   float64  `json:"threshold"`
	RoleMeta    RoleMeta `json:"role_meta"`
}

// Direction classifies a short-horizon vs long-horizon divergence.
type Direction string

// Signal directions.
const (
	DirectionBuyLow   Direction = "BUY_LOW"
	DirectionSellHigh Direction = "SELL_HIGH"
	DirectionNeutral  Direction = "NEUTRAL"
)

// DeltaSignal joins a PlayerScore with a long-horizon alpha for the same
// pool. DisplayPct is the percentile-space gap for display; RankZ is the
// z-score-space gap used for sorting.
type DeltaSignal struct {
	PlayerID   string     `json:"player_id"`
	Name       string     `json:"name,omitempty"`
	Position   Position   `json:"position"`
	FireScore  float64    `json:"fire_score"`
	ForgeAlpha float64    `json:"forge_alpha"`
	FirePct    float64    `json:"fire_pct"`
	ForgePct   float64    `json:"forge_pct"`
	DisplayPct float64    `json:"display_pct"`
	RankZ      float64    `json:"rank_z"`
	Direction  Direction  `json:"direction"`
	Confidence Confidence `json:"confidence"`
}

// DeltaTrendPoint is one anchor week of a player's delta history.
type DeltaTrendPoint struct {
	AnchorWeek int `json:"anchor_week"`
	DeltaSignal
}
