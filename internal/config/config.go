// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Tuned scoring constants live here as named, overridable fields; the
//   scoring code never inlines them.
// - Provide New(ctx) to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration. All scoring constants are
// domain-tuned; changing one is a behavior-affecting tuning decision.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath points at the SQLite fact database.
	DBPath string `koanf:"db_path"`

	// WindowWeeks caps the trailing aggregation window.
	WindowWeeks int `koanf:"window_weeks"`

	// MaxDeltaLimit caps the delta endpoint's page size.
	MaxDeltaLimit int `koanf:"max_delta_limit"`

	// Eligibility thresholds. Running backs carry a lower full-window
	// base than quarterbacks and receivers.
	RBBaseThreshold      float64 `koanf:"rb_base_threshold"`
	BaseThreshold        float64 `koanf:"base_threshold"`
	RBThresholdFloor     float64 `koanf:"rb_threshold_floor"`
	ThresholdFloor       float64 `koanf:"threshold_floor"`
	HighConfidenceFactor float64 `koanf:"high_confidence_factor"`

	// PillarWeights blends opportunity/role/conversion for non-QB pools.
	PillarWeights map[string]float64 `koanf:"pillar_weights"`

	// QBPillarWeights blends opportunity/role for quarterbacks.
	QBPillarWeights map[string]float64 `koanf:"qb_pillar_weights"`

	// Role blend weights per position group.
	RoleWeightsRB       map[string]float64 `koanf:"role_weights_rb"`
	RoleWeightsReceiver map[string]float64 `koanf:"role_weights_receiver"`
	RoleWeightsQB       map[string]float64 `koanf:"role_weights_qb"`

	// Dynasty-preset QB expected-value weighting.
	DynastyPassEPWeight float64 `koanf:"dynasty_pass_ep_weight"`
	DynastyRushEPWeight float64 `koanf:"dynasty_rush_ep_weight"`

	// Delta classification cutoffs.
	DeltaZCutoff   float64 `koanf:"delta_z_cutoff"`
	DeltaPctCutoff float64 `koanf:"delta_pct_cutoff"`
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention; it is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:      "info",
		Addr:          ":9080",
		DBPath:        "",
		WindowWeeks:   4,
		MaxDeltaLimit: 100,

		RBBaseThreshold:      50,
		BaseThreshold:        80,
		RBThresholdFloor:     8,
		ThresholdFloor:       12,
		HighConfidenceFactor: 1.5,

		PillarWeights: map[string]float64{
			"opportunity": 0.60,
			"role":        0.25,
			"conversion":  0.15,
		},
		QBPillarWeights: map[string]float64{
			"opportunity": 0.75,
			"role":        0.25,
		},
		RoleWeightsRB: map[string]float64{
			"carry":    0.35,
			"target":   0.25,
			"snap":     0.20,
			"red_zone": 0.20,
		},
		RoleWeightsReceiver: map[string]float64{
			"route":    0.35,
			"target":   0.35,
			"snap":     0.15,
			"red_zone": 0.15,
		},
		RoleWeightsQB: map[string]float64{
			"dropback": 0.60,
			"rush":     0.25,
			"red_zone": 0.15,
		},
		DynastyPassEPWeight: 0.9,
		DynastyRushEPWeight: 1.25,

		DeltaZCutoff:   1.0,
		DeltaPctCutoff: 20.0,
	}
}
