package config

import (
	"errors"
)

// Sentinel error kinds so callers can distinguish a malformed config
// from a failed load via errors.Is.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
