package repository

import "errors"

// Sentinel kinds for fact store errors.
var (
	ErrOpenStore = errors.New("open fact store failed")
	ErrQuery     = errors.New("fact store query failed")
)
