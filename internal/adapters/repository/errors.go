package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrUnavailable = errors.New("record store unavailable")
	ErrDecode      = errors.New("corpus decode failed")
	ErrNoSources   = errors.New("merge store has no sources")
)
