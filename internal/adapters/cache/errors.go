package cache

import "errors"

var (
	ErrInvalidURL  = errors.New("invalid cache url")
	ErrUnavailable = errors.New("cache unavailable")
	ErrCorrupt     = errors.New("cached report is corrupt")
)
