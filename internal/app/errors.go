package service

import "errors"

// Sentinel kinds mapped to HTTP statuses by the API layer.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrNotFound        = errors.New("not found")
	ErrDataUnavailable = errors.New("observation data unavailable")
	ErrNotStarted      = errors.New("service not started")
)
