package model

import "errors"

var (
	ErrMissingSubject = errors.New("record has no subject")
	ErrMissingYear    = errors.New("record has no year")
	ErrInvalidRange   = errors.New("invalid year range")
)
