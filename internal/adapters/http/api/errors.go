package api

import (
	"errors"
	"net/http"

	service "github.com/okian/gatecompass/internal/app"
)

// Kind classifies an API error. It is the "kind" field of the error body.
type Kind string

const (
	KindBadRequest      Kind = "bad_request"
	KindNotFound        Kind = "not_found"
	KindDataUnavailable Kind = "data_unavailable"
	KindInternal        Kind = "internal"
)

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindDataUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrEncode     = errors.New("response encoding failed")
)

// Error is an operation failure with its client-facing kind.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + string(e.Kind)
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Message is safe to show to clients. Server-side failures get a generic
// text so no store addresses or internals leak.
func (e *Error) Message() string {
	switch e.Kind {
	case KindBadRequest, KindNotFound:
		if e.Err != nil {
			return e.Err.Error()
		}
	case KindDataUnavailable:
		return "observation data is temporarily unavailable"
	}
	return http.StatusText(e.Kind.Status())
}

// NewKind builds an error of an explicit kind.
func NewKind(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap classifies err from the service layer.
func Wrap(op string, err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	kind := KindInternal
	switch {
	case errors.Is(err, service.ErrBadRequest), errors.Is(err, ErrBadRequest):
		kind = KindBadRequest
	case errors.Is(err, service.ErrNotFound):
		kind = KindNotFound
	case errors.Is(err, service.ErrDataUnavailable), errors.Is(err, service.ErrNotStarted):
		kind = KindDataUnavailable
	}
	return &Error{Op: op, Kind: kind, Err: err}
}
