package corpustool

import "errors"

var (
	// ErrVerify is returned when a served report breaks an invariant.
	ErrVerify = errors.New("report verification failed")
	// ErrBadFlag is returned for flag values the tool cannot use.
	ErrBadFlag = errors.New("invalid flag")
	// ErrService is returned when the service answers with a non-200 status.
	ErrService = errors.New("unexpected service response")
)
