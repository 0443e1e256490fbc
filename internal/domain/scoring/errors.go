package scoring

import "errors"

var (
	ErrInvalidWeights    = errors.New("invalid importance weights")
	ErrInvalidThresholds = errors.New("invalid tier thresholds")
)
