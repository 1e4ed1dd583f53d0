package signal

import "errors"

// Sentinel kinds for signal transform errors.
var (
	ErrBadWindow = errors.New("smoothing window must be odd and >= 3")
	ErrBadOrder  = errors.New("polynomial order must be >= 0 and < window")
)
