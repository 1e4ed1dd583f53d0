package batch

import "errors"

// Sentinel kinds for batch run errors.
var (
	ErrNoVideos = errors.New("no videos found in dataset")
	ErrOutput   = errors.New("failed to write output")
)
