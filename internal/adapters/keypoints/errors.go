package keypoints

import "errors"

// Sentinel kinds for keypoint file errors.
var (
	ErrMalformed = errors.New("malformed keypoint file")
	ErrNoFrames  = errors.New("keypoint file has no frames")
	ErrBadMeta   = errors.New("keypoint file has invalid video metadata")
	ErrBadFrame  = errors.New("keypoint frame does not hold 17 points")
)
