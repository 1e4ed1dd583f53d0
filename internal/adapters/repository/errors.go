package repository

import "errors"

// Sentinel kinds for detection store errors.
var (
	ErrNotFound     = errors.New("video not found")
	ErrInvalidLimit = errors.New("invalid list limit")
)
