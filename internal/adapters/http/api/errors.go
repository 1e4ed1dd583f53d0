package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")
)

// newKind tags a sentinel with the operation that raised it.
func newKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// wrapKind tags a sentinel with the operation and the underlying cause.
func wrapKind(op string, kind, err error) error {
	if err == nil {
		return newKind(op, kind)
	}
	return fmt.Errorf("%s: %w: %v", op, kind, err)
}
