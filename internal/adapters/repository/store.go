// Package repository defines the detection store interface and errors.
package repository

import (
	"context"

	"github.com/mgreen/swinglab/internal/domain/model"
	"github.com/mgreen/swinglab/internal/domain/types"
)

// Store provides read/write access to stored detections.
type Store interface {
	// SaveDetection inserts or replaces the detection for its video.
	// Saving the same video twice keeps the latest record.
	SaveDetection(ctx context.Context, d *model.Detection) error

	// Detection returns the stored detection for a video.
	// Returns ErrNotFound if the video is unknown.
	Detection(ctx context.Context, video string) (*model.Detection, error)

	// List returns up to limit detections ordered by most recent first.
	List(ctx context.Context, limit int) ([]*model.Detection, error)

	// Summary aggregates stored detections.
	Summary(ctx context.Context) (types.Summary, error)

	// Count returns the number of stored detections.
	Count(ctx context.Context) int

	// Close releases underlying resources.
	Close() error
}
