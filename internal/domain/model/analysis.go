// Package model contains domain models passed between layers.
package model

import "time"

// Job is a queued analysis request for one video.
type Job struct {
	JobID        string    // unique id assigned at submission
	Video        string    // video name, unique per dataset
	KeypointPath string    // path to the keypoint JSON file
	SubmittedAt  time.Time // enqueue timestamp
}

// Swing is one detected swing within a video.
type Swing struct {
	Num            int     // 1-based swing number within the video
	BackswingFrame int     // top-of-backswing frame index
	ContactFrame   int     // ball-impact frame index, -1 if not found
	XYValue        float64 // smoothed x+y arc value at the backswing top
}

// Detection is the stored result of analyzing one video.
type Detection struct {
	Video       string
	FPS         float64
	TotalFrames int
	Swings      []Swing
	FilterLog   []string // what each filter removed
	Problems    []string // flags raised by problem screening
	AnalyzedAt  time.Time
}

// NumSwings returns the number of detected swings.
func (d *Detection) NumSwings() int { return len(d.Swings) }

// NumContacts returns the number of swings with a resolved contact frame.
func (d *Detection) NumContacts() int {
	n := 0
	for _, s := range d.Swings {
		if s.ContactFrame >= 0 {
			n++
		}
	}
	return n
}
