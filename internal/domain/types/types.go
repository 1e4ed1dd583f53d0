// Package types contains common types used across the application
package types

import "time"

// SwingEntry is one swing row in API responses.
type SwingEntry struct {
	Num            int     `json:"num"`
	BackswingFrame int     `json:"backswing_frame"`
	BackswingTimeS float64 `json:"backswing_time_s"`
	ContactFrame   int     `json:"contact_frame,omitempty"`
	ContactTimeS   float64 `json:"contact_time_s,omitempty"`
	XYValue        float64 `json:"xy_value"`
}

// AnalysisEntry is one video row in list and detail responses.
type AnalysisEntry struct {
	Video       string       `json:"video"`
	FPS         float64      `json:"fps"`
	TotalFrames int          `json:"total_frames"`
	NumSwings   int          `json:"num_swings"`
	NumContacts int          `json:"num_contacts"`
	Swings      []SwingEntry `json:"swings,omitempty"`
	FilterLog   []string     `json:"filter_log,omitempty"`
	Problems    []string     `json:"problems,omitempty"`
	AnalyzedAt  time.Time    `json:"analyzed_at"`
}

// Summary aggregates stored detections for the stats endpoint.
type Summary struct {
	Videos   int `json:"videos"`
	Swings   int `json:"swings"`
	Contacts int `json:"contacts"`
	Problems int `json:"problems"`
}
