// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"

	"github.com/mgreen/swinglab/internal/domain/swing"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory analysis job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of analysis workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxListLimit caps GET /analyses?limit.
	MaxListLimit int `koanf:"max_list_limit"`

	// DBPath points at the SQLite detection store. Empty keeps detections
	// in memory.
	DBPath string `koanf:"db_path"`

	// PlotDir enables detection plot rendering when non-empty.
	PlotDir string `koanf:"plot_dir"`

	// Detection tunables. Zero values fall back to the tuned defaults.
	ConfThreshold     float64 `koanf:"conf_threshold"`
	PeakProminence    float64 `koanf:"peak_prominence"`
	PeakDistance      int     `koanf:"peak_distance"`
	MinSwingGap       int     `koanf:"min_swing_gap"`
	EndOfVideoPct     float64 `koanf:"end_of_video_pct"`
	ContactSearchMin  int     `koanf:"contact_search_min"`
	ContactSearchMax  int     `koanf:"contact_search_max"`
	MinExpectedSwings int     `koanf:"min_expected_swings"`
	MaxExpectedSwings int     `koanf:"max_expected_swings"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		Addr:         ":9080",
		QueueSize:    1_000,
		WorkerCount:  runtime.NumCPU(),
		DedupeSize:   10_000,
		MaxListLimit: 100,
	}
}

// Params maps the detection tunables onto the pipeline parameter set,
// leaving untouched fields at their tuned defaults.
func (c *Config) Params() swing.Params {
	p := swing.DefaultParams()
	if c.ConfThreshold > 0 {
		p.ConfThreshold = c.ConfThreshold
	}
	if c.PeakProminence > 0 {
		p.PeakProminence = c.PeakProminence
	}
	if c.PeakDistance > 0 {
		p.PeakDistance = c.PeakDistance
	}
	if c.MinSwingGap > 0 {
		p.MinSwingGap = c.MinSwingGap
	}
	if c.EndOfVideoPct > 0 {
		p.EndOfVideoPct = c.EndOfVideoPct
	}
	if c.ContactSearchMin > 0 {
		p.ContactSearchMin = c.ContactSearchMin
	}
	if c.ContactSearchMax > 0 {
		p.ContactSearchMax = c.ContactSearchMax
	}
	if c.MinExpectedSwings > 0 {
		p.MinExpectedSwings = c.MinExpectedSwings
	}
	if c.MaxExpectedSwings > 0 {
		p.MaxExpectedSwings = c.MaxExpectedSwings
	}
	return p
}
