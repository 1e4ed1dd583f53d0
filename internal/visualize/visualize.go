// Package visualize renders detection plots for visual verification of a
// video's analysis: the raw and smoothed wrist signal with the detected
// backswing and contact frames marked.
package visualize

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	plotWidth  = 1400
	plotHeight = 500
)

func markerStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    6,
		DotColor:    col,
	}
}

// SwingPlot renders the combined wrist signal for one video as a PNG.
// Backswing frames are marked in red, contact frames in green.
func SwingPlot(video string, combined, smoothed []float64, backswings, contacts []int) ([]byte, error) {
	if len(combined) == 0 {
		return nil, fmt.Errorf("empty signal for %s", video)
	}

	frames := make([]float64, len(combined))
	for i := range frames {
		frames[i] = float64(i)
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "x+y",
			XValues: frames,
			YValues: combined,
			Style: chart.Style{
				StrokeColor: chart.ColorAlternateGray,
				StrokeWidth: 1,
			},
		},
	}
	if len(smoothed) == len(combined) {
		series = append(series, chart.ContinuousSeries{
			Name:    "smoothed",
			XValues: frames,
			YValues: smoothed,
			Style: chart.Style{
				StrokeColor: chart.ColorBlue,
				StrokeWidth: 2,
			},
		})
	}

	if s, ok := markerSeries("backswing", combined, backswings, chart.ColorRed); ok {
		series = append(series, s)
	}
	if s, ok := markerSeries("contact", combined, contacts, chart.ColorGreen); ok {
		series = append(series, s)
	}

	ch := chart.Chart{
		Title:      video,
		Width:      plotWidth,
		Height:     plotHeight,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      chart.XAxis{Name: "frame"},
		YAxis:      chart.YAxis{Name: "wrist x+y (px)"},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render plot for %s: %w", video, err)
	}
	return buf.Bytes(), nil
}

// WritePlot renders the plot and writes it to <dir>/<video>_detection.png,
// creating the directory when needed. Returns the written path.
func WritePlot(dir, video string, combined, smoothed []float64, backswings, contacts []int) (string, error) {
	png, err := SwingPlot(video, combined, smoothed, backswings, contacts)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create plot dir: %w", err)
	}

	path := filepath.Join(dir, video+"_detection.png")
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("write plot: %w", err)
	}
	return path, nil
}

func markerSeries(name string, signal []float64, frames []int, col drawing.Color) (chart.ContinuousSeries, bool) {
	xs := make([]float64, 0, len(frames))
	ys := make([]float64, 0, len(frames))
	for _, f := range frames {
		if f < 0 || f >= len(signal) {
			continue
		}
		xs = append(xs, float64(f))
		ys = append(ys, signal[f])
	}
	if len(xs) == 0 {
		return chart.ContinuousSeries{}, false
	}
	return chart.ContinuousSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		Style:   markerStyle(col),
	}, true
}
