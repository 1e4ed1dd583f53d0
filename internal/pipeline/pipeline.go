// Package pipeline glues keypoint data, signal transforms, peak detection,
// filtering, and contact search into the analysis entry points the workers
// and the batch CLI call.
//
// Conventions:
// - All entry points accept context.Context and stop between stages when it
//   is cancelled.
// - Results carry the intermediate signals so downstream consumers (chart
//   rendering, CSV export) do not recompute them.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/mgreen/swinglab/internal/adapters/keypoints"
	"github.com/mgreen/swinglab/internal/domain/contact"
	"github.com/mgreen/swinglab/internal/domain/filters"
	"github.com/mgreen/swinglab/internal/domain/model"
	"github.com/mgreen/swinglab/internal/domain/peaks"
	"github.com/mgreen/swinglab/internal/domain/signal"
	"github.com/mgreen/swinglab/internal/domain/swing"
)

// Result is a completed backswing detection for one video.
type Result struct {
	Video       string
	Peaks       []int     // backswing-top frames, strictly increasing
	Smoothed    []float64 // fine-smoothed combined signal
	Combined    []float64 // raw combined signal
	FPS         float64
	TotalFrames int
	FilterLog   []string
	Data        *keypoints.Data
}

// NumSwings returns the number of detected backswings.
func (r *Result) NumSwings() int { return len(r.Peaks) }

// ContactResult is a completed contact detection for one video.
type ContactResult struct {
	Frames   []int
	Smoothed []float64
	Log      []string
}

// DetectSwings runs the full backswing pipeline on loaded keypoint data:
// build the combined signal, detect and refine peaks, then run the filter
// chain.
func DetectSwings(ctx context.Context, data *keypoints.Data, video string, p swing.Params) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	xl, xr, yl, yr, cl, cr := data.WristSignals()
	combined := signal.Combined(xl, xr, yl, yr, cl, cr, p.ConfThreshold)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pf, smoothed, err := peaks.Detect(combined, data.TotalFrames, p)
	if err != nil {
		return nil, fmt.Errorf("detect %s: %w", video, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pf, flog := filters.RunAll(pf, smoothed, data.TotalFrames, data, p)

	return &Result{
		Video:       video,
		Peaks:       pf,
		Smoothed:    smoothed,
		Combined:    combined,
		FPS:         data.FPS,
		TotalFrames: data.TotalFrames,
		FilterLog:   flog,
		Data:        data,
	}, nil
}

// DetectContacts finds ball-impact frames for an existing backswing result.
func DetectContacts(ctx context.Context, r *Result, p swing.Params) (*ContactResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cf, sm, err := contact.Detect(r.Peaks, r.Combined, p)
	if err != nil {
		return nil, fmt.Errorf("contacts %s: %w", r.Video, err)
	}
	cf, log := filters.Dedup(cf)
	return &ContactResult{Frames: cf, Smoothed: sm, Log: log}, nil
}

// FlagProblems screens a detection for suspicious output: too few or too
// many swings, peaks whose x+y value is a MAD outlier, low wrist confidence
// around a peak, and successive swings implausibly close together.
func FlagProblems(r *Result, p swing.Params) []string {
	var issues []string
	n := len(r.Peaks)
	if n < p.MinExpectedSwings {
		issues = append(issues, fmt.Sprintf("only %d swing(s) (expected >= %d)", n, p.MinExpectedSwings))
	}
	if n > p.MaxExpectedSwings {
		issues = append(issues, fmt.Sprintf("%d swings (expected <= %d)", n, p.MaxExpectedSwings))
	}
	if n == 0 {
		return issues
	}

	vals := make([]float64, n)
	for i, f := range r.Peaks {
		vals[i] = r.Smoothed[f]
	}
	med := signal.Median(vals)
	var mad float64
	if n > 1 {
		mad = signal.MAD(vals)
	}

	for i, f := range r.Peaks {
		if mad > 0 && n >= 3 {
			z := abs(vals[i]-med) / mad
			if z > p.FlagMADThreshold {
				issues = append(issues, fmt.Sprintf("swing %d: x+y=%.0f is %.1f MADs from median", i+1, vals[i], z))
			}
		}
		s := f - p.LowConfWindow
		if s < 0 {
			s = 0
		}
		e := f + p.LowConfWindow + 1
		if e > r.Data.NumFrames() {
			e = r.Data.NumFrames()
		}
		var sum float64
		var cnt int
		for j := s; j < e; j++ {
			sum += r.Data.WristConf(j)
			cnt++
		}
		if cnt > 0 {
			if mean := sum / float64(cnt); mean < p.LowConfThreshold {
				issues = append(issues, fmt.Sprintf("swing %d: low wrist conf %.2f", i+1, mean))
			}
		}
		if i > 0 {
			gap := float64(f-r.Peaks[i-1]) / r.FPS
			if gap < p.CloseGapSeconds {
				issues = append(issues, fmt.Sprintf("swing %d: only %.1fs since previous swing", i+1, gap))
			}
		}
	}
	return issues
}

// BuildDetection assembles the storable record from a backswing result and
// an optional contact result. Contacts pair with backswings by index;
// unmatched backswings get contact frame -1.
func BuildDetection(r *Result, cr *ContactResult, problems []string) *model.Detection {
	d := &model.Detection{
		Video:       r.Video,
		FPS:         r.FPS,
		TotalFrames: r.TotalFrames,
		FilterLog:   r.FilterLog,
		Problems:    problems,
		AnalyzedAt:  time.Now().UTC(),
	}
	for i, bf := range r.Peaks {
		s := model.Swing{
			Num:            i + 1,
			BackswingFrame: bf,
			ContactFrame:   -1,
			XYValue:        r.Smoothed[bf],
		}
		if cr != nil && i < len(cr.Frames) {
			s.ContactFrame = cr.Frames[i]
		}
		d.Swings = append(d.Swings, s)
	}
	return d
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
