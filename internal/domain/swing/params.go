// Package swing defines the tunable parameter set for the backswing and
// contact detection pipeline.
//
// Conventions:
// - Defaults live in DefaultParams; callers copy and override.
// - Frame-count parameters assume 60 fps footage and scale proportionally
//   for other frame rates.
// - All future functions must accept context.Context as the first parameter.
package swing

// COCO-17 keypoint indices used by the pipeline.
const (
	LeftShoulder  = 5
	RightShoulder = 6
	LeftWrist     = 9
	RightWrist    = 10
)

// Params holds every tunable of the detection pipeline. Defaults were tuned
// on two datasets (7 + 10 videos, 92 swings total) shot at 60 fps.
type Params struct {
	// Smoothing.
	// SavgolWindow is the fine Savitzky-Golay window in frames (~150 ms at
	// 60 fps); removes frame-to-frame jitter while preserving swing shape.
	SavgolWindow int
	SavgolPoly   int
	// CoarseWindow is the coarse Savitzky-Golay window (~1.0 s at 60 fps);
	// wide enough to flatten within-swing oscillation so peak detection
	// locates swing regions rather than wiggles.
	CoarseWindow int
	CoarsePoly   int

	// Peak detection.
	// PeakProminence is the minimum prominence in pixels on the inverted
	// signal; a swing must produce at least this much dip.
	PeakProminence float64
	// PeakDistance is the minimum distance in frames (~8.3 s) between
	// anchor peaks.
	PeakDistance int
	// LookBehind / LookAhead bound the windows examined when scoring
	// backswing candidates (approach jitter / departure drop).
	LookBehind int
	LookAhead  int
	// SearchBack is the maximum frames (~10 s) walked backward from an
	// anchor on the coarse signal for the true backswing candidate.
	SearchBack int
	// RefineWindow is the forward search (~250 ms) on the fine signal that
	// corrects the coarse-smoothing bias.
	RefineWindow int

	// Post-processing filters.
	// MinSwingGap merges peaks closer than this many frames (~10 s),
	// keeping the deeper one.
	MinSwingGap int
	// EndOfVideoPct is the fraction of video at the end to suppress
	// (camera handling noise, golfer walking away).
	EndOfVideoPct float64
	// XYOutlierMADThresh and friends drive the x+y MAD outlier filter.
	XYOutlierMADThresh float64
	XYOutlierMinPeaks  int
	XYOutlierMADFloor  float64
	// XOffMADThresh and XOffMADFloor drive the follow-through rejection
	// filter (wrist-to-shoulder horizontal offset).
	XOffMADThresh float64
	XOffMADFloor  float64

	// ConfThreshold is the minimum keypoint confidence; frames below it
	// are linearly interpolated away.
	ConfThreshold float64

	// Contact detection.
	// ContactSearchMin/Max bound the forward search window after a
	// backswing (~170 ms to ~1.5 s at 60 fps).
	ContactSearchMin    int
	ContactSearchMax    int
	ContactSavgolWindow int
	ContactSavgolPoly   int

	// Problem flagging.
	MinExpectedSwings int
	MaxExpectedSwings int
	// LowConfWindow is the half-window around a peak checked for wrist
	// confidence; LowConfThreshold triggers the flag.
	LowConfWindow    int
	LowConfThreshold float64
	// CloseGapSeconds flags two successive swings closer than this.
	CloseGapSeconds float64
	// FlagMADThreshold is the MAD z-score above which a peak's x+y value
	// is flagged as suspicious.
	FlagMADThreshold float64

	// DownswingOutlierFrames flags unusually long downswings on CSV export.
	DownswingOutlierFrames int
}

// DefaultParams returns the tuned 60 fps defaults.
func DefaultParams() Params {
	return Params{
		SavgolWindow:           9,
		SavgolPoly:             3,
		CoarseWindow:           61,
		CoarsePoly:             3,
		PeakProminence:         300,
		PeakDistance:           500,
		LookBehind:             60,
		LookAhead:              30,
		SearchBack:             600,
		RefineWindow:           15,
		MinSwingGap:            600,
		EndOfVideoPct:          0.03,
		XYOutlierMADThresh:     3.0,
		XYOutlierMinPeaks:      3,
		XYOutlierMADFloor:      50,
		XOffMADThresh:          3.0,
		XOffMADFloor:           20,
		ConfThreshold:          0.3,
		ContactSearchMin:       10,
		ContactSearchMax:       90,
		ContactSavgolWindow:    5,
		ContactSavgolPoly:      2,
		MinExpectedSwings:      2,
		MaxExpectedSwings:      15,
		LowConfWindow:          5,
		LowConfThreshold:       0.4,
		CloseGapSeconds:        8.0,
		FlagMADThreshold:       2.0,
		DownswingOutlierFrames: 40,
	}
}
