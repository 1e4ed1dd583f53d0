// Package filters post-processes candidate backswing peaks.
//
// Five filters run in a fixed order: dedup, end-of-video trim, too-close
// merge, x+y MAD outlier, follow-through rejection. Each returns the
// surviving peaks plus human-readable log lines describing what it removed;
// RunAll chains them.
package filters

import (
	"fmt"
	"sort"

	"github.com/mgreen/swinglab/internal/domain/signal"
	"github.com/mgreen/swinglab/internal/domain/swing"
)

// FrameKeypoints exposes per-frame keypoint coordinates to the
// follow-through filter without binding it to a storage format.
type FrameKeypoints interface {
	// KeypointX returns the x coordinate of the given COCO keypoint at the
	// given frame.
	KeypointX(frame, keypoint int) float64
}

// Dedup removes duplicate frame indices and sorts.
func Dedup(peaks []int) ([]int, []string) {
	if len(peaks) == 0 {
		return peaks, nil
	}
	seen := make(map[int]bool, len(peaks))
	out := make([]int, 0, len(peaks))
	for _, p := range peaks {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Ints(out)
	var log []string
	if len(out) != len(peaks) {
		log = append(log, fmt.Sprintf("dedup: removed %d duplicate(s)", len(peaks)-len(out)))
	}
	return out, log
}

// TrimEnd drops peaks in the final endOfVideoPct fraction of the video.
func TrimEnd(peaks []int, totalFrames int, endOfVideoPct float64) ([]int, []string) {
	cutoff := int(float64(totalFrames) * (1.0 - endOfVideoPct))
	out := make([]int, 0, len(peaks))
	for _, p := range peaks {
		if p < cutoff {
			out = append(out, p)
		}
	}
	var log []string
	if removed := len(peaks) - len(out); removed > 0 {
		log = append(log, fmt.Sprintf("end-of-video: removed %d peak(s) past frame %d", removed, cutoff))
	}
	return out, log
}

// MergeClose merges peaks closer than minSwingGap frames, keeping the one
// with the deeper smoothed value. Input must be sorted.
func MergeClose(peaks []int, smoothed []float64, minSwingGap int) ([]int, []string) {
	if len(peaks) == 0 {
		return peaks, nil
	}
	merged := []int{peaks[0]}
	removed := 0
	for _, p := range peaks[1:] {
		prev := merged[len(merged)-1]
		if p-prev < minSwingGap {
			removed++
			if smoothed[p] < smoothed[prev] {
				merged[len(merged)-1] = p
			}
		} else {
			merged = append(merged, p)
		}
	}
	var log []string
	if removed > 0 {
		log = append(log, fmt.Sprintf("too-close: removed %d peak(s) within %d frames", removed, minSwingGap))
	}
	return merged, log
}

// MADOutlier removes peaks whose smoothed x+y value sits more than
// madThresh MADs above the median. The MAD is floored at madFloor so a
// tight cluster of swings does not filter itself; fewer than minPeaks peaks
// skips the filter entirely.
func MADOutlier(peaks []int, smoothed []float64, madThresh, madFloor float64, minPeaks int) ([]int, []string) {
	if len(peaks) < minPeaks {
		return peaks, nil
	}
	vals := make([]float64, len(peaks))
	for i, p := range peaks {
		vals[i] = smoothed[p]
	}
	med := signal.Median(vals)
	mad := signal.MAD(vals)
	if mad < madFloor {
		mad = madFloor
	}
	if mad <= 0 {
		return peaks, nil
	}
	thresh := med + madThresh*mad
	out := make([]int, 0, len(peaks))
	for i, p := range peaks {
		if vals[i] <= thresh {
			out = append(out, p)
		}
	}
	var log []string
	if removed := len(peaks) - len(out); removed > 0 {
		log = append(log, fmt.Sprintf("mad: removed %d peak(s) with x+y > %.0f (med=%.0f, mad=%.0f)", removed, thresh, med, mad))
	}
	return out, log
}

// FollowThrough rejects follow-through peaks using the wrist-to-shoulder
// horizontal offset. At a real backswing top the hands sit behind the body
// (low offset); in a follow-through they are extended in front. Peaks with
// offset more than madThresh MADs above the median are removed. A nil
// keypoint source or fewer than minPeaks peaks skips the filter.
func FollowThrough(peaks []int, kp FrameKeypoints, p swing.Params) ([]int, []string) {
	if kp == nil || len(peaks) < p.XYOutlierMinPeaks {
		return peaks, nil
	}
	offsets := make([]float64, len(peaks))
	for i, f := range peaks {
		wrist := (kp.KeypointX(f, swing.LeftWrist) + kp.KeypointX(f, swing.RightWrist)) / 2
		shoulder := (kp.KeypointX(f, swing.LeftShoulder) + kp.KeypointX(f, swing.RightShoulder)) / 2
		offsets[i] = wrist - shoulder
	}
	med := signal.Median(offsets)
	mad := signal.MAD(offsets)
	if mad < p.XOffMADFloor {
		mad = p.XOffMADFloor
	}
	thresh := med + p.XOffMADThresh*mad
	out := make([]int, 0, len(peaks))
	for i, f := range peaks {
		if offsets[i] <= thresh {
			out = append(out, f)
		}
	}
	var log []string
	if removed := len(peaks) - len(out); removed > 0 {
		log = append(log, fmt.Sprintf("follow-through: removed %d peak(s) with x offset > %.0f", removed, thresh))
	}
	return out, log
}

// RunAll chains all five filters in order and concatenates their logs.
func RunAll(peaks []int, smoothed []float64, totalFrames int, kp FrameKeypoints, p swing.Params) ([]int, []string) {
	var log []string

	peaks, l := Dedup(peaks)
	log = append(log, l...)
	if len(peaks) == 0 {
		return peaks, log
	}

	peaks, l = TrimEnd(peaks, totalFrames, p.EndOfVideoPct)
	log = append(log, l...)
	if len(peaks) == 0 {
		return peaks, log
	}

	peaks, l = MergeClose(peaks, smoothed, p.MinSwingGap)
	log = append(log, l...)

	peaks, l = MADOutlier(peaks, smoothed, p.XYOutlierMADThresh, p.XYOutlierMADFloor, p.XYOutlierMinPeaks)
	log = append(log, l...)

	peaks, l = FollowThrough(peaks, kp, p)
	log = append(log, l...)

	return peaks, log
}
