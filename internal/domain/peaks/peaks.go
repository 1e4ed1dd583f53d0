// Package peaks locates top-of-backswing frames on the combined arc signal.
//
// Detection runs in three stages: FindAnchors smooths the signal at two
// scales and finds prominent minima, SearchAndRefine walks each anchor back
// to the true backswing top, and Detect chains the two.
//
// Conventions:
// - Peak slices are frame indices, strictly increasing.
// - Functions never mutate their input slices.
package peaks

import (
	"sort"

	"github.com/mgreen/swinglab/internal/domain/signal"
	"github.com/mgreen/swinglab/internal/domain/swing"
)

// Anchor detection ignores the final stretch of the video outright; the
// filters trim a configurable slice later, this mask only stops the coarse
// search from latching onto camera-handling noise.
const endMaskPct = 0.95

// FindPeaks returns the indices of local maxima in sig with at least the
// given prominence, thinned so surviving peaks are at least distance frames
// apart (higher peaks win).
func FindPeaks(sig []float64, prominence float64, distance int) []int {
	maxima := localMaxima(sig)
	if prominence > 0 {
		kept := maxima[:0:0]
		for _, p := range maxima {
			if prominenceAt(sig, p) >= prominence {
				kept = append(kept, p)
			}
		}
		maxima = kept
	}
	if distance > 1 && len(maxima) > 1 {
		maxima = thinByDistance(sig, maxima, distance)
	}
	return maxima
}

// localMaxima finds strict local maxima; a flat plateau counts once, at its
// midpoint.
func localMaxima(sig []float64) []int {
	var out []int
	i := 1
	for i < len(sig)-1 {
		if sig[i-1] >= sig[i] {
			i++
			continue
		}
		// Climbed; skip across any plateau to the far edge.
		j := i
		for j < len(sig)-1 && sig[j+1] == sig[i] {
			j++
		}
		if j < len(sig)-1 && sig[j+1] < sig[i] {
			out = append(out, (i+j)/2)
		}
		i = j + 1
	}
	return out
}

// prominenceAt measures how far sig[p] rises above its surroundings: on each
// side, take the minimum between the peak and the nearest higher point (or
// the signal edge); prominence is the peak height above the higher of the
// two minima.
func prominenceAt(sig []float64, p int) float64 {
	h := sig[p]
	leftMin := h
	for i := p - 1; i >= 0; i-- {
		if sig[i] > h {
			break
		}
		if sig[i] < leftMin {
			leftMin = sig[i]
		}
	}
	rightMin := h
	for i := p + 1; i < len(sig); i++ {
		if sig[i] > h {
			break
		}
		if sig[i] < rightMin {
			rightMin = sig[i]
		}
	}
	base := leftMin
	if rightMin > base {
		base = rightMin
	}
	return h - base
}

// thinByDistance keeps the highest peaks first and drops any peak closer
// than distance frames to one already kept.
func thinByDistance(sig []float64, peaks []int, distance int) []int {
	order := make([]int, len(peaks))
	copy(order, peaks)
	sort.SliceStable(order, func(a, b int) bool {
		return sig[order[a]] > sig[order[b]]
	})
	removed := make(map[int]bool, len(peaks))
	for _, p := range order {
		if removed[p] {
			continue
		}
		for _, q := range peaks {
			if q != p && !removed[q] && absInt(q-p) < distance {
				removed[q] = true
			}
		}
	}
	out := make([]int, 0, len(peaks))
	for _, p := range peaks {
		if !removed[p] {
			out = append(out, p)
		}
	}
	return out
}

// Score rates how backswing-like a candidate frame is. A real backswing top
// has a smooth approach (club slowly rising) and a sharp departure (fast
// downswing); follow-throughs are the opposite. Lower is more backswing-like:
//
//	std(diff(smoothed[peak-lookBehind:peak])) - 0.5*(departure drop)
func Score(peak int, smoothed []float64, p swing.Params) float64 {
	lo := peak - p.LookBehind
	if lo < 0 {
		lo = 0
	}
	behind := smoothed[lo:peak]
	var approachJitter float64
	if len(behind) > 2 {
		approachJitter = signal.Std(signal.Diff(behind))
	}
	hi := peak + p.LookAhead
	if hi > len(smoothed) {
		hi = len(smoothed)
	}
	ahead := smoothed[peak:hi]
	var departureDrop float64
	if len(ahead) > 1 {
		departureDrop = ahead[len(ahead)-1] - ahead[0]
	}
	return approachJitter - 0.5*departureDrop
}

// FindAnchors smooths the combined signal at fine and coarse scales, masks
// the tail of the video, and finds prominent minima of the fine signal as
// anchor peaks. totalFrames <= 0 skips the tail mask.
func FindAnchors(combined []float64, totalFrames int, p swing.Params) (anchors []int, smoothed, coarse []float64, err error) {
	smoothed, err = signal.SavitzkyGolay(combined, p.SavgolWindow, p.SavgolPoly)
	if err != nil {
		return nil, nil, nil, err
	}
	coarse, err = signal.SavitzkyGolay(combined, p.CoarseWindow, p.CoarsePoly)
	if err != nil {
		return nil, nil, nil, err
	}

	neg := make([]float64, len(smoothed))
	minNeg := 0.0
	for i, v := range smoothed {
		neg[i] = -v
		if i == 0 || neg[i] < minNeg {
			minNeg = neg[i]
		}
	}
	if totalFrames > 0 {
		ms := int(float64(totalFrames) * endMaskPct)
		for i := ms; i < len(neg); i++ {
			neg[i] = minNeg
		}
	}
	anchors = FindPeaks(neg, p.PeakProminence, p.PeakDistance)
	return anchors, smoothed, coarse, nil
}

// SearchAndRefine turns anchor peaks into backswing-top frames. For each
// anchor it walks back up to SearchBack frames on the coarse signal
// collecting rising zero-crossings of the derivative as candidates, scores
// them, and refines the winner forward to the fine-signal minimum within
// RefineWindow frames.
func SearchAndRefine(anchors []int, smoothed, coarse []float64, p swing.Params) []int {
	out := make([]int, 0, len(anchors))
	for _, anchor := range anchors {
		ss := anchor - p.SearchBack
		if ss < 0 {
			ss = 0
		}
		d := signal.Diff(coarse[ss : anchor+1])
		var candidates []int
		for i := 0; i+1 < len(d); i++ {
			if d[i] <= 0 && d[i+1] > 0 {
				candidates = append(candidates, ss+i+1)
			}
		}
		hasAnchor := false
		for _, c := range candidates {
			if c == anchor {
				hasAnchor = true
				break
			}
		}
		if !hasAnchor {
			candidates = append(candidates, anchor)
		}

		best := candidates[0]
		bestScore := Score(best, smoothed, p)
		for _, c := range candidates[1:] {
			if s := Score(c, smoothed, p); s < bestScore {
				best, bestScore = c, s
			}
		}

		end := best + p.RefineWindow + 1
		if end > len(smoothed) {
			end = len(smoothed)
		}
		apex := best
		for i := best; i < end; i++ {
			if smoothed[i] < smoothed[apex] {
				apex = i
			}
		}
		out = append(out, apex)
	}
	return out
}

// Detect finds backswing-top frames on the combined signal, returning the
// peak frames and the fine-smoothed signal the filters score against.
func Detect(combined []float64, totalFrames int, p swing.Params) ([]int, []float64, error) {
	anchors, smoothed, coarse, err := FindAnchors(combined, totalFrames, p)
	if err != nil {
		return nil, nil, err
	}
	if len(anchors) == 0 {
		return nil, smoothed, nil
	}
	return SearchAndRefine(anchors, smoothed, coarse, p), smoothed, nil
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
