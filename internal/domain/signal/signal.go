// Package signal provides the pure transforms of the detection pipeline —
// slices in, slices out, no side effects.
//
// It interpolates low-confidence keypoint frames and builds the combined
// arc signal consumed by peak detection, filtering, and contact search.
package signal

import "math"

// InterpolateLowConf replaces low-confidence frames with linearly
// interpolated values from the nearest high-confidence neighbors.
//
// Pose estimators occasionally drop confidence on individual frames,
// producing spikes in the wrist trajectory. Frames with confidence below
// threshold are rebuilt from their good neighbors; values before the first
// (after the last) good frame clamp to it. If fewer than two good frames
// exist the input is returned as an unmodified copy.
func InterpolateLowConf(sig, conf []float64, threshold float64) []float64 {
	out := make([]float64, len(sig))
	copy(out, sig)

	good := make([]int, 0, len(sig))
	for i, c := range conf {
		if c >= threshold {
			good = append(good, i)
		}
	}
	if len(good) == len(sig) || len(good) < 2 {
		return out
	}

	for i := range out {
		if conf[i] >= threshold {
			continue
		}
		out[i] = interpAt(i, good, sig)
	}
	return out
}

// interpAt linearly interpolates the value at index i from the known
// sample positions in good. Indices outside the known range clamp to the
// nearest endpoint, matching numpy.interp.
func interpAt(i int, good []int, sig []float64) float64 {
	if i <= good[0] {
		return sig[good[0]]
	}
	last := good[len(good)-1]
	if i >= last {
		return sig[last]
	}
	// Binary search for the bracketing pair.
	lo, hi := 0, len(good)-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if good[mid] <= i {
			lo = mid
		} else {
			hi = mid
		}
	}
	x0, x1 := good[lo], good[hi]
	y0, y1 := sig[x0], sig[x1]
	t := float64(i-x0) / float64(x1-x0)
	return y0 + t*(y1-y0)
}

// Combined builds the single-channel arc signal from the four wrist
// coordinate channels: (xL+xR)/2 + (yL+yR)/2 after per-channel
// interpolation. At the top of the backswing both x and y are low (hands
// high and behind the golfer); at contact both are high (hands extended
// forward), so backswing tops appear as deep minima.
func Combined(xl, xr, yl, yr, cl, cr []float64, confThreshold float64) []float64 {
	xl = InterpolateLowConf(xl, cl, confThreshold)
	xr = InterpolateLowConf(xr, cr, confThreshold)
	yl = InterpolateLowConf(yl, cl, confThreshold)
	yr = InterpolateLowConf(yr, cr, confThreshold)
	out := make([]float64, len(xl))
	for i := range out {
		out[i] = (xl[i]+xr[i])/2.0 + (yl[i]+yr[i])/2.0
	}
	return out
}

// Diff returns the first difference of sig (length len(sig)-1).
func Diff(sig []float64) []float64 {
	if len(sig) < 2 {
		return nil
	}
	out := make([]float64, len(sig)-1)
	for i := range out {
		out[i] = sig[i+1] - sig[i]
	}
	return out
}

// Std returns the population standard deviation of sig.
func Std(sig []float64) float64 {
	if len(sig) == 0 {
		return 0
	}
	var sum float64
	for _, v := range sig {
		sum += v
	}
	mean := sum / float64(len(sig))
	var ss float64
	for _, v := range sig {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(sig)))
}

// Mean returns the arithmetic mean of sig, or 0 for an empty slice.
func Mean(sig []float64) float64 {
	if len(sig) == 0 {
		return 0
	}
	var sum float64
	for _, v := range sig {
		sum += v
	}
	return sum / float64(len(sig))
}

// Median returns the median of sig, or 0 for an empty slice.
func Median(sig []float64) float64 {
	n := len(sig)
	if n == 0 {
		return 0
	}
	tmp := make([]float64, n)
	copy(tmp, sig)
	insertionSort(tmp)
	if n%2 == 1 {
		return tmp[n/2]
	}
	return (tmp[n/2-1] + tmp[n/2]) / 2.0
}

// MAD returns the median absolute deviation of sig around its median.
func MAD(sig []float64) float64 {
	if len(sig) == 0 {
		return 0
	}
	med := Median(sig)
	dev := make([]float64, len(sig))
	for i, v := range sig {
		dev[i] = math.Abs(v - med)
	}
	return Median(dev)
}

// Peak sets are small (tens of values); insertion sort keeps Median
// allocation-free beyond its working copy.
func insertionSort(a []float64) {
	for i := 1; i < len(a); i++ {
		v := a[i]
		j := i - 1
		for j >= 0 && a[j] > v {
			a[j+1] = a[j]
			j--
		}
		a[j+1] = v
	}
}
