// Package phases holds the fixed records of the four inference optimization
// phases shown by the dashboard's pipeline diagram.
//
// The records are configuration data, not runtime state; accessors return
// copies so callers cannot mutate the canonical set.
package phases

import "errors"

// ErrUnknownPhase is returned for an out-of-range phase index.
var ErrUnknownPhase = errors.New("unknown phase index")

// Phase describes one optimization phase of the pose-estimation stage:
// wall time per video, speedup over the baseline, and the share of wall
// time spent in GPU kernels.
type Phase struct {
	Name      string  `json:"name"`
	Label     string  `json:"label"`
	WallMS    float64 `json:"wall_ms"`
	Speedup   float64 `json:"speedup"`
	KernelPct float64 `json:"kernel_pct"`
}

var all = [4]Phase{
	{Name: "baseline", Label: "Baseline (eager, batch 1)", WallMS: 5240, Speedup: 1.0, KernelPct: 0.24},
	{Name: "batched", Label: "Batched inference", WallMS: 1610, Speedup: 3.3, KernelPct: 0.51},
	{Name: "fp16", Label: "Mixed precision (fp16)", WallMS: 790, Speedup: 6.6, KernelPct: 0.68},
	{Name: "compiled", Label: "Compiled graph", WallMS: 460, Speedup: 11.4, KernelPct: 0.86},
}

// Count is the number of phases.
const Count = len(all)

// Get returns phase i.
func Get(i int) (Phase, error) {
	if i < 0 || i >= Count {
		return Phase{}, ErrUnknownPhase
	}
	return all[i], nil
}

// All returns a copy of every phase in display order.
func All() []Phase {
	out := make([]Phase, Count)
	copy(out, all[:])
	return out
}
