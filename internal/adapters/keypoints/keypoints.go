// Package keypoints loads pose-estimation keypoint files and discovers
// dataset layouts on disk. It is the only adapter that reads files.
//
// A keypoint file is JSON produced by the pose-estimation stage:
//
//	{
//	  "fps": 59.94,
//	  "total_frames": 9481,
//	  "frames": [
//	    {"keypoints": [[x, y], ...17], "keypoint_scores": [...17]},
//	    ...
//	  ]
//	}
package keypoints

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mgreen/swinglab/internal/domain/swing"
)

// numKeypoints is the COCO-17 pose skeleton size.
const numKeypoints = 17

// Frame holds one frame of pose output.
type Frame struct {
	Keypoints [][2]float64 `json:"keypoints"`
	Scores    []float64    `json:"keypoint_scores"`
}

// Data is a parsed keypoint file.
type Data struct {
	FPS         float64 `json:"fps"`
	TotalFrames int     `json:"total_frames"`
	Frames      []Frame `json:"frames"`
}

// Load reads and validates a keypoint JSON file.
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keypoints %s: %w", path, err)
	}
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse keypoints %s: %w", path, ErrMalformed)
	}
	if len(d.Frames) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoFrames)
	}
	if d.FPS <= 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrBadMeta)
	}
	for i, f := range d.Frames {
		if len(f.Keypoints) != numKeypoints || len(f.Scores) != numKeypoints {
			return nil, fmt.Errorf("%s frame %d: %w", path, i, ErrBadFrame)
		}
	}
	if d.TotalFrames < len(d.Frames) {
		d.TotalFrames = len(d.Frames)
	}
	return &d, nil
}

// NumFrames returns the number of keypoint frames.
func (d *Data) NumFrames() int { return len(d.Frames) }

// KeypointX returns the x coordinate of keypoint kp at the given frame.
func (d *Data) KeypointX(frame, kp int) float64 {
	return d.Frames[frame].Keypoints[kp][0]
}

// WristSignals extracts the six per-frame wrist channels consumed by the
// combined-signal builder: x left/right, y left/right, confidence
// left/right.
func (d *Data) WristSignals() (xl, xr, yl, yr, cl, cr []float64) {
	n := len(d.Frames)
	xl = make([]float64, n)
	xr = make([]float64, n)
	yl = make([]float64, n)
	yr = make([]float64, n)
	cl = make([]float64, n)
	cr = make([]float64, n)
	for i, f := range d.Frames {
		xl[i] = f.Keypoints[swing.LeftWrist][0]
		xr[i] = f.Keypoints[swing.RightWrist][0]
		yl[i] = f.Keypoints[swing.LeftWrist][1]
		yr[i] = f.Keypoints[swing.RightWrist][1]
		cl[i] = f.Scores[swing.LeftWrist]
		cr[i] = f.Scores[swing.RightWrist]
	}
	return xl, xr, yl, yr, cl, cr
}

// WristConf returns the mean of the two wrist scores at the given frame.
func (d *Data) WristConf(frame int) float64 {
	f := d.Frames[frame]
	return (f.Scores[swing.LeftWrist] + f.Scores[swing.RightWrist]) / 2.0
}

// Video is one discovered dataset entry.
type Video struct {
	Name         string
	KeypointPath string
}

// Discover scans a dataset directory for keypoint files, accepting either
// the nested capture layout <dir>/<name>/keypoints/<name>.json or a flat
// <dir>/<name>.json. Names listed in skip are excluded. Results come back
// sorted by name.
func Discover(dir string, skip []string) ([]Video, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan dataset %s: %w", dir, err)
	}
	skipSet := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipSet[s] = true
	}
	var out []Video
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			if skipSet[name] {
				continue
			}
			nested := filepath.Join(dir, name, "keypoints", name+".json")
			if fileExists(nested) {
				out = append(out, Video{Name: name, KeypointPath: nested})
			}
			continue
		}
		if filepath.Ext(name) != ".json" {
			continue
		}
		base := name[:len(name)-len(".json")]
		if skipSet[base] {
			continue
		}
		out = append(out, Video{Name: base, KeypointPath: filepath.Join(dir, name)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
