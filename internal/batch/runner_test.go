package batch_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/mgreen/swinglab/internal/batch"
	"github.com/mgreen/swinglab/internal/domain/swing"
	"github.com/mgreen/swinglab/internal/export"
	"github.com/mgreen/swinglab/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// writeKeypointFile writes a synthetic keypoint JSON with cosine-bell wrist
// dips centered on the given frames.
func writeKeypointFile(t *testing.T, path string, totalFrames int, centers []int) {
	t.Helper()

	dip := func(i int) float64 {
		for _, c := range centers {
			d := i - c
			if d < 0 {
				d = -d
			}
			if d <= 80 {
				return 300 * 0.5 * (1 + math.Cos(math.Pi*float64(d)/80))
			}
		}
		return 0
	}

	type frame struct {
		Keypoints [][2]float64 `json:"keypoints"`
		Scores    []float64    `json:"keypoint_scores"`
	}
	frames := make([]frame, totalFrames)
	for i := range frames {
		x := 1000 - dip(i)
		y := 1400 - dip(i)
		kps := make([][2]float64, 17)
		scores := make([]float64, 17)
		for k := range kps {
			kps[k] = [2]float64{x, y}
			scores[k] = 0.9
		}
		frames[i] = frame{Keypoints: kps, Scores: scores}
	}

	doc := map[string]interface{}{
		"fps":          60.0,
		"total_frames": totalFrames,
		"frames":       frames,
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal keypoints: %v", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write keypoints: %v", err)
	}
}

func TestBatchRun(t *testing.T) {
	Convey("Given a dataset with two analyzable videos", t, func() {
		dataset := t.TempDir()
		out := filepath.Join(t.TempDir(), "out")
		writeKeypointFile(t, filepath.Join(dataset, "IMG_1171.json"), 2800, []int{600, 1400, 2200})
		writeKeypointFile(t, filepath.Join(dataset, "IMG_1205.json"), 2800, []int{600, 1400, 2200})

		config := &batch.Config{
			DatasetDir: dataset,
			OutDir:     out,
			Contact:    true,
			CSV:        true,
			Workers:    2,
			Params:     swing.DefaultParams(),
		}

		Convey("When running the batch", func() {
			err := batch.Run(context.Background(), config)

			Convey("Then it should complete without error", func() {
				So(err, ShouldBeNil)
			})

			Convey("And it should write a signal plot per video", func() {
				So(err, ShouldBeNil)
				for _, name := range []string{"IMG_1171", "IMG_1205"} {
					plot := filepath.Join(out, name, name+"_detection.png")
					_, statErr := os.Stat(plot)
					So(statErr, ShouldBeNil)
				}
			})

			Convey("And it should export the backswing CSV", func() {
				So(err, ShouldBeNil)
				raw, readErr := os.ReadFile(filepath.Join(out, export.BackswingFile))
				So(readErr, ShouldBeNil)
				So(string(raw), ShouldContainSubstring, "IMG_1171")
				So(string(raw), ShouldContainSubstring, "IMG_1205")
			})

			Convey("And clean videos should not produce a problems dir", func() {
				So(err, ShouldBeNil)
				_, statErr := os.Stat(filepath.Join(out, "problems"))
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})
	})
}

func TestBatchRunProblems(t *testing.T) {
	Convey("Given a dataset with a single-swing video", t, func() {
		dataset := t.TempDir()
		out := filepath.Join(t.TempDir(), "out")
		writeKeypointFile(t, filepath.Join(dataset, "IMG_1300.json"), 2800, []int{1400})

		config := &batch.Config{
			DatasetDir: dataset,
			OutDir:     out,
			Workers:    1,
			Params:     swing.DefaultParams(),
		}

		Convey("When running the batch", func() {
			err := batch.Run(context.Background(), config)

			Convey("Then it should flag the video and write a problem summary", func() {
				So(err, ShouldBeNil)
				raw, readErr := os.ReadFile(filepath.Join(out, "problems", "summary.txt"))
				So(readErr, ShouldBeNil)
				So(string(raw), ShouldContainSubstring, "IMG_1300:")
				So(string(raw), ShouldContainSubstring, "only 1 swing(s)")
			})

			Convey("And the flagged video's plot should be copied to the problems dir", func() {
				So(err, ShouldBeNil)
				_, statErr := os.Stat(filepath.Join(out, "problems", "IMG_1300_detection.png"))
				So(statErr, ShouldBeNil)
			})
		})
	})
}

func TestBatchRunEdgeCases(t *testing.T) {
	Convey("Given batch run edge cases", t, func() {
		Convey("When the dataset directory is empty", func() {
			config := &batch.Config{
				DatasetDir: t.TempDir(),
				OutDir:     filepath.Join(t.TempDir(), "out"),
				Workers:    1,
				Params:     swing.DefaultParams(),
			}

			err := batch.Run(context.Background(), config)

			Convey("Then it should report no videos", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, batch.ErrNoVideos), ShouldBeTrue)
			})
		})

		Convey("When the dataset directory does not exist", func() {
			config := &batch.Config{
				DatasetDir: "/nonexistent/dataset",
				OutDir:     filepath.Join(t.TempDir(), "out"),
				Workers:    1,
				Params:     swing.DefaultParams(),
			}

			err := batch.Run(context.Background(), config)

			Convey("Then it should fail discovery", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When a skipped video is the only one present", func() {
			dataset := t.TempDir()
			writeKeypointFile(t, filepath.Join(dataset, "IMG_1171.json"), 2800, []int{600, 1400, 2200})

			config := &batch.Config{
				DatasetDir: dataset,
				OutDir:     filepath.Join(t.TempDir(), "out"),
				Skip:       []string{"IMG_1171"},
				Workers:    1,
				Params:     swing.DefaultParams(),
			}

			err := batch.Run(context.Background(), config)

			Convey("Then it should report no videos", func() {
				So(errors.Is(err, batch.ErrNoVideos), ShouldBeTrue)
			})
		})

		Convey("When a keypoint file is malformed", func() {
			dataset := t.TempDir()
			out := filepath.Join(t.TempDir(), "out")
			writeKeypointFile(t, filepath.Join(dataset, "IMG_1171.json"), 2800, []int{600, 1400, 2200})
			So(os.WriteFile(filepath.Join(dataset, "IMG_9999.json"), []byte("not json"), 0o644), ShouldBeNil)

			config := &batch.Config{
				DatasetDir: dataset,
				OutDir:     out,
				Workers:    2,
				Params:     swing.DefaultParams(),
			}

			err := batch.Run(context.Background(), config)

			Convey("Then the good video should still be analyzed", func() {
				So(err, ShouldBeNil)
				_, statErr := os.Stat(filepath.Join(out, "IMG_1171", "IMG_1171_detection.png"))
				So(statErr, ShouldBeNil)
			})
		})

		Convey("When the context is already cancelled", func() {
			dataset := t.TempDir()
			writeKeypointFile(t, filepath.Join(dataset, "IMG_1171.json"), 2800, []int{600, 1400, 2200})

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			config := &batch.Config{
				DatasetDir: dataset,
				OutDir:     filepath.Join(t.TempDir(), "out"),
				Workers:    1,
				Params:     swing.DefaultParams(),
			}

			err := batch.Run(ctx, config)

			Convey("Then it should report cancellation", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}
