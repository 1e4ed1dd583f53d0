package pipeline_test

import (
	"context"
	"math"
	"testing"

	"github.com/mgreen/swinglab/internal/adapters/keypoints"
	"github.com/mgreen/swinglab/internal/domain/swing"
	"github.com/mgreen/swinglab/internal/pipeline"
	. "github.com/smartystreets/goconvey/convey"
)

// synthData builds keypoint data whose wrists dip (backswing) and spike
// (contact) around each swing center, spacing frames apart.
func synthData(swings, spacing int, fps float64) *keypoints.Data {
	total := (swings + 1) * spacing
	d := &keypoints.Data{FPS: fps, TotalFrames: total}
	for i := 0; i < total; i++ {
		x, y := 1000.0, 1000.0
		for s := 1; s <= swings; s++ {
			c := s * spacing
			off := i - c
			if off >= -80 && off <= 80 {
				w := 0.5 * (1 + math.Cos(math.Pi*float64(off)/80.0))
				x -= 300 * w
				y -= 300 * w
			}
			// Contact bump 50 frames after the top.
			coff := i - (c + 50)
			if coff >= -8 && coff <= 8 {
				w := 0.5 * (1 + math.Cos(math.Pi*float64(coff)/8.0))
				x += 250 * w
				y += 250 * w
			}
		}
		var f keypoints.Frame
		for k := 0; k < 17; k++ {
			f.Keypoints = append(f.Keypoints, [2]float64{x, y})
			f.Scores = append(f.Scores, 0.9)
		}
		d.Frames = append(d.Frames, f)
	}
	return d
}

func TestDetectSwings(t *testing.T) {
	Convey("Given synthetic keypoint data with three swings", t, func() {
		p := swing.DefaultParams()
		data := synthData(3, 700, 60)

		Convey("When running backswing detection", func() {
			r, err := pipeline.DetectSwings(context.Background(), data, "IMG_1171", p)

			Convey("Then one peak lands near each swing center", func() {
				So(err, ShouldBeNil)
				So(r.Video, ShouldEqual, "IMG_1171")
				So(r.FPS, ShouldEqual, 60)
				So(r.NumSwings(), ShouldEqual, 3)
				for i, f := range r.Peaks {
					So(f, ShouldBeBetweenOrEqual, (i+1)*700-90, (i+1)*700+90)
				}
				So(r.Smoothed, ShouldHaveLength, data.NumFrames())
				So(r.Combined, ShouldHaveLength, data.NumFrames())
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := pipeline.DetectSwings(ctx, data, "IMG_1171", p)

			So(err, ShouldEqual, context.Canceled)
		})

		Convey("When the smoothing parameters are invalid", func() {
			bad := p
			bad.CoarseWindow = 10

			_, err := pipeline.DetectSwings(context.Background(), data, "IMG_1171", bad)

			So(err, ShouldNotBeNil)
		})
	})
}

func TestDetectContacts(t *testing.T) {
	Convey("Given a backswing result on data with contact bumps", t, func() {
		p := swing.DefaultParams()
		data := synthData(2, 700, 60)
		r, err := pipeline.DetectSwings(context.Background(), data, "v", p)
		So(err, ShouldBeNil)
		So(r.NumSwings(), ShouldEqual, 2)

		Convey("When running contact detection", func() {
			cr, err := pipeline.DetectContacts(context.Background(), r, p)

			Convey("Then each contact follows its backswing", func() {
				So(err, ShouldBeNil)
				So(cr.Frames, ShouldHaveLength, 2)
				for i, cf := range cr.Frames {
					So(cf, ShouldBeGreaterThan, r.Peaks[i])
					So(cf-r.Peaks[i], ShouldBeLessThanOrEqualTo, p.ContactSearchMax)
				}
			})
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := pipeline.DetectContacts(ctx, r, p)

			So(err, ShouldEqual, context.Canceled)
		})
	})
}

func TestFlagProblems(t *testing.T) {
	Convey("Given the problem screener", t, func() {
		p := swing.DefaultParams()

		Convey("A clean multi-swing result raises no flags", func() {
			data := synthData(3, 700, 60)
			r, err := pipeline.DetectSwings(context.Background(), data, "v", p)
			So(err, ShouldBeNil)

			So(pipeline.FlagProblems(r, p), ShouldBeEmpty)
		})

		Convey("A single swing flags the low count", func() {
			data := synthData(1, 700, 60)
			r, err := pipeline.DetectSwings(context.Background(), data, "v", p)
			So(err, ShouldBeNil)
			So(r.NumSwings(), ShouldEqual, 1)

			issues := pipeline.FlagProblems(r, p)

			So(issues, ShouldHaveLength, 1)
			So(issues[0], ShouldContainSubstring, "only 1 swing")
		})

		Convey("Low wrist confidence near a peak is flagged", func() {
			data := synthData(2, 700, 60)
			r, err := pipeline.DetectSwings(context.Background(), data, "v", p)
			So(err, ShouldBeNil)
			for off := -p.LowConfWindow; off <= p.LowConfWindow; off++ {
				f := &data.Frames[r.Peaks[0]+off]
				f.Scores[swing.LeftWrist] = 0.1
				f.Scores[swing.RightWrist] = 0.1
			}

			issues := pipeline.FlagProblems(r, p)

			So(issues, ShouldHaveLength, 1)
			So(issues[0], ShouldContainSubstring, "low wrist conf")
		})

		Convey("Swings closer than the gap threshold are flagged", func() {
			data := synthData(2, 700, 240)
			r, err := pipeline.DetectSwings(context.Background(), data, "v", p)
			So(err, ShouldBeNil)
			So(r.NumSwings(), ShouldEqual, 2)

			issues := pipeline.FlagProblems(r, p)

			So(issues, ShouldHaveLength, 1)
			So(issues[0], ShouldContainSubstring, "since previous swing")
		})
	})
}

func TestBuildDetection(t *testing.T) {
	Convey("Given detection and contact results", t, func() {
		p := swing.DefaultParams()
		data := synthData(2, 700, 60)
		r, err := pipeline.DetectSwings(context.Background(), data, "IMG_1171", p)
		So(err, ShouldBeNil)
		cr, err := pipeline.DetectContacts(context.Background(), r, p)
		So(err, ShouldBeNil)

		Convey("The assembled record pairs swings with contacts", func() {
			d := pipeline.BuildDetection(r, cr, []string{"swing 1: something"})

			So(d.Video, ShouldEqual, "IMG_1171")
			So(d.NumSwings(), ShouldEqual, 2)
			So(d.NumContacts(), ShouldEqual, 2)
			So(d.Swings[0].Num, ShouldEqual, 1)
			So(d.Swings[0].ContactFrame, ShouldEqual, cr.Frames[0])
			So(d.Swings[0].XYValue, ShouldAlmostEqual, r.Smoothed[r.Peaks[0]])
			So(d.Problems, ShouldResemble, []string{"swing 1: something"})
			So(d.AnalyzedAt.IsZero(), ShouldBeFalse)
		})

		Convey("Without contacts every swing gets frame -1", func() {
			d := pipeline.BuildDetection(r, nil, nil)

			So(d.NumContacts(), ShouldEqual, 0)
			for _, s := range d.Swings {
				So(s.ContactFrame, ShouldEqual, -1)
			}
		})
	})
}
