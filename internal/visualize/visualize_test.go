package visualize_test

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/mgreen/swinglab/internal/visualize"
	"github.com/smartystreets/goconvey/convey"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func rampSignal(n int) []float64 {
	sig := make([]float64, n)
	for i := range sig {
		sig[i] = 2000 + 100*math.Sin(float64(i)/40)
	}
	return sig
}

func TestSwingPlot(t *testing.T) {
	convey.Convey("Given a wrist signal with detections", t, func() {
		combined := rampSignal(600)
		smoothed := rampSignal(600)

		convey.Convey("When rendering a plot", func() {
			png, err := visualize.SwingPlot("IMG_1171", combined, smoothed, []int{120, 400}, []int{150})

			convey.Convey("Then it should produce a PNG", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(png), convey.ShouldBeGreaterThan, 0)
				convey.So(bytes.HasPrefix(png, pngMagic), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When markers fall outside the signal", func() {
			png, err := visualize.SwingPlot("IMG_1171", combined, smoothed, []int{-5, 9000}, nil)

			convey.Convey("Then they should be dropped without error", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(png), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When the signal is empty", func() {
			_, err := visualize.SwingPlot("IMG_1171", nil, nil, nil, nil)

			convey.Convey("Then it should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestWritePlot(t *testing.T) {
	convey.Convey("Given an output directory", t, func() {
		dir := filepath.Join(t.TempDir(), "plots")
		combined := rampSignal(300)

		convey.Convey("When writing a plot", func() {
			path, err := visualize.WritePlot(dir, "IMG_1205", combined, combined, []int{100}, []int{140})

			convey.Convey("Then the file should exist on disk", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(path, convey.ShouldEqual, filepath.Join(dir, "IMG_1205_detection.png"))

				data, readErr := os.ReadFile(path)
				convey.So(readErr, convey.ShouldBeNil)
				convey.So(bytes.HasPrefix(data, pngMagic), convey.ShouldBeTrue)
			})
		})
	})
}
