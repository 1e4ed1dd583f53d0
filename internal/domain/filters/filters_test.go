package filters_test

import (
	"testing"

	"github.com/mgreen/swinglab/internal/domain/filters"
	"github.com/mgreen/swinglab/internal/domain/swing"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeKeypoints serves wrist and shoulder x coordinates from fixed maps.
type fakeKeypoints struct {
	wristX    map[int]float64
	shoulderX map[int]float64
}

func (f *fakeKeypoints) KeypointX(frame, keypoint int) float64 {
	switch keypoint {
	case swing.LeftWrist, swing.RightWrist:
		return f.wristX[frame]
	default:
		return f.shoulderX[frame]
	}
}

func TestDedup(t *testing.T) {
	Convey("Given the dedup filter", t, func() {
		Convey("Duplicates are dropped and order restored", func() {
			out, log := filters.Dedup([]int{300, 100, 300, 200})

			So(out, ShouldResemble, []int{100, 200, 300})
			So(log, ShouldHaveLength, 1)
		})

		Convey("A clean input passes silently", func() {
			out, log := filters.Dedup([]int{100, 200})

			So(out, ShouldResemble, []int{100, 200})
			So(log, ShouldBeEmpty)
		})

		Convey("Empty input stays empty", func() {
			out, log := filters.Dedup(nil)

			So(out, ShouldBeEmpty)
			So(log, ShouldBeEmpty)
		})
	})
}

func TestTrimEnd(t *testing.T) {
	Convey("Given the end-of-video trim", t, func() {
		Convey("Peaks past the cutoff are dropped", func() {
			out, log := filters.TrimEnd([]int{100, 9800}, 10000, 0.03)

			So(out, ShouldResemble, []int{100})
			So(log, ShouldHaveLength, 1)
		})

		Convey("A peak exactly at the cutoff is dropped", func() {
			out, _ := filters.TrimEnd([]int{9700}, 10000, 0.03)

			So(out, ShouldBeEmpty)
		})
	})
}

func TestMergeClose(t *testing.T) {
	Convey("Given the too-close merge", t, func() {
		smoothed := make([]float64, 3000)
		for i := range smoothed {
			smoothed[i] = 1000
		}

		Convey("Of two close peaks the deeper one survives", func() {
			smoothed[500] = 900
			smoothed[700] = 800

			out, log := filters.MergeClose([]int{500, 700, 2000}, smoothed, 600)

			So(out, ShouldResemble, []int{700, 2000})
			So(log, ShouldHaveLength, 1)
		})

		Convey("If the earlier peak is deeper it is kept", func() {
			smoothed[500] = 700
			smoothed[700] = 800

			out, _ := filters.MergeClose([]int{500, 700}, smoothed, 600)

			So(out, ShouldResemble, []int{500})
		})

		Convey("Well-separated peaks pass through", func() {
			out, log := filters.MergeClose([]int{100, 900, 1700}, smoothed, 600)

			So(out, ShouldResemble, []int{100, 900, 1700})
			So(log, ShouldBeEmpty)
		})
	})
}

func TestMADOutlier(t *testing.T) {
	Convey("Given the x+y MAD outlier filter", t, func() {
		smoothed := make([]float64, 5000)

		Convey("A peak far above the cluster is removed", func() {
			smoothed[100] = 1000
			smoothed[800] = 1010
			smoothed[1500] = 990
			smoothed[2200] = 2500

			out, log := filters.MADOutlier([]int{100, 800, 1500, 2200}, smoothed, 3.0, 50, 3)

			So(out, ShouldResemble, []int{100, 800, 1500})
			So(log, ShouldHaveLength, 1)
		})

		Convey("The MAD floor keeps a tight cluster intact", func() {
			smoothed[100] = 1000
			smoothed[800] = 1001
			smoothed[1500] = 1002

			out, _ := filters.MADOutlier([]int{100, 800, 1500}, smoothed, 3.0, 50, 3)

			So(out, ShouldHaveLength, 3)
		})

		Convey("Fewer peaks than the minimum skips the filter", func() {
			smoothed[100] = 1000
			smoothed[800] = 9000

			out, log := filters.MADOutlier([]int{100, 800}, smoothed, 3.0, 50, 3)

			So(out, ShouldResemble, []int{100, 800})
			So(log, ShouldBeEmpty)
		})
	})
}

func TestFollowThrough(t *testing.T) {
	Convey("Given the follow-through rejection filter", t, func() {
		p := swing.DefaultParams()

		Convey("A peak with hands far in front of the shoulders is removed", func() {
			kp := &fakeKeypoints{
				wristX:    map[int]float64{100: 480, 800: 490, 1500: 470, 2200: 900},
				shoulderX: map[int]float64{100: 500, 800: 500, 1500: 500, 2200: 500},
			}

			out, log := filters.FollowThrough([]int{100, 800, 1500, 2200}, kp, p)

			So(out, ShouldResemble, []int{100, 800, 1500})
			So(log, ShouldHaveLength, 1)
		})

		Convey("A nil keypoint source skips the filter", func() {
			out, log := filters.FollowThrough([]int{100, 2200}, nil, p)

			So(out, ShouldResemble, []int{100, 2200})
			So(log, ShouldBeEmpty)
		})

		Convey("Too few peaks skips the filter", func() {
			kp := &fakeKeypoints{
				wristX:    map[int]float64{100: 480, 2200: 900},
				shoulderX: map[int]float64{100: 500, 2200: 500},
			}

			out, _ := filters.FollowThrough([]int{100, 2200}, kp, p)

			So(out, ShouldResemble, []int{100, 2200})
		})
	})
}

func TestRunAll(t *testing.T) {
	Convey("Given the chained filter pipeline", t, func() {
		p := swing.DefaultParams()
		smoothed := make([]float64, 10000)
		for i := range smoothed {
			smoothed[i] = 1000
		}
		smoothed[1000] = 600
		smoothed[1100] = 500
		smoothed[3000] = 620
		smoothed[5000] = 610
		smoothed[9900] = 400

		Convey("When peaks carry duplicates, a close pair, and an end-of-video hit", func() {
			in := []int{1000, 1100, 1100, 3000, 5000, 9900}

			out, log := filters.RunAll(in, smoothed, 10000, nil, p)

			Convey("Then each stage contributes and survivors stay ordered", func() {
				So(out, ShouldResemble, []int{1100, 3000, 5000})
				So(len(log), ShouldBeGreaterThanOrEqualTo, 3)
			})
		})

		Convey("When all peaks fall past the cutoff", func() {
			out, _ := filters.RunAll([]int{9800, 9900}, smoothed, 10000, nil, p)

			So(out, ShouldBeEmpty)
		})

		Convey("Empty input yields empty output and no log", func() {
			out, log := filters.RunAll(nil, smoothed, 10000, nil, p)

			So(out, ShouldBeEmpty)
			So(log, ShouldBeEmpty)
		})
	})
}
