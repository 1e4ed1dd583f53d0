package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/mgreen/swinglab/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new in-memory deduper", t, func() {
		Convey("A fresh video is recorded", func() {
			d := dedupe.NewInMemoryDeduper()

			seen := d.SeenAndRecord(context.Background(), "IMG_1171")

			So(seen, ShouldBeFalse)
			So(d.Size(), ShouldEqual, 1)
		})

		Convey("A resubmitted video is reported as seen", func() {
			d := dedupe.NewInMemoryDeduper()
			d.SeenAndRecord(context.Background(), "IMG_1171")

			seen := d.SeenAndRecord(context.Background(), "IMG_1171")

			So(seen, ShouldBeTrue)
			So(d.Size(), ShouldEqual, 1)
		})

		Convey("Unrecord makes a video submittable again", func() {
			d := dedupe.NewInMemoryDeduper()
			d.SeenAndRecord(context.Background(), "IMG_1171")

			d.Unrecord(context.Background(), "IMG_1171")

			So(d.Size(), ShouldEqual, 0)
			So(d.SeenAndRecord(context.Background(), "IMG_1171"), ShouldBeFalse)
		})

		Convey("Unrecording an unknown video is a no-op", func() {
			d := dedupe.NewInMemoryDeduper()

			d.Unrecord(context.Background(), "nope")

			So(d.Size(), ShouldEqual, 0)
		})

		Convey("At capacity the oldest name is evicted", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			for _, v := range []string{"a", "b", "c"} {
				So(d.SeenAndRecord(context.Background(), v), ShouldBeFalse)
			}

			So(d.SeenAndRecord(context.Background(), "d"), ShouldBeFalse)

			So(d.Size(), ShouldEqual, 3)
			So(d.SeenAndRecord(context.Background(), "a"), ShouldBeFalse)
			So(d.Size(), ShouldEqual, 3)
		})

		Convey("Eviction skips names that were unrecorded in the meantime", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(2))
			d.SeenAndRecord(context.Background(), "a")
			d.SeenAndRecord(context.Background(), "b")
			d.Unrecord(context.Background(), "a")
			d.SeenAndRecord(context.Background(), "c")

			So(d.SeenAndRecord(context.Background(), "d"), ShouldBeFalse)

			So(d.Size(), ShouldEqual, 2)
			So(d.SeenAndRecord(context.Background(), "c"), ShouldBeTrue)
		})

		Convey("maxSize <= 0 disables eviction", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			for i := 0; i < 1000; i++ {
				So(d.SeenAndRecord(context.Background(), fmt.Sprintf("v-%d", i)), ShouldBeFalse)
			}

			So(d.Size(), ShouldEqual, 1000)
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given concurrent submissions", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(10000))
		const goroutines = 10
		const perGoroutine = 100

		var wg sync.WaitGroup
		for g := 0; g < goroutines; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for i := 0; i < perGoroutine; i++ {
					d.SeenAndRecord(context.Background(), fmt.Sprintf("v-%d-%d", g, i))
				}
			}(g)
		}
		wg.Wait()

		Convey("Every distinct name is recorded exactly once", func() {
			So(d.Size(), ShouldEqual, int64(goroutines*perGoroutine))
		})
	})
}
