package band_test

import (
	"testing"

	"github.com/venuelab/stagecraft/internal/domain/band"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSum(t *testing.T) {
	Convey("Given logarithmic SPL summation", t, func() {
		Convey("Two equal sources should gain 3 dB", func() {
			So(band.Sum(90, 90), ShouldAlmostEqual, 93, 0.02)
		})

		Convey("A much quieter source should barely contribute", func() {
			So(band.Sum(90, 60), ShouldAlmostEqual, 90, 0.01)
		})

		Convey("An empty summation should be 0", func() {
			So(band.Sum(), ShouldEqual, 0)
		})
	})
}

func TestComposites(t *testing.T) {
	Convey("Given a flat band map", t, func() {
		levels := band.Levels{}
		for _, f := range band.Centers {
			levels[f] = 90
		}

		Convey("The linear composite should exceed any single band", func() {
			linear := band.CompositeLinear(levels)
			So(linear, ShouldBeGreaterThan, 90)
			// 7 equal bands: 90 + 10*log10(7)
			So(linear, ShouldAlmostEqual, 98.45, 0.05)
		})

		Convey("The A-weighted composite should be below the linear one", func() {
			So(band.CompositeAWeighted(levels), ShouldBeLessThan, band.CompositeLinear(levels))
		})

		Convey("The 1 kHz band should carry no A-weighting correction", func() {
			So(band.AWeight(1000), ShouldEqual, 0)
			So(band.AWeight(125), ShouldBeLessThan, 0)
		})

		Convey("An empty map should collapse to 0", func() {
			So(band.CompositeLinear(band.Levels{}), ShouldEqual, 0)
		})
	})
}

func TestMerge(t *testing.T) {
	Convey("Given two sources with per-band maps", t, func() {
		a := band.Levels{1000: 90, 2000: 80}
		b := band.Levels{1000: 90, 4000: 70}

		merged := band.Merge(a, b)

		Convey("Shared bands should sum logarithmically", func() {
			So(merged[1000], ShouldAlmostEqual, 93, 0.02)
		})

		Convey("Bands present in one source should pass through", func() {
			So(merged[2000], ShouldAlmostEqual, 80, 1e-9)
			So(merged[4000], ShouldAlmostEqual, 70, 1e-9)
		})

		Convey("Absent bands should stay absent", func() {
			_, ok := merged[125]
			So(ok, ShouldBeFalse)
		})

		Convey("Merging then weighting should not double-count weighting", func() {
			composite := band.CompositeAWeighted(merged)
			So(composite, ShouldBeGreaterThan, 90)
		})
	})
}

func TestIsCenter(t *testing.T) {
	Convey("Given the octave band table", t, func() {
		So(band.IsCenter(1000), ShouldBeTrue)
		So(band.IsCenter(440), ShouldBeFalse)
		So(len(band.Centers), ShouldEqual, 7)
	})
}
