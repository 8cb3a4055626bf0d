package directivity_test

import (
	"math"
	"testing"

	"github.com/venuelab/stagecraft/internal/domain/directivity"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInterpolated(t *testing.T) {
	Convey("Given a measured dispersion table", t, func() {
		table := directivity.Table{
			250:  120,
			1000: 90,
			4000: 60,
		}

		Convey("An exact key should be returned verbatim", func() {
			So(directivity.Interpolated(1000, table, 90), ShouldEqual, 90)
		})

		Convey("Between keys the value should interpolate in log frequency", func() {
			// 2000 Hz is halfway between 1000 and 4000 in log space.
			got := directivity.Interpolated(2000, table, 90)
			So(got, ShouldAlmostEqual, 75, 1e-9)
		})

		Convey("Outside the range the edge value should clamp", func() {
			So(directivity.Interpolated(125, table, 90), ShouldEqual, 120)
			So(directivity.Interpolated(8000, table, 90), ShouldEqual, 60)
		})
	})

	Convey("Given no table", t, func() {
		Convey("The fallback should widen at low frequency", func() {
			got := directivity.Interpolated(250, nil, 90)
			So(got, ShouldAlmostEqual, 90*math.Sqrt(4), 1e-9)
		})

		Convey("The fallback should narrow above 1 kHz", func() {
			got := directivity.Interpolated(4000, nil, 90)
			So(got, ShouldAlmostEqual, 45, 1e-9)
		})

		Convey("The fallback should never exceed 180 degrees", func() {
			So(directivity.Interpolated(125, nil, 120), ShouldEqual, 180)
		})
	})
}

func TestOffAxisAttenuation(t *testing.T) {
	Convey("Given a 90 degree nominal dispersion", t, func() {
		Convey("On-axis should be 0 dB", func() {
			So(directivity.OffAxisAttenuation(0, 90), ShouldEqual, 0)
		})

		Convey("The coverage edge (half angle) should be -6 dB", func() {
			So(directivity.OffAxisAttenuation(45, 90), ShouldAlmostEqual, 6, 1e-9)
		})

		Convey("Attenuation should grow quadratically", func() {
			So(directivity.OffAxisAttenuation(90, 90), ShouldAlmostEqual, 24, 1e-9)
		})

		Convey("Attenuation should cap at 30 dB", func() {
			So(directivity.OffAxisAttenuation(180, 90), ShouldEqual, 30)
		})
	})
}

func TestLineArrayCoupling(t *testing.T) {
	Convey("Given a four-box array of 0.343 m boxes", t, func() {
		// Transition frequency: 343 / (4 * 0.343) = 250 Hz.
		n := 4
		h := 0.343

		Convey("Below transition the gain should be 10*log10(n)", func() {
			So(directivity.LineArrayCoupling(n, h, 125), ShouldAlmostEqual, 10*math.Log10(4), 1e-9)
		})

		Convey("One octave above, the gain should drop 3 dB", func() {
			So(directivity.LineArrayCoupling(n, h, 500), ShouldAlmostEqual, 10*math.Log10(4)-3, 1e-9)
		})

		Convey("At four times transition the gain should be 0", func() {
			So(directivity.LineArrayCoupling(n, h, 1000), ShouldEqual, 0)
		})

		Convey("A single box should have no coupling gain", func() {
			So(directivity.LineArrayCoupling(1, h, 125), ShouldEqual, 0)
		})
	})

	Convey("Given a sixteen-box array", t, func() {
		// Transition frequency: 343 / (16 * 0.0857) ≈ 250 Hz.
		n := 16
		h := 343.0 / (16 * 250)
		full := 10 * math.Log10(16)

		Convey("One octave above transition the decay line applies", func() {
			So(directivity.LineArrayCoupling(n, h, 500), ShouldAlmostEqual, full-3, 1e-9)
		})

		Convey("The gain should approach zero continuously at the 4x cutoff", func() {
			justBelow := directivity.LineArrayCoupling(n, h, 995)
			So(justBelow, ShouldBeGreaterThan, 0)
			So(justBelow, ShouldBeLessThan, 0.2)
			So(directivity.LineArrayCoupling(n, h, 1000), ShouldEqual, 0)
		})

		Convey("The gain should never increase with frequency", func() {
			prev := directivity.LineArrayCoupling(n, h, 125)
			for _, f := range []float64{250, 400, 500, 700, 900, 1000, 2000} {
				g := directivity.LineArrayCoupling(n, h, f)
				So(g, ShouldBeLessThanOrEqualTo, prev)
				prev = g
			}
		})
	})
}
