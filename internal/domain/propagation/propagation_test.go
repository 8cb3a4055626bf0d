package propagation_test

import (
	"testing"

	"github.com/venuelab/stagecraft/internal/domain/band"
	"github.com/venuelab/stagecraft/internal/domain/geo"
	"github.com/venuelab/stagecraft/internal/domain/model"
	"github.com/venuelab/stagecraft/internal/domain/propagation"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBandSPL(t *testing.T) {
	Convey("Given inverse-square propagation", t, func() {
		Convey("Doubling the distance should lose about 6 dB", func() {
			// 125 Hz has negligible air absorption over these distances.
			at10 := propagation.BandSPL(10, 120, 125, 0)
			at20 := propagation.BandSPL(20, 120, 125, 0)
			So(at10-at20, ShouldAlmostEqual, 6, 0.05)
		})

		Convey("Air absorption should bite hardest at 8 kHz", func() {
			low := propagation.BandSPL(50, 120, 125, 0)
			high := propagation.BandSPL(50, 120, 8000, 0)
			So(high, ShouldBeLessThan, low)
			So(propagation.AirAbsorption(8000), ShouldBeGreaterThan, propagation.AirAbsorption(125))
		})

		Convey("Zero distance should clamp instead of dividing by zero", func() {
			spl := propagation.BandSPL(0, 100, 1000, 0)
			So(spl, ShouldBeGreaterThan, 100) // 1 cm away is louder than 1 m
		})

		Convey("The result should floor at 0 dB", func() {
			So(propagation.BandSPL(1000, 20, 8000, 0), ShouldEqual, 0)
		})

		Convey("Off-axis attenuation should subtract directly", func() {
			on := propagation.BandSPL(10, 120, 1000, 0)
			off := propagation.BandSPL(10, 120, 1000, 6)
			So(on-off, ShouldAlmostEqual, 6, 1e-9)
		})
	})
}

func TestCastRay(t *testing.T) {
	Convey("Given a 130 dB source aimed at a listener 10 m away", t, func() {
		source := model.SourceSpec{
			ID:         "main-l",
			Position:   geo.V(0, 5, 0),
			Aim:        geo.V(0, 0, 1),
			MaxSPL:     130,
			Dispersion: model.Dispersion{Horizontal: 90, Vertical: 60},
		}
		listener := geo.V(0, 5, 10)

		result := propagation.CastRay(source, listener)

		Convey("Then the on-axis 1 kHz intensity should be about 110 dB", func() {
			So(result.Distance, ShouldAlmostEqual, 10, 1e-9)
			So(result.OffAxisDB, ShouldAlmostEqual, 0, 1e-9)
			So(result.Intensity, ShouldAlmostEqual, 110, 0.1)
		})

		Convey("And every octave band should carry a level", func() {
			So(len(result.PerBand), ShouldEqual, len(band.Centers))
		})

		Convey("And an off-axis listener should read lower", func() {
			side := propagation.CastRay(source, geo.V(10, 5, 0))
			So(side.Intensity, ShouldBeLessThan, result.Intensity)
			So(side.OffAxisDB, ShouldBeGreaterThan, 0)
		})

		Convey("And results should be identical across calls", func() {
			again := propagation.CastRay(source, listener)
			So(again, ShouldResemble, result)
		})
	})

	Convey("Given a line-array hang", t, func() {
		array := model.SourceSpec{
			ID:         "array",
			Position:   geo.V(0, 8, 0),
			Aim:        geo.V(0, 0, 1),
			MaxSPL:     130,
			Dispersion: model.Dispersion{Horizontal: 110, Vertical: 15},
			ArrayCount: 8,
			BoxHeight:  0.35,
		}
		single := array
		single.ArrayCount = 1

		Convey("Coupling should add low-frequency level over a single box", func() {
			at := geo.V(0, 8, 20)
			arrayRay := propagation.CastRay(array, at)
			singleRay := propagation.CastRay(single, at)
			So(arrayRay.PerBand[125], ShouldBeGreaterThan, singleRay.PerBand[125])
		})
	})
}
