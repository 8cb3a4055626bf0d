package occlusion_test

import (
	"testing"

	"github.com/venuelab/stagecraft/internal/domain/geo"
	"github.com/venuelab/stagecraft/internal/domain/model"
	"github.com/venuelab/stagecraft/internal/domain/occlusion"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCheck(t *testing.T) {
	Convey("Given a source and listener 20 m apart", t, func() {
		source := geo.V(0, 2, 0)
		listener := geo.V(20, 2, 0)

		Convey("When a large scenery wall sits on the direct path", func() {
			wall := model.Obstacle{
				ID:         "scenery-1",
				Category:   model.ObstacleScenery,
				Position:   geo.V(10, 2, 0),
				Dimensions: geo.V(1, 6, 6),
			}

			r := occlusion.Check(source, listener, wall, 1000)

			Convey("Then it should occlude with positive attenuation", func() {
				So(r.Occluded, ShouldBeTrue)
				So(r.AttenuationDB, ShouldBeGreaterThan, 0)
				So(r.ObstacleID, ShouldEqual, "scenery-1")
			})

			Convey("And a blocker much larger than the Fresnel zone should be a full shadow", func() {
				So(r.BlockedFraction, ShouldEqual, 1)
				So(r.Shadow, ShouldEqual, occlusion.ShadowFull)
				So(r.AttenuationDB, ShouldEqual, 20)
				So(r.DiffractionPossible, ShouldBeFalse)
			})
		})

		Convey("When a thin truss chord crosses the path", func() {
			chord := model.Obstacle{
				ID:         "truss-1",
				Category:   model.ObstacleTruss,
				Position:   geo.V(10, 2, 0),
				Dimensions: geo.V(0.05, 0.05, 4),
			}

			r := occlusion.Check(source, listener, chord, 125)

			Convey("Then diffraction should dominate", func() {
				So(r.Occluded, ShouldBeTrue)
				So(r.Shadow, ShouldEqual, occlusion.ShadowEdge)
				So(r.DiffractionPossible, ShouldBeTrue)
				So(r.AttenuationDB, ShouldBeLessThan, 6)
			})
		})

		Convey("When the obstacle is off the direct path", func() {
			aside := model.Obstacle{
				ID:         "stage-1",
				Category:   model.ObstacleStage,
				Position:   geo.V(10, 20, 0),
				Dimensions: geo.V(2, 2, 2),
			}

			r := occlusion.Check(source, listener, aside, 1000)

			Convey("Then there should be no occlusion at all", func() {
				So(r.Occluded, ShouldBeFalse)
				So(r.AttenuationDB, ShouldEqual, 0)
				So(r.Shadow, ShouldEqual, occlusion.ShadowNone)
			})
		})

		Convey("When the obstacle lies behind the listener", func() {
			behind := model.Obstacle{
				ID:         "wall-rear",
				Category:   model.ObstacleWall,
				Position:   geo.V(30, 2, 0),
				Dimensions: geo.V(1, 10, 10),
			}

			r := occlusion.Check(source, listener, behind, 1000)

			Convey("Then the hit beyond the listener should not count", func() {
				So(r.Occluded, ShouldBeFalse)
			})
		})

		Convey("When source and listener coincide", func() {
			r := occlusion.Check(source, source, model.Obstacle{}, 1000)
			So(r.Occluded, ShouldBeFalse)
		})
	})
}

func TestWorstOf(t *testing.T) {
	Convey("Given several obstacles on and off the path", t, func() {
		source := geo.V(0, 2, 0)
		listener := geo.V(20, 2, 0)
		obstacles := []model.Obstacle{
			{ID: "thin", Position: geo.V(5, 2, 0), Dimensions: geo.V(0.05, 0.05, 2)},
			{ID: "wall", Position: geo.V(10, 2, 0), Dimensions: geo.V(1, 8, 8)},
			{ID: "aside", Position: geo.V(10, 30, 0), Dimensions: geo.V(5, 5, 5)},
		}

		r := occlusion.WorstOf(source, listener, obstacles, 1000)

		Convey("Then only the single worst case should be reported", func() {
			So(r.Occluded, ShouldBeTrue)
			So(r.ObstacleID, ShouldEqual, "wall")
			So(r.AttenuationDB, ShouldEqual, 20)
		})
	})

	Convey("Given no obstacles", t, func() {
		r := occlusion.WorstOf(geo.V(0, 0, 0), geo.V(1, 0, 0), nil, 1000)
		So(r.Occluded, ShouldBeFalse)
	})
}

func TestBandScaling(t *testing.T) {
	Convey("Given a base 1 kHz occlusion attenuation", t, func() {
		base := 10.0

		Convey("Low bands should be attenuated less, high bands more", func() {
			So(occlusion.ForBand(base, 125), ShouldAlmostEqual, 5, 1e-9)
			So(occlusion.ForBand(base, 1000), ShouldAlmostEqual, 10, 1e-9)
			So(occlusion.ForBand(base, 8000), ShouldAlmostEqual, 16, 1e-9)
		})

		Convey("Unknown frequencies should pass through unscaled", func() {
			So(occlusion.ForBand(base, 440), ShouldAlmostEqual, 10, 1e-9)
		})
	})
}
