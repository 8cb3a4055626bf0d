package coverage_test

import (
	"context"
	"testing"

	"github.com/venuelab/stagecraft/internal/domain/band"
	"github.com/venuelab/stagecraft/internal/domain/coverage"
	"github.com/venuelab/stagecraft/internal/domain/geo"
	"github.com/venuelab/stagecraft/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func pa(id string, pos geo.Vector) model.SourceSpec {
	return model.SourceSpec{
		ID:         id,
		Position:   pos,
		Aim:        geo.V(0, 0, 1),
		MaxSPL:     130,
		Dispersion: model.Dispersion{Horizontal: 90, Vertical: 60},
	}
}

func TestClassify(t *testing.T) {
	Convey("Given the quality thresholds", t, func() {
		So(coverage.Classify(80), ShouldEqual, coverage.QualityPoor)
		So(coverage.Classify(87), ShouldEqual, coverage.QualityAcceptable)
		So(coverage.Classify(95), ShouldEqual, coverage.QualityGood)
		So(coverage.Classify(102), ShouldEqual, coverage.QualityExcellent)
		So(coverage.Classify(110), ShouldEqual, coverage.QualityExcessive)
	})
}

func TestSPLAt(t *testing.T) {
	Convey("Given two identical co-located sources", t, func() {
		scene := coverage.Scene{
			Sources: []model.SourceSpec{
				pa("a", geo.V(0, 2, 0)),
				pa("b", geo.V(0, 2, 0)),
			},
		}
		listener := geo.V(0, 2, 10)

		Convey("When combining without the phase heuristic", func() {
			one := coverage.SPLAt(listener, coverage.Scene{Sources: scene.Sources[:1]}, coverage.Options{})
			two := coverage.SPLAt(listener, scene, coverage.Options{})

			Convey("Then the pair should sit 3 dB above a single source", func() {
				So(two.SPL, ShouldAlmostEqual, one.SPL+3, 0.05)
			})

			Convey("And the per-source breakdown should list both", func() {
				So(len(two.BySource), ShouldEqual, 2)
				So(two.BySource[0].SourceID, ShouldEqual, "a")
				So(two.BySource[1].SourceID, ShouldEqual, "b")
			})
		})

		Convey("When the phase heuristic is enabled for equidistant sources", func() {
			plain := coverage.SPLAt(listener, scene, coverage.Options{})
			phased := coverage.SPLAt(listener, scene, coverage.Options{PhaseHeuristic: true})

			Convey("Then equal arrivals should be constructive (+0.5 dB)", func() {
				So(phased.PhaseDB, ShouldEqual, 0.5)
				So(phased.SPL, ShouldAlmostEqual, plain.SPL+0.5, 1e-9)
			})
		})

		Convey("When a scene has a single source the phase correction is 0", func() {
			one := coverage.SPLAt(listener, coverage.Scene{Sources: scene.Sources[:1]}, coverage.Options{PhaseHeuristic: true})
			So(one.PhaseDB, ShouldEqual, 0)
		})
	})

	Convey("Given an obstacle between source and listener", t, func() {
		scene := coverage.Scene{
			Sources: []model.SourceSpec{pa("a", geo.V(0, 2, 0))},
			Obstacles: []model.Obstacle{{
				ID:         "wall",
				Category:   model.ObstacleWall,
				Position:   geo.V(0, 2, 5),
				Dimensions: geo.V(8, 8, 1),
			}},
		}
		listener := geo.V(0, 2, 10)

		open := coverage.SPLAt(listener, scene, coverage.Options{})
		shadowed := coverage.SPLAt(listener, scene, coverage.Options{IncludeOcclusion: true})

		Convey("Then occlusion should lower the combined level", func() {
			So(shadowed.SPL, ShouldBeLessThan, open.SPL)
			So(shadowed.BySource[0].Occluded, ShouldBeTrue)
		})
	})

	Convey("Given a reflective side wall", t, func() {
		scene := coverage.Scene{
			Sources: []model.SourceSpec{pa("a", geo.V(0, 2, 0))},
			Surfaces: []model.ReflectionSurface{{
				ID:         "wall-left",
				Plane:      geo.PlaneFromPointNormal(geo.V(-4, 0, 0), geo.V(1, 0, 0)),
				Material:   "concrete",
				Absorption: band.Levels{125: 0.02, 250: 0.02, 500: 0.02, 1000: 0.02, 2000: 0.02, 4000: 0.03, 8000: 0.05},
			}},
		}
		listener := geo.V(0, 2, 10)

		dry := coverage.SPLAt(listener, scene, coverage.Options{})
		wet := coverage.SPLAt(listener, scene, coverage.Options{IncludeReflections: true})

		Convey("Then early reflections should raise the level", func() {
			So(wet.SPL, ShouldBeGreaterThan, dry.SPL)
		})
	})

	Convey("Idempotence: identical inputs give identical results", t, func() {
		scene := coverage.Scene{Sources: []model.SourceSpec{pa("a", geo.V(0, 2, 0))}}
		opts := coverage.Options{PhaseHeuristic: true, IncludeOcclusion: true}
		p := geo.V(3, 1.7, 12)
		first := coverage.SPLAt(p, scene, opts)
		second := coverage.SPLAt(p, scene, opts)
		So(second, ShouldResemble, first)
	})
}

func TestGenerate(t *testing.T) {
	Convey("Given a simple scene and region", t, func() {
		req := coverage.GridRequest{
			Scene:      coverage.Scene{Sources: []model.SourceSpec{pa("a", geo.V(0, 4, -2))}},
			Region:     coverage.Region{MinX: -10, MinZ: 0, MaxX: 10, MaxZ: 20},
			Resolution: 2,
			Height:     1.7,
		}

		result, err := coverage.Generate(context.Background(), req)

		Convey("Then the grid should have the expected shape", func() {
			So(err, ShouldBeNil)
			So(result.Columns, ShouldEqual, 11)
			So(result.Rows, ShouldEqual, 11)
			So(len(result.Points), ShouldEqual, 121)
		})

		Convey("And the stats should be coherent", func() {
			So(result.Stats.MinSPL, ShouldBeLessThanOrEqualTo, result.Stats.AvgSPL)
			So(result.Stats.AvgSPL, ShouldBeLessThanOrEqualTo, result.Stats.MaxSPL)

			var total float64
			for _, pct := range result.Stats.QualityPercent {
				total += pct
			}
			So(total, ShouldAlmostEqual, 100, 1e-6)
		})

		Convey("And points should omit the per-source breakdown by default", func() {
			So(result.Points[0].BySource, ShouldBeNil)
		})

		Convey("And requesting a breakdown should keep it", func() {
			req.Breakdown = true
			withBreakdown, err := coverage.Generate(context.Background(), req)
			So(err, ShouldBeNil)
			So(len(withBreakdown.Points[0].BySource), ShouldEqual, 1)
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := coverage.Generate(ctx, req)
			So(err, ShouldNotBeNil)
		})

		Convey("When the scene has no sources", func() {
			_, err := coverage.Generate(context.Background(), coverage.GridRequest{
				Region: req.Region,
			})
			So(err, ShouldEqual, coverage.ErrNoSources)
		})

		Convey("When the region is empty", func() {
			bad := req
			bad.Region = coverage.Region{MinX: 5, MinZ: 5, MaxX: 5, MaxZ: 5}
			_, err := coverage.Generate(context.Background(), bad)
			So(err, ShouldEqual, coverage.ErrEmptyRegion)
		})
	})
}
