package scene_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/venuelab/stagecraft/internal/catalog"
	"github.com/venuelab/stagecraft/internal/scene"
	. "github.com/smartystreets/goconvey/convey"
)

const sampleScene = `
venue:
  volume: 12000

audience:
  min_x: -12
  min_z: 4
  max_x: 12
  max_z: 30
  resolution: 2
  height: 1.7

sources:
  - id: main-l
    model: la-12
    position: {x: -6, y: 9, z: 0}
    aim: {x: 0, y: -0.4, z: 1}
    array_count: 12
  - id: fill
    position: {x: 0, y: 2, z: 2}
    aim: {x: 0, y: 0, z: 1}
    max_spl: 128
    dispersion_h: 100
    dispersion_v: 60

obstacles:
  - id: stage
    category: stage
    position: {x: 0, y: 1, z: -2}
    dimensions: {x: 16, y: 2, z: 10}

surfaces:
  - id: rear-wall
    point: {x: 0, y: 0, z: 32}
    normal: {x: 0, y: 0, z: -1}
    material: concrete
    area: 300
    absorption:
      "1000": 0.05

rigging:
  points:
    - id: m1
      model: cm-1000
      position: {x: -6, y: 12, z: 0}
    - id: beam
      kind: fixed
      position: {x: 6, y: 12, z: 0}
      capacity: 750
  loads:
    - id: array-l
      weight: 700
      position: {x: -6, y: 9, z: 0}
      point_ids: [m1]
  spans:
    - span: 12
      suspended_weight: 400
      cable_weight: 2
  truss:
    material: aluminum
    span: 12
    uniform_load: 15
    point_load: 350
`

func writeScene(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write scene: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	Convey("Given a full scene file and the default catalog", t, func() {
		cat, err := catalog.Load(context.Background(), "")
		So(err, ShouldBeNil)

		s, err := scene.Load(context.Background(), writeScene(t, sampleScene), cat)
		So(err, ShouldBeNil)

		Convey("Catalog sources should be expanded", func() {
			So(len(s.Coverage.Sources), ShouldEqual, 2)
			main := s.Coverage.Sources[0]
			So(main.ID, ShouldEqual, "main-l")
			So(main.MaxSPL, ShouldEqual, 141)
			So(main.ArrayCount, ShouldEqual, 12)
		})

		Convey("Inline sources should work without the catalog", func() {
			fill := s.Coverage.Sources[1]
			So(fill.MaxSPL, ShouldEqual, 128)
			So(fill.Dispersion.Horizontal, ShouldEqual, 100)
		})

		Convey("Surfaces should become planes with absorption", func() {
			So(len(s.Coverage.Surfaces), ShouldEqual, 1)
			So(s.Coverage.Surfaces[0].Absorption[1000], ShouldAlmostEqual, 0.05, 1e-9)
			So(len(s.SurfaceAreas), ShouldEqual, 1)
			So(s.Volume, ShouldEqual, 12000)
		})

		Convey("Rigging points should resolve capacities", func() {
			So(len(s.Points), ShouldEqual, 2)
			So(s.Points[0].Capacity, ShouldEqual, 1000)
			So(s.Points[1].Capacity, ShouldEqual, 750)
			So(len(s.Loads), ShouldEqual, 1)
			So(len(s.Spans), ShouldEqual, 1)
		})

		Convey("The truss query should surface", func() {
			material, span, uniform, point, ok := s.TrussQuery()
			So(ok, ShouldBeTrue)
			So(string(material), ShouldEqual, "aluminum")
			So(span, ShouldEqual, 12)
			So(uniform, ShouldEqual, 15)
			So(point, ShouldEqual, 350)
		})

		Convey("The audience region should map to the grid request", func() {
			So(s.Region.MinX, ShouldEqual, -12)
			So(s.Region.MaxZ, ShouldEqual, 30)
			So(s.Resolution, ShouldEqual, 2)
		})
	})

	Convey("Given defective scenes", t, func() {
		Convey("A source with neither model nor rating should fail", func() {
			_, err := scene.Load(context.Background(),
				writeScene(t, "sources:\n  - id: bare\n"), nil)
			So(err, ShouldWrap, scene.ErrInvalidScene)
		})

		Convey("A catalog reference without a catalog should fail", func() {
			_, err := scene.Load(context.Background(),
				writeScene(t, "sources:\n  - id: s\n    model: la-12\n"), nil)
			So(err, ShouldWrap, scene.ErrInvalidScene)
		})

		Convey("A surface with a zero normal should fail", func() {
			body := "sources:\n  - id: s\n    max_spl: 120\nsurfaces:\n  - id: bad\n    point: {x: 0, y: 0, z: 0}\n"
			_, err := scene.Load(context.Background(), writeScene(t, body), nil)
			So(err, ShouldWrap, scene.ErrInvalidScene)
		})

		Convey("A missing file should fail with the load sentinel", func() {
			_, err := scene.Load(context.Background(), "/nonexistent/scene.yaml", nil)
			So(err, ShouldWrap, scene.ErrLoadScene)
		})
	})
}
