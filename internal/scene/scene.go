// Package scene loads venue description files: sources, obstacles,
// reflective boundaries, and the rigging plot, in one YAML document. The
// CLI feeds these straight into the engine; the HTTP API receives the same
// shapes as JSON payloads instead.
package scene

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/venuelab/stagecraft/internal/catalog"
	"github.com/venuelab/stagecraft/internal/domain/band"
	"github.com/venuelab/stagecraft/internal/domain/coverage"
	"github.com/venuelab/stagecraft/internal/domain/geo"
	"github.com/venuelab/stagecraft/internal/domain/model"
	"github.com/venuelab/stagecraft/internal/domain/reflection"
	"github.com/venuelab/stagecraft/internal/domain/rigging"
)

// Sentinel errors for scene loading.
var (
	ErrLoadScene    = errors.New("failed to load scene")
	ErrInvalidScene = errors.New("invalid scene")
)

// sourceEntry is one speaker position in the file. Model references the
// catalog; explicit acoustic fields override whatever the catalog supplies.
type sourceEntry struct {
	ID         string             `koanf:"id"`
	Model      string             `koanf:"model"`
	Position   geo.Vector         `koanf:"position"`
	Aim        geo.Vector         `koanf:"aim"`
	MaxSPL     float64            `koanf:"max_spl"`
	BandSPL    map[string]float64 `koanf:"band_spl"`
	ArrayCount int                `koanf:"array_count"`

	DispersionH float64 `koanf:"dispersion_h"`
	DispersionV float64 `koanf:"dispersion_v"`
	BoxHeight   float64 `koanf:"box_height"`
}

type surfaceEntry struct {
	ID         string             `koanf:"id"`
	Point      geo.Vector         `koanf:"point"`
	Normal     geo.Vector         `koanf:"normal"`
	Material   string             `koanf:"material"`
	Area       float64            `koanf:"area"`
	Absorption map[string]float64 `koanf:"absorption"`
}

type pointEntry struct {
	ID       string     `koanf:"id"`
	Model    string     `koanf:"model"`
	Kind     string     `koanf:"kind"`
	Position geo.Vector `koanf:"position"`
	Capacity float64    `koanf:"capacity"`
}

type loadEntry struct {
	ID       string     `koanf:"id"`
	Weight   float64    `koanf:"weight"`
	Position geo.Vector `koanf:"position"`
	PointIDs []string   `koanf:"point_ids"`
}

type spanEntry struct {
	Span            float64 `koanf:"span"`
	SuspendedWeight float64 `koanf:"suspended_weight"`
	CableWeight     float64 `koanf:"cable_weight"`
	CurvePoints     int     `koanf:"curve_points"`
}

type trussEntry struct {
	Material    string  `koanf:"material"`
	Span        float64 `koanf:"span"`
	UniformLoad float64 `koanf:"uniform_load"`
	PointLoad   float64 `koanf:"point_load"`
}

type sceneFile struct {
	Venue struct {
		Volume float64 `koanf:"volume"`
	} `koanf:"venue"`

	Audience struct {
		MinX       float64 `koanf:"min_x"`
		MinZ       float64 `koanf:"min_z"`
		MaxX       float64 `koanf:"max_x"`
		MaxZ       float64 `koanf:"max_z"`
		Resolution float64 `koanf:"resolution"`
		Height     float64 `koanf:"height"`
	} `koanf:"audience"`

	Sources   []sourceEntry    `koanf:"sources"`
	Obstacles []model.Obstacle `koanf:"obstacles"`
	Surfaces  []surfaceEntry   `koanf:"surfaces"`

	Rigging struct {
		Points []pointEntry `koanf:"points"`
		Loads  []loadEntry  `koanf:"loads"`
		Spans  []spanEntry  `koanf:"spans"`
		Truss  *trussEntry  `koanf:"truss"`
	} `koanf:"rigging"`
}

// Scene is a fully resolved venue: catalog references expanded, planes
// derived, ready for the engine.
type Scene struct {
	Coverage coverage.Scene
	Region   coverage.Region

	Resolution float64
	Height     float64

	Volume       float64
	SurfaceAreas []reflection.SurfaceArea

	Points []model.RiggingPoint
	Loads  []model.SuspendedLoad
	Spans  []rigging.CatenaryInput
	Truss  *trussEntry
}

// TrussQuery returns the truss sizing query, if the file has one.
func (s *Scene) TrussQuery() (material rigging.Material, span, uniform, point float64, ok bool) {
	if s.Truss == nil {
		return "", 0, 0, 0, false
	}
	return rigging.Material(s.Truss.Material), s.Truss.Span, s.Truss.UniformLoad, s.Truss.PointLoad, true
}

// Load reads and resolves one scene file. cat may be nil when every source
// and rigging point is specified inline.
func Load(ctx context.Context, path string, cat *catalog.Catalog) (*Scene, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadScene, path, err)
	}

	var f sceneFile
	if err := k.Unmarshal("", &f); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadScene, path, err)
	}

	return resolve(&f, cat)
}

func resolve(f *sceneFile, cat *catalog.Catalog) (*Scene, error) {
	s := &Scene{
		Region: coverage.Region{
			MinX: f.Audience.MinX,
			MinZ: f.Audience.MinZ,
			MaxX: f.Audience.MaxX,
			MaxZ: f.Audience.MaxZ,
		},
		Resolution: f.Audience.Resolution,
		Height:     f.Audience.Height,
		Volume:     f.Venue.Volume,
		Truss:      f.Rigging.Truss,
	}

	for _, e := range f.Rigging.Loads {
		s.Loads = append(s.Loads, model.SuspendedLoad{
			ID:       e.ID,
			Weight:   e.Weight,
			Position: e.Position,
			PointIDs: e.PointIDs,
		})
	}
	for _, e := range f.Rigging.Spans {
		s.Spans = append(s.Spans, rigging.CatenaryInput{
			Span:            e.Span,
			SuspendedWeight: e.SuspendedWeight,
			CableWeight:     e.CableWeight,
			CurvePoints:     e.CurvePoints,
		})
	}

	for _, e := range f.Sources {
		spec, err := resolveSource(e, cat)
		if err != nil {
			return nil, err
		}
		s.Coverage.Sources = append(s.Coverage.Sources, spec)
	}

	s.Coverage.Obstacles = f.Obstacles

	for _, e := range f.Surfaces {
		if e.Normal.Length() == 0 {
			return nil, fmt.Errorf("%w: surface %q has a zero normal", ErrInvalidScene, e.ID)
		}
		absorption, err := bandLevels(e.Absorption)
		if err != nil {
			return nil, err
		}
		s.Coverage.Surfaces = append(s.Coverage.Surfaces, model.ReflectionSurface{
			ID:         e.ID,
			Plane:      geo.PlaneFromPointNormal(e.Point, e.Normal),
			Material:   e.Material,
			Absorption: absorption,
		})
		if e.Area > 0 {
			s.SurfaceAreas = append(s.SurfaceAreas, reflection.SurfaceArea{
				Area:  e.Area,
				Alpha: absorption[band.Reference],
			})
		}
	}

	for _, e := range f.Rigging.Points {
		p, err := resolvePoint(e, cat)
		if err != nil {
			return nil, err
		}
		s.Points = append(s.Points, p)
	}

	return s, nil
}

func resolveSource(e sourceEntry, cat *catalog.Catalog) (model.SourceSpec, error) {
	if e.ID == "" {
		return model.SourceSpec{}, fmt.Errorf("%w: source without an id", ErrInvalidScene)
	}

	var spec model.SourceSpec
	if e.Model != "" {
		if cat == nil {
			return model.SourceSpec{}, fmt.Errorf("%w: source %q references model %q with no catalog", ErrInvalidScene, e.ID, e.Model)
		}
		var err error
		spec, err = cat.Source(e.ID, e.Model, e.Position, e.Aim, e.ArrayCount)
		if err != nil {
			return model.SourceSpec{}, fmt.Errorf("%w: source %q: %w", ErrInvalidScene, e.ID, err)
		}
	} else {
		spec = model.SourceSpec{
			ID:         e.ID,
			Position:   e.Position,
			Aim:        e.Aim,
			ArrayCount: e.ArrayCount,
		}
	}

	// Inline fields override the catalog.
	if e.MaxSPL > 0 {
		spec.MaxSPL = e.MaxSPL
	}
	if len(e.BandSPL) > 0 {
		levels, err := bandLevels(e.BandSPL)
		if err != nil {
			return model.SourceSpec{}, err
		}
		spec.BandSPL = levels
	}
	if e.DispersionH > 0 {
		spec.Dispersion.Horizontal = e.DispersionH
	}
	if e.DispersionV > 0 {
		spec.Dispersion.Vertical = e.DispersionV
	}
	if e.BoxHeight > 0 {
		spec.BoxHeight = e.BoxHeight
	}

	if spec.MaxSPL <= 0 && len(spec.BandSPL) == 0 {
		return model.SourceSpec{}, fmt.Errorf("%w: source %q has no SPL rating", ErrInvalidScene, e.ID)
	}
	return spec, nil
}

func resolvePoint(e pointEntry, cat *catalog.Catalog) (model.RiggingPoint, error) {
	if e.Model != "" {
		if cat == nil {
			return model.RiggingPoint{}, fmt.Errorf("%w: point %q references model %q with no catalog", ErrInvalidScene, e.ID, e.Model)
		}
		p, err := cat.Point(e.ID, e.Model, e.Position)
		if err != nil {
			return model.RiggingPoint{}, fmt.Errorf("%w: point %q: %w", ErrInvalidScene, e.ID, err)
		}
		return p, nil
	}

	kind := model.PointKind(e.Kind)
	if kind == "" {
		kind = model.PointFixed
	}
	return model.RiggingPoint{
		ID:       e.ID,
		Position: e.Position,
		Kind:     kind,
		Capacity: e.Capacity,
	}, nil
}

func bandLevels(m map[string]float64) (band.Levels, error) {
	if len(m) == 0 {
		return nil, nil
	}
	levels := make(band.Levels, len(m))
	for key, v := range m {
		f, err := strconv.ParseFloat(key, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad frequency key %q", ErrInvalidScene, key)
		}
		levels[f] = v
	}
	return levels, nil
}
