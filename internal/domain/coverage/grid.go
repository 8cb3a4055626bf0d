package coverage

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/venuelab/stagecraft/internal/domain/geo"
)

// Grid defaults.
const (
	DefaultResolution = 1.0
	DefaultEarHeight  = 1.7
)

// Sentinel errors for grid generation.
var (
	ErrEmptyRegion = errors.New("coverage region is empty")
	ErrNoSources   = errors.New("no sources in scene")
)

// Region is the rectangular XZ extent of a coverage grid.
type Region struct {
	MinX float64 `json:"min_x"`
	MinZ float64 `json:"min_z"`
	MaxX float64 `json:"max_x"`
	MaxZ float64 `json:"max_z"`
}

// GridRequest asks for a sampled coverage map.
type GridRequest struct {
	Scene   Scene   `json:"scene"`
	Region  Region  `json:"region"`
	Options Options `json:"options"`

	// Resolution is the sample spacing in meters; 0 uses the default.
	Resolution float64 `json:"resolution,omitempty"`

	// Height is the listening plane height; 0 uses the default ear height.
	Height float64 `json:"height,omitempty"`

	// Breakdown keeps the per-source contribution on every point. Off by
	// default: it multiplies the result size by the source count.
	Breakdown bool `json:"breakdown,omitempty"`
}

// GridStats aggregates a generated grid.
type GridStats struct {
	AvgSPL float64 `json:"avg_spl"`
	MinSPL float64 `json:"min_spl"`
	MaxSPL float64 `json:"max_spl"`

	// QualityPercent maps quality band to the percentage of points in it.
	QualityPercent map[Quality]float64 `json:"quality_percent"`
}

// GridResult is an ordered rectangular coverage map: points are laid out
// row-major, rows along Z, columns along X.
type GridResult struct {
	Points  []PointSPL `json:"points"`
	Columns int        `json:"columns"`
	Rows    int        `json:"rows"`
	Stats   GridStats  `json:"stats"`
}

// Generate samples the region at fixed resolution and height. Grids are
// recomputed wholesale; the caller discards superseded results. The context
// is checked per row so an abandoned request stops early.
func Generate(ctx context.Context, req GridRequest) (GridResult, error) {
	if len(req.Scene.Sources) == 0 {
		return GridResult{}, ErrNoSources
	}
	if req.Region.MaxX <= req.Region.MinX || req.Region.MaxZ <= req.Region.MinZ {
		return GridResult{}, ErrEmptyRegion
	}

	res := req.Resolution
	if res <= 0 {
		res = DefaultResolution
	}
	height := req.Height
	if height == 0 {
		height = DefaultEarHeight
	}

	cols := int(math.Floor((req.Region.MaxX-req.Region.MinX)/res)) + 1
	rows := int(math.Floor((req.Region.MaxZ-req.Region.MinZ)/res)) + 1

	points := make([]PointSPL, 0, cols*rows)
	counts := make(map[Quality]int, 5)
	var sum float64
	minSPL := math.Inf(1)
	maxSPL := math.Inf(-1)

	for r := 0; r < rows; r++ {
		if err := ctx.Err(); err != nil {
			return GridResult{}, fmt.Errorf("coverage grid cancelled: %w", err)
		}
		z := req.Region.MinZ + float64(r)*res
		for c := 0; c < cols; c++ {
			x := req.Region.MinX + float64(c)*res
			p := SPLAt(geo.V(x, height, z), req.Scene, req.Options)
			if !req.Breakdown {
				p.BySource = nil
			}
			points = append(points, p)
			counts[p.Quality]++
			sum += p.SPL
			minSPL = math.Min(minSPL, p.SPL)
			maxSPL = math.Max(maxSPL, p.SPL)
		}
	}

	total := float64(len(points))
	percent := make(map[Quality]float64, len(counts))
	for q, n := range counts {
		percent[q] = float64(n) / total * 100
	}

	return GridResult{
		Points:  points,
		Columns: cols,
		Rows:    rows,
		Stats: GridStats{
			AvgSPL:         sum / total,
			MinSPL:         minSPL,
			MaxSPL:         maxSPL,
			QualityPercent: percent,
		},
	}, nil
}
