package calc_test

import (
	"github.com/venuelab/stagecraft/internal/domain/geo"
	"github.com/venuelab/stagecraft/internal/domain/model"
	"github.com/venuelab/stagecraft/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// testSources returns a single front-of-house hang aimed into the grid
// regions the tests sample.
func testSources() []model.SourceSpec {
	return []model.SourceSpec{
		{
			ID:       "main",
			Position: geo.V(0, 8, 0),
			Aim:      geo.V(0, -0.4, 1),
			MaxSPL:   135,
			Dispersion: model.Dispersion{
				Horizontal: 90,
				Vertical:   40,
			},
		},
	}
}
