// Package catalog holds the equipment models a deployment can reference:
// speakers with their acoustic ratings, chain motors, and truss sections.
// Entries are loaded once from the embedded defaults, optionally overlaid
// from a site-specific file, and read-only afterwards.
package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/venuelab/stagecraft/internal/domain/band"
	"github.com/venuelab/stagecraft/internal/domain/directivity"
	"github.com/venuelab/stagecraft/internal/domain/geo"
	"github.com/venuelab/stagecraft/internal/domain/model"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Sentinel errors for catalog access.
var (
	ErrLoadCatalog = errors.New("failed to load catalog")
	ErrUnknownItem = errors.New("unknown catalog item")
)

// Speaker is a loudspeaker model from the catalog.
type Speaker struct {
	Model string `koanf:"model" json:"model"`

	// MaxSPL at 1 m; BandSPL refines it per octave band when present.
	MaxSPL  float64            `koanf:"max_spl" json:"max_spl"`
	BandSPL map[string]float64 `koanf:"band_spl" json:"band_spl,omitempty"`

	DispersionH float64 `koanf:"dispersion_h" json:"dispersion_h"`
	DispersionV float64 `koanf:"dispersion_v" json:"dispersion_v"`

	// Directivity optionally maps measurement frequency to horizontal
	// dispersion at that frequency.
	Directivity map[string]float64 `koanf:"directivity" json:"directivity,omitempty"`

	// BoxHeight in meters, Weight in kg, RatedPower in watts.
	BoxHeight  float64 `koanf:"box_height" json:"box_height"`
	Weight     float64 `koanf:"weight" json:"weight"`
	RatedPower float64 `koanf:"rated_power" json:"rated_power"`
}

// Motor is a chain hoist model.
type Motor struct {
	Model string `koanf:"model" json:"model"`

	// Capacity is the working load limit in kg.
	Capacity float64 `koanf:"capacity" json:"capacity"`
	Weight   float64 `koanf:"weight" json:"weight"`
}

// Truss is a truss section model.
type Truss struct {
	Model    string  `koanf:"model" json:"model"`
	Material string  `koanf:"material" json:"material"`
	Section  string  `koanf:"section" json:"section"`
	Weight   float64 `koanf:"weight" json:"weight"` // kg/m
}

// Catalog is the full read-only model registry.
type Catalog struct {
	speakers map[string]Speaker
	motors   map[string]Motor
	trusses  map[string]Truss
}

type rawCatalog struct {
	Speakers []Speaker `koanf:"speakers"`
	Motors   []Motor   `koanf:"motors"`
	Trusses  []Truss   `koanf:"trusses"`
}

// Load builds the catalog from the embedded defaults, overlaid with the
// file at path when path is non-empty. File entries replace embedded
// entries with the same model id.
func Load(ctx context.Context, path string) (*Catalog, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultCatalog), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: embedded defaults: %w", ErrLoadCatalog, err)
	}

	c := &Catalog{
		speakers: make(map[string]Speaker),
		motors:   make(map[string]Motor),
		trusses:  make(map[string]Truss),
	}
	if err := c.merge(k); err != nil {
		return nil, err
	}

	if path != "" {
		k = koanf.New(".")
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadCatalog, path, err)
		}
		if err := c.merge(k); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Catalog) merge(k *koanf.Koanf) error {
	var raw rawCatalog
	if err := k.Unmarshal("", &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrLoadCatalog, err)
	}
	for _, s := range raw.Speakers {
		c.speakers[s.Model] = s
	}
	for _, m := range raw.Motors {
		c.motors[m.Model] = m
	}
	for _, t := range raw.Trusses {
		c.trusses[t.Model] = t
	}
	return nil
}

// Speaker returns the speaker entry for a model id.
func (c *Catalog) Speaker(model string) (Speaker, error) {
	s, ok := c.speakers[model]
	if !ok {
		return Speaker{}, fmt.Errorf("%w: speaker %q", ErrUnknownItem, model)
	}
	return s, nil
}

// Motor returns the motor entry for a model id.
func (c *Catalog) Motor(model string) (Motor, error) {
	m, ok := c.motors[model]
	if !ok {
		return Motor{}, fmt.Errorf("%w: motor %q", ErrUnknownItem, model)
	}
	return m, nil
}

// Truss returns the truss entry for a model id.
func (c *Catalog) Truss(model string) (Truss, error) {
	t, ok := c.trusses[model]
	if !ok {
		return Truss{}, fmt.Errorf("%w: truss %q", ErrUnknownItem, model)
	}
	return t, nil
}

// Speakers returns the number of speaker models loaded.
func (c *Catalog) Speakers() int { return len(c.speakers) }

// Source materializes a speaker model into an engine source at a position.
// ArrayCount <= 1 gives a single point source.
func (c *Catalog) Source(id, speakerModel string, position, aim geo.Vector, arrayCount int) (model.SourceSpec, error) {
	s, err := c.Speaker(speakerModel)
	if err != nil {
		return model.SourceSpec{}, err
	}

	spec := model.SourceSpec{
		ID:       id,
		Position: position,
		Aim:      aim,
		MaxSPL:   s.MaxSPL,
		Dispersion: model.Dispersion{
			Horizontal: s.DispersionH,
			Vertical:   s.DispersionV,
		},
		ArrayCount: arrayCount,
		BoxHeight:  s.BoxHeight,
		RatedPower: s.RatedPower,
	}

	if len(s.BandSPL) > 0 {
		spec.BandSPL = make(band.Levels, len(s.BandSPL))
		for f, level := range s.BandSPL {
			freq, perr := parseFrequency(f)
			if perr != nil {
				return model.SourceSpec{}, perr
			}
			spec.BandSPL[freq] = level
		}
	}

	if len(s.Directivity) > 0 {
		spec.DirectivityByFreq = make(directivity.Table, len(s.Directivity))
		for f, dispersion := range s.Directivity {
			freq, perr := parseFrequency(f)
			if perr != nil {
				return model.SourceSpec{}, perr
			}
			spec.DirectivityByFreq[freq] = dispersion
		}
	}

	return spec, nil
}

// Point materializes a motor model into a rigging point.
func (c *Catalog) Point(id, motorModel string, position geo.Vector) (model.RiggingPoint, error) {
	m, err := c.Motor(motorModel)
	if err != nil {
		return model.RiggingPoint{}, err
	}
	return model.RiggingPoint{
		ID:       id,
		Position: position,
		Kind:     model.PointMotor,
		Capacity: m.Capacity,
	}, nil
}

func parseFrequency(s string) (float64, error) {
	var f float64
	if _, err := fmt.Sscanf(s, "%f", &f); err != nil {
		return 0, fmt.Errorf("%w: bad frequency key %q", ErrLoadCatalog, s)
	}
	return f, nil
}
