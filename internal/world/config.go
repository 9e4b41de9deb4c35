package world

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig wraps all generation parameter validation failures.
// Validation runs before any RNG consumption.
var ErrInvalidConfig = errors.New("invalid map config")

// MapConfig holds world generation parameters. Immutable once handed to
// Generate.
type MapConfig struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	NumParcels int     `yaml:"num_parcels"`
	Seed       int64   `yaml:"seed"`

	// WaterLevel is the target ocean proportion and the elevation threshold
	// the classifier cuts water at, in [0,1].
	WaterLevel float64 `yaml:"water_level"`

	// ResourceRichness scales both the probability and magnitude of placed
	// resources, in [0,1]. 0.5 is neutral.
	ResourceRichness float64 `yaml:"resource_richness"`

	PolarIceCaps bool `yaml:"polar_ice_caps"`

	// LloydIterations smooths site placement before tessellation.
	LloydIterations int `yaml:"lloyd_iterations"`
}

// DefaultMapConfig returns a medium map with neutral knobs.
func DefaultMapConfig() MapConfig {
	return MapConfig{
		Width:            1000,
		Height:           1000,
		NumParcels:       500,
		Seed:             0,
		WaterLevel:       0.4,
		ResourceRichness: 0.5,
		PolarIceCaps:     true,
		LloydIterations:  2,
	}
}

// Validate checks the generation parameters. All failures wrap
// ErrInvalidConfig.
func (c MapConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: dimensions must be positive, got %gx%g", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.NumParcels <= 0 {
		return fmt.Errorf("%w: num_parcels must be positive, got %d", ErrInvalidConfig, c.NumParcels)
	}
	if c.WaterLevel < 0 || c.WaterLevel > 1 {
		return fmt.Errorf("%w: water_level %g outside [0,1]", ErrInvalidConfig, c.WaterLevel)
	}
	if c.ResourceRichness < 0 || c.ResourceRichness > 1 {
		return fmt.Errorf("%w: resource_richness %g outside [0,1]", ErrInvalidConfig, c.ResourceRichness)
	}
	if c.LloydIterations < 0 {
		return fmt.Errorf("%w: lloyd_iterations must be non-negative, got %d", ErrInvalidConfig, c.LloydIterations)
	}
	return nil
}
