// World assembly: seeded RNG -> noise fields -> relaxed Voronoi sites ->
// climate -> terrain -> resources -> shared boundaries.

package world

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"parcelforge/internal/geom"
	"parcelforge/internal/noise"
	"parcelforge/internal/rng"
)

// Noise sampling parameters. Frequency is per map unit, matching the scale
// terrain features should have on a ~1000-unit map.
const (
	noiseFrequency     = 0.05
	elevationOctaves   = 4
	moistureOctaves    = 3
	temperatureOctaves = 3
	persistence        = 0.5

	polarElevationDrop = 0.3
	coastMoistureBand  = 0.1
	coastMoistureBoost = 0.2
)

// Generate builds a complete WorldMap from the config. Identical configs
// (including seed) produce bit-identical maps except for LastUpdate.
func Generate(cfg MapConfig) (*WorldMap, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	source := rng.New(cfg.Seed)
	dims := geom.Dimensions{Width: cfg.Width, Height: cfg.Height}

	// Field construction order is part of the determinism contract.
	elevNoise := noise.New(source)
	moistNoise := noise.New(source)
	tempNoise := noise.New(source)

	sites := make([]geom.Point, cfg.NumParcels)
	for i := range sites {
		sites[i] = geom.Point{
			X: source.Float64() * cfg.Width,
			Y: source.Float64() * cfg.Height,
		}
	}

	relaxed, err := geom.Relax(sites, dims, cfg.LloydIterations)
	if err != nil {
		return nil, fmt.Errorf("relax sites: %w", err)
	}

	diagram, err := geom.BuildVoronoi(relaxed, dims)
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}

	m := &WorldMap{
		Parcels: make([]*Parcel, len(diagram.Cells)),
		Width:   cfg.Width,
		Height:  cfg.Height,
	}

	for i := range diagram.Cells {
		cell := &diagram.Cells[i]
		neighbors := cell.Neighbors
		if neighbors == nil {
			neighbors = []int{}
		}

		latitude := math.Abs(cell.Site.Y-cfg.Height/2) / (cfg.Height / 2)
		elevation, moisture, temperature := climateAt(
			elevNoise, moistNoise, tempNoise, cell.Site, latitude, cfg.WaterLevel)

		terrain := Classify(elevation, moisture, temperature, latitude, cfg.WaterLevel, cfg.PolarIceCaps)

		m.Parcels[i] = &Parcel{
			ID:          i,
			Vertices:    cell.Vertices,
			Center:      cell.Site,
			Terrain:     terrain,
			Resources:   placeResources(source, terrain, moisture, cfg.ResourceRichness),
			Neighbors:   neighbors,
			Elevation:   elevation,
			Moisture:    moisture,
			Temperature: temperature,
		}
	}

	m.Boundaries = buildBoundaries(m.Parcels, dims)
	m.LastUpdate = time.Now().UnixMilli()

	slog.Info("world generated",
		"seed", cfg.Seed,
		"parcels", len(m.Parcels),
		"boundaries", len(m.Boundaries),
		"elapsed", time.Since(start))
	return m, nil
}

// climateAt derives the three climate values for one site, all in [0,1].
func climateAt(elevN, moistN, tempN *noise.Field, site geom.Point, latitude, waterLevel float64) (elevation, moisture, temperature float64) {
	nx, ny := site.X*noiseFrequency, site.Y*noiseFrequency

	// Elevation: octave noise, dropped toward the poles, normalized, then
	// rescaled so the distribution tracks the requested ocean proportion.
	e := elevN.Octave(nx, ny, elevationOctaves, persistence)
	e *= 1 - latitude*polarElevationDrop
	elevation = (e + 1) / 2
	elevation = clamp01(elevation*(1-waterLevel*0.3) + waterLevel*0.3)

	// Moisture: saturated under water, boosted along the coast band.
	moisture = (moistN.Octave(nx, ny, moistureOctaves, persistence) + 1) / 2
	switch {
	case elevation < waterLevel:
		moisture = 1.0
	case elevation < waterLevel+coastMoistureBand:
		moisture = math.Min(1, moisture+coastMoistureBoost)
	}

	// Temperature: latitude gradient blended with noise, cooled by altitude.
	t := (tempN.Octave(nx, ny, temperatureOctaves, persistence) + 1) / 2
	temperature = clamp01(0.4*t + 0.6*(1-latitude) - 0.25*math.Max(0, elevation-waterLevel))

	return elevation, moisture, temperature
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// buildBoundaries materializes each unordered adjacent pair exactly once.
// The shared edge is the set of vertices the two polygons hold in common
// under the toroidal coincidence threshold.
func buildBoundaries(parcels []*Parcel, dims geom.Dimensions) []Boundary {
	seen := make(map[[2]int]bool)
	boundaries := []Boundary{}

	for _, p := range parcels {
		for _, nb := range p.Neighbors {
			a, b := p.ID, nb
			if a > b {
				a, b = b, a
			}
			key := [2]int{a, b}
			if seen[key] {
				continue
			}
			seen[key] = true

			boundaries = append(boundaries, Boundary{
				Parcel1:   a,
				Parcel2:   b,
				Edge:      sharedEdge(parcels[a], parcels[b], dims),
				Resources: []Resource{},
			})
		}
	}
	return boundaries
}

func sharedEdge(a, b *Parcel, dims geom.Dimensions) []geom.Point {
	edge := []geom.Point{}
	for _, va := range a.Vertices {
		for _, vb := range b.Vertices {
			if !dims.Coincident(va, vb) {
				continue
			}
			if !containsCoincident(edge, va, dims) {
				edge = append(edge, va)
			}
			break
		}
	}
	return edge
}

func containsCoincident(pts []geom.Point, p geom.Point, dims geom.Dimensions) bool {
	for _, q := range pts {
		if dims.Coincident(p, q) {
			return true
		}
	}
	return false
}
