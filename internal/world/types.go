// Package world holds the parcel map data model and the generation pipeline
// that produces it: seeded noise, Voronoi tessellation with relaxation,
// climate classification, and rule-driven resource placement.
package world

import (
	"fmt"

	"parcelforge/internal/geom"
)

// Terrain categories, in JSON-stable string form.
type Terrain string

const (
	TerrainOcean        Terrain = "ocean"
	TerrainShallowWater Terrain = "shallow_water"
	TerrainBeach        Terrain = "beach"
	TerrainGrassland    Terrain = "grassland"
	TerrainForest       Terrain = "forest"
	TerrainJungle       Terrain = "jungle"
	TerrainDesert       Terrain = "desert"
	TerrainTundra       Terrain = "tundra"
	TerrainSnow         Terrain = "snow"
	TerrainMountain     Terrain = "mountain"
)

// ResourceType enumerates the resources parcels can carry.
type ResourceType string

const (
	ResourceWater   ResourceType = "water"
	ResourceGrain   ResourceType = "grain"
	ResourceTimber  ResourceType = "timber"
	ResourceFish    ResourceType = "fish"
	ResourceHerbs   ResourceType = "herbs"
	ResourceFurs    ResourceType = "furs"
	ResourceStone   ResourceType = "stone"
	ResourceIronOre ResourceType = "iron_ore"
	ResourceGoldOre ResourceType = "gold_ore"
	ResourceCoal    ResourceType = "coal"
	ResourceGems    ResourceType = "gems"
	ResourceClay    ResourceType = "clay"
)

// Attribute is a descriptive tag on a resource with an efficiency weight.
// Consumed by downstream gameplay logic only; the engine carries it as data.
type Attribute struct {
	Name       string  `json:"name"`
	Efficiency float64 `json:"efficiency"`
}

// Resource is one resource instance on a parcel or boundary.
// Current stays in [0, Maximum] at all times; ChangeRate is units per
// simulated second (positive = regeneration, negative = depletion).
type Resource struct {
	Type       ResourceType `json:"type"`
	Current    float64      `json:"current"`
	Maximum    float64      `json:"maximum"`
	ChangeRate float64      `json:"changeRate"`
	Attributes []Attribute  `json:"attributes"`
}

// Parcel is one polygonal region of the tessellated map. IDs are dense
// integers assigned at generation time; Parcels are never added or removed
// afterwards, so the id doubles as the index into WorldMap.Parcels.
type Parcel struct {
	ID          int          `json:"id"`
	Vertices    []geom.Point `json:"vertices"`
	Center      geom.Point   `json:"center"`
	Terrain     Terrain      `json:"terrain"`
	Resources   []Resource   `json:"resources"`
	Neighbors   []int        `json:"neighbors"`
	Elevation   float64      `json:"elevation"`
	Moisture    float64      `json:"moisture"`
	Temperature float64      `json:"temperature"`
}

// Degenerate reports whether the parcel polygon collapsed during clipping.
// Such parcels are skipped by renderers but still simulate.
func (p *Parcel) Degenerate() bool {
	return len(p.Vertices) < 3
}

// Boundary is the shared edge between one unordered pair of adjacent
// parcels, materialized exactly once with Parcel1 < Parcel2.
type Boundary struct {
	Parcel1   int          `json:"parcel1"`
	Parcel2   int          `json:"parcel2"`
	Edge      []geom.Point `json:"edge"`
	Resources []Resource   `json:"resources"`
}

// WorldMap is the aggregate root: owned by the caller of the engine and
// mutated in place by the resource simulator.
type WorldMap struct {
	Parcels    []*Parcel  `json:"parcels"`
	Boundaries []Boundary `json:"boundaries"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	LastUpdate int64      `json:"lastUpdate"` // Unix milliseconds of the last mutation
}

// Parcel returns the parcel with the given id, or nil if out of range.
func (m *WorldMap) Parcel(id int) *Parcel {
	if id < 0 || id >= len(m.Parcels) {
		return nil
	}
	return m.Parcels[id]
}

// Dims returns the map extent.
func (m *WorldMap) Dims() geom.Dimensions {
	return geom.Dimensions{Width: m.Width, Height: m.Height}
}

// Touch records a mutation timestamp, keeping LastUpdate non-decreasing.
func (m *WorldMap) Touch(unixMilli int64) {
	if unixMilli > m.LastUpdate {
		m.LastUpdate = unixMilli
	}
}

// String returns a short summary of the map.
func (m *WorldMap) String() string {
	return fmt.Sprintf("WorldMap(%gx%g, parcels=%d, boundaries=%d)",
		m.Width, m.Height, len(m.Parcels), len(m.Boundaries))
}

// TerrainCounts returns the terrain type distribution.
func TerrainCounts(m *WorldMap) map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, p := range m.Parcels {
		counts[p.Terrain]++
	}
	return counts
}
