// Rule-driven resource placement. The rule tables are fixed at startup;
// richness scales both how often resources spawn and how large they are.

package world

import (
	"math"
	"slices"

	"parcelforge/internal/rng"
)

// placementRule lists the resource types a terrain can spawn and the base
// probability that a parcel of that terrain spawns anything at all.
type placementRule struct {
	Types       []ResourceType
	SpawnChance float64
}

// resourceDef holds the base properties of a resource type. Capacity and
// initial quantity are scaled by richness at placement time; ChangeRate is
// not.
type resourceDef struct {
	BaseMax    float64
	ChangeRate float64
	Attributes []Attribute
}

const (
	multiResourceChance  = 0.35
	tripleResourceChance = 0.15
	bonusWaterChance     = 0.5
	bonusWaterMoisture   = 0.7
)

var terrainRules = map[Terrain]placementRule{
	TerrainOcean:        {Types: []ResourceType{ResourceFish}, SpawnChance: 0.5},
	TerrainShallowWater: {Types: []ResourceType{ResourceFish, ResourceClay}, SpawnChance: 0.6},
	TerrainBeach:        {Types: []ResourceType{ResourceClay, ResourceStone}, SpawnChance: 0.3},
	TerrainGrassland:    {Types: []ResourceType{ResourceGrain, ResourceHerbs, ResourceWater}, SpawnChance: 0.6},
	TerrainForest:       {Types: []ResourceType{ResourceTimber, ResourceHerbs, ResourceFurs}, SpawnChance: 0.7},
	TerrainJungle:       {Types: []ResourceType{ResourceTimber, ResourceHerbs, ResourceGems}, SpawnChance: 0.65},
	TerrainDesert:       {Types: []ResourceType{ResourceStone, ResourceGoldOre, ResourceGems}, SpawnChance: 0.25},
	TerrainTundra:       {Types: []ResourceType{ResourceFurs, ResourceStone}, SpawnChance: 0.3},
	TerrainSnow:         {Types: []ResourceType{ResourceFurs}, SpawnChance: 0.15},
	TerrainMountain:     {Types: []ResourceType{ResourceStone, ResourceIronOre, ResourceCoal, ResourceGems}, SpawnChance: 0.65},
}

var resourceDefs = map[ResourceType]resourceDef{
	ResourceWater:   {BaseMax: 100, ChangeRate: 0.5, Attributes: []Attribute{{Name: "drinkable", Efficiency: 1.0}}},
	ResourceGrain:   {BaseMax: 80, ChangeRate: 0.3, Attributes: []Attribute{{Name: "edible", Efficiency: 1.0}}},
	ResourceTimber:  {BaseMax: 100, ChangeRate: 0.2, Attributes: []Attribute{{Name: "buildable", Efficiency: 1.0}, {Name: "flammable", Efficiency: 0.8}}},
	ResourceFish:    {BaseMax: 60, ChangeRate: 0.4, Attributes: []Attribute{{Name: "edible", Efficiency: 0.9}}},
	ResourceHerbs:   {BaseMax: 30, ChangeRate: 0.25, Attributes: []Attribute{{Name: "medicinal", Efficiency: 0.7}}},
	ResourceFurs:    {BaseMax: 40, ChangeRate: 0.15, Attributes: []Attribute{{Name: "insulating", Efficiency: 0.8}}},
	ResourceStone:   {BaseMax: 120, ChangeRate: 0, Attributes: []Attribute{{Name: "buildable", Efficiency: 0.9}}},
	ResourceIronOre: {BaseMax: 90, ChangeRate: 0, Attributes: []Attribute{{Name: "smeltable", Efficiency: 0.8}}},
	ResourceGoldOre: {BaseMax: 30, ChangeRate: 0, Attributes: []Attribute{{Name: "precious", Efficiency: 1.0}}},
	ResourceCoal:    {BaseMax: 70, ChangeRate: 0, Attributes: []Attribute{{Name: "fuel", Efficiency: 0.9}}},
	ResourceGems:    {BaseMax: 15, ChangeRate: 0, Attributes: []Attribute{{Name: "precious", Efficiency: 1.0}}},
	ResourceClay:    {BaseMax: 50, ChangeRate: 0.05, Attributes: []Attribute{{Name: "moldable", Efficiency: 0.6}}},
}

// probabilityMultiplier maps richness to a spawn probability scale: 0 at
// richness 0, neutral 1x at 0.5, capped at 2x.
func probabilityMultiplier(richness float64) float64 {
	return math.Min(2, 2*richness)
}

// magnitudeMultiplier maps richness to a capacity/quantity scale of
// 0.5x–1.5x.
func magnitudeMultiplier(richness float64) float64 {
	return 0.5 + richness
}

// placeResources rolls the resource set for one parcel. Parcels receive 0–3
// distinct resource types; wet grassland and forest may additionally trade
// one slot for a bonus water source.
func placeResources(s *rng.Source, terrain Terrain, moisture, richness float64) []Resource {
	resources := []Resource{}

	rule, ok := terrainRules[terrain]
	if !ok {
		return resources
	}

	probMult := probabilityMultiplier(richness)
	magMult := magnitudeMultiplier(richness)

	if !s.Chance(math.Min(1, rule.SpawnChance*probMult)) {
		return resources
	}

	// Selection order is a seeded shuffle; count comes from two independent
	// flips (the second only promotes an already-doubled parcel to three).
	types := slices.Clone(rule.Types)
	rng.Shuffle(s, types)

	double := s.Chance(math.Min(1, multiResourceChance*probMult))
	triple := s.Chance(math.Min(1, tripleResourceChance*probMult))

	count := 1
	if double {
		count = 2
		if triple {
			count = 3
		}
	}
	if count > len(types) {
		count = len(types)
	}

	for _, t := range types[:count] {
		resources = append(resources, newResource(s, t, magMult))
	}

	// Bonus water for wet grassland and forest, within the 3-resource budget.
	if (terrain == TerrainGrassland || terrain == TerrainForest) &&
		moisture > bonusWaterMoisture && len(resources) < 3 && !hasType(resources, ResourceWater) {
		if s.Chance(math.Min(1, bonusWaterChance*magMult)) {
			resources = append(resources, newResource(s, ResourceWater, magMult))
		}
	}

	return resources
}

func newResource(s *rng.Source, t ResourceType, magMult float64) Resource {
	def := resourceDefs[t]
	maximum := def.BaseMax * magMult
	return Resource{
		Type:       t,
		Current:    s.FloatRange(0.3, 0.9) * maximum,
		Maximum:    maximum,
		ChangeRate: def.ChangeRate,
		Attributes: slices.Clone(def.Attributes),
	}
}

func hasType(resources []Resource, t ResourceType) bool {
	for _, r := range resources {
		if r.Type == t {
			return true
		}
	}
	return false
}
