package world

// Classify maps a parcel's climate to a terrain category. The decision list
// is ordered and first-match-wins; reordering changes boundary cases.
func Classify(elevation, moisture, temperature, latitude, waterLevel float64, polarIceCaps bool) Terrain {
	switch {
	case polarIceCaps && latitude > 0.85:
		return TerrainSnow
	case elevation < waterLevel-0.05:
		return TerrainOcean
	case elevation < waterLevel:
		return TerrainShallowWater
	case elevation < waterLevel+0.03:
		return TerrainBeach
	case elevation > 0.75 && temperature < 0.3:
		return TerrainSnow
	case elevation > 0.75:
		return TerrainMountain
	case temperature < 0.25:
		return TerrainTundra
	case temperature > 0.7 && moisture < 0.3:
		return TerrainDesert
	case temperature > 0.6 && moisture > 0.6:
		return TerrainJungle
	case moisture > 0.5:
		return TerrainForest
	default:
		return TerrainGrassland
	}
}
