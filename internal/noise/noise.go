// Package noise produces coherent 2-D fields for elevation, moisture, and
// temperature by layering OpenSimplex octaves.
package noise

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"parcelforge/internal/rng"
)

// Field is one coherent noise layer. Its permutation table is fixed at
// construction, so a field built from a seeded rng.Source is reproducible
// for the lifetime of a generation run.
type Field struct {
	base opensimplex.Noise
}

// New builds a Field whose internal table is seeded from the shared
// generation source. Consumes exactly one draw, so the position of the call
// in the generation sequence is part of the determinism contract.
func New(s *rng.Source) *Field {
	seed := int64(s.Float64() * float64(1<<53))
	return &Field{base: opensimplex.New(seed)}
}

// Eval returns the raw noise value at (x, y), in [-1, 1].
func (f *Field) Eval(x, y float64) float64 {
	return f.base.Eval2(x, y)
}

// Octave sums `octaves` noise layers with geometric amplitude decay and
// frequency doubling, normalized by the maximum possible amplitude so the
// result stays in [-1, 1].
func (f *Field) Octave(x, y float64, octaves int, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	frequency := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += f.base.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
