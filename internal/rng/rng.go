// Package rng provides the deterministic random source used by world
// generation. Every stochastic decision (site placement, noise seeding,
// resource rolls) draws from one Source so a map seed pins the whole run.
package rng

const (
	modulus    = 2147483647 // 2^31 - 1
	multiplier = 16807
)

// Source is a Park–Miller multiplicative linear-congruential generator.
// Identical seeds produce identical sequences on every platform; a Source is
// never shared between independent generation runs.
type Source struct {
	state int64
}

// New creates a Source from an arbitrary integer seed. The seed is reduced
// into [1, modulus-1] so the recurrence never degenerates to zero.
func New(seed int64) *Source {
	state := seed % modulus
	if state <= 0 {
		state += modulus - 1
	}
	return &Source{state: state}
}

// Float64 advances the generator once and returns a value in [0, 1).
func (s *Source) Float64() float64 {
	s.state = s.state * multiplier % modulus
	return float64(s.state-1) / float64(modulus-1)
}

// IntRange returns an integer in [min, max). Consumes one draw.
func (s *Source) IntRange(min, max int) int {
	return int(s.Float64()*float64(max-min)) + min
}

// FloatRange returns a float in [min, max). Consumes one draw.
func (s *Source) FloatRange(min, max float64) float64 {
	return s.Float64()*(max-min) + min
}

// Chance returns true with probability p. Consumes one draw.
func (s *Source) Chance(p float64) bool {
	return s.Float64() < p
}

// Pick returns a uniformly selected element. Consumes one draw.
// Panics on an empty slice, same as an out-of-range index would.
func Pick[T any](s *Source, items []T) T {
	return items[s.IntRange(0, len(items))]
}

// Shuffle permutes items in place with a Fisher–Yates walk, consuming one
// draw per swap.
func Shuffle[T any](s *Source, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := int(s.Float64() * float64(i+1))
		items[i], items[j] = items[j], items[i]
	}
}
