package rng

import "testing"

func TestFloat64Deterministic(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 1000; i++ {
		va, vb := a.Float64(), b.Float64()
		if va != vb {
			t.Fatalf("draw %d diverged: %v vs %v", i, va, vb)
		}
		if va < 0 || va >= 1 {
			t.Fatalf("draw %d out of [0,1): %v", i, va)
		}
	}
}

func TestFirstDrawMatchesRecurrence(t *testing.T) {
	// state = 42*16807 mod 2147483647 = 705894
	got := New(42).Float64()
	want := float64(705894-1) / 2147483646.0
	if got != want {
		t.Fatalf("first draw = %v, want %v", got, want)
	}
}

func TestSeedNormalization(t *testing.T) {
	// Seeds that reduce to <= 0 must be shifted into [1, 2147483646].
	for _, seed := range []int64{0, -1, -2147483647, 2147483647} {
		s := New(seed)
		if s.state < 1 || s.state > 2147483646 {
			t.Errorf("seed %d normalized to %d, want [1, 2147483646]", seed, s.state)
		}
	}
	// seed 0 and seed -2147483647 both normalize to 2147483646.
	a, b := New(0), New(-2147483647)
	if a.Float64() != b.Float64() {
		t.Error("equivalent normalized seeds produced different sequences")
	}
}

func TestIntRangeBounds(t *testing.T) {
	s := New(7)
	for i := 0; i < 1000; i++ {
		v := s.IntRange(3, 9)
		if v < 3 || v >= 9 {
			t.Fatalf("IntRange(3,9) = %d", v)
		}
	}
}

func TestFloatRangeBounds(t *testing.T) {
	s := New(7)
	for i := 0; i < 1000; i++ {
		v := s.FloatRange(-2.5, 4.5)
		if v < -2.5 || v >= 4.5 {
			t.Fatalf("FloatRange(-2.5,4.5) = %v", v)
		}
	}
}

func TestChanceExtremes(t *testing.T) {
	s := New(99)
	for i := 0; i < 100; i++ {
		if s.Chance(0) {
			t.Fatal("Chance(0) returned true")
		}
		if !s.Chance(1) {
			t.Fatal("Chance(1) returned false")
		}
	}
}

func TestShufflePreservesElements(t *testing.T) {
	s := New(13)
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	Shuffle(s, items)
	seen := make(map[int]bool)
	for _, v := range items {
		seen[v] = true
	}
	if len(seen) != 10 {
		t.Fatalf("shuffle lost elements: %v", items)
	}
}

func TestPickUniformCoverage(t *testing.T) {
	s := New(5)
	items := []string{"a", "b", "c"}
	seen := make(map[string]int)
	for i := 0; i < 300; i++ {
		seen[Pick(s, items)]++
	}
	for _, v := range items {
		if seen[v] == 0 {
			t.Errorf("element %q never picked", v)
		}
	}
}
