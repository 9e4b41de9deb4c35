package sim

import (
	"math"
	"testing"

	"parcelforge/internal/geom"
	"parcelforge/internal/world"
)

// twoParcelMap builds a minimal map by hand: parcel 0 regenerates, parcel 1
// is static.
func twoParcelMap() *world.WorldMap {
	return &world.WorldMap{
		Width:  100,
		Height: 100,
		Parcels: []*world.Parcel{
			{
				ID:      0,
				Terrain: world.TerrainGrassland,
				Center:  geom.Point{X: 25, Y: 50},
				Resources: []world.Resource{
					{Type: world.ResourceGrain, Current: 10, Maximum: 100, ChangeRate: 2},
				},
				Neighbors: []int{1},
			},
			{
				ID:      1,
				Terrain: world.TerrainMountain,
				Center:  geom.Point{X: 75, Y: 50},
				Resources: []world.Resource{
					{Type: world.ResourceStone, Current: 50, Maximum: 120, ChangeRate: 0},
				},
				Neighbors: []int{0},
			},
		},
		Boundaries: []world.Boundary{
			{Parcel1: 0, Parcel2: 1, Edge: []geom.Point{{X: 50, Y: 0}, {X: 50, Y: 100}}, Resources: []world.Resource{}},
		},
	}
}

func TestAdvanceChangesOnlyMovingParcels(t *testing.T) {
	m := twoParcelMap()
	s := New(m)

	deltas, err := s.Advance(m, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(deltas) != 1 || deltas[0].ID != 0 {
		t.Fatalf("deltas = %+v, want exactly parcel 0", deltas)
	}
	if got := m.Parcels[0].Resources[0].Current; got != 20 {
		t.Fatalf("grain current = %v, want 20", got)
	}
	if got := deltas[0].Resources[0].Current; got != 20 {
		t.Fatalf("delta carries stale current %v, want 20", got)
	}
}

func TestAdvanceClampsToMaximum(t *testing.T) {
	m := twoParcelMap()
	s := New(m)

	if _, err := s.Advance(m, 1e6); err != nil {
		t.Fatal(err)
	}
	if got := m.Parcels[0].Resources[0].Current; got != 100 {
		t.Fatalf("current = %v, want clamp at maximum 100", got)
	}
}

func TestAdvanceClampsToZero(t *testing.T) {
	m := twoParcelMap()
	m.Parcels[0].Resources[0].ChangeRate = -4
	s := New(m)

	if _, err := s.Advance(m, 1e6); err != nil {
		t.Fatal(err)
	}
	if got := m.Parcels[0].Resources[0].Current; got != 0 {
		t.Fatalf("current = %v, want clamp at 0", got)
	}
}

func TestAdvanceSpeedMultiplier(t *testing.T) {
	m := twoParcelMap()
	s := New(m)
	s.SetSpeed(2)

	if _, err := s.Advance(m, 5); err != nil {
		t.Fatal(err)
	}
	// 10 + 2*5*2 = 30
	if got := m.Parcels[0].Resources[0].Current; got != 30 {
		t.Fatalf("current = %v, want 30 with speed 2", got)
	}
}

func TestAdvanceUpdatesBoundaryResources(t *testing.T) {
	m := twoParcelMap()
	m.Boundaries[0].Resources = []world.Resource{
		{Type: world.ResourceFish, Current: 5, Maximum: 60, ChangeRate: 1},
	}
	s := New(m)

	if _, err := s.Advance(m, 3); err != nil {
		t.Fatal(err)
	}
	if got := m.Boundaries[0].Resources[0].Current; got != 8 {
		t.Fatalf("boundary resource current = %v, want 8", got)
	}
}

func TestAdvanceRefreshesLastUpdate(t *testing.T) {
	m := twoParcelMap()
	m.LastUpdate = 1
	s := New(m)

	if _, err := s.Advance(m, 1); err != nil {
		t.Fatal(err)
	}
	if m.LastUpdate <= 1 {
		t.Fatalf("lastUpdate = %d, want refreshed", m.LastUpdate)
	}
	before := m.LastUpdate
	if _, err := s.Advance(m, 1); err != nil {
		t.Fatal(err)
	}
	if m.LastUpdate < before {
		t.Fatal("lastUpdate went backwards")
	}
}

func TestAdvanceRejectsNonFiniteRates(t *testing.T) {
	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		m := twoParcelMap()
		m.Parcels[1].Resources[0].ChangeRate = bad
		s := New(m)
		if _, err := s.Advance(m, 1); err == nil {
			t.Fatalf("change rate %v accepted", bad)
		}
	}
}

func TestStartStop(t *testing.T) {
	s := New(twoParcelMap())
	if s.Running() {
		t.Fatal("new simulator should be stopped")
	}
	s.Start()
	if !s.Running() {
		t.Fatal("Start did not run the simulator")
	}
	s.Stop()
	if s.Running() {
		t.Fatal("Stop did not stop the simulator")
	}
}

func TestSpeedRoundTrip(t *testing.T) {
	s := New(twoParcelMap())
	if s.Speed() != 1 {
		t.Fatalf("new simulator speed = %v, want 1", s.Speed())
	}
	for _, v := range []float64{2.5, 0, 100} {
		s.SetSpeed(v)
		if got := s.Speed(); got != v {
			t.Fatalf("Speed() = %v after SetSpeed(%v)", got, v)
		}
	}
}

func TestAdvanceDeltasDetachedFromLiveState(t *testing.T) {
	// Emitted deltas sit in transport buffers while later ticks mutate the
	// map; a delta must keep the values of its own tick.
	m := twoParcelMap()
	s := New(m)

	deltas, err := s.Advance(m, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(deltas) != 1 || deltas[0].Resources[0].Current != 20 {
		t.Fatalf("first tick deltas = %+v", deltas)
	}

	if _, err := s.Advance(m, 5); err != nil {
		t.Fatal(err)
	}
	if got := deltas[0].Resources[0].Current; got != 20 {
		t.Fatalf("emitted delta mutated by a later tick: 20 -> %v", got)
	}
	if got := m.Parcels[0].Resources[0].Current; got != 30 {
		t.Fatalf("live map current = %v, want 30", got)
	}
}

func TestGeneratedMapHoldsBoundsUnderTicks(t *testing.T) {
	cfg := world.DefaultMapConfig()
	cfg.Width, cfg.Height, cfg.NumParcels, cfg.Seed = 300, 300, 80, 42
	m, err := world.Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	s := New(m)
	for i := 0; i < 50; i++ {
		if _, err := s.Advance(m, 10); err != nil {
			t.Fatal(err)
		}
	}
	for _, p := range m.Parcels {
		for _, r := range p.Resources {
			if r.Current < 0 || r.Current > r.Maximum {
				t.Fatalf("parcel %d resource %s escaped [0,%v]: %v", p.ID, r.Type, r.Maximum, r.Current)
			}
		}
	}
}
