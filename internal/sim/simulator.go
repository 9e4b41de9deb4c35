// Resource simulation: per-tick clamped growth/depletion of every resource
// on parcels and boundaries.

package sim

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"parcelforge/internal/world"
)

// Simulator advances a single WorldMap's resources. It is bound to one map
// (its differ snapshots that map) and has two states, stopped and running;
// ticks are driven by an external scheduler which must never overlap two
// Advance calls. Speed and the run state are written by control handlers
// while the engine loop reads them, hence the atomics.
type Simulator struct {
	speed   atomic.Uint64 // Float64bits of the time multiplier
	running atomic.Bool
	differ  *Differ
}

// New creates a stopped simulator for the given map at speed 1.
func New(m *world.WorldMap) *Simulator {
	s := &Simulator{differ: NewDiffer(m)}
	s.SetSpeed(1)
	return s
}

// Start moves the simulator to the running state.
func (s *Simulator) Start() { s.running.Store(true) }

// Stop moves the simulator to the stopped state.
func (s *Simulator) Stop() { s.running.Store(false) }

// Running reports whether the simulator is in the running state.
func (s *Simulator) Running() bool { return s.running.Load() }

// Speed returns the multiplier applied to elapsed real time.
func (s *Simulator) Speed() float64 { return math.Float64frombits(s.speed.Load()) }

// SetSpeed replaces the time multiplier. Safe to call while the engine runs;
// the new value takes effect on the next tick.
func (s *Simulator) SetSpeed(v float64) { s.speed.Store(math.Float64bits(v)) }

// Advance moves every resource forward by elapsed*Speed simulated seconds,
// clamping each into [0, maximum], refreshes the map's mutation timestamp,
// and returns the parcels changed by this step.
//
// A non-finite change rate is a data error and fails the whole tick before
// the snapshot is touched, so nothing silently propagates NaN.
func (s *Simulator) Advance(m *world.WorldMap, elapsed float64) ([]ParcelDelta, error) {
	dt := elapsed * s.Speed()

	for _, p := range m.Parcels {
		if err := applyRates(p.Resources, dt); err != nil {
			return nil, fmt.Errorf("parcel %d: %w", p.ID, err)
		}
	}
	for i := range m.Boundaries {
		b := &m.Boundaries[i]
		if err := applyRates(b.Resources, dt); err != nil {
			return nil, fmt.Errorf("boundary (%d,%d): %w", b.Parcel1, b.Parcel2, err)
		}
	}

	m.Touch(time.Now().UnixMilli())
	return s.differ.Diff(m), nil
}

func applyRates(resources []world.Resource, dt float64) error {
	for i := range resources {
		r := &resources[i]
		if math.IsNaN(r.ChangeRate) || math.IsInf(r.ChangeRate, 0) {
			return fmt.Errorf("non-finite change rate %v on resource %s", r.ChangeRate, r.Type)
		}
		r.Current = math.Min(math.Max(r.Current+r.ChangeRate*dt, 0), r.Maximum)
	}
	return nil
}
