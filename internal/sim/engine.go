// Tick scheduler: drives the simulator at a fixed interval, one tick in
// flight at a time.

package sim

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"parcelforge/internal/world"
)

// Engine owns the tick loop for one simulator/map pair. Ticks are strictly
// serialized: a tick mutates the map and runs the diff to completion before
// the next tick can begin.
type Engine struct {
	Sim      *Simulator
	Map      *world.WorldMap
	Interval time.Duration // base tick interval (default 1 second)

	// OnDelta receives the change set of each tick that changed anything.
	OnDelta func(tick uint64, deltas []ParcelDelta)

	// Mu guards the map between ticks and outside readers (the HTTP layer).
	Mu sync.Mutex

	tick    atomic.Uint64
	running atomic.Bool
}

// NewEngine creates an engine with the default one-second interval.
func NewEngine(m *world.WorldMap, s *Simulator) *Engine {
	return &Engine{Sim: s, Map: m, Interval: time.Second}
}

// Tick returns the most recently completed tick number.
func (e *Engine) Tick() uint64 { return e.tick.Load() }

// Run starts the tick loop. Blocks until Stop is called or a tick fails.
func (e *Engine) Run() {
	e.running.Store(true)
	slog.Info("simulation engine started", "interval", e.Interval, "speed", e.Sim.Speed())

	last := time.Now()
	for e.running.Load() {
		if !e.Sim.Running() {
			// Paused; keep elapsed time from accruing while stopped.
			time.Sleep(100 * time.Millisecond)
			last = time.Now()
			continue
		}

		start := time.Now()
		elapsed := start.Sub(last).Seconds()
		last = start

		e.Mu.Lock()
		deltas, err := e.Sim.Advance(e.Map, elapsed)
		e.Mu.Unlock()
		if err != nil {
			slog.Error("tick failed", "tick", e.tick.Load(), "error", err)
			e.running.Store(false)
			break
		}

		tick := e.tick.Add(1)
		if e.OnDelta != nil && len(deltas) > 0 {
			e.OnDelta(tick, deltas)
		}

		if spent := time.Since(start); spent < e.Interval {
			time.Sleep(e.Interval - spent)
		}
	}

	slog.Info("simulation engine stopped", "tick", e.tick.Load())
}

// Stop halts the tick loop after the in-flight tick completes.
func (e *Engine) Stop() {
	e.running.Store(false)
}
