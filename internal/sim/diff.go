// Package sim advances resource quantities over time and detects which
// parcels changed between ticks, so transports only push deltas.
package sim

import (
	"slices"

	"parcelforge/internal/world"
)

// ParcelDelta is one changed parcel with its post-tick resource state.
type ParcelDelta struct {
	ID        int              `json:"id"`
	Resources []world.Resource `json:"resources"`
}

// resourceKey is the field set the differ compares. Attributes and Type are
// fixed at generation time, so only the mutable triple matters.
type resourceKey struct {
	current    float64
	maximum    float64
	changeRate float64
}

// Differ holds the previous tick's resource snapshot. Each Diff compares
// against the immediately preceding tick, never the original baseline.
type Differ struct {
	prev map[int][]resourceKey
}

// NewDiffer seeds the snapshot from the map's current state, so the first
// Diff after a tick reports only that tick's changes.
func NewDiffer(m *world.WorldMap) *Differ {
	d := &Differ{}
	d.prev = snapshot(m)
	return d
}

// Diff returns the parcels whose resource arrays changed since the last
// call, each with a copy of its current resources, then replaces the
// snapshot. The copy detaches the delta from the live map: consumers hold
// deltas in buffers and marshal them after later ticks have run.
// Parcels absent from the snapshot (not expected after generation) are
// reported as changed rather than crashing.
func (d *Differ) Diff(m *world.WorldMap) []ParcelDelta {
	var changed []ParcelDelta
	for _, p := range m.Parcels {
		old, ok := d.prev[p.ID]
		if !ok || !equalResources(old, p.Resources) {
			changed = append(changed, ParcelDelta{ID: p.ID, Resources: slices.Clone(p.Resources)})
		}
	}
	d.prev = snapshot(m)
	return changed
}

func snapshot(m *world.WorldMap) map[int][]resourceKey {
	snap := make(map[int][]resourceKey, len(m.Parcels))
	for _, p := range m.Parcels {
		keys := make([]resourceKey, len(p.Resources))
		for i, r := range p.Resources {
			keys[i] = resourceKey{current: r.Current, maximum: r.Maximum, changeRate: r.ChangeRate}
		}
		snap[p.ID] = keys
	}
	return snap
}

func equalResources(old []resourceKey, cur []world.Resource) bool {
	if len(old) != len(cur) {
		return false
	}
	for i, k := range old {
		r := cur[i]
		if k.current != r.Current || k.maximum != r.Maximum || k.changeRate != r.ChangeRate {
			return false
		}
	}
	return true
}
