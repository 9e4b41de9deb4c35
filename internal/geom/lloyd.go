// Lloyd relaxation: repeated centroid snapping to even out cell sizes.

package geom

import "slices"

// Relax runs exactly `iterations` rounds of Lloyd relaxation: tessellate,
// move every site to the centroid of its own cell, clamp back into bounds.
// The returned set has the same cardinality as the input and stays inside
// [0,Width]×[0,Height] after every iteration. Degenerate cells keep their
// site where it is.
func Relax(sites []Point, dims Dimensions, iterations int) ([]Point, error) {
	pts := slices.Clone(sites)
	for it := 0; it < iterations; it++ {
		diagram, err := BuildVoronoi(pts, dims)
		if err != nil {
			return nil, err
		}
		for i := range diagram.Cells {
			cell := &diagram.Cells[i]
			if cell.Degenerate() {
				continue
			}
			pts[i] = dims.Clamp(Centroid(cell.Vertices))
		}
	}
	return pts, nil
}
