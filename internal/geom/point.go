// Package geom provides the planar primitives behind the parcel map: points
// on a toroidal rectangle, Voronoi tessellation, and Lloyd relaxation.
package geom

import "math"

// Point is an immutable 2-D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dimensions describes the map extent. The map is toroidal: coordinates
// conceptually wrap at both bounds, so distance and adjacency near an edge
// must also consider wrapped offsets.
type Dimensions struct {
	Width  float64
	Height float64
}

// CoincidenceThreshold is the distance (in map units) below which two
// polygon vertices are treated as the same point during boundary extraction.
const CoincidenceThreshold = 1.0

// WrappedDistance returns the toroidal distance between a and b: the minimum
// over the direct delta and deltas translated by ±Width / ±Height.
func (d Dimensions) WrappedDistance(a, b Point) float64 {
	dx := math.Abs(a.X - b.X)
	if w := d.Width - dx; w < dx {
		dx = w
	}
	dy := math.Abs(a.Y - b.Y)
	if h := d.Height - dy; h < dy {
		dy = h
	}
	return math.Hypot(dx, dy)
}

// Coincident reports whether two vertices are within the coincidence
// threshold under the toroidal metric.
func (d Dimensions) Coincident(a, b Point) bool {
	return d.WrappedDistance(a, b) < CoincidenceThreshold
}

// Clamp restricts p to [0,Width]×[0,Height].
func (d Dimensions) Clamp(p Point) Point {
	return Point{
		X: math.Min(math.Max(p.X, 0), d.Width),
		Y: math.Min(math.Max(p.Y, 0), d.Height),
	}
}

// Area returns the absolute area of a polygon via the shoelace formula.
func Area(poly []Point) float64 {
	if len(poly) < 3 {
		return 0
	}
	sum := 0.0
	for i, p := range poly {
		q := poly[(i+1)%len(poly)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(sum) / 2
}

// Centroid returns the area centroid of a polygon. Near-zero-area polygons
// fall back to the vertex mean.
func Centroid(poly []Point) Point {
	var a, cx, cy float64
	for i, p := range poly {
		q := poly[(i+1)%len(poly)]
		cross := p.X*q.Y - q.X*p.Y
		a += cross
		cx += (p.X + q.X) * cross
		cy += (p.Y + q.Y) * cross
	}
	if math.Abs(a) < 1e-12 {
		var mx, my float64
		for _, p := range poly {
			mx += p.X
			my += p.Y
		}
		n := float64(len(poly))
		return Point{X: mx / n, Y: my / n}
	}
	return Point{X: cx / (3 * a), Y: cy / (3 * a)}
}
