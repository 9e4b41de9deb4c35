// Voronoi tessellation as the dual of a Delaunay triangulation.
//
// Toroidal wrap-around is handled by triangulating the sites replicated on a
// 3×3 tile grid: every site of the central copy is then interior to the
// triangulation, its cell polygon closes, and adjacency across the seam
// falls out of Delaunay edges into ghost copies.

package geom

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/fogleman/delaunay"
)

// ErrInsufficientPoints is returned when a tessellation is requested with
// fewer than 3 sites.
var ErrInsufficientPoints = errors.New("voronoi tessellation requires at least 3 sites")

// Cell is one Voronoi region. Vertices is the cell polygon clipped to the
// map rectangle; a cell that collapsed to fewer than 3 vertices during
// clipping keeps an empty polygon and is skipped by consumers.
type Cell struct {
	Site      Point
	Vertices  []Point
	Neighbors []int
}

// Degenerate reports whether the cell polygon collapsed during clipping.
func (c *Cell) Degenerate() bool {
	return len(c.Vertices) < 3
}

// Diagram is a complete tessellation: one cell per input site, same order.
type Diagram struct {
	Cells []Cell
	Dims  Dimensions
}

// BuildVoronoi tessellates the sites over the toroidal rectangle. Two cells
// are neighbors iff they share a Voronoi edge, including edges that cross
// the wrap seam.
func BuildVoronoi(sites []Point, dims Dimensions) (*Diagram, error) {
	n := len(sites)
	if n < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientPoints, n)
	}

	// Central copy first, then the eight ghost translations. Replica index i
	// always maps back to site i%n.
	pts := make([]delaunay.Point, 0, 9*n)
	for _, off := range tileOffsets(dims) {
		for _, s := range sites {
			pts = append(pts, delaunay.Point{X: s.X + off.X, Y: s.Y + off.Y})
		}
	}

	tri, err := delaunay.Triangulate(pts)
	if err != nil {
		return nil, fmt.Errorf("triangulate %d sites: %w", n, err)
	}

	inedge := inedges(tri, len(pts))

	diagram := &Diagram{Cells: make([]Cell, n), Dims: dims}
	degenerate := 0
	for i := 0; i < n; i++ {
		cell := &diagram.Cells[i]
		cell.Site = sites[i]

		edges := edgesAroundSite(tri, inedge[i])
		poly := make([]Point, 0, len(edges))
		seen := make(map[int]bool, len(edges))
		for _, e := range edges {
			c := circumcenter(tri, e/3)
			poly = append(poly, c)

			// The start point of an incoming halfedge is the adjacent site.
			q := tri.Triangles[e] % n
			if q != i && !seen[q] {
				seen[q] = true
				cell.Neighbors = append(cell.Neighbors, q)
			}
		}

		cell.Vertices = dedupeVertices(clipToRect(poly, dims))
		if len(cell.Vertices) < 3 {
			cell.Vertices = []Point{}
			degenerate++
		}
	}
	if degenerate > 0 {
		slog.Warn("degenerate voronoi cells collapsed during clipping", "count", degenerate, "sites", n)
	}

	symmetrize(diagram.Cells)
	return diagram, nil
}

func tileOffsets(dims Dimensions) [9]Point {
	w, h := dims.Width, dims.Height
	return [9]Point{
		{0, 0},
		{-w, -h}, {0, -h}, {w, -h},
		{-w, 0}, {w, 0},
		{-w, h}, {0, h}, {w, h},
	}
}

func nextHalfedge(e int) int {
	if e%3 == 2 {
		return e - 2
	}
	return e + 1
}

// inedges finds, for every point, one halfedge that ends at it.
func inedges(tri *delaunay.Triangulation, numPoints int) []int {
	in := make([]int, numPoints)
	for i := range in {
		in[i] = -1
	}
	for e := 0; e < len(tri.Triangles); e++ {
		p := tri.Triangles[nextHalfedge(e)]
		if in[p] == -1 || tri.Halfedges[e] == -1 {
			in[p] = e
		}
	}
	return in
}

// edgesAroundSite walks the incoming halfedges around a site. Central-copy
// sites are interior to the replicated triangulation, so the walk closes.
func edgesAroundSite(tri *delaunay.Triangulation, start int) []int {
	var result []int
	if start == -1 {
		return result
	}
	incoming := start
	for {
		result = append(result, incoming)
		outgoing := nextHalfedge(incoming)
		incoming = tri.Halfedges[outgoing]
		if incoming == -1 || incoming == start {
			break
		}
	}
	return result
}

// circumcenter of triangle t, the Voronoi vertex shared by its three cells.
func circumcenter(tri *delaunay.Triangulation, t int) Point {
	a := tri.Points[tri.Triangles[3*t]]
	b := tri.Points[tri.Triangles[3*t+1]]
	c := tri.Points[tri.Triangles[3*t+2]]

	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if d == 0 {
		// Collinear triangle; fall back to the vertex mean.
		return Point{X: (a.X + b.X + c.X) / 3, Y: (a.Y + b.Y + c.Y) / 3}
	}
	ad := a.X*a.X + a.Y*a.Y
	bd := b.X*b.X + b.Y*b.Y
	cd := c.X*c.X + c.Y*c.Y
	return Point{
		X: (ad*(b.Y-c.Y) + bd*(c.Y-a.Y) + cd*(a.Y-b.Y)) / d,
		Y: (ad*(c.X-b.X) + bd*(a.X-c.X) + cd*(b.X-a.X)) / d,
	}
}

// clipToRect clips a polygon against [0,w]×[0,h] (Sutherland–Hodgman).
func clipToRect(poly []Point, dims Dimensions) []Point {
	edges := []func(Point) float64{
		func(p Point) float64 { return p.X },               // x >= 0
		func(p Point) float64 { return dims.Width - p.X },  // x <= w
		func(p Point) float64 { return p.Y },               // y >= 0
		func(p Point) float64 { return dims.Height - p.Y }, // y <= h
	}
	out := poly
	for _, inside := range edges {
		in := out
		out = nil
		for i, cur := range in {
			prev := in[(i+len(in)-1)%len(in)]
			ci, pi := inside(cur), inside(prev)
			if ci >= 0 {
				if pi < 0 {
					out = append(out, intersect(prev, cur, pi, ci))
				}
				out = append(out, cur)
			} else if pi >= 0 {
				out = append(out, intersect(prev, cur, pi, ci))
			}
		}
		if len(out) == 0 {
			return nil
		}
	}
	return out
}

// intersect interpolates the crossing point on segment a→b given signed
// distances da, db to the clip line (opposite signs).
func intersect(a, b Point, da, db float64) Point {
	t := da / (da - db)
	return Point{X: a.X + t*(b.X-a.X), Y: a.Y + t*(b.Y-a.Y)}
}

// dedupeVertices drops consecutive near-identical polygon vertices.
func dedupeVertices(poly []Point) []Point {
	if len(poly) == 0 {
		return poly
	}
	const eps = 1e-9
	out := poly[:0]
	for _, p := range poly {
		if len(out) > 0 {
			last := out[len(out)-1]
			if (p.X-last.X)*(p.X-last.X)+(p.Y-last.Y)*(p.Y-last.Y) < eps {
				continue
			}
		}
		out = append(out, p)
	}
	if len(out) > 1 {
		first, last := out[0], out[len(out)-1]
		if (first.X-last.X)*(first.X-last.X)+(first.Y-last.Y)*(first.Y-last.Y) < eps {
			out = out[:len(out)-1]
		}
	}
	return out
}

// symmetrize enforces neighbor symmetry: A listing B implies B listing A.
func symmetrize(cells []Cell) {
	for i := range cells {
		for _, nb := range cells[i].Neighbors {
			found := false
			for _, back := range cells[nb].Neighbors {
				if back == i {
					found = true
					break
				}
			}
			if !found {
				cells[nb].Neighbors = append(cells[nb].Neighbors, i)
			}
		}
	}
	for i := range cells {
		sort.Ints(cells[i].Neighbors)
	}
}
