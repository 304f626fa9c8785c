package pathnet

import (
	"fmt"
	"math"
)

// DefaultKnotSpacing is the target distance between knots.
const DefaultKnotSpacing = 1.0

// Path is an ordered sequence of world-space points forming a polyline.
//
// Length and knots are derived values. They are computed by NewPath and by
// the explicit rebuild operations; replacing points through SetPoints leaves
// them stale until RecalculateLength / BuildKnots (or Rebuild) is called.
type Path struct {
	Name        string
	VehicleMask VehicleMask
	AllowsSpawn bool

	points []Point
	knots  []Point
	length float64
}

// NewPath copies points into a new path and computes its length. The path
// admits every vehicle type and allows spawning; knots are not built.
func NewPath(name string, points []Point) *Path {
	p := &Path{
		Name:        name,
		VehicleMask: MaskAll,
		AllowsSpawn: true,
	}
	p.SetPoints(points)
	p.RecalculateLength()
	return p
}

func (p *Path) String() string {
	if p == nil {
		return "<nil path>"
	}
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("path(%d points)", len(p.points))
}

// SetPoints replaces the point data. Length and knots are not refreshed.
func (p *Path) SetPoints(points []Point) {
	p.points = append([]Point(nil), points...)
}

// Points returns a copy of the raw points.
func (p *Path) Points() []Point {
	return append([]Point(nil), p.points...)
}

// Knots returns a copy of the resampled knots, nil before BuildKnots.
func (p *Path) Knots() []Point {
	if p.knots == nil {
		return nil
	}
	return append([]Point(nil), p.knots...)
}

// HasKnots reports whether a knot set has been built.
func (p *Path) HasKnots() bool { return len(p.knots) > 0 }

// KnotCount returns the number of knots.
func (p *Path) KnotCount() int { return len(p.knots) }

// Knot returns the knot at i.
func (p *Path) Knot(i int) Point { return p.knots[i] }

// IsValid reports whether the path has enough points to be queried.
func (p *Path) IsValid() bool {
	return p != nil && len(p.points) >= 2
}

func (p *Path) PointCount() int { return len(p.points) }

func (p *Path) FirstIndex() int { return 0 }

func (p *Path) LastIndex() int { return len(p.points) - 1 }

func (p *Path) First() Point { return p.points[0] }

func (p *Path) Last() Point { return p.points[len(p.points)-1] }

// PositionAt returns the point at i.
func (p *Path) PositionAt(i int) Point { return p.points[i] }

// Length returns the cached length.
func (p *Path) Length() float64 { return p.length }

// RecalculateLength refreshes the cached length from the current points.
func (p *Path) RecalculateLength() {
	p.length = PolylineLength(p.points)
}

// Rebuild refreshes length and knots.
func (p *Path) Rebuild(knotSpacing float64) {
	p.RecalculateLength()
	p.BuildKnots(knotSpacing)
}

// Next returns the point after i, or the point at i when i is the last.
func (p *Path) Next(i int) Point {
	if i >= p.LastIndex() {
		return p.points[p.LastIndex()]
	}
	return p.points[i+1]
}

// Previous returns the point before i, or the first point when i is 0.
func (p *Path) Previous(i int) Point {
	if i <= 0 {
		return p.points[0]
	}
	return p.points[i-1]
}

// DirectionAt returns the travel direction at point i. Interior points use
// the vector between their neighbours, endpoints the single adjacent point.
func (p *Path) DirectionAt(i int) Vec3 {
	if len(p.points) <= 1 {
		return Forward
	}

	switch {
	case i <= 0:
		return p.points[1].Sub(p.points[0]).Normalized()
	case i >= p.LastIndex():
		last := p.LastIndex()
		return p.points[last].Sub(p.points[last-1]).Normalized()
	default:
		return p.points[i+1].Sub(p.points[i-1]).Normalized()
	}
}

// SegmentLengthAfter returns the length of the segment starting at point i,
// 0 when there is no such segment.
func (p *Path) SegmentLengthAfter(i int) float64 {
	if i < 0 || i >= p.LastIndex() {
		return 0
	}
	return p.points[i].Distance(p.points[i+1])
}

// DistanceTo returns the distance along the path from the first point to
// point end.
func (p *Path) DistanceTo(end int) float64 {
	if end <= 0 {
		return 0
	}
	if end >= p.LastIndex() {
		return p.length
	}
	return DistanceAlong(p.points, end)
}

// LocateAlong finds the segment containing the distance along and the
// fraction t of that segment. Out of range distances clamp to the ends.
func (p *Path) LocateAlong(along float64) (segment int, t float64) {
	n := len(p.points)
	if n < 2 || along <= 0 {
		return 0, 0
	}
	if along > p.length {
		return n - 2, 1
	}

	// same running sum as DistanceAlong, so both agree on segment boundaries
	total := 0.0
	for i := 1; i < n; i++ {
		segLen := p.points[i-1].Distance(p.points[i])
		next := total + segLen
		if next > along {
			return i - 1, (along - total) / segLen
		}
		total = next
	}

	return n - 2, 1
}

// PositionAlong returns the point at distance along from the first point.
// Negative distances give the first point, distances past the end the last.
// An empty path yields the zero vector.
func (p *Path) PositionAlong(along float64) Point {
	switch len(p.points) {
	case 0:
		return Point{}
	case 1:
		return p.points[0]
	}
	if along <= 0 {
		return p.First()
	}
	if along >= p.length {
		return p.Last()
	}

	seg, t := p.LocateAlong(along)
	return p.points[seg].Lerp(p.points[seg+1], t)
}

// ClosestPoint is the result of a closest-point query.
type ClosestPoint struct {
	Point    Point
	Node     Node    // vertex nearest to Point, in the path's node indexing
	Segment  int     // point index of the winning segment's first point
	Along    float64 // distance along the path to Point
	Distance float64 // distance from the query source to Point
}

// ClosestPoint returns the point on the path nearest to source. Segments
// of equal distance resolve to the lowest index.
func (p *Path) ClosestPoint(source Point) (ClosestPoint, error) {
	if !p.IsValid() {
		return ClosestPoint{Node: NullNode, Segment: -1}, fmt.Errorf("closest point on %s: %w", p, ErrInvalidPath)
	}

	hit, _ := ClosestPointOnPolyline(p.points, source)
	node, _ := p.ClosestNode(hit.Point)
	return ClosestPoint{
		Point:    hit.Point,
		Node:     node,
		Segment:  hit.Segment,
		Along:    hit.Along,
		Distance: math.Sqrt(hit.SqrDist),
	}, nil
}

// ClosestNode returns the vertex nearest to position and its squared
// distance. Knots are scanned when built, raw points otherwise; ties go to
// the lowest index. A path without vertices yields NullNode.
func (p *Path) ClosestNode(position Point) (Node, float64) {
	vertices := p.knots
	if len(vertices) == 0 {
		vertices = p.points
	}

	node := NullNode
	minDistance := math.Inf(1)
	for i, v := range vertices {
		if d := v.SqrDistance(position); d < minDistance {
			minDistance = d
			node = Node{Path: p, Index: i}
		}
	}
	return node, minDistance
}

// Reverse flips the point order and rebuilds knots at the given spacing when
// the path had knots.
func (p *Path) Reverse(knotSpacing float64) {
	for i, j := 0, len(p.points)-1; i < j; i, j = i+1, j-1 {
		p.points[i], p.points[j] = p.points[j], p.points[i]
	}
	if p.knots != nil {
		p.BuildKnots(knotSpacing)
	}
}
