package pathnet

import "math"

// LineSegment represents a line segment between two points
type LineSegment struct {
	P1, P2 Point
}

// Point is an alias kept so geometry helpers read naturally.
type Point = Vec3

// Length returns the length of the segment.
func (s LineSegment) Length() float64 {
	return s.P1.Distance(s.P2)
}

// ClosestPoint projects v orthogonally onto the segment, clamped to its
// extent. It returns the projected point and its distance from P1 along the
// segment. A zero-length segment yields P1.
func (s LineSegment) ClosestPoint(v Point) (Point, float64) {
	diff := s.P2.Sub(s.P1)
	length := diff.Magnitude()
	if length == 0 {
		return s.P1, 0
	}

	d := v.Sub(s.P1).Dot(diff) / length
	d = math.Max(0, math.Min(d, length))

	return s.P1.Add(diff.Scale(d / length)), d
}

// PolylineLength sums the distances between consecutive points.
// Fewer than 2 points have zero length.
func PolylineLength(points []Point) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += points[i-1].Distance(points[i])
	}
	return total
}

// DistanceAlong returns the cumulative length from points[0] to points[end].
// end <= 0 gives 0 and end >= last index gives the full length.
func DistanceAlong(points []Point, end int) float64 {
	if end <= 0 {
		return 0
	}
	if end >= len(points)-1 {
		return PolylineLength(points)
	}

	total := 0.0
	for i := 1; i <= end; i++ {
		total += points[i-1].Distance(points[i])
	}
	return total
}

// PolylineHit is the result of a closest-point search over a polyline.
type PolylineHit struct {
	Point   Point   // closest point on the polyline
	Segment int     // index of the segment's first point
	Along   float64 // distance from the polyline start to Point
	SqrDist float64 // squared distance from the query source to Point
}

// ClosestPointOnPolyline scans every segment left to right and keeps the
// first one with minimal distance to source. It needs at least 2 points.
func ClosestPointOnPolyline(points []Point, source Point) (PolylineHit, bool) {
	if len(points) < 2 {
		return PolylineHit{}, false
	}

	best := PolylineHit{SqrDist: math.Inf(1)}
	alongSegment := 0.0

	for i := 0; i < len(points)-1; i++ {
		seg := LineSegment{P1: points[i], P2: points[i+1]}
		p, d := seg.ClosestPoint(source)
		sqr := p.SqrDistance(source)

		if sqr < best.SqrDist {
			best.Point = p
			best.Segment = i
			best.SqrDist = sqr
			alongSegment = d
		}
	}

	best.Along = DistanceAlong(points, best.Segment) + alongSegment
	return best, true
}

// SplitEvenly divides the segment start-end into round(length/segmentLength)
// equal parts (at least one) and returns all split points, both ends included.
func SplitEvenly(start, end Point, segmentLength float64) []Point {
	diff := end.Sub(start)

	number := 1
	if segmentLength > 0 {
		number = int(math.RoundToEven(diff.Magnitude() / segmentLength))
	}
	if number < 2 {
		number = 1
	}

	e := diff.Scale(1 / float64(number))
	splits := make([]Point, number+1)
	for i := range splits {
		splits[i] = start.Add(e.Scale(float64(i)))
	}
	return splits
}

// perpendicularDistance calculates the distance from point to the infinite
// line through lineStart and lineEnd
func perpendicularDistance(point, lineStart, lineEnd Point) float64 {
	dir := lineEnd.Sub(lineStart).Normalized()
	pv := point.Sub(lineStart)

	// Remove the component along the line
	along := dir.Dot(pv)
	return pv.Sub(dir.Scale(along)).Magnitude()
}
