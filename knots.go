package pathnet

// BuildKnots resamples every segment into pieces of roughly spacing length
// and stores the split points with adjacent duplicates removed. A spacing
// of zero or less uses DefaultKnotSpacing.
func (p *Path) BuildKnots(spacing float64) {
	p.knots = BuildKnots(p.points, spacing)
}

// BuildKnots returns the knot sequence for a polyline. Segment joints appear
// once, as do repeated input points.
func BuildKnots(points []Point, spacing float64) []Point {
	if spacing <= 0 {
		spacing = DefaultKnotSpacing
	}

	knots := make([]Point, 0, len(points))
	for i := 0; i < len(points)-1; i++ {
		knots = append(knots, SplitEvenly(points[i], points[i+1], spacing)...)
	}

	return RemoveAdjacentDuplicates(knots)
}

// RemoveAdjacentDuplicates returns a copy of points without any point
// exactly equal to its predecessor. The input is left untouched.
func RemoveAdjacentDuplicates(points []Point) []Point {
	if points == nil {
		return nil
	}

	out := make([]Point, 0, len(points))
	for _, p := range points {
		if len(out) > 0 && p == out[len(out)-1] {
			continue
		}
		out = append(out, p)
	}
	return out
}
