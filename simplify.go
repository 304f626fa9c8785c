package pathnet

// SimplifyPoints reduces polyline complexity using the Douglas-Peucker
// algorithm. The first and last points are always kept, so ends stay where
// the network expects them.
func SimplifyPoints(points []Point, epsilon float64) []Point {
	if len(points) <= 2 || epsilon <= 0 {
		return append([]Point(nil), points...)
	}
	return douglasPeucker(points, epsilon)
}

// Simplify replaces the path's points with a simplified copy and refreshes
// its length. Knots are left for the next rebuild.
func (p *Path) Simplify(epsilon float64) {
	p.points = SimplifyPoints(p.points, epsilon)
	p.RecalculateLength()
}

// douglasPeucker implements the Douglas-Peucker line simplification algorithm
func douglasPeucker(points []Point, epsilon float64) []Point {
	if len(points) <= 2 {
		return append([]Point(nil), points...)
	}

	// Find the point with maximum distance from line between first and last
	dmax := 0.0
	index := 0
	end := len(points) - 1

	for i := 1; i < end; i++ {
		var d float64
		if points[0] == points[end] {
			d = points[i].Distance(points[0])
		} else {
			d = perpendicularDistance(points[i], points[0], points[end])
		}
		if d > dmax {
			index = i
			dmax = d
		}
	}

	if dmax > epsilon {
		left := douglasPeucker(points[0:index+1], epsilon)
		right := douglasPeucker(points[index:], epsilon)

		// Combine results (removing duplicate point at index)
		result := make([]Point, 0, len(left)+len(right)-1)
		result = append(result, left[:len(left)-1]...)
		result = append(result, right...)
		return result
	}

	// All points in between can be discarded
	return []Point{points[0], points[end]}
}
