package pathnet

// Node identifies a vertex on a path: a knot index when the path has knots,
// otherwise a point index. Index -1 marks the absence of a node.
type Node struct {
	Path  *Path
	Index int
}

// NullNode is returned by searches that found nothing.
var NullNode = Node{Index: -1}

// IsNull reports whether n references no vertex.
func (n Node) IsNull() bool {
	return n.Path == nil || n.Index < 0
}

func (n Node) vertexCount() int {
	if n.Path.HasKnots() {
		return n.Path.KnotCount()
	}
	return n.Path.PointCount()
}

// Position returns the vertex position.
func (n Node) Position() Point {
	if n.Path.HasKnots() {
		return n.Path.Knot(n.Index)
	}
	return n.Path.PositionAt(n.Index)
}

// IsLast reports whether n is the final vertex of its path.
func (n Node) IsLast() bool {
	return !n.IsNull() && n.Index == n.vertexCount()-1
}

// Next returns the following vertex, or NullNode past the end.
func (n Node) Next() Node {
	if n.IsNull() || n.Index >= n.vertexCount()-1 {
		return NullNode
	}
	return Node{Path: n.Path, Index: n.Index + 1}
}

// Previous returns the preceding vertex, or NullNode before the start.
func (n Node) Previous() Node {
	if n.IsNull() || n.Index == 0 {
		return NullNode
	}
	return Node{Path: n.Path, Index: n.Index - 1}
}

// End identifies one open extremity of a path.
type End struct {
	Path   *Path
	IsLast bool
}

// Index returns the point index of the end.
func (e End) Index() int {
	if e.IsLast {
		return e.Path.LastIndex()
	}
	return e.Path.FirstIndex()
}

// Position returns the world position of the end.
func (e End) Position() Point {
	return e.Path.PositionAt(e.Index())
}

// Node returns the vertex at the end, in the path's node indexing.
func (e End) Node() Node {
	n := Node{Path: e.Path}
	if e.IsLast {
		n.Index = n.vertexCount() - 1
	}
	return n
}

// OutDirection points from the end into the path.
func (e End) OutDirection() Vec3 {
	pts := e.Path.points
	if e.IsLast {
		return pts[len(pts)-2].Sub(pts[len(pts)-1]).Normalized()
	}
	return pts[1].Sub(pts[0]).Normalized()
}

// TurnAngle returns the signed angle in degrees a traveller turns when
// leaving current and entering next, measured around up.
func TurnAngle(current, next End, up Vec3) float64 {
	return SignedAngle(current.OutDirection().Scale(-1), next.OutDirection(), up)
}
