package pathnet

// JunctionGraph represents the continuations between paths. Node ids are
// indices into Paths.
type JunctionGraph struct {
	Paths []*Path
	Edges map[int][]Edge
}

// Edge represents a continuation from one path onto another
type Edge struct {
	To   int     // Index of the path continued onto
	Cost float64 // Length of that path
}

// ConnectivityGraph links every valid path to the paths starting within the
// auto search radius of its last point.
func (n *Network) ConnectivityGraph() (*JunctionGraph, error) {
	if !n.built {
		return nil, ErrUnbuiltNetwork
	}

	graph := &JunctionGraph{
		Paths: append([]*Path(nil), n.paths...),
		Edges: make(map[int][]Edge, len(n.paths)),
	}

	index := make(map[*Path]int, len(n.paths))
	for i, p := range graph.Paths {
		index[p] = i
	}

	edgesAdded := 0
	for i, p := range graph.Paths {
		if !p.IsValid() {
			continue
		}
		for _, end := range n.closebyEndsAt(p.Last(), p, n.autoSearchRadius, OnlyForwardFacing()) {
			to := index[end.Path]
			graph.Edges[i] = append(graph.Edges[i], Edge{To: to, Cost: end.Path.Length()})
			edgesAdded++
		}
	}

	n.log.Debug().Int("paths", len(graph.Paths)).Int("edges", edgesAdded).Msg("junction graph built")
	return graph, nil
}

// IndexOf returns the node id of p, or -1.
func (g *JunctionGraph) IndexOf(p *Path) int {
	for i, q := range g.Paths {
		if q == p {
			return i
		}
	}
	return -1
}

// Lines returns every junction as a segment from a path's last point to the
// next path's first point, for visualisation.
func (g *JunctionGraph) Lines() [][2]Point {
	var lines [][2]Point
	for from := range g.Paths {
		for _, e := range g.Edges[from] {
			lines = append(lines, [2]Point{g.Paths[from].Last(), g.Paths[e.To].First()})
		}
	}
	return lines
}
