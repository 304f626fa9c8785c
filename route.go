package pathnet

import (
	"container/heap"
	"fmt"
)

// routeNode represents a node in the A* search over the junction graph
type routeNode struct {
	PathID int     // index of the path in the graph
	G      float64 // Cost from start to this node
	H      float64 // Heuristic cost from this node to the target
	F      float64 // Total cost (G + H)
	Parent *routeNode
	Index  int // Index in the heap
}

// priorityQueue implements heap.Interface for A* algorithm
type priorityQueue []*routeNode

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].F < pq[j].F
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *priorityQueue) Push(x any) {
	n := len(*pq)
	node := x.(*routeNode)
	node.Index = n
	*pq = append(*pq, node)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.Index = -1
	*pq = old[0 : n-1]
	return node
}

// Route is a chain of paths a vehicle can follow.
type Route struct {
	Paths    []*Path
	Distance float64 // summed length of every path after the first
}

// Route finds the shortest chain of continuations from the end of from to
// the start of to. Every path after from must admit vehicleType.
func (n *Network) Route(from, to *Path, vehicleType VehicleType) (Route, error) {
	graph, err := n.ConnectivityGraph()
	if err != nil {
		return Route{}, err
	}
	return graph.ShortestRoute(from, to, vehicleType)
}

// ShortestRoute runs A* over the junction graph.
func (g *JunctionGraph) ShortestRoute(from, to *Path, vehicleType VehicleType) (Route, error) {
	startIdx, endIdx := g.IndexOf(from), g.IndexOf(to)
	if startIdx < 0 || endIdx < 0 || !from.IsValid() || !to.IsValid() {
		return Route{}, fmt.Errorf("route %s -> %s: %w", from, to, ErrInvalidPath)
	}

	// Junction gaps are free, so only the target's own length is a lower
	// bound on what remains.
	heuristic := func(id int) float64 {
		if id == endIdx {
			return 0
		}
		return to.Length()
	}

	openSet := &priorityQueue{}
	heap.Init(openSet)

	startNode := &routeNode{PathID: startIdx, H: heuristic(startIdx)}
	startNode.F = startNode.H
	heap.Push(openSet, startNode)

	closedSet := make(map[int]bool)
	openSetMap := map[int]*routeNode{startIdx: startNode}

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*routeNode)
		delete(openSetMap, current.PathID)

		if current.PathID == endIdx {
			var paths []*Path
			for node := current; node != nil; node = node.Parent {
				paths = append(paths, g.Paths[node.PathID])
			}
			for i, j := 0, len(paths)-1; i < j; i, j = i+1, j-1 {
				paths[i], paths[j] = paths[j], paths[i]
			}
			return Route{Paths: paths, Distance: current.G}, nil
		}

		closedSet[current.PathID] = true

		for _, edge := range g.Edges[current.PathID] {
			neighborID := edge.To
			if closedSet[neighborID] || !g.Paths[neighborID].VehicleMask.Allows(vehicleType) {
				continue
			}

			tentativeG := current.G + edge.Cost

			neighbor, exists := openSetMap[neighborID]
			if !exists {
				neighbor = &routeNode{
					PathID: neighborID,
					G:      tentativeG,
					H:      heuristic(neighborID),
					Parent: current,
				}
				neighbor.F = neighbor.G + neighbor.H
				heap.Push(openSet, neighbor)
				openSetMap[neighborID] = neighbor
			} else if tentativeG < neighbor.G {
				// Found a better path to this neighbor
				neighbor.G = tentativeG
				neighbor.F = neighbor.G + neighbor.H
				neighbor.Parent = current
				heap.Fix(openSet, neighbor.Index)
			}
		}
	}

	return Route{}, fmt.Errorf("route %s -> %s for %s: %w", from, to, vehicleType, ErrNoRoute)
}
