package pathnet

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNetwork(t *testing.T, rebuildKnots bool, paths ...*Path) *Network {
	t.Helper()

	n := NewNetwork(WithRandSource(rand.NewPCG(42, 1024)))
	require.NoError(t, n.RebuildNetwork(PathList(paths), rebuildKnots))
	return n
}

type failingSource struct{}

func (failingSource) Paths() ([]*Path, error) { return nil, errors.New("disk on fire") }

func TestNetwork_Unbuilt(t *testing.T) {
	n := NewNetwork()
	p := NewPath("a", []Point{{0, 0, 0}, {1, 0, 0}})

	assert.False(t, n.IsBuilt())

	_, err := n.Paths()
	assert.ErrorIs(t, err, ErrUnbuiltNetwork)

	node, err := n.ClosestNode(Point{})
	assert.ErrorIs(t, err, ErrUnbuiltNetwork)
	assert.True(t, node.IsNull())

	_, err = n.ClosestPoint(Point{})
	assert.ErrorIs(t, err, ErrUnbuiltNetwork)

	_, err = n.ClosebyEnds(p, 0, 1)
	assert.ErrorIs(t, err, ErrUnbuiltNetwork)

	_, err = n.NextRandomPathForVehicle(Node{Path: p}, Car)
	assert.ErrorIs(t, err, ErrUnbuiltNetwork)

	_, err = n.DisconnectedEnds()
	assert.ErrorIs(t, err, ErrUnbuiltNetwork)

	_, err = n.SpawnablePaths(Car)
	assert.ErrorIs(t, err, ErrUnbuiltNetwork)

	_, err = n.ConnectivityGraph()
	assert.ErrorIs(t, err, ErrUnbuiltNetwork)
}

func TestNetwork_RebuildFailureKeepsState(t *testing.T) {
	a := NewPath("a", []Point{{0, 0, 0}, {1, 0, 0}})
	n := newTestNetwork(t, true, a)

	err := n.RebuildNetwork(failingSource{}, true)
	require.Error(t, err)

	paths, err := n.Paths()
	require.NoError(t, err)
	assert.Equal(t, []*Path{a}, paths)
}

func TestNetwork_RebuildRecomputesDerivedData(t *testing.T) {
	a := NewPath("a", []Point{{0, 0, 0}, {1, 0, 0}})
	a.SetPoints([]Point{{0, 0, 0}, {4, 0, 0}})

	n := newTestNetwork(t, true, a)
	assert.InDelta(t, 4.0, a.Length(), eps)
	assert.Equal(t, 5, a.KnotCount())

	got, ok := n.PathByName("a")
	assert.True(t, ok)
	assert.Same(t, a, got)

	b := NewPath("b", []Point{{0, 0, 0}, {3, 0, 0}})
	newTestNetwork(t, false, b)
	assert.False(t, b.HasKnots())
}

func TestNetwork_EmptyNetwork(t *testing.T) {
	n := newTestNetwork(t, true)

	node, err := n.ClosestNode(Point{1, 2, 3})
	require.NoError(t, err)
	assert.True(t, node.IsNull())

	cp, err := n.ClosestPoint(Point{1, 2, 3})
	require.NoError(t, err)
	assert.True(t, cp.Node.IsNull())

	dead, err := n.DisconnectedEnds()
	require.NoError(t, err)
	assert.Empty(t, dead)
}

func TestNetwork_ClosestNode(t *testing.T) {
	a := NewPath("a", []Point{{0, 0, 0}, {4, 0, 0}})
	b := NewPath("b", []Point{{0, 5, 0}, {4, 5, 0}})

	n := newTestNetwork(t, true, a, b)
	node, err := n.ClosestNode(Point{2.2, 1, 0})
	require.NoError(t, err)
	assert.Same(t, a, node.Path)
	assert.Equal(t, 2, node.Index)
	assert.Equal(t, Point{2, 0, 0}, node.Position())

	// without knots the raw points are scanned
	n = newTestNetwork(t, false, a, b)
	a.knots = nil
	b.knots = nil
	node, err = n.ClosestNode(Point{2.2, 1, 0})
	require.NoError(t, err)
	assert.Same(t, a, node.Path)
	assert.Equal(t, 1, node.Index)
}

func TestNetwork_ClosestPoint(t *testing.T) {
	a := NewPath("a", []Point{{0, 0, 0}, {10, 0, 0}})
	b := NewPath("b", []Point{{0, 3, 0}, {10, 3, 0}})
	invalid := NewPath("invalid", []Point{{5, 1, 0}})

	n := newTestNetwork(t, true, invalid, a, b)

	cp, err := n.ClosestPoint(Point{5, 1, 0})
	require.NoError(t, err)
	assert.Same(t, a, cp.Node.Path)
	assert.Equal(t, Point{5, 0, 0}, cp.Point)
	assert.InDelta(t, 1.0, cp.Distance, eps)
	assert.InDelta(t, 5.0, cp.Along, eps)

	// equidistant paths resolve to the earlier one
	cp, err = n.ClosestPoint(Point{5, 1.5, 0})
	require.NoError(t, err)
	assert.Same(t, a, cp.Node.Path)
}

func TestNetwork_ClosestPointNodeFeedsNodeQueries(t *testing.T) {
	for _, rebuildKnots := range []bool{false, true} {
		a := NewPath("A", []Point{{0, 0, 0}, {10, 0, 0}, {20, 0, 0}})
		b := NewPath("B", []Point{{20, 0, 0}, {30, 0, 0}})
		n := newTestNetwork(t, rebuildKnots, a, b)

		cp, err := n.ClosestPoint(Point{19.8, 0.5, 0})
		require.NoError(t, err)
		require.Same(t, a, cp.Node.Path)
		assert.Equal(t, 1, cp.Segment)
		assert.True(t, cp.Node.IsLast(), "knots %v", rebuildKnots)
		assert.Equal(t, Point{20, 0, 0}, cp.Node.Position())

		got, err := n.NextRandomPathForVehicle(cp.Node, Car)
		require.NoError(t, err)
		assert.Same(t, b, got)
	}
}

func TestNetwork_ClosestPointNodeOnCollapsedKnots(t *testing.T) {
	a := NewPath("A", []Point{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {1, 0, 0}})
	n := newTestNetwork(t, true, a)

	cp, err := n.ClosestPoint(Point{0.9, 0.5, 0})
	require.NoError(t, err)
	assert.Equal(t, 2, cp.Segment)
	assert.Less(t, cp.Node.Index, a.KnotCount())

	_, err = n.NextRandomPathForVehicle(cp.Node, Car)
	assert.ErrorIs(t, err, ErrNoContinuation)
}

// Example scenario: A ends where B begins, within the auto search radius.
func TestNetwork_ClosebyEnds_Scenario(t *testing.T) {
	a := NewPath("A", []Point{{-10, 0, 0}, {0, 0, 0}})
	b := NewPath("B", []Point{{0.05, 0, 0}, {10, 0, 0}})

	n := newTestNetwork(t, true, a, b)
	ends, err := n.ClosebyEnds(a, a.LastIndex(), 0.2)
	require.NoError(t, err)
	assert.Equal(t, []End{{Path: b, IsLast: false}}, ends)
}

func TestNetwork_ClosebyEnds_OrderAndFilters(t *testing.T) {
	self := NewPath("self", []Point{{-10, 0, 0}, {0, 0, 0}})
	starts := NewPath("starts", []Point{{0.05, 0, 0}, {10, 0, 0}})
	ends := NewPath("ends", []Point{{0, -10, 0}, {0, -0.05, 0}})
	loop := NewPath("loop", []Point{{0, 0.05, 0}, {0, 5, 0}, {0.05, 0.05, 0}})
	far := NewPath("far", []Point{{50, 50, 0}, {60, 50, 0}})

	n := newTestNetwork(t, true, self, starts, far, ends, loop)

	got, err := n.ClosebyEnds(self, self.LastIndex(), 0.2)
	require.NoError(t, err)
	assert.Equal(t, []End{
		{Path: starts},
		{Path: ends, IsLast: true},
		{Path: loop},
		{Path: loop, IsLast: true},
	}, got)

	got, err = n.ClosebyEnds(self, self.LastIndex(), 0.2, OnlyForwardFacing())
	require.NoError(t, err)
	assert.Equal(t, []End{{Path: starts}, {Path: loop}}, got)

	got, err = n.ClosebyEnds(self, self.LastIndex(), 0.2, IncludeSelf(), OnlyForwardFacing())
	require.NoError(t, err)
	assert.Equal(t, []End{{Path: starts}, {Path: loop}}, got)

	got, err = n.ClosebyEnds(self, self.LastIndex(), 0.2, IncludeSelf())
	require.NoError(t, err)
	assert.Equal(t, End{Path: self, IsLast: true}, got[0])
	assert.Len(t, got, 5)

	got, err = n.ClosebyEnds(self, self.LastIndex(), 0.01)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNetwork_ClosebyEnds_RadiusIsExclusive(t *testing.T) {
	a := NewPath("a", []Point{{-10, 0, 0}, {0, 0, 0}})
	b := NewPath("b", []Point{{0.5, 0, 0}, {10, 0, 0}})

	n := newTestNetwork(t, true, a, b)
	got, err := n.ClosebyEnds(a, a.LastIndex(), 0.5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNetwork_ClosebyEnds_UnboundedRadius(t *testing.T) {
	a := NewPath("a", []Point{{0, 0, 0}, {1, 0, 0}})
	b := NewPath("b", []Point{{100, 0, 0}, {200, 0, 0}})
	n := newTestNetwork(t, true, a, b)

	got, err := n.ClosebyEnds(a, 1, math.Inf(1))
	require.NoError(t, err)
	assert.Equal(t, []End{{Path: b}, {Path: b, IsLast: true}}, got)
}

func TestNetwork_ClosebyEnds_AutoRadius(t *testing.T) {
	a := NewPath("a", []Point{{-10, 0, 0}, {0, 0, 0}})
	b := NewPath("b", []Point{{0.1, 0, 0}, {10, 0, 0}})
	c := NewPath("c", []Point{{0.3, 0, 0}, {10, 1, 0}})

	n := newTestNetwork(t, true, a, b, c)
	got, err := n.ClosebyEnds(a, a.LastIndex(), 0)
	require.NoError(t, err)
	assert.Equal(t, []End{{Path: b}}, got)

	got, err = n.ClosebyEnds(a, a.LastIndex(), 0.5)
	require.NoError(t, err)
	assert.Equal(t, []End{{Path: b}, {Path: c}}, got)
}

func TestNetwork_ClosebyEnds_IndexOutOfRange(t *testing.T) {
	a := NewPath("a", []Point{{0, 0, 0}, {1, 0, 0}})
	n := newTestNetwork(t, true, a)

	_, err := n.ClosebyEnds(a, 2, 0.2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = n.ClosebyEnds(a, -1, 0.2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = n.ClosebyEnds(nil, 0, 0.2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestNetwork_ClosebyEnds_MatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))

	var paths []*Path
	for i := range 200 {
		start := Point{X: rng.Float64() * 20, Y: rng.Float64() * 20, Z: rng.Float64()}
		end := Point{X: rng.Float64() * 20, Y: rng.Float64() * 20, Z: rng.Float64()}
		paths = append(paths, NewPath(string(rune('a'+i%26)), []Point{start, end}))
	}
	n := newTestNetwork(t, false, paths...)

	for range 50 {
		self := paths[rng.IntN(len(paths))]
		radius := 0.5 + rng.Float64()*2

		got, err := n.ClosebyEnds(self, self.LastIndex(), radius)
		require.NoError(t, err)

		origin := self.Last()
		var want []End
		for _, p := range paths {
			if p == self {
				continue
			}
			for _, isLast := range []bool{false, true} {
				e := End{Path: p, IsLast: isLast}
				if e.Position().SqrDistance(origin) < radius*radius {
					want = append(want, e)
				}
			}
		}

		if len(want) == 0 {
			assert.Empty(t, got)
		} else {
			assert.Equal(t, want, got)
		}
	}
}

// Example scenario: the only continuation excludes buses.
func TestNetwork_NextRandomPath_NoMatchingType(t *testing.T) {
	a := NewPath("A", []Point{{0, 0, 0}, {10, 0, 0}})
	c := NewPath("C", []Point{{10, 0, 0}, {20, 0, 0}})
	c.VehicleMask = MaskCar

	n := newTestNetwork(t, true, a, c)

	_, err := n.NextRandomPathForVehicle(End{Path: a, IsLast: true}.Node(), Bus)
	assert.ErrorIs(t, err, ErrNoMatchingType)

	got, err := n.NextRandomPathForVehicle(End{Path: a, IsLast: true}.Node(), Car)
	require.NoError(t, err)
	assert.Same(t, c, got)
}

func TestNetwork_NextRandomPath_NoContinuation(t *testing.T) {
	a := NewPath("A", []Point{{0, 0, 0}, {10, 0, 0}})
	b := NewPath("B", []Point{{10, 0, 0}, {20, 0, 0}})

	n := newTestNetwork(t, true, a, b)

	_, err := n.NextRandomPathForVehicle(End{Path: b, IsLast: true}.Node(), Car)
	assert.ErrorIs(t, err, ErrNoContinuation)

	_, err = n.NextRandomPathForVehicle(NullNode, Car)
	assert.ErrorIs(t, err, ErrNullNode)
}

func TestNetwork_NextRandomPath_IndexOutOfRange(t *testing.T) {
	a := NewPath("A", []Point{{0, 0, 0}, {10, 0, 0}})
	b := NewPath("B", []Point{{10, 0, 0}, {20, 0, 0}})

	n := newTestNetwork(t, false, a, b)
	_, err := n.NextRandomPathForVehicle(Node{Path: a, Index: 5}, Car)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	n = newTestNetwork(t, true, a, b)
	_, err = n.NextRandomPathForVehicle(Node{Path: a, Index: a.KnotCount()}, Car)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	got, err := n.NextRandomPathForVehicle(Node{Path: a, Index: a.KnotCount() - 1}, Car)
	require.NoError(t, err)
	assert.Same(t, b, got)
}

func TestNetwork_NextRandomPath_OnlyMatchingCandidates(t *testing.T) {
	a := NewPath("A", []Point{{0, 0, 0}, {10, 0, 0}})
	bus := NewPath("bus", []Point{{10, 0, 0}, {20, 0, 0}})
	bus.VehicleMask = MaskPublicTransport
	car1 := NewPath("car1", []Point{{10, 0, 0}, {10, 10, 0}})
	car1.VehicleMask = MaskCar
	car2 := NewPath("car2", []Point{{10.1, 0, 0}, {10, -10, 0}})
	car2.VehicleMask = MaskCar | MaskTaxi

	n := newTestNetwork(t, true, a, bus, car1, car2)
	from := End{Path: a, IsLast: true}.Node()

	seen := map[*Path]int{}
	for range 200 {
		got, err := n.NextRandomPathForVehicle(from, Car)
		require.NoError(t, err)
		seen[got]++
	}

	assert.Zero(t, seen[bus])
	assert.Positive(t, seen[car1])
	assert.Positive(t, seen[car2])
	assert.Equal(t, 200, seen[car1]+seen[car2])
}

func TestNetwork_NextRandomPath_SeededIsReproducible(t *testing.T) {
	build := func() (*Network, Node) {
		a := NewPath("A", []Point{{0, 0, 0}, {10, 0, 0}})
		var paths []*Path
		paths = append(paths, a)
		for i := range 5 {
			paths = append(paths, NewPath(string(rune('b'+i)), []Point{{10, 0, 0}, {20, float64(i), 0}}))
		}
		return newTestNetwork(t, true, paths...), End{Path: a, IsLast: true}.Node()
	}

	n1, from1 := build()
	n2, from2 := build()

	for range 20 {
		p1, err := n1.NextRandomPathForVehicle(from1, Car)
		require.NoError(t, err)
		p2, err := n2.NextRandomPathForVehicle(from2, Car)
		require.NoError(t, err)
		assert.Equal(t, p1.Name, p2.Name)
	}
}

func TestNetwork_DisconnectedEnds(t *testing.T) {
	a := NewPath("A", []Point{{0, 0, 0}, {10, 0, 0}})
	b := NewPath("B", []Point{{10, 0, 0}, {20, 0, 0}})
	// C ends where B ends, which is not a forward-facing continuation
	c := NewPath("C", []Point{{20, 10, 0}, {20, 0, 0}})
	loop1 := NewPath("L1", []Point{{0, 50, 0}, {10, 50, 0}})
	loop2 := NewPath("L2", []Point{{10, 50, 0}, {0, 50, 0}})

	n := newTestNetwork(t, true, a, b, c, loop1, loop2)

	dead, err := n.DisconnectedEnds()
	require.NoError(t, err)
	assert.Equal(t, []*Path{b, c}, dead)

	count, err := n.FindDisconnectedEnds()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNetwork_SpawnablePaths(t *testing.T) {
	a := NewPath("A", []Point{{0, 0, 0}, {10, 0, 0}})
	b := NewPath("B", []Point{{0, 1, 0}, {10, 1, 0}})
	b.AllowsSpawn = false
	c := NewPath("C", []Point{{0, 2, 0}, {10, 2, 0}})
	c.VehicleMask = MaskTram

	n := newTestNetwork(t, true, a, b, c)

	got, err := n.SpawnablePaths(Tram)
	require.NoError(t, err)
	assert.Equal(t, []*Path{a, c}, got)

	got, err = n.SpawnablePaths(Car)
	require.NoError(t, err)
	assert.Equal(t, []*Path{a}, got)
}
