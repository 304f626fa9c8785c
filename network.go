package pathnet

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
)

// DefaultAutoSearchRadius is the junction search radius used when a query
// does not pass one.
const DefaultAutoSearchRadius = 0.2

// Source supplies world-space paths for a rebuild.
type Source interface {
	Paths() ([]*Path, error)
}

// PathList is a Source over paths already in memory.
type PathList []*Path

// Paths implements Source.
func (l PathList) Paths() ([]*Path, error) {
	return l, nil
}

// Network owns a set of paths and answers spatial and connectivity queries
// over them. It is unbuilt until the first RebuildNetwork. Queries only read;
// callers must not run RebuildNetwork concurrently with anything else.
type Network struct {
	paths            []*Path
	byName           map[string]*Path
	ends             *EndIndex
	built            bool
	autoSearchRadius float64
	knotSpacing      float64
	rng              *rand.Rand
	log              zerolog.Logger
}

// Option configures a Network.
type Option func(*Network)

// WithAutoSearchRadius sets the radius used when queries pass zero.
func WithAutoSearchRadius(r float64) Option {
	return func(n *Network) { n.autoSearchRadius = r }
}

// WithKnotSpacing sets the spacing used when rebuilding knots.
func WithKnotSpacing(s float64) Option {
	return func(n *Network) { n.knotSpacing = s }
}

// WithRandSource makes next-path selection draw from src.
func WithRandSource(src rand.Source) Option {
	return func(n *Network) { n.rng = rand.New(src) }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(n *Network) { n.log = l }
}

// NewNetwork returns an unbuilt network.
func NewNetwork(opts ...Option) *Network {
	n := &Network{
		autoSearchRadius: DefaultAutoSearchRadius,
		knotSpacing:      DefaultKnotSpacing,
		log:              zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.rng == nil {
		n.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return n
}

// RebuildNetwork replaces the path collection with the paths from src. When
// rebuildKnots is set every path's knots are rebuilt before it returns. On
// error the network keeps its previous state.
func (n *Network) RebuildNetwork(src Source, rebuildKnots bool) error {
	startTime := time.Now()

	paths, err := src.Paths()
	if err != nil {
		return fmt.Errorf("failed to collect paths: %w", err)
	}

	owned := make([]*Path, 0, len(paths))
	byName := make(map[string]*Path, len(paths))
	invalid := 0
	for _, p := range paths {
		if p == nil {
			continue
		}
		p.RecalculateLength()
		if rebuildKnots {
			p.BuildKnots(n.knotSpacing)
		}
		if !p.IsValid() {
			invalid++
			n.log.Warn().Str("path", p.String()).Int("points", p.PointCount()).Msg("path has fewer than 2 points, skipped by queries")
		}
		if p.Name != "" {
			byName[p.Name] = p
		}
		owned = append(owned, p)
	}

	n.paths = owned
	n.byName = byName
	n.ends = NewEndIndex(owned)
	n.built = true

	elapsed := time.Since(startTime)
	rebuildTotal.Inc()
	rebuildDuration.Observe(elapsed.Seconds())
	networkPaths.Set(float64(len(owned)))

	n.log.Info().
		Int("paths", len(owned)).
		Int("invalid", invalid).
		Int("ends", n.ends.Len()).
		Bool("knots", rebuildKnots).
		Dur("elapsed", elapsed).
		Msg("path network rebuilt")

	return nil
}

// IsBuilt reports whether RebuildNetwork has completed at least once.
func (n *Network) IsBuilt() bool { return n.built }

// AutoSearchRadius returns the default junction search radius.
func (n *Network) AutoSearchRadius() float64 { return n.autoSearchRadius }

// KnotSpacing returns the spacing used for knot rebuilds.
func (n *Network) KnotSpacing() float64 { return n.knotSpacing }

// Paths returns the current paths in iteration order.
func (n *Network) Paths() ([]*Path, error) {
	if !n.built {
		return nil, ErrUnbuiltNetwork
	}
	return append([]*Path(nil), n.paths...), nil
}

// PathByName looks a path up by name.
func (n *Network) PathByName(name string) (*Path, bool) {
	p, ok := n.byName[name]
	return p, ok
}

// ClosestNode returns the knot (or raw point, for paths without knots)
// nearest to position. An empty network yields NullNode.
func (n *Network) ClosestNode(position Point) (Node, error) {
	if !n.built {
		return NullNode, ErrUnbuiltNetwork
	}

	node := NullNode
	minDistance := math.Inf(1)

	for _, path := range n.paths {
		if !path.IsValid() {
			continue
		}
		if candidate, distance := path.ClosestNode(position); distance < minDistance {
			minDistance = distance
			node = candidate
		}
	}

	return node, nil
}

// ClosestPoint returns the point on any valid path nearest to position. The
// node is the winning path's vertex nearest that point, usable with the
// other node queries. An empty network yields a result with NullNode.
func (n *Network) ClosestPoint(position Point) (ClosestPoint, error) {
	if !n.built {
		return ClosestPoint{Node: NullNode, Segment: -1}, ErrUnbuiltNetwork
	}

	best := ClosestPoint{Node: NullNode, Segment: -1, Distance: math.Inf(1)}

	for _, path := range n.paths {
		if !path.IsValid() {
			continue
		}

		cp, err := path.ClosestPoint(position)
		if err != nil {
			continue
		}
		if cp.Distance < best.Distance {
			best = cp
		}
	}

	return best, nil
}

type endQuery struct {
	includeSelf       bool
	onlyForwardFacing bool
}

// EndOption narrows a close-by ends query.
type EndOption func(*endQuery)

// IncludeSelf lets the queried path match its own ends.
func IncludeSelf() EndOption {
	return func(q *endQuery) { q.includeSelf = true }
}

// OnlyForwardFacing skips last ends, keeping only paths that start nearby.
func OnlyForwardFacing() EndOption {
	return func(q *endQuery) { q.onlyForwardFacing = true }
}

// ClosebyEnds returns the path ends lying within radius of point pointIndex
// of path. A radius of zero or less uses the network's auto search radius.
// Results follow path order; a path's first end precedes its last end.
func (n *Network) ClosebyEnds(path *Path, pointIndex int, radius float64, opts ...EndOption) ([]End, error) {
	if !n.built {
		return nil, ErrUnbuiltNetwork
	}
	if path == nil || pointIndex < 0 || pointIndex >= path.PointCount() {
		return nil, fmt.Errorf("%w: %d on %s", ErrIndexOutOfRange, pointIndex, path)
	}

	if radius <= 0 {
		radius = n.autoSearchRadius
	}
	return n.closebyEndsAt(path.PositionAt(pointIndex), path, radius, opts...), nil
}

func (n *Network) closebyEndsAt(position Point, self *Path, radius float64, opts ...EndOption) []End {
	var q endQuery
	for _, opt := range opts {
		opt(&q)
	}

	radiusSqr := radius * radius
	candidates := n.ends.QueryRadius(position, radius)
	closebyCandidates.Observe(float64(len(candidates)))

	ends := make([]End, 0, len(candidates))
	for _, c := range candidates {
		if !q.includeSelf && c.End.Path == self {
			continue
		}
		if q.onlyForwardFacing && c.End.IsLast {
			continue
		}
		if c.End.Position().SqrDistance(position) < radiusSqr {
			ends = append(ends, c.End)
		}
	}

	return ends
}

// NextRandomPathForVehicle picks uniformly among the paths that start near
// node and admit vehicleType. It returns ErrNoContinuation when nothing
// starts nearby and ErrNoMatchingType when nothing nearby admits the type.
func (n *Network) NextRandomPathForVehicle(node Node, vehicleType VehicleType) (*Path, error) {
	if !n.built {
		return nil, ErrUnbuiltNetwork
	}
	if node.IsNull() {
		return nil, ErrNullNode
	}
	if node.Index >= node.vertexCount() {
		return nil, fmt.Errorf("%w: node %d on %s", ErrIndexOutOfRange, node.Index, node.Path)
	}

	candidates := n.closebyEndsAt(node.Position(), node.Path, n.autoSearchRadius, OnlyForwardFacing())
	if len(candidates) == 0 {
		nextPathTotal.WithLabelValues(outcomeTerminal, vehicleType.String()).Inc()
		n.log.Warn().Str("path", node.Path.String()).Int("index", node.Index).Msg("terminating path")
		return nil, fmt.Errorf("%s at %d: %w", node.Path, node.Index, ErrNoContinuation)
	}

	matching := candidates[:0]
	for _, c := range candidates {
		if c.Path.VehicleMask.Allows(vehicleType) {
			matching = append(matching, c)
		}
	}

	if len(matching) == 0 {
		nextPathTotal.WithLabelValues(outcomeTypeMismatch, vehicleType.String()).Inc()
		n.log.Error().
			Str("path", node.Path.String()).
			Int("candidates", len(candidates)).
			Stringer("vehicleType", vehicleType).
			Msg("found paths but no matching type")
		return nil, fmt.Errorf("%s from %s: %w", vehicleType, node.Path, ErrNoMatchingType)
	}

	nextPathTotal.WithLabelValues(outcomeContinued, vehicleType.String()).Inc()
	return matching[n.rng.IntN(len(matching))].Path, nil
}

// DisconnectedEnds returns the paths whose last point has no forward-facing
// continuation within the auto search radius.
func (n *Network) DisconnectedEnds() ([]*Path, error) {
	if !n.built {
		return nil, ErrUnbuiltNetwork
	}

	var dead []*Path
	for _, path := range n.paths {
		if !path.IsValid() {
			continue
		}
		ends := n.closebyEndsAt(path.Last(), path, n.autoSearchRadius, OnlyForwardFacing())
		if len(ends) == 0 {
			dead = append(dead, path)
		}
	}
	return dead, nil
}

// FindDisconnectedEnds logs every dead end and returns how many there are.
func (n *Network) FindDisconnectedEnds() (int, error) {
	dead, err := n.DisconnectedEnds()
	if err != nil {
		return 0, err
	}

	n.log.Info().Int("paths", len(n.paths)).Msg("looking for terminations")
	for _, path := range dead {
		n.log.Warn().Str("path", path.String()).Interface("last", path.Last()).Msg("path has no ends")
	}

	if len(dead) == 0 {
		n.log.Info().Msg("found no disconnected paths")
	} else {
		n.log.Warn().Int("count", len(dead)).Msg("found disconnected ends")
	}

	return len(dead), nil
}

// SpawnablePaths returns the valid paths that allow spawning and admit
// vehicleType.
func (n *Network) SpawnablePaths(vehicleType VehicleType) ([]*Path, error) {
	if !n.built {
		return nil, ErrUnbuiltNetwork
	}

	var out []*Path
	for _, p := range n.paths {
		if p.IsValid() && p.AllowsSpawn && p.VehicleMask.Allows(vehicleType) {
			out = append(out, p)
		}
	}
	return out, nil
}
