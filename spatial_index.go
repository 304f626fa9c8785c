package pathnet

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
)

// endTolerance is the half-size of the box each end occupies in the tree.
const endTolerance = 1e-9

// EndEntry wraps a path end for R-tree storage
type EndEntry struct {
	End   End
	Order int // position of the path in network iteration order
	BBox  rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *EndEntry) Bounds() rtreego.Rect {
	return e.BBox
}

// EndIndex manages spatial queries over path ends
type EndIndex struct {
	tree    *rtreego.Rtree
	entries []*EndEntry // insertion order, which is result order
}

// NewEndIndex indexes both ends of every valid path.
func NewEndIndex(paths []*Path) *EndIndex {
	tree := rtreego.NewTree(3, 25, 50) // 3D, min 25, max 50 entries per node
	var entries []*EndEntry

	for order, path := range paths {
		if !path.IsValid() {
			continue
		}
		for _, isLast := range [2]bool{false, true} {
			end := End{Path: path, IsLast: isLast}
			entry := &EndEntry{
				End:   end,
				Order: order,
				BBox:  toPoint(end.Position()).ToRect(endTolerance),
			}
			tree.Insert(entry)
			entries = append(entries, entry)
		}
	}

	return &EndIndex{tree: tree, entries: entries}
}

// Len returns the number of indexed ends.
func (ei *EndIndex) Len() int { return len(ei.entries) }

// QueryRadius returns the ends whose box intersects the cube of half-size
// radius around center, ordered by path order with first ends before last
// ends. A radius whose box cannot be represented returns every end.
// Callers still apply the exact distance test.
func (ei *EndIndex) QueryRadius(center Point, radius float64) []*EndEntry {
	if radius <= 0 || math.IsNaN(radius) {
		return nil
	}
	if math.IsInf(2*radius, 1) {
		return append([]*EndEntry(nil), ei.entries...)
	}

	bbox, err := rtreego.NewRect(
		rtreego.Point{center.X - radius, center.Y - radius, center.Z - radius},
		[]float64{2 * radius, 2 * radius, 2 * radius},
	)
	if err != nil {
		return nil
	}

	results := ei.tree.SearchIntersect(bbox)
	entries := make([]*EndEntry, 0, len(results))
	for _, item := range results {
		entries = append(entries, item.(*EndEntry))
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Order != entries[j].Order {
			return entries[i].Order < entries[j].Order
		}
		return !entries[i].End.IsLast && entries[j].End.IsLast
	})

	return entries
}

func toPoint(v Point) rtreego.Point {
	return rtreego.Point{v.X, v.Y, v.Z}
}
