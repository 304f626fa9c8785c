package pathnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNode_Navigation(t *testing.T) {
	p := NewPath("a", []Point{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}})

	first := Node{Path: p, Index: 0}
	assert.False(t, first.IsNull())
	assert.False(t, first.IsLast())
	assert.True(t, first.Previous().IsNull())
	assert.Equal(t, Node{Path: p, Index: 1}, first.Next())

	last := Node{Path: p, Index: 2}
	assert.True(t, last.IsLast())
	assert.True(t, last.Next().IsNull())
	assert.Equal(t, Point{2, 0, 0}, last.Position())

	assert.True(t, NullNode.IsNull())
	assert.False(t, NullNode.IsLast())
	assert.True(t, NullNode.Next().IsNull())
}

func TestNode_UsesKnotsWhenBuilt(t *testing.T) {
	p := NewPath("a", []Point{{0, 0, 0}, {4, 0, 0}})
	p.BuildKnots(1)

	n := Node{Path: p, Index: 1}
	assert.Equal(t, Point{1, 0, 0}, n.Position())
	assert.False(t, n.IsLast())
	assert.True(t, Node{Path: p, Index: 4}.IsLast())
}

func TestEnd(t *testing.T) {
	p := NewPath("a", []Point{{0, 0, 0}, {4, 0, 0}, {4, 2, 0}})

	first := End{Path: p}
	assert.Equal(t, 0, first.Index())
	assert.Equal(t, Point{0, 0, 0}, first.Position())
	assert.Equal(t, Vec3{X: 1}, first.OutDirection())
	assert.Equal(t, Node{Path: p, Index: 0}, first.Node())

	last := End{Path: p, IsLast: true}
	assert.Equal(t, 2, last.Index())
	assert.Equal(t, Point{4, 2, 0}, last.Position())
	assert.Equal(t, Vec3{Y: -1}, last.OutDirection())
	assert.Equal(t, Node{Path: p, Index: 2}, last.Node())

	p.BuildKnots(1)
	assert.Equal(t, Node{Path: p, Index: 6}, last.Node())
	assert.Equal(t, p.Last(), last.Node().Position())
}

func TestTurnAngle(t *testing.T) {
	up := Vec3{Z: 1}
	east := NewPath("east", []Point{{0, 0, 0}, {10, 0, 0}})
	north := NewPath("north", []Point{{10, 0, 0}, {10, 10, 0}})
	south := NewPath("south", []Point{{10, 0, 0}, {10, -10, 0}})
	ahead := NewPath("ahead", []Point{{10, 0, 0}, {20, 0, 0}})

	from := End{Path: east, IsLast: true}
	assert.InDelta(t, 90.0, TurnAngle(from, End{Path: north}, up), 1e-9)
	assert.InDelta(t, -90.0, TurnAngle(from, End{Path: south}, up), 1e-9)
	assert.InDelta(t, 0.0, TurnAngle(from, End{Path: ahead}, up), 1e-9)
}
