package pathnet

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a point or direction in world space. It converts freely to and
// from r3.Vec, which does the arithmetic.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Forward is returned by direction queries that have nothing to measure.
var Forward = Vec3{Z: 1}

func (v Vec3) vec() r3.Vec { return r3.Vec(v) }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3(r3.Add(v.vec(), o.vec())) }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3(r3.Sub(v.vec(), o.vec())) }

func (v Vec3) Scale(s float64) Vec3 { return Vec3(r3.Scale(s, v.vec())) }

func (v Vec3) Dot(o Vec3) float64 { return r3.Dot(v.vec(), o.vec()) }

// Cross returns the right-handed cross product v × o.
func (v Vec3) Cross(o Vec3) Vec3 { return Vec3(r3.Cross(v.vec(), o.vec())) }

// Magnitude returns the Euclidean length of v.
func (v Vec3) Magnitude() float64 { return r3.Norm(v.vec()) }

// SqrMagnitude returns the squared length, for comparisons that can skip the root.
func (v Vec3) SqrMagnitude() float64 { return r3.Norm2(v.vec()) }

// Distance calculates Euclidean distance between two points
func (v Vec3) Distance(o Vec3) float64 { return r3.Norm(r3.Sub(v.vec(), o.vec())) }

// SqrDistance calculates the squared Euclidean distance between two points
func (v Vec3) SqrDistance(o Vec3) float64 { return r3.Norm2(r3.Sub(v.vec(), o.vec())) }

// Normalized returns v scaled to unit length, or the zero vector if v has no length.
func (v Vec3) Normalized() Vec3 {
	if v == (Vec3{}) {
		return Vec3{}
	}
	return Vec3(r3.Unit(v.vec()))
}

// Lerp interpolates between v and o; t is not clamped.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return Vec3(r3.Add(v.vec(), r3.Scale(t, r3.Sub(o.vec(), v.vec()))))
}

// SignedAngle returns the angle in degrees from a to b, signed by the
// rotation sense around axis.
func SignedAngle(a, b, axis Vec3) float64 {
	na, nb := a.Normalized(), b.Normalized()
	cos := math.Max(-1, math.Min(1, na.Dot(nb)))
	angle := math.Acos(cos) * 180 / math.Pi
	if na.Cross(nb).Dot(axis) < 0 {
		return -angle
	}
	return angle
}
