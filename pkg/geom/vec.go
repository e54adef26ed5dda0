// Package geom holds the small vector type shared by the surface model.
// Vectors are persisted in configuration dictionaries in their text
// form, "(x y z)".
package geom

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Vec3 is a 3D point or direction.
type Vec3 struct {
	X, Y, Z float64
}

// Common vectors.
var (
	Zero  = Vec3{}
	One   = Vec3{X: 1, Y: 1, Z: 1}
	UnitZ = Vec3{Z: 1}
)

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale multiplies every component by k.
func (v Vec3) Scale(k float64) Vec3 {
	return Vec3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize returns the unit vector along v. The zero vector is returned
// unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// ApproxEqual reports whether every component differs by at most eps.
func (v Vec3) ApproxEqual(o Vec3, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps && math.Abs(v.Z-o.Z) <= eps
}

// Array returns the components as a fixed array, the form the kernel uses.
func (v Vec3) Array() [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// FromArray is the inverse of Array.
func FromArray(a [3]float64) Vec3 {
	return Vec3{X: a[0], Y: a[1], Z: a[2]}
}

// String renders the dictionary form "(x y z)".
func (v Vec3) String() string {
	return "(" + formatFloat(v.X) + " " + formatFloat(v.Y) + " " + formatFloat(v.Z) + ")"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ParseVec3 parses "(x y z)". Surrounding whitespace and extra spaces
// between components are accepted.
func ParseVec3(s string) (Vec3, error) {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "(") || !strings.HasSuffix(t, ")") {
		return Vec3{}, fmt.Errorf("geom: vector %q must be enclosed in parentheses", s)
	}
	fields := strings.Fields(t[1 : len(t)-1])
	if len(fields) != 3 {
		return Vec3{}, fmt.Errorf("geom: vector %q has %d components, want 3", s, len(fields))
	}
	var c [3]float64
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Vec3{}, fmt.Errorf("geom: vector %q component %d: %w", s, i, err)
		}
		c[i] = x
	}
	return FromArray(c), nil
}
