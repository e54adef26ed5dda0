// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/cs229254688/HELYX-OS/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

const (
	// defaultMeshCells controls marching cubes tessellation resolution.
	defaultMeshCells = 64
	// defaultSegments is the number of angular divisions of a ring.
	defaultSegments = 48
)

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells    int
	segments int
}

// Option configures an SdfxKernel.
type Option func(*SdfxKernel)

// WithCells sets the marching cubes resolution used for closed solids.
func WithCells(n int) Option {
	return func(k *SdfxKernel) {
		if n > 0 {
			k.cells = n
		}
	}
}

// WithSegments sets the angular resolution of rings.
func WithSegments(n int) Option {
	return func(k *SdfxKernel) {
		if n >= 3 {
			k.segments = n
		}
	}
}

// New returns a new SdfxKernel.
func New(opts ...Option) *SdfxKernel {
	k := &SdfxKernel{cells: defaultMeshCells, segments: defaultSegments}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

func vec(a [3]float64) v3.Vec {
	return v3.Vec{X: a[0], Y: a[1], Z: a[2]}
}

func dataErr(op string, format string, args ...any) error {
	return &kernel.DataError{Op: op, Cause: fmt.Errorf(format, args...)}
}

// Box builds the axis-aligned box spanning min..max.
// sdf.Box3D centers the box at the origin, so it is moved to the centre of
// the span.
func (k *SdfxKernel) Box(min, max [3]float64) (*kernel.PolyData, error) {
	lo, hi := vec(min), vec(max)
	size := hi.Sub(lo)
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, dataErr("box", "max %v must exceed min %v on every axis", max, min)
	}
	s, err := sdf.Box3D(size, 0)
	if err != nil {
		return nil, &kernel.DataError{Op: "box", Cause: err}
	}
	centre := lo.Add(hi).MulScalar(0.5)
	return k.tessellate(sdf.Transform3D(s, sdf.Translate3d(centre))), nil
}

// Sphere builds a sphere around centre.
func (k *SdfxKernel) Sphere(centre [3]float64, radius float64) (*kernel.PolyData, error) {
	if radius <= 0 {
		return nil, dataErr("sphere", "radius %g must be positive", radius)
	}
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, &kernel.DataError{Op: "sphere", Cause: err}
	}
	return k.tessellate(sdf.Transform3D(s, sdf.Translate3d(vec(centre)))), nil
}

// Cylinder builds a capped cylinder whose axis runs from p1 to p2.
// sdf.Cylinder3D lies along Z centered at the origin; it is rotated onto
// the axis and moved to the axis midpoint.
func (k *SdfxKernel) Cylinder(p1, p2 [3]float64, radius float64) (*kernel.PolyData, error) {
	if radius <= 0 {
		return nil, dataErr("cylinder", "radius %g must be positive", radius)
	}
	a, b := vec(p1), vec(p2)
	axis := b.Sub(a)
	height := axis.Length()
	if height == 0 {
		return nil, dataErr("cylinder", "axis points coincide at %v", p1)
	}
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, &kernel.DataError{Op: "cylinder", Cause: err}
	}
	m := sdf.Translate3d(a.Add(b).MulScalar(0.5)).Mul(alignZ(axis))
	return k.tessellate(sdf.Transform3D(s, m)), nil
}

// Ring builds a flat annulus around centre, facing along normal.
func (k *SdfxKernel) Ring(centre, normal [3]float64, inner, outer float64) (*kernel.PolyData, error) {
	if inner < 0 || outer <= inner {
		return nil, dataErr("ring", "radii must satisfy 0 <= inner < outer, got %g, %g", inner, outer)
	}
	n := vec(normal)
	if n.Length() == 0 {
		return nil, dataErr("ring", "zero normal")
	}

	d := &kernel.PolyData{}
	for i := 0; i < k.segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(k.segments)
		c, s := math.Cos(theta), math.Sin(theta)
		d.Points = append(d.Points, inner*c, inner*s, 0, outer*c, outer*s, 0)
	}
	for i := 0; i < k.segments; i++ {
		j := (i + 1) % k.segments
		in0, out0 := uint32(2*i), uint32(2*i+1)
		in1, out1 := uint32(2*j), uint32(2*j+1)
		d.Polys = append(d.Polys, in0, out0, out1, in0, out1, in1)
	}
	place(d, sdf.Translate3d(vec(centre)).Mul(alignZ(n)))
	return d, nil
}

// Plane builds a square of side size centred on base, facing along normal.
func (k *SdfxKernel) Plane(base, normal [3]float64, size float64) (*kernel.PolyData, error) {
	if size <= 0 {
		return nil, dataErr("plane", "size %g must be positive", size)
	}
	n := vec(normal)
	if n.Length() == 0 {
		return nil, dataErr("plane", "zero normal")
	}
	h := size / 2
	d := &kernel.PolyData{
		Points: []float64{-h, -h, 0, h, -h, 0, h, h, 0, -h, h, 0},
		Polys:  []uint32{0, 1, 2, 0, 2, 3},
	}
	place(d, sdf.Translate3d(vec(base)).Mul(alignZ(n)))
	return d, nil
}

// Transform applies t to a copy of d. The source dataset is not modified.
func (k *SdfxKernel) Transform(d *kernel.PolyData, t kernel.Transform) (*kernel.PolyData, error) {
	if d == nil {
		return nil, dataErr("transform", "nil dataset")
	}
	m, err := matrix(t)
	if err != nil {
		return nil, err
	}
	out := d.Clone()
	place(out, m)
	return out, nil
}

// matrix composes the native transform into one sdf.M44. Later steps are
// applied after earlier ones, so each step multiplies from the left.
func matrix(t kernel.Transform) (sdf.M44, error) {
	m := sdf.Identity3d()
	for i, op := range t {
		var step sdf.M44
		switch op.Kind {
		case kernel.OpTranslate:
			step = sdf.Translate3d(vec(op.Vector))
		case kernel.OpRotate:
			axis := vec(op.Vector)
			if axis.Length() == 0 {
				return m, dataErr("transform", "step %d: zero rotation axis", i)
			}
			step = sdf.Rotate3d(axis.Normalize(), op.Angle)
		case kernel.OpScale:
			step = sdf.Scale3d(vec(op.Vector))
		default:
			return m, dataErr("transform", "step %d: unknown op %v", i, op.Kind)
		}
		m = step.Mul(m)
	}
	return m, nil
}

// alignZ returns the rotation taking +Z onto dir.
func alignZ(dir v3.Vec) sdf.M44 {
	n := dir.Normalize()
	z := v3.Vec{Z: 1}
	axis := z.Cross(n)
	if axis.Length() < 1e-12 {
		if n.Z > 0 {
			return sdf.Identity3d()
		}
		return sdf.Rotate3d(v3.Vec{X: 1}, math.Pi)
	}
	cos := math.Max(-1, math.Min(1, z.Dot(n)))
	return sdf.Rotate3d(axis.Normalize(), math.Acos(cos))
}

// place maps every point of d through m in place.
func place(d *kernel.PolyData, m sdf.M44) {
	for i := 0; i+2 < len(d.Points); i += 3 {
		p := m.MulPosition(v3.Vec{X: d.Points[i], Y: d.Points[i+1], Z: d.Points[i+2]})
		d.Points[i], d.Points[i+1], d.Points[i+2] = p.X, p.Y, p.Z
	}
}

// tessellate converts a solid to a triangle dataset using marching cubes.
func (k *SdfxKernel) tessellate(s sdf.SDF3) *kernel.PolyData {
	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(s, renderer)

	d := &kernel.PolyData{
		Points: make([]float64, 0, len(triangles)*9),
		Polys:  make([]uint32, 0, len(triangles)*3),
	}
	for i, tri := range triangles {
		for j := 0; j < 3; j++ {
			v := tri[j]
			d.Points = append(d.Points, v.X, v.Y, v.Z)
			d.Polys = append(d.Polys, uint32(i*3+j))
		}
	}
	return d
}
