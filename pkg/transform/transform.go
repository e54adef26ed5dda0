// Package transform implements the affine transform attached to every
// surface: an ordered list of translate, rotate and scale steps.
//
// An Affine is an immutable value. Every operation that changes it
// returns a new Affine, so transforms can be shared freely between
// surfaces and clones.
package transform

import (
	"math"

	"github.com/cs229254688/HELYX-OS/pkg/geom"
	"github.com/cs229254688/HELYX-OS/pkg/kernel"
)

// Epsilon is the tolerance used by IsIdentity and Equal on matrix entries.
const Epsilon = 1e-9

// Op is one transform step. Vector is the offset, the rotation axis or
// the scale factors depending on Kind. Angle is in degrees and only used
// by rotations.
type Op struct {
	Kind   kernel.OpKind
	Vector geom.Vec3
	Angle  float64
}

// Rotation is an axis and an angle in degrees.
type Rotation struct {
	Axis  geom.Vec3
	Angle float64
}

// Affine is an ordered sequence of steps, applied first to last.
// The zero value is the identity.
type Affine struct {
	ops []Op
}

// New returns the identity transform.
func New() Affine {
	return Affine{}
}

// FromParts builds the transform that scales, then rotates, then
// translates. Parts that are identities are left out.
func FromParts(translation geom.Vec3, rotation Rotation, scale geom.Vec3) Affine {
	a := New()
	if scale != geom.One {
		a = a.Scale(scale)
	}
	if rotation.Angle != 0 && rotation.Axis != geom.Zero {
		a = a.Rotate(rotation.Axis, rotation.Angle)
	}
	if translation != geom.Zero {
		a = a.Translate(translation)
	}
	return a
}

func (a Affine) with(op Op) Affine {
	ops := make([]Op, len(a.ops), len(a.ops)+1)
	copy(ops, a.ops)
	return Affine{ops: append(ops, op)}
}

// Translate returns a followed by a translation by v.
func (a Affine) Translate(v geom.Vec3) Affine {
	return a.with(Op{Kind: kernel.OpTranslate, Vector: v})
}

// Rotate returns a followed by a rotation of degrees about axis
// (right-hand rule).
func (a Affine) Rotate(axis geom.Vec3, degrees float64) Affine {
	return a.with(Op{Kind: kernel.OpRotate, Vector: axis, Angle: degrees})
}

// Scale returns a followed by a per-axis scale.
func (a Affine) Scale(factors geom.Vec3) Affine {
	return a.with(Op{Kind: kernel.OpScale, Vector: factors})
}

// Compose returns the transform that applies a and then other.
func (a Affine) Compose(other Affine) Affine {
	ops := make([]Op, 0, len(a.ops)+len(other.ops))
	ops = append(ops, a.ops...)
	ops = append(ops, other.ops...)
	return Affine{ops: ops}
}

// Clone returns a copy that shares no storage with a.
func (a Affine) Clone() Affine {
	if len(a.ops) == 0 {
		return Affine{}
	}
	return Affine{ops: append([]Op(nil), a.ops...)}
}

// Ops returns a copy of the steps.
func (a Affine) Ops() []Op {
	return append([]Op(nil), a.ops...)
}

// Len returns the number of steps.
func (a Affine) Len() int {
	return len(a.ops)
}

// Matrix is a 4x4 row-major homogeneous matrix acting on column vectors.
type Matrix [4][4]float64

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}}
}

// Mul returns m*o, which applies o first.
func (m Matrix) Mul(o Matrix) Matrix {
	var r Matrix
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				r[i][j] += m[i][k] * o[k][j]
			}
		}
	}
	return r
}

// MulPosition maps point p through m.
func (m Matrix) MulPosition(p geom.Vec3) geom.Vec3 {
	return geom.Vec3{
		X: m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3],
		Y: m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3],
		Z: m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3],
	}
}

// ApproxEqual compares every entry within eps.
func (m Matrix) ApproxEqual(o Matrix, eps float64) bool {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if math.Abs(m[i][j]-o[i][j]) > eps {
				return false
			}
		}
	}
	return true
}

func (op Op) matrix() Matrix {
	m := Identity()
	switch op.Kind {
	case kernel.OpTranslate:
		m[0][3], m[1][3], m[2][3] = op.Vector.X, op.Vector.Y, op.Vector.Z
	case kernel.OpScale:
		m[0][0], m[1][1], m[2][2] = op.Vector.X, op.Vector.Y, op.Vector.Z
	case kernel.OpRotate:
		n := op.Vector.Normalize()
		if n == geom.Zero {
			return m
		}
		theta := op.Angle * math.Pi / 180
		c, s := math.Cos(theta), math.Sin(theta)
		t := 1 - c
		m[0][0] = t*n.X*n.X + c
		m[0][1] = t*n.X*n.Y - s*n.Z
		m[0][2] = t*n.X*n.Z + s*n.Y
		m[1][0] = t*n.X*n.Y + s*n.Z
		m[1][1] = t*n.Y*n.Y + c
		m[1][2] = t*n.Y*n.Z - s*n.X
		m[2][0] = t*n.X*n.Z - s*n.Y
		m[2][1] = t*n.Y*n.Z + s*n.X
		m[2][2] = t*n.Z*n.Z + c
	}
	return m
}

// Matrix returns the composed matrix of all steps.
func (a Affine) Matrix() Matrix {
	m := Identity()
	for _, op := range a.ops {
		m = op.matrix().Mul(m)
	}
	return m
}

// Apply maps point p through the transform.
func (a Affine) Apply(p geom.Vec3) geom.Vec3 {
	return a.Matrix().MulPosition(p)
}

// IsIdentity reports whether the transform moves nothing, within Epsilon.
func (a Affine) IsIdentity() bool {
	return a.Matrix().ApproxEqual(Identity(), Epsilon)
}

// Equal reports whether a and other have the same effect, within Epsilon.
// Step lists that differ but compose to the same matrix are equal.
func (a Affine) Equal(other Affine) bool {
	return a.Matrix().ApproxEqual(other.Matrix(), Epsilon)
}

// Native returns the kernel form of the transform. Each call builds a new
// slice; callers may keep or modify it.
func (a Affine) Native() kernel.Transform {
	t := make(kernel.Transform, len(a.ops))
	for i, op := range a.ops {
		t[i] = kernel.Op{Kind: op.Kind, Vector: op.Vector.Array()}
		if op.Kind == kernel.OpRotate {
			t[i].Angle = op.Angle * math.Pi / 180
		}
	}
	return t
}
