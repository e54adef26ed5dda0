// Package kernel defines the abstract geometry kernel interface.
// Implementations (sdfx) build polygon datasets for analytic surfaces and
// apply native transforms to datasets. The surface model only talks to the
// kernel through this package, so no backend type leaks into it.
package kernel

import "fmt"

// OpKind identifies one step of a native transform.
type OpKind int

const (
	OpTranslate OpKind = iota
	OpRotate
	OpScale
)

func (k OpKind) String() string {
	switch k {
	case OpTranslate:
		return "translate"
	case OpRotate:
		return "rotate"
	case OpScale:
		return "scale"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// Op is one native transform step. Vector is the offset, the rotation
// axis or the per-axis scale factors. Angle is in radians and only used by
// OpRotate.
type Op struct {
	Kind   OpKind
	Vector [3]float64
	Angle  float64
}

// Transform is the native transform handle: steps applied in order.
// An empty Transform is the identity.
type Transform []Op

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Dataset builders for the analytic surface kinds.
	Box(min, max [3]float64) (*PolyData, error)
	Sphere(centre [3]float64, radius float64) (*PolyData, error)
	Cylinder(p1, p2 [3]float64, radius float64) (*PolyData, error)
	Ring(centre, normal [3]float64, inner, outer float64) (*PolyData, error)
	// Plane builds a finite square of side size standing in for an
	// unbounded plane.
	Plane(base, normal [3]float64, size float64) (*PolyData, error)

	Transformer
}

// Transformer is the transform filter. Transform returns a new dataset and
// never mutates d.
type Transformer interface {
	Transform(d *PolyData, t Transform) (*PolyData, error)
}

// DataError is the generic data-pipeline failure returned by kernels.
type DataError struct {
	Op    string
	Cause error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("kernel %s: %v", e.Op, e.Cause)
}

func (e *DataError) Unwrap() error {
	return e.Cause
}
