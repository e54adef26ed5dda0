package surface

import (
	"github.com/cs229254688/HELYX-OS/pkg/dict"
	"github.com/cs229254688/HELYX-OS/pkg/geom"
	"github.com/cs229254688/HELYX-OS/pkg/kernel"
)

// Geometry dictionary keys.
const (
	KeyType             = "type"
	KeyMin              = "min"
	KeyMax              = "max"
	KeyCentre           = "centre"
	KeyRadius           = "radius"
	KeyPoint1           = "point1"
	KeyPoint2           = "point2"
	KeyNormalVector     = "normalVector"
	KeyInnerRadius      = "innerRadius"
	KeyOuterRadius      = "outerRadius"
	KeyPlaneType        = "planeType"
	KeyPointAndNormal   = "pointAndNormalDict"
	KeyBasePoint        = "basePoint"
	KeyFile             = "name"
	KeyAppendRegionName = "appendRegionName"
	KeyRegions          = "regions"

	pointAndNormal = "pointAndNormal"
)

// Shape is the variant payload of a Surface. The set of implementations
// is closed.
type Shape interface {
	Kind() Kind
	// encode writes the shape's own parameters into d.
	encode(d *dict.Dict)
	// decode reads parameters from d into a new shape of the same kind.
	decode(d *dict.Dict) (Shape, error)
	// realize builds the untransformed dataset. Shapes without analytic
	// geometry return nil.
	realize(k kernel.Kernel, o realizeOptions) (*kernel.PolyData, error)
}

// defaultShape returns the shape a new surface of kind k starts with.
func defaultShape(k Kind) (Shape, error) {
	switch k {
	case Box:
		return BoxShape{Min: geom.Zero, Max: geom.One}, nil
	case Sphere:
		return SphereShape{Radius: 1}, nil
	case Cylinder:
		return CylinderShape{Point2: geom.UnitZ, Radius: 1}, nil
	case Ring:
		return RingShape{Normal: geom.UnitZ, InnerRadius: 0.5, OuterRadius: 1}, nil
	case Plane:
		return PlaneShape{Normal: geom.UnitZ}, nil
	case Stl:
		return StlShape{}, nil
	case Solid:
		return SolidShape{}, nil
	case Multi:
		return MultiShape{}, nil
	default:
		return nil, &ConfigurationError{Kind: k, Message: "no default shape"}
	}
}

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// BoxShape is an axis-aligned box.
type BoxShape struct {
	Min, Max geom.Vec3
}

func (BoxShape) Kind() Kind { return Box }

func (s BoxShape) encode(d *dict.Dict) {
	d.Add(KeyMin, s.Min)
	d.Add(KeyMax, s.Max)
}

func (BoxShape) decode(d *dict.Dict) (Shape, error) {
	var s BoxShape
	var err error
	if s.Min, err = d.Vec3(KeyMin); err != nil {
		return nil, err
	}
	if s.Max, err = d.Vec3(KeyMax); err != nil {
		return nil, err
	}
	return s, nil
}

func (s BoxShape) realize(k kernel.Kernel, _ realizeOptions) (*kernel.PolyData, error) {
	return k.Box(s.Min.Array(), s.Max.Array())
}

// SphereShape is a sphere.
type SphereShape struct {
	Centre geom.Vec3
	Radius float64
}

func (SphereShape) Kind() Kind { return Sphere }

func (s SphereShape) encode(d *dict.Dict) {
	d.Add(KeyCentre, s.Centre)
	d.Add(KeyRadius, s.Radius)
}

func (SphereShape) decode(d *dict.Dict) (Shape, error) {
	var s SphereShape
	var err error
	if s.Centre, err = d.Vec3(KeyCentre); err != nil {
		return nil, err
	}
	if s.Radius, err = d.Float(KeyRadius); err != nil {
		return nil, err
	}
	return s, nil
}

func (s SphereShape) realize(k kernel.Kernel, _ realizeOptions) (*kernel.PolyData, error) {
	return k.Sphere(s.Centre.Array(), s.Radius)
}

// CylinderShape is a capped cylinder between two axis points.
type CylinderShape struct {
	Point1, Point2 geom.Vec3
	Radius         float64
}

func (CylinderShape) Kind() Kind { return Cylinder }

func (s CylinderShape) encode(d *dict.Dict) {
	d.Add(KeyPoint1, s.Point1)
	d.Add(KeyPoint2, s.Point2)
	d.Add(KeyRadius, s.Radius)
}

func (CylinderShape) decode(d *dict.Dict) (Shape, error) {
	var s CylinderShape
	var err error
	if s.Point1, err = d.Vec3(KeyPoint1); err != nil {
		return nil, err
	}
	if s.Point2, err = d.Vec3(KeyPoint2); err != nil {
		return nil, err
	}
	if s.Radius, err = d.Float(KeyRadius); err != nil {
		return nil, err
	}
	return s, nil
}

func (s CylinderShape) realize(k kernel.Kernel, _ realizeOptions) (*kernel.PolyData, error) {
	return k.Cylinder(s.Point1.Array(), s.Point2.Array(), s.Radius)
}

// RingShape is a flat annulus. Normal defaults to (0 0 1) when absent
// from the geometry node.
type RingShape struct {
	Centre      geom.Vec3
	Normal      geom.Vec3
	InnerRadius float64
	OuterRadius float64
}

func (RingShape) Kind() Kind { return Ring }

func (s RingShape) encode(d *dict.Dict) {
	d.Add(KeyCentre, s.Centre)
	d.Add(KeyNormalVector, s.Normal)
	d.Add(KeyInnerRadius, s.InnerRadius)
	d.Add(KeyOuterRadius, s.OuterRadius)
}

func (RingShape) decode(d *dict.Dict) (Shape, error) {
	s := RingShape{Normal: geom.UnitZ}
	var err error
	if s.Centre, err = d.Vec3(KeyCentre); err != nil {
		return nil, err
	}
	if d.Found(KeyNormalVector) {
		if s.Normal, err = d.Vec3(KeyNormalVector); err != nil {
			return nil, err
		}
	}
	if s.InnerRadius, err = d.Float(KeyInnerRadius); err != nil {
		return nil, err
	}
	if s.OuterRadius, err = d.Float(KeyOuterRadius); err != nil {
		return nil, err
	}
	return s, nil
}

func (s RingShape) realize(k kernel.Kernel, _ realizeOptions) (*kernel.PolyData, error) {
	return k.Ring(s.Centre.Array(), s.Normal.Array(), s.InnerRadius, s.OuterRadius)
}

// PlaneShape is an unbounded plane given by a point and a normal. Both
// default when absent: the base point to the origin, the normal to
// (0 0 1).
type PlaneShape struct {
	BasePoint geom.Vec3
	Normal    geom.Vec3
}

func (PlaneShape) Kind() Kind { return Plane }

func (s PlaneShape) encode(d *dict.Dict) {
	d.Add(KeyPlaneType, pointAndNormal)
	pn := dict.New(KeyPointAndNormal)
	pn.Add(KeyBasePoint, s.BasePoint)
	pn.Add(KeyNormalVector, s.Normal)
	d.AddDict(pn)
}

func (PlaneShape) decode(d *dict.Dict) (Shape, error) {
	s := PlaneShape{Normal: geom.UnitZ}
	if d.Found(KeyPlaneType) {
		planeType, err := d.String(KeyPlaneType)
		if err != nil {
			return nil, err
		}
		if planeType != pointAndNormal {
			return nil, &UnknownVariantError{Surface: d.Name(), Key: KeyPlaneType, Value: planeType}
		}
	}
	pn, err := d.SubDict(KeyPointAndNormal)
	if err != nil {
		return nil, err
	}
	if pn.Found(KeyBasePoint) {
		if s.BasePoint, err = pn.Vec3(KeyBasePoint); err != nil {
			return nil, err
		}
	}
	if pn.Found(KeyNormalVector) {
		if s.Normal, err = pn.Vec3(KeyNormalVector); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s PlaneShape) realize(k kernel.Kernel, o realizeOptions) (*kernel.PolyData, error) {
	return k.Plane(s.BasePoint.Array(), s.Normal.Array(), o.planeSize)
}

// ---------------------------------------------------------------------------
// Imported and composite
// ---------------------------------------------------------------------------

// StlShape is an imported triangulated mesh. File names the mesh file;
// the dataset itself is supplied by the loader. Its solids are the
// surface's regions.
type StlShape struct {
	File string
}

func (StlShape) Kind() Kind { return Stl }

func (s StlShape) encode(d *dict.Dict) {
	d.Add(KeyFile, s.File)
}

func (StlShape) decode(d *dict.Dict) (Shape, error) {
	file, err := d.String(KeyFile)
	if err != nil {
		return nil, err
	}
	return StlShape{File: file}, nil
}

func (StlShape) realize(kernel.Kernel, realizeOptions) (*kernel.PolyData, error) {
	return nil, nil
}

// SolidShape marks a named region of a parent Stl. Region is the name of
// the solid inside the mesh file; when empty the surface name is used.
type SolidShape struct {
	Region string
}

func (SolidShape) Kind() Kind { return Solid }

func (SolidShape) encode(*dict.Dict) {}

func (sh SolidShape) decode(*dict.Dict) (Shape, error) { return sh, nil }

func (SolidShape) realize(kernel.Kernel, realizeOptions) (*kernel.PolyData, error) {
	return nil, nil
}

// MultiShape marks a group. Members are the surface's regions.
type MultiShape struct{}

func (MultiShape) Kind() Kind { return Multi }

func (MultiShape) encode(*dict.Dict) {}

func (MultiShape) decode(*dict.Dict) (Shape, error) { return MultiShape{}, nil }

func (MultiShape) realize(kernel.Kernel, realizeOptions) (*kernel.PolyData, error) {
	return nil, nil
}
