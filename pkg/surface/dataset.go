package surface

import (
	"errors"
	"fmt"

	"github.com/cs229254688/HELYX-OS/pkg/kernel"
	"github.com/cs229254688/HELYX-OS/pkg/transform"
)

// DefaultPlaneSize is the side of the square that stands in for an
// unbounded plane when it is realized.
const DefaultPlaneSize = 1.0

type realizeOptions struct {
	planeSize float64
}

// RealizeOption configures Realize.
type RealizeOption func(*realizeOptions)

// WithPlaneSize sets the side of the square realized for planes.
func WithPlaneSize(size float64) RealizeOption {
	return func(o *realizeOptions) {
		if size > 0 {
			o.planeSize = size
		}
	}
}

// Realize builds the dataset of an analytic surface through k, and of
// every analytic member of a group. The dataset is kept until the shape
// changes. Imported meshes and solids are left alone.
func (s *Surface) Realize(k kernel.Kernel, opts ...RealizeOption) error {
	o := realizeOptions{planeSize: DefaultPlaneSize}
	for _, opt := range opts {
		opt(&o)
	}
	return s.realize(k, o)
}

func (s *Surface) realize(k kernel.Kernel, o realizeOptions) error {
	if s.Kind() == Multi {
		var errs []error
		for _, m := range s.regions {
			errs = append(errs, m.realize(k, o))
		}
		return errors.Join(errs...)
	}
	if s.dataset != nil {
		return nil
	}
	d, err := s.shape.realize(k, o)
	if err != nil {
		return fmt.Errorf("surface %q: %w", s.name, err)
	}
	if d != nil {
		d.Name = s.name
		s.dataset = d
	}
	return nil
}

// SetDataSet supplies the dataset of an imported mesh.
func (s *Surface) SetDataSet(d *kernel.PolyData) error {
	if s.Kind() != Stl {
		return &ConfigurationError{Kind: s.Kind(), Message: "dataset is realized, not supplied"}
	}
	s.dataset = d
	return nil
}

// DataSet returns the untransformed dataset, or nil if it is not
// available yet. A solid yields its mesh region of the parent's dataset;
// a group yields its members' datasets appended as they are, without
// member transforms. Repeated calls return the
// same dataset until the underlying data changes. The result is shared
// and must not be modified.
func (s *Surface) DataSet() *kernel.PolyData {
	switch s.Kind() {
	case Solid:
		if s.parent == nil {
			return nil
		}
		src := s.parent.DataSet()
		if src == nil {
			return nil
		}
		return s.regionCache.get([]*kernel.PolyData{src}, func() *kernel.PolyData {
			return src.ExtractRegion(s.meshRegion())
		})
	case Multi:
		var parts []*kernel.PolyData
		for _, m := range s.regions {
			if d := m.DataSet(); d != nil {
				parts = append(parts, d)
			}
		}
		if len(parts) == 0 {
			return nil
		}
		return s.regionCache.get(parts, func() *kernel.PolyData {
			return kernel.Append(s.name, parts...)
		})
	default:
		return s.dataset
	}
}

func (c *derived) get(sources []*kernel.PolyData, build func() *kernel.PolyData) *kernel.PolyData {
	if c.out != nil && sameSources(c.sources, sources) {
		return c.out
	}
	c.sources = sources
	c.out = build()
	return c.out
}

func sameSources(a, b []*kernel.PolyData) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TransformedDataSet returns the dataset placed in the frame of the
// top-level surface: the surface transform is applied first, then those of
// its parent and further ancestors. A group applies each member's own
// transform before appending the members. It returns nil, nil when no
// dataset is available. When every transform involved is the identity the
// result is DataSet itself and t is not called; otherwise it is a new
// dataset. The surface is never modified.
func (s *Surface) TransformedDataSet(t kernel.Transformer) (*kernel.PolyData, error) {
	d, err := s.content(t)
	if err != nil || d == nil {
		return nil, err
	}
	return s.apply(t, d, s.worldTransform())
}

// worldTransform is the surface transform followed by the transforms of
// its ancestors, innermost first.
func (s *Surface) worldTransform() transform.Affine {
	a := s.transform
	for p := s.parent; p != nil; p = p.parent {
		a = a.Compose(p.transform)
	}
	return a
}

// content is the dataset in the surface's own frame. For a group it is
// the members placed by their own transforms; for anything else it is
// DataSet.
func (s *Surface) content(t kernel.Transformer) (*kernel.PolyData, error) {
	if s.Kind() != Multi {
		return s.DataSet(), nil
	}
	var parts []*kernel.PolyData
	var errs []error
	for _, m := range s.regions {
		d, err := m.content(t)
		if err == nil && d != nil {
			d, err = m.apply(t, d, m.transform)
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if d != nil {
			parts = append(parts, d)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, nil
	}
	out := s.placedCache.get(parts, func() *kernel.PolyData {
		return kernel.Append(s.name, parts...)
	})
	return out, nil
}

func (s *Surface) apply(t kernel.Transformer, d *kernel.PolyData, a transform.Affine) (*kernel.PolyData, error) {
	if a.IsIdentity() {
		return d, nil
	}
	if t == nil {
		return nil, &kernel.DataError{Op: "transform", Cause: errors.New("no transformer")}
	}
	out, err := t.Transform(d, a.Native())
	if err != nil {
		return nil, fmt.Errorf("surface %q: %w", s.name, err)
	}
	return out, nil
}
