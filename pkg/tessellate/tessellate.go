// Package tessellate realizes the datasets of every surface in a geometry
// collection and applies each surface's transform. One dataset is
// produced per visible top-level surface.
package tessellate

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/cs229254688/HELYX-OS/pkg/geometry"
	"github.com/cs229254688/HELYX-OS/pkg/kernel"
	"github.com/cs229254688/HELYX-OS/pkg/surface"
)

// Part is the transformed dataset of one surface. Data may be shared with
// the surface when its transform is the identity; do not modify it.
type Part struct {
	Surface string
	Kind    surface.Kind
	Data    *kernel.PolyData
}

type options struct {
	logger    *slog.Logger
	planeSize float64
	limit     int
}

// Option configures Tessellate.
type Option func(*options)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPlaneSize sets the side of the square realized for planes.
func WithPlaneSize(size float64) Option {
	return func(o *options) { o.planeSize = size }
}

// WithLimit caps the number of surfaces processed at once. Zero or less
// means no limit.
func WithLimit(n int) Option {
	return func(o *options) { o.limit = n }
}

// Tessellate realizes every visible top-level surface of g through k and
// returns its transformed dataset. Surfaces are processed concurrently,
// each by exactly one goroutine; results keep the collection order.
// Surfaces with no dataset yet (an Stl that was never loaded) are skipped.
// The first error cancels the remaining work.
func Tessellate(ctx context.Context, g *geometry.Geometry, k kernel.Kernel, opts ...Option) ([]Part, error) {
	if g == nil {
		return nil, nil
	}
	o := options{logger: slog.Default(), planeSize: surface.DefaultPlaneSize}
	for _, opt := range opts {
		opt(&o)
	}

	surfaces := g.Surfaces()
	results := make([]*Part, len(surfaces))

	eg, ctx := errgroup.WithContext(ctx)
	if o.limit > 0 {
		eg.SetLimit(o.limit)
	}
	for i, s := range surfaces {
		if !s.Visible() {
			o.logger.Debug("surface hidden", "surface", s.Name())
			continue
		}
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			part, err := tessellateSurface(s, k, o)
			if err != nil {
				return fmt.Errorf("tessellate: %w", err)
			}
			results[i] = part
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	parts := make([]Part, 0, len(results))
	for _, p := range results {
		if p != nil {
			parts = append(parts, *p)
		}
	}
	return parts, nil
}

// tessellateSurface realizes s and returns its transformed dataset, or nil
// when s has no data.
func tessellateSurface(s *surface.Surface, k kernel.Kernel, o options) (*Part, error) {
	if err := s.Realize(k, surface.WithPlaneSize(o.planeSize)); err != nil {
		return nil, err
	}
	d, err := s.TransformedDataSet(k)
	if err != nil {
		return nil, err
	}
	if d == nil {
		o.logger.Debug("surface has no dataset", "surface", s.Name())
		return nil, nil
	}
	o.logger.Debug("surface tessellated", "surface", s.Name(), "points", d.PointCount(), "triangles", d.PolyCount())
	return &Part{Surface: s.Name(), Kind: s.Kind(), Data: d}, nil
}
