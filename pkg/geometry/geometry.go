// Package geometry holds the ordered collection of surfaces that make up a
// meshing project, and moves it in and out of configuration nodes.
package geometry

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cs229254688/HELYX-OS/pkg/dict"
	"github.com/cs229254688/HELYX-OS/pkg/surface"
)

// Root node names written by Save.
const (
	GeometryName   = "geometry"
	RefinementName = "refinementSurfaces"

	// regionsKey holds the snapshots of an entity's regions inside its
	// refinement node.
	regionsKey = "regions"
)

// Geometry owns an ordered set of uniquely named top-level surfaces. It is
// not safe for concurrent use.
type Geometry struct {
	surfaces []*surface.Surface
	logger   *slog.Logger
	events   chan<- surface.Change
}

// Option configures a Geometry.
type Option func(*Geometry)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(g *Geometry) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithEvents makes the collection publish every Change produced through
// Rename and Update on ch. Sends never block: when ch is full the change
// is dropped and logged.
func WithEvents(ch chan<- surface.Change) Option {
	return func(g *Geometry) {
		g.events = ch
	}
}

// New creates an empty collection.
func New(opts ...Option) *Geometry {
	g := &Geometry{logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Len returns the number of top-level surfaces.
func (g *Geometry) Len() int {
	return len(g.surfaces)
}

// Surfaces returns the top-level surfaces in order.
func (g *Geometry) Surfaces() []*surface.Surface {
	return append([]*surface.Surface(nil), g.surfaces...)
}

// Get returns the surface called name, or nil.
func (g *Geometry) Get(name string) *surface.Surface {
	if i := g.indexOf(name); i >= 0 {
		return g.surfaces[i]
	}
	return nil
}

func (g *Geometry) indexOf(name string) int {
	for i, s := range g.surfaces {
		if s.Name() == name {
			return i
		}
	}
	return -1
}

// Add appends s. Names must be unique and non-empty, and s must not be a
// region of another surface.
func (g *Geometry) Add(s *surface.Surface) error {
	switch {
	case s.Name() == "":
		return errors.New("geometry: surface has no name")
	case s.Parent() != nil:
		return fmt.Errorf("geometry: surface %q belongs to %q", s.Name(), s.Parent().Name())
	case g.indexOf(s.Name()) >= 0:
		return fmt.Errorf("geometry: duplicate surface %q", s.Name())
	}
	g.surfaces = append(g.surfaces, s)
	g.logger.Debug("surface added", "surface", s.Name(), "kind", s.Kind())
	return nil
}

// Remove destroys the surface called name: it leaves the collection and
// its regions lose their parent. It reports whether the surface existed.
func (g *Geometry) Remove(name string) bool {
	i := g.indexOf(name)
	if i < 0 {
		return false
	}
	s := g.surfaces[i]
	g.surfaces = append(g.surfaces[:i:i], g.surfaces[i+1:]...)
	s.Detach()
	g.logger.Debug("surface removed", "surface", name)
	return true
}

// Rename renames a top-level surface, keeping names unique.
func (g *Geometry) Rename(oldName, newName string) error {
	s := g.Get(oldName)
	if s == nil {
		return fmt.Errorf("geometry: no surface %q", oldName)
	}
	if oldName != newName && g.Get(newName) != nil {
		return fmt.Errorf("geometry: duplicate surface %q", newName)
	}
	c, err := s.Rename(newName)
	if err != nil {
		return fmt.Errorf("geometry: %w", err)
	}
	g.publish(c)
	return nil
}

// Update runs fn on the surface called name and publishes the changes it
// returns. fn must not rename the surface; use Rename.
func (g *Geometry) Update(name string, fn func(*surface.Surface) []surface.Change) error {
	s := g.Get(name)
	if s == nil {
		return fmt.Errorf("geometry: no surface %q", name)
	}
	for _, c := range fn(s) {
		g.publish(c)
	}
	return nil
}

func (g *Geometry) publish(c surface.Change) {
	if c.IsZero() || g.events == nil {
		return
	}
	select {
	case g.events <- c:
	default:
		g.logger.Warn("change dropped", "surface", c.Surface, "field", c.Field)
	}
}

// Validate checks every surface's name invariant.
func (g *Geometry) Validate() error {
	var errs []error
	for _, s := range g.surfaces {
		errs = append(errs, s.Validate())
	}
	return errors.Join(errs...)
}

// Save writes the geometry node, with one geometry sub-node per surface,
// and the refinement node, with one snapshot per surface. Region snapshots
// are nested under "regions" in their parent's snapshot.
func (g *Geometry) Save() (geometry, refinement *dict.Dict, err error) {
	geometry = dict.New(GeometryName)
	refinement = dict.New(RefinementName)
	for _, s := range g.surfaces {
		gd, err := s.ToGeometryDict()
		if err != nil {
			return nil, nil, err
		}
		geometry.AddDict(gd)
		refinement.AddDict(snapshotTree(s))
	}
	return geometry, refinement, nil
}

func snapshotTree(s *surface.Surface) *dict.Dict {
	d := s.Snapshot()
	if regions := s.Regions(); len(regions) > 0 {
		rd := dict.New(regionsKey)
		for _, r := range regions {
			rd.AddDict(snapshotTree(r))
		}
		d.AddDict(rd)
	}
	return d
}

// Load replaces the collection with the surfaces described by geometry,
// applying each surface's snapshot from refinement when present. refinement
// may be nil. A surface that fails to load is skipped and reported; the
// others load regardless. The returned error joins every failure.
func (g *Geometry) Load(geometry, refinement *dict.Dict) error {
	var loaded []*surface.Surface
	var errs []error
	for _, gd := range geometry.SubDicts() {
		s, err := surface.FromGeometry(gd.Name(), gd)
		if err == nil && refinement != nil && refinement.IsDict(gd.Name()) {
			rd, _ := refinement.SubDict(gd.Name())
			err = loadTree(s, rd)
		}
		if err != nil {
			g.logger.Warn("surface skipped", "surface", gd.Name(), "error", err)
			errs = append(errs, err)
			continue
		}
		g.logger.Debug("surface loaded", "surface", s.Name(), "kind", s.Kind())
		loaded = append(loaded, s)
	}

	for _, s := range g.surfaces {
		s.Detach()
	}
	g.surfaces = loaded
	return errors.Join(errs...)
}

func loadTree(s *surface.Surface, d *dict.Dict) error {
	if _, err := s.LoadSnapshot(d); err != nil {
		return err
	}
	if !d.IsDict(regionsKey) {
		return nil
	}
	rd, _ := d.SubDict(regionsKey)
	for _, r := range s.Regions() {
		if !rd.IsDict(r.Name()) {
			continue
		}
		sub, _ := rd.SubDict(r.Name())
		if err := loadTree(r, sub); err != nil {
			return err
		}
	}
	return nil
}
