// Package surface implements the configurable geometric entity of a
// meshing project: a named surface with four configuration aspects, an
// affine transform and a closed set of shape variants.
//
// Capability queries are answered from static per-kind tables. Setters
// return a Change describing the mutation rather than notifying
// observers.
package surface

import (
	"errors"
	"fmt"

	"github.com/cs229254688/HELYX-OS/pkg/dict"
	"github.com/cs229254688/HELYX-OS/pkg/kernel"
	"github.com/cs229254688/HELYX-OS/pkg/transform"
)

// Surface is one configurable geometric entity. A Surface is not safe for
// concurrent mutation; callers serialize access.
type Surface struct {
	name             string
	appendRegionName bool
	visible          bool

	// aspects in AspectSurface, AspectVolume, AspectLayer, AspectZone
	// order. Each node is named after the surface.
	dicts [4]*dict.Dict

	transform transform.Affine
	mode      transform.Mode

	shape   Shape
	parent  *Surface
	regions []*Surface

	dataset     *kernel.PolyData
	regionCache derived
	placedCache derived
}

// derived caches a dataset computed from other datasets, keyed by their
// identity.
type derived struct {
	sources []*kernel.PolyData
	out     *kernel.PolyData
}

func aspectIndex(a Aspect) int {
	switch a {
	case AspectSurface:
		return 0
	case AspectVolume:
		return 1
	case AspectLayer:
		return 2
	case AspectZone:
		return 3
	default:
		panic(fmt.Sprintf("surface: not a single aspect: %v", a))
	}
}

// New returns a visible surface with default aspects and an identity
// transform applied to the dataset.
func New(name string, shape Shape) *Surface {
	s := &Surface{name: name, visible: true, shape: shape}
	for i, a := range aspects {
		s.dicts[i] = dict.New(name, defaultsFor(a))
	}
	return s
}

// NewKind returns a surface of kind k with its default shape.
func NewKind(name string, k Kind) (*Surface, error) {
	shape, err := defaultShape(k)
	if err != nil {
		return nil, err
	}
	return New(name, shape), nil
}

// NewStl returns an imported mesh surface with one Solid region per
// solid name.
func NewStl(name, file string, solids ...string) *Surface {
	s := New(name, StlShape{File: file})
	for _, solid := range solids {
		s.attach(New(solid, SolidShape{Region: solid}))
	}
	return s
}

// NewMulti returns a group holding members. Members must not belong to
// another surface.
func NewMulti(name string, members ...*Surface) (*Surface, error) {
	s := New(name, MultiShape{})
	for _, m := range members {
		if err := s.AddRegion(m); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (s *Surface) Name() string                  { return s.name }
func (s *Surface) Kind() Kind                    { return s.shape.Kind() }
func (s *Surface) Shape() Shape                  { return s.shape }
func (s *Surface) Visible() bool                 { return s.visible }
func (s *Surface) AppendRegionName() bool        { return s.appendRegionName }
func (s *Surface) Transform() transform.Affine   { return s.transform }
func (s *Surface) TransformMode() transform.Mode { return s.mode }
func (s *Surface) Parent() *Surface              { return s.parent }
func (s *Surface) Aspect(a Aspect) *dict.Dict    { return s.dicts[aspectIndex(a)] }
func (s *Surface) SurfaceDict() *dict.Dict       { return s.Aspect(AspectSurface) }
func (s *Surface) VolumeDict() *dict.Dict        { return s.Aspect(AspectVolume) }
func (s *Surface) LayerDict() *dict.Dict         { return s.Aspect(AspectLayer) }
func (s *Surface) ZoneDict() *dict.Dict          { return s.Aspect(AspectZone) }

// Regions returns the solids of an Stl or the members of a Multi.
func (s *Surface) Regions() []*Surface {
	return append([]*Surface(nil), s.regions...)
}

// Region returns the region called name, or nil.
func (s *Surface) Region(name string) *Surface {
	for _, r := range s.regions {
		if r.name == name {
			return r
		}
	}
	return nil
}

// PatchName is the name of the mesh patch the surface produces. A solid
// of an Stl that appends region names is prefixed with the Stl name.
func (s *Surface) PatchName() string {
	if s.Kind() == Solid && s.parent != nil && s.parent.appendRegionName {
		return s.parent.name + "_" + s.name
	}
	return s.name
}

// meshRegion is the region of the parent's mesh a solid stands for. It
// survives renames of the solid.
func (s *Surface) meshRegion() string {
	if sh, ok := s.shape.(SolidShape); ok && sh.Region != "" {
		return sh.Region
	}
	return s.name
}

// CellZoneName returns the cellZone key of the zone aspect.
func (s *Surface) CellZoneName() (string, error) {
	return s.ZoneDict().String(KeyCellZone)
}

// FaceZoneName returns the faceZone key of the zone aspect.
func (s *Surface) FaceZoneName() (string, error) {
	return s.ZoneDict().String(KeyFaceZone)
}

func (s *Surface) String() string {
	return fmt.Sprintf("[ name: %s, patch_name: %s, type: %v, singleton: %t, visible: %t ]",
		s.name, s.PatchName(), s.Kind(), s.IsSingleton(), s.visible)
}

// ---------------------------------------------------------------------------
// Capabilities
// ---------------------------------------------------------------------------

// capabilities panics only if the tables are broken, which init rejects.
func (s *Surface) capabilities() Capabilities {
	c, err := s.Kind().Capabilities()
	if err != nil {
		panic(err)
	}
	return c
}

// IsSingleton reports whether the surface is meshed as exactly one patch.
func (s *Surface) IsSingleton() bool {
	switch s.capabilities().Singleton {
	case SingletonNever:
		return false
	case SingletonSingleRegion:
		return len(s.regions) <= 1
	default:
		return true
	}
}

func (s *Surface) HasRegions() bool           { return s.capabilities().Regions }
func (s *Surface) HasSurfaceRefinement() bool { return s.capabilities().SurfaceRefinement }
func (s *Surface) HasVolumeRefinement() bool  { return s.capabilities().VolumeRefinement }
func (s *Surface) HasLayers() bool            { return s.capabilities().Layers }
func (s *Surface) HasZones() bool             { return s.capabilities().Zones }

// WillBecomePatch reports whether the surface becomes a standalone mesh
// patch: a solid whose parent is not a singleton, or an Stl that is one.
// Only the immediate parent is inspected.
func (s *Surface) WillBecomePatch() bool {
	switch s.Kind() {
	case Solid:
		return s.parent != nil && !s.parent.IsSingleton()
	case Stl:
		return s.IsSingleton()
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// Mutation
// ---------------------------------------------------------------------------

// Rename sets the surface name and the names of all four aspects. Renaming
// to the current name changes nothing. An empty name, the name of a
// sibling region, or a reserved name for a group member is rejected and
// leaves the surface untouched.
func (s *Surface) Rename(name string) (Change, error) {
	if name == "" {
		return Change{}, errors.New("surface: empty name")
	}
	if name == s.name {
		return Change{}, nil
	}
	if p := s.parent; p != nil {
		if p.Region(name) != nil {
			return Change{}, fmt.Errorf("surface %q already has a region %q", p.name, name)
		}
		if p.Kind() == Multi && reserved(name) {
			return Change{}, fmt.Errorf("surface %q: %q is a reserved member name", p.name, name)
		}
	}
	old := s.name
	s.name = name
	for _, d := range s.dicts {
		d.SetName(name)
	}
	return Change{Surface: name, Field: FieldName, Old: old, New: name}, nil
}

func (s *Surface) change(f Field, old, next any) Change {
	return Change{Surface: s.name, Field: f, Old: old, New: next}
}

func (s *Surface) SetVisible(v bool) Change {
	if v == s.visible {
		return Change{}
	}
	old := s.visible
	s.visible = v
	return s.change(FieldVisible, old, v)
}

func (s *Surface) SetAppendRegionName(v bool) Change {
	if v == s.appendRegionName {
		return Change{}
	}
	old := s.appendRegionName
	s.appendRegionName = v
	return s.change(FieldAppendRegionName, old, v)
}

func (s *Surface) SetTransform(t transform.Affine) Change {
	if t.Equal(s.transform) {
		return Change{}
	}
	old := s.transform
	s.transform = t.Clone()
	return s.change(FieldTransform, old, s.transform)
}

func (s *Surface) SetTransformMode(m transform.Mode) Change {
	if m == s.mode {
		return Change{}
	}
	old := s.mode
	s.mode = m
	return s.change(FieldTransformMode, old, m)
}

// SetShape replaces the shape parameters. The kind cannot change. A
// realized dataset is dropped.
func (s *Surface) SetShape(shape Shape) (Change, error) {
	if shape == nil || shape.Kind() != s.Kind() {
		return Change{}, &ConfigurationError{Kind: s.Kind(), Message: fmt.Sprintf("cannot replace shape with %T", shape)}
	}
	if shape == s.shape {
		return Change{}, nil
	}
	old := s.shape
	s.shape = shape
	if s.Kind() != Stl {
		s.dataset = nil
	}
	return s.change(FieldShape, old, shape), nil
}

// SetAspect replaces one aspect with a deep copy of d renamed to the
// surface name. A nil d restores the aspect's defaults.
func (s *Surface) SetAspect(a Aspect, d *dict.Dict) Change {
	i := aspectIndex(a)
	if d == nil {
		d = dict.New(s.name, defaultsFor(a))
	}
	old := s.dicts[i]
	s.dicts[i] = dict.CopyOf(s.name, d)
	return s.change(a.field(), old, s.dicts[i])
}

// MergeAspect layers overlay onto one aspect: overlay keys win, nested
// nodes merge, and keys the overlay does not mention are kept.
func (s *Surface) MergeAspect(a Aspect, overlay *dict.Dict) Change {
	i := aspectIndex(a)
	merged := dict.Merge(s.dicts[i], overlay)
	if merged.Equal(s.dicts[i]) {
		return Change{}
	}
	old := s.dicts[i]
	s.dicts[i] = merged
	return s.change(a.field(), old, merged)
}

// CopyFrom replaces each selected aspect with a copy of the donor's.
// Shape, transform and flags are never copied.
func (s *Surface) CopyFrom(donor *Surface, which Aspect) []Change {
	var changes []Change
	for _, a := range aspects {
		if which&a != 0 {
			changes = append(changes, s.SetAspect(a, donor.Aspect(a)))
		}
	}
	return changes
}

// AddRegion attaches r. An Stl accepts solids; a Multi accepts anything
// but solids.
func (s *Surface) AddRegion(r *Surface) error {
	switch {
	case s.Kind() == Stl && r.Kind() != Solid:
		return &ConfigurationError{Kind: s.Kind(), Message: fmt.Sprintf("region %q is a %v, not a solid", r.name, r.Kind())}
	case s.Kind() == Multi && r.Kind() == Solid:
		return &ConfigurationError{Kind: s.Kind(), Message: fmt.Sprintf("solid %q cannot be a group member", r.name)}
	case s.Kind() != Stl && s.Kind() != Multi:
		return &ConfigurationError{Kind: s.Kind(), Message: "has no regions"}
	case s.Kind() == Multi && reserved(r.name):
		return fmt.Errorf("surface %q: %q is a reserved member name", s.name, r.name)
	case r.parent != nil:
		return fmt.Errorf("surface %q already belongs to %q", r.name, r.parent.name)
	case r == s:
		return fmt.Errorf("surface %q cannot contain itself", r.name)
	case s.Region(r.name) != nil:
		return fmt.Errorf("surface %q already has a region %q", s.name, r.name)
	case s.Kind() == Stl && s.MeshSolid(r.meshRegion()) != nil:
		return fmt.Errorf("surface %q: mesh region %q is already mapped", s.name, r.meshRegion())
	}
	s.attach(r)
	return nil
}

func (s *Surface) attach(r *Surface) {
	r.parent = s
	s.regions = append(s.regions, r)
}

// RemoveRegion detaches and returns the region called name, or nil.
func (s *Surface) RemoveRegion(name string) *Surface {
	for i, r := range s.regions {
		if r.name == name {
			s.regions = append(s.regions[:i:i], s.regions[i+1:]...)
			r.parent = nil
			return r
		}
	}
	return nil
}

// Detach clears the parent links of every region. Used when the surface
// is destroyed.
func (s *Surface) Detach() {
	for _, r := range s.regions {
		r.parent = nil
	}
	s.regions = nil
}

// ---------------------------------------------------------------------------
// Copies and snapshots
// ---------------------------------------------------------------------------

// Clone returns a deep copy detached from any parent. Aspects, transform
// and regions are copied; an imported dataset is shared, realized
// datasets are not carried over.
func (s *Surface) Clone() *Surface {
	c := &Surface{
		name:             s.name,
		appendRegionName: s.appendRegionName,
		shape:            s.shape,
		mode:             s.mode,
	}
	s.cloneInto(c)
	if s.Kind() == Stl {
		c.dataset = s.dataset
	}
	for _, r := range s.regions {
		c.attach(r.Clone())
	}
	return c
}

// cloneInto copies the state every variant shares.
func (s *Surface) cloneInto(c *Surface) {
	for i, d := range s.dicts {
		c.dicts[i] = d.Clone()
	}
	c.visible = s.visible
	c.transform = s.transform.Clone()
}

// Snapshot returns the four aspects as sub-nodes "surface", "volume",
// "layer" and "zone" of a node named after the surface.
func (s *Surface) Snapshot() *dict.Dict {
	d := dict.New(s.name)
	for i, a := range aspects {
		d.AddDict(dict.CopyOf(a.key(), s.dicts[i]))
	}
	return d
}

// LoadSnapshot rebuilds the four aspects from a node written by Snapshot
// and returns one Change per aspect that differs. All four sub-nodes must
// be present; otherwise nothing changes.
func (s *Surface) LoadSnapshot(d *dict.Dict) ([]Change, error) {
	var next [4]*dict.Dict
	for i, a := range aspects {
		sub, err := d.SubDict(a.key())
		if err != nil {
			return nil, fmt.Errorf("surface %q: %w", s.name, err)
		}
		next[i] = dict.CopyOf(s.name, sub)
	}
	var changes []Change
	for i, a := range aspects {
		if !next[i].Equal(s.dicts[i]) {
			changes = append(changes, s.change(a.field(), s.dicts[i], next[i]))
		}
	}
	s.dicts = next
	return changes, nil
}

// Validate checks that every aspect carries the surface name, for this
// surface and its regions.
func (s *Surface) Validate() error {
	for i, a := range aspects {
		if got := s.dicts[i].Name(); got != s.name {
			return &InconsistentNameError{Surface: s.name, Aspect: a, Got: got}
		}
	}
	for _, r := range s.regions {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}
