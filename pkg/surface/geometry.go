package surface

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cs229254688/HELYX-OS/pkg/dict"
	"github.com/cs229254688/HELYX-OS/pkg/transform"
)

// KeyRegionName is the patch name written for each solid of an Stl.
const KeyRegionName = "name"

// reserved keys cannot name a group member, since members are stored as
// sub-nodes of the group's geometry node.
func reserved(name string) bool {
	return name == KeyType || name == transform.DictName
}

// ToGeometryDict encodes the geometric parameters under a node named after
// the surface. A solid's node is named after its mesh region and holds the
// patch name. When the transform mode is BakedIntoConfig and the
// transform is not the identity, the transform is written as a
// "transforms" sub-node.
func (s *Surface) ToGeometryDict() (*dict.Dict, error) {
	if s.Kind() == Solid {
		d := dict.New(s.meshRegion())
		d.Add(KeyRegionName, s.PatchName())
		return d, nil
	}
	d := dict.New(s.name)

	typeName, err := s.Kind().TypeName()
	if err != nil {
		return nil, err
	}
	d.Add(KeyType, typeName)
	s.shape.encode(d)

	switch s.Kind() {
	case Stl:
		d.Add(KeyAppendRegionName, s.appendRegionName)
		if len(s.regions) > 0 {
			regions := dict.New(KeyRegions)
			for _, r := range s.regions {
				rd, err := r.ToGeometryDict()
				if err != nil {
					return nil, err
				}
				regions.AddDict(rd)
			}
			d.AddDict(regions)
		}
	case Multi:
		for _, m := range s.regions {
			md, err := m.ToGeometryDict()
			if err != nil {
				return nil, fmt.Errorf("surface %q: %w", s.name, err)
			}
			d.AddDict(md)
		}
	}

	if s.mode == transform.BakedIntoConfig && !s.transform.IsIdentity() {
		d.AddDict(s.transform.ToDict())
	}
	return d, nil
}

// FromGeometryDict reads the geometric parameters from d. A "transforms"
// sub-node restores the transform and switches the mode to
// BakedIntoConfig. On error the surface is left unchanged.
func (s *Surface) FromGeometryDict(d *dict.Dict) error {
	if err := s.fromGeometryDict(d); err != nil {
		return fmt.Errorf("surface %q: %w", s.name, err)
	}
	return nil
}

func (s *Surface) fromGeometryDict(d *dict.Dict) error {
	if d.Found(KeyType) {
		typeName, err := d.String(KeyType)
		if err != nil {
			return err
		}
		k, ok := KindOf(typeName)
		if !ok {
			return &UnknownVariantError{Surface: s.name, Key: KeyType, Value: typeName}
		}
		if k != s.Kind() {
			return &ConfigurationError{Kind: s.Kind(), Message: fmt.Sprintf("geometry type %q belongs to %v", typeName, k)}
		}
	}

	shape, err := s.shape.decode(d)
	if err != nil {
		return err
	}

	appendRegionName := s.appendRegionName
	if d.Found(KeyAppendRegionName) {
		if appendRegionName, err = d.Bool(KeyAppendRegionName); err != nil {
			return err
		}
	}

	regions := s.regions
	switch s.Kind() {
	case Stl:
		if regions, err = s.decodeSolids(d, appendRegionName); err != nil {
			return err
		}
	case Multi:
		if regions, err = s.decodeMembers(d); err != nil {
			return err
		}
	}

	t, mode := s.transform, s.mode
	if d.IsDict(transform.DictName) {
		sub, _ := d.SubDict(transform.DictName)
		if t, err = transform.FromDict(sub); err != nil {
			return err
		}
		mode = transform.BakedIntoConfig
	}

	// Commit.
	if shape != s.shape && s.Kind() != Stl {
		s.dataset = nil
	}
	s.shape = shape
	s.appendRegionName = appendRegionName
	s.transform, s.mode = t, mode
	s.replaceRegions(regions)
	return nil
}

// decodeSolids returns the solids listed under "regions", one per mesh
// region. Existing solids of a listed region are kept. A new solid is
// named after its patch name, without the Stl prefix when region names
// are appended.
func (s *Surface) decodeSolids(d *dict.Dict, appendRegionName bool) ([]*Surface, error) {
	if !d.Found(KeyRegions) {
		return s.regions, nil
	}
	sub, err := d.SubDict(KeyRegions)
	if err != nil {
		return nil, err
	}
	var solids []*Surface
	for _, rd := range sub.SubDicts() {
		region := rd.Name()
		if r := s.MeshSolid(region); r != nil {
			solids = append(solids, r)
			continue
		}
		name := region
		if rd.Found(KeyRegionName) {
			patch, err := rd.String(KeyRegionName)
			if err != nil {
				return nil, err
			}
			name = patch
			if appendRegionName {
				name = strings.TrimPrefix(patch, s.name+"_")
			}
		}
		if name == "" {
			name = region
		}
		solids = append(solids, New(name, SolidShape{Region: region}))
	}
	return solids, nil
}

// decodeMembers builds one member per sub-node. A member that already
// exists with the same kind keeps its aspects and dataset. Every member
// is decoded even when another fails.
func (s *Surface) decodeMembers(d *dict.Dict) ([]*Surface, error) {
	var members []*Surface
	var errs []error
	for _, md := range d.SubDicts() {
		if reserved(md.Name()) {
			continue
		}
		if old := s.Region(md.Name()); old != nil && md.Found(KeyType) {
			typeName, _ := md.String(KeyType)
			if k, ok := KindOf(typeName); ok && k == old.Kind() {
				m := old.Clone()
				if err := m.FromGeometryDict(md); err != nil {
					errs = append(errs, err)
					continue
				}
				members = append(members, m)
				continue
			}
		}
		m, err := FromGeometry(md.Name(), md)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		members = append(members, m)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return members, nil
}

// MeshSolid returns the solid standing for the given mesh region of an
// Stl, or nil. A solid keeps its mesh region when renamed. Group members
// are matched by name.
func (s *Surface) MeshSolid(region string) *Surface {
	for _, r := range s.regions {
		if r.meshRegion() == region {
			return r
		}
	}
	return nil
}

func (s *Surface) replaceRegions(regions []*Surface) {
	keep := make(map[*Surface]bool, len(regions))
	for _, r := range regions {
		keep[r] = true
	}
	for _, r := range s.regions {
		if !keep[r] {
			r.parent = nil
		}
	}
	s.regions = nil
	for _, r := range regions {
		s.attach(r)
	}
}

// FromGeometry creates the surface described by a geometry node. The
// variant is chosen by the node's "type" key.
func FromGeometry(name string, d *dict.Dict) (*Surface, error) {
	typeName, err := d.String(KeyType)
	if err != nil {
		return nil, fmt.Errorf("surface %q: %w", name, err)
	}
	k, ok := KindOf(typeName)
	if !ok {
		return nil, &UnknownVariantError{Surface: name, Key: KeyType, Value: typeName}
	}
	s, err := NewKind(name, k)
	if err != nil {
		return nil, err
	}
	if err := s.FromGeometryDict(d); err != nil {
		return nil, err
	}
	return s, nil
}
