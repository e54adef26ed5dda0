package surface

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs229254688/HELYX-OS/pkg/dict"
	"github.com/cs229254688/HELYX-OS/pkg/geom"
	"github.com/cs229254688/HELYX-OS/pkg/transform"
)

// allKinds returns one surface of every kind. Solids are attached to an
// Stl, since they are never standalone.
func allKinds(t *testing.T) []*Surface {
	t.Helper()
	var out []*Surface
	for _, k := range []Kind{Box, Sphere, Cylinder, Ring, Plane, Stl, Multi} {
		s, err := NewKind("s_"+k.String(), k)
		require.NoError(t, err)
		out = append(out, s)
	}
	stl := NewStl("parts", "parts.stl", "inlet", "outlet")
	out = append(out, stl.Region("inlet"))
	return out
}

func assertNamesInSync(t *testing.T, s *Surface, name string) {
	t.Helper()
	assert.Equal(t, name, s.Name())
	for _, a := range aspects {
		assert.Equal(t, name, s.Aspect(a).Name(), "aspect %v", a)
	}
	assert.NoError(t, s.Validate())
}

func TestNewDefaults(t *testing.T) {
	s := New("wing", BoxShape{Max: geom.One})

	assertNamesInSync(t, s, "wing")
	assert.True(t, s.Visible())
	assert.False(t, s.AppendRegionName())
	assert.True(t, s.Transform().IsIdentity())
	assert.Equal(t, transform.AppliedToDataset, s.TransformMode())

	level, err := s.SurfaceDict().String(KeyLevel)
	require.NoError(t, err)
	assert.Equal(t, "(0 0)", level)

	mode, err := s.VolumeDict().String(KeyMode)
	require.NoError(t, err)
	assert.Equal(t, None, mode)

	faceType, err := s.ZoneDict().String(KeyFaceType)
	require.NoError(t, err)
	assert.Equal(t, None, faceType)

	n, err := s.LayerDict().Int(KeyNSurfaceLayers)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	ratio, err := s.LayerDict().Float(KeyExpansionRatio)
	require.NoError(t, err)
	assert.Equal(t, 1.25, ratio)
	thickness, err := s.LayerDict().Float(KeyFinalLayerThickness)
	require.NoError(t, err)
	assert.Equal(t, 0.4, thickness)
}

func TestDefaultsAreNotShared(t *testing.T) {
	a := New("a", SphereShape{Radius: 1})
	a.LayerDict().Add(KeyNSurfaceLayers, 5)
	a.SurfaceDict().Add(KeyLevel, "(2 3)")

	b := New("b", SphereShape{Radius: 1})
	n, err := b.LayerDict().Int(KeyNSurfaceLayers)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	level, err := b.SurfaceDict().String(KeyLevel)
	require.NoError(t, err)
	assert.Equal(t, "(0 0)", level)
}

func TestRename(t *testing.T) {
	for _, s := range allKinds(t) {
		t.Run(s.Kind().String(), func(t *testing.T) {
			old := s.Name()
			c, err := s.Rename("renamed")
			require.NoError(t, err)
			assertNamesInSync(t, s, "renamed")
			assert.Equal(t, Change{Surface: "renamed", Field: FieldName, Old: old, New: "renamed"}, c)
		})
	}
}

func TestRenameToCurrentNameIsNoop(t *testing.T) {
	s := NewStl("hull", "hull.stl", "port", "starboard")
	s.LayerDict().Add(KeyNSurfaceLayers, 3)
	before := s.Snapshot()
	beforeGeom, err := s.ToGeometryDict()
	require.NoError(t, err)
	beforeAspects := s.SurfaceDict()

	c, err := s.Rename("hull")
	require.NoError(t, err)
	assert.True(t, c.IsZero())
	assert.True(t, before.Equal(s.Snapshot()))
	afterGeom, err := s.ToGeometryDict()
	require.NoError(t, err)
	assert.True(t, beforeGeom.Equal(afterGeom))
	assert.Same(t, beforeAspects, s.SurfaceDict())
}

func TestRenameRejectsEmptyName(t *testing.T) {
	s := New("wing", SphereShape{Radius: 1})
	_, err := s.Rename("")
	require.Error(t, err)
	assertNamesInSync(t, s, "wing")
}

func TestCopyFromSingleAspect(t *testing.T) {
	donor := New("donor", BoxShape{Max: geom.One})
	donor.SurfaceDict().Add(KeyLevel, "(3 4)")
	donor.VolumeDict().Add(KeyMode, "inside")
	donor.LayerDict().Add(KeyNSurfaceLayers, 7)
	donor.ZoneDict().Add(KeyCellZone, "fluid")

	s := New("target", SphereShape{Centre: geom.One, Radius: 2})
	volume := s.VolumeDict().Clone()
	layer := s.LayerDict().Clone()
	zone := s.ZoneDict().Clone()
	shape := s.Shape()

	changes := s.CopyFrom(donor, AspectSurface)
	require.Len(t, changes, 1)
	assert.Equal(t, FieldSurface, changes[0].Field)

	assert.True(t, dict.CopyOf("target", donor.SurfaceDict()).Equal(s.SurfaceDict()))
	assert.NotSame(t, donor.SurfaceDict(), s.SurfaceDict())
	assert.True(t, volume.Equal(s.VolumeDict()))
	assert.True(t, layer.Equal(s.LayerDict()))
	assert.True(t, zone.Equal(s.ZoneDict()))
	assert.Equal(t, shape, s.Shape())
	assertNamesInSync(t, s, "target")

	// The copy is independent of the donor.
	donor.SurfaceDict().Add(KeyLevel, "(9 9)")
	level, err := s.SurfaceDict().String(KeyLevel)
	require.NoError(t, err)
	assert.Equal(t, "(3 4)", level)
}

func TestCopyFromSelection(t *testing.T) {
	donor := New("donor", BoxShape{Max: geom.One})
	donor.LayerDict().Add(KeyNSurfaceLayers, 7)
	donor.ZoneDict().Add(KeyFaceType, "baffle")

	s := New("target", BoxShape{Max: geom.One})
	snapshot := s.Snapshot()

	assert.Empty(t, s.CopyFrom(donor, 0))
	assert.True(t, snapshot.Equal(s.Snapshot()))

	changes := s.CopyFrom(donor, AspectLayer|AspectZone)
	require.Len(t, changes, 2)
	assert.Equal(t, FieldLayer, changes[0].Field)
	assert.Equal(t, FieldZone, changes[1].Field)
	faceType, err := s.ZoneDict().String(KeyFaceType)
	require.NoError(t, err)
	assert.Equal(t, "baffle", faceType)
	assertNamesInSync(t, s, "target")
}

func TestMergeAspect(t *testing.T) {
	s := New("wing", BoxShape{Max: geom.One})
	overlay := dict.New("anything")
	overlay.Add(KeyNSurfaceLayers, 5)
	overlay.Add("relativeSizes", true)

	c := s.MergeAspect(AspectLayer, overlay)
	assert.Equal(t, FieldLayer, c.Field)
	assertNamesInSync(t, s, "wing")

	layer := s.LayerDict()
	assert.Equal(t, []string{KeyNSurfaceLayers, KeyExpansionRatio, KeyFinalLayerThickness, "relativeSizes"}, layer.Keys())
	n, err := layer.Int(KeyNSurfaceLayers)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	r, err := layer.Float(KeyExpansionRatio)
	require.NoError(t, err)
	assert.Equal(t, 1.25, r)

	overlay.Add(KeyNSurfaceLayers, 7)
	n, _ = s.LayerDict().Int(KeyNSurfaceLayers)
	assert.Equal(t, 5, n, "overlay is copied")

	assert.False(t, s.MergeAspect(AspectLayer, overlay.Clone()).IsZero())
	assert.True(t, s.MergeAspect(AspectLayer, overlay).IsZero(), "merging the same keys again changes nothing")
}

func TestClone(t *testing.T) {
	s := NewStl("hull", "hull.stl", "port", "starboard")
	s.SurfaceDict().Add(KeyLevel, "(1 2)")
	s.SetVisible(false)
	s.SetAppendRegionName(true)
	s.SetTransform(transform.New().Translate(geom.Vec3{X: 1}))
	s.SetTransformMode(transform.BakedIntoConfig)

	c := s.Clone()
	for _, a := range aspects {
		assert.True(t, s.Aspect(a).Equal(c.Aspect(a)), "aspect %v", a)
		assert.NotSame(t, s.Aspect(a), c.Aspect(a), "aspect %v", a)
	}
	assert.False(t, c.Visible())
	assert.True(t, c.AppendRegionName())
	assert.True(t, c.Transform().Equal(s.Transform()))
	assert.Equal(t, transform.BakedIntoConfig, c.TransformMode())
	assert.Nil(t, c.Parent())

	require.Len(t, c.Regions(), 2)
	for i, r := range c.Regions() {
		assert.Same(t, c, r.Parent())
		assert.NotSame(t, s.Regions()[i], r)
	}

	c.SurfaceDict().Add(KeyLevel, "(5 5)")
	level, err := s.SurfaceDict().String(KeyLevel)
	require.NoError(t, err)
	assert.Equal(t, "(1 2)", level)
}

func TestWillBecomePatch(t *testing.T) {
	multi := NewStl("multi", "multi.stl", "a", "b")
	single := NewStl("single", "single.stl", "only")
	empty := NewStl("empty", "empty.stl")
	box := New("box", BoxShape{Max: geom.One})
	orphan := New("orphan", SolidShape{})
	group, err := NewMulti("group", New("m", SphereShape{Radius: 1}))
	require.NoError(t, err)

	tests := []struct {
		name string
		s    *Surface
		want bool
	}{
		{"solid of non-singleton stl", multi.Region("a"), true},
		{"solid of singleton stl", single.Region("only"), false},
		{"singleton stl", single, true},
		{"stl without solids", empty, true},
		{"non-singleton stl", multi, false},
		{"primitive", box, false},
		{"solid without parent", orphan, false},
		{"group", group, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.WillBecomePatch())
		})
	}

	// Re-evaluated when membership changes.
	multi.RemoveRegion("b")
	assert.True(t, multi.WillBecomePatch())
	assert.False(t, multi.Region("a").WillBecomePatch())
}

func TestCapabilities(t *testing.T) {
	box := New("box", BoxShape{Max: geom.One})
	assert.True(t, box.IsSingleton())
	assert.False(t, box.HasRegions())
	assert.True(t, box.HasVolumeRefinement())

	plane := New("plane", PlaneShape{Normal: geom.UnitZ})
	assert.False(t, plane.HasLayers())
	assert.False(t, plane.HasVolumeRefinement())
	assert.True(t, plane.HasZones())

	group, err := NewMulti("group")
	require.NoError(t, err)
	assert.False(t, group.IsSingleton())
	assert.True(t, group.HasRegions())
}

func TestCapabilityTablesFailClosed(t *testing.T) {
	require.NoError(t, checkTables(kindCount))

	err := checkTables(kindCount + 1)
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, kindCount, ce.Kind)

	_, err = Kind(42).Capabilities()
	assert.ErrorAs(t, err, &ce)
	_, err = Kind(42).TypeName()
	assert.ErrorAs(t, err, &ce)
	_, err = Solid.TypeName()
	assert.ErrorAs(t, err, &ce)
	_, err = defaultShape(Kind(42))
	assert.ErrorAs(t, err, &ce)
}

func TestPatchName(t *testing.T) {
	stl := NewStl("hull", "hull.stl", "port")
	port := stl.Region("port")
	assert.Equal(t, "port", port.PatchName())

	stl.SetAppendRegionName(true)
	assert.Equal(t, "hull_port", port.PatchName())
	assert.Equal(t, "hull", stl.PatchName())
}

func TestZoneNames(t *testing.T) {
	s := New("baffle", PlaneShape{Normal: geom.UnitZ})
	_, err := s.CellZoneName()
	assert.True(t, dict.IsMissingKey(err))

	s.ZoneDict().Add(KeyCellZone, "porous")
	s.ZoneDict().Add(KeyFaceZone, "porousFaces")
	cz, err := s.CellZoneName()
	require.NoError(t, err)
	assert.Equal(t, "porous", cz)
	fz, err := s.FaceZoneName()
	require.NoError(t, err)
	assert.Equal(t, "porousFaces", fz)
}

func TestString(t *testing.T) {
	s := New("wing", BoxShape{Max: geom.One})
	assert.Equal(t, "[ name: wing, patch_name: wing, type: box, singleton: true, visible: true ]", s.String())
}

func TestSetters(t *testing.T) {
	s := New("wing", BoxShape{Max: geom.One})

	assert.True(t, s.SetVisible(true).IsZero())
	assert.Equal(t, Change{Surface: "wing", Field: FieldVisible, Old: true, New: false}, s.SetVisible(false))

	assert.Equal(t, Change{Surface: "wing", Field: FieldAppendRegionName, Old: false, New: true}, s.SetAppendRegionName(true))

	c := s.SetTransformMode(transform.BakedIntoConfig)
	assert.Equal(t, transform.AppliedToDataset, c.Old)
	assert.Equal(t, transform.BakedIntoConfig, c.New)

	assert.True(t, s.SetTransform(transform.New()).IsZero())
	c = s.SetTransform(transform.New().Scale(geom.Vec3{X: 2, Y: 2, Z: 2}))
	assert.Equal(t, FieldTransform, c.Field)
	assert.True(t, c.Old.(transform.Affine).IsIdentity())

	old := s.VolumeDict()
	c = s.SetAspect(AspectVolume, dict.New("whatever"))
	assert.Equal(t, FieldVolume, c.Field)
	assert.Same(t, old, c.Old)
	assertNamesInSync(t, s, "wing")
}

func TestSetAspectNilRestoresDefaults(t *testing.T) {
	s := New("wing", BoxShape{Max: geom.One})
	s.LayerDict().Add(KeyNSurfaceLayers, 4)

	c := s.SetAspect(AspectLayer, nil)
	assert.Equal(t, FieldLayer, c.Field)
	assertNamesInSync(t, s, "wing")
	n, err := s.LayerDict().Int(KeyNSurfaceLayers)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.True(t, dict.New("wing", layerDefaults).Equal(s.LayerDict()))
}

func TestSetShape(t *testing.T) {
	s := New("wing", BoxShape{Max: geom.One})
	c, err := s.SetShape(BoxShape{Max: geom.Vec3{X: 2, Y: 2, Z: 2}})
	require.NoError(t, err)
	assert.Equal(t, FieldShape, c.Field)

	c, err = s.SetShape(BoxShape{Max: geom.Vec3{X: 2, Y: 2, Z: 2}})
	require.NoError(t, err)
	assert.True(t, c.IsZero())

	_, err = s.SetShape(SphereShape{Radius: 1})
	var ce *ConfigurationError
	assert.ErrorAs(t, err, &ce)
	assert.Equal(t, Box, s.Kind())
}

func TestSnapshotRoundTrip(t *testing.T) {
	wing := New("wing", BoxShape{Max: geom.One})
	snap := wing.Snapshot()
	assert.Equal(t, "wing", snap.Name())
	assert.Equal(t, []string{"surface", "volume", "layer", "zone"}, snap.Keys())

	other := New("other", BoxShape{Max: geom.One})
	other.LayerDict().Add(KeyNSurfaceLayers, 9)
	changes, err := other.LoadSnapshot(snap)
	require.NoError(t, err)
	assertNamesInSync(t, other, "other")
	require.Len(t, changes, 1, "only the layer aspect differs")
	assert.Equal(t, FieldLayer, changes[0].Field)
	assert.Equal(t, "other", changes[0].Surface)
	assert.Same(t, other.LayerDict(), changes[0].New)

	for _, a := range aspects {
		assert.True(t, dict.CopyOf("wing", other.Aspect(a)).Equal(wing.Aspect(a)), "aspect %v", a)
	}
	_, err = other.Rename("wing")
	require.NoError(t, err)
	assert.True(t, wing.Snapshot().Equal(other.Snapshot()))

	changes, err = other.LoadSnapshot(snap)
	require.NoError(t, err)
	assert.Empty(t, changes, "loading an equal snapshot changes nothing")

	// The loaded aspects do not share nodes with the snapshot.
	sub, err := snap.SubDict("layer")
	require.NoError(t, err)
	sub.Add(KeyNSurfaceLayers, 4)
	n, err := other.LayerDict().Int(KeyNSurfaceLayers)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestLoadSnapshotMissingAspect(t *testing.T) {
	s := New("wing", BoxShape{Max: geom.One})
	s.LayerDict().Add(KeyNSurfaceLayers, 2)
	before := s.Snapshot()

	broken := s.Snapshot()
	broken.Remove("zone")
	broken.Add("surface", dict.New("surface"))

	changes, err := s.LoadSnapshot(broken)
	require.Error(t, err)
	assert.Nil(t, changes)
	var mk *dict.MissingKeyError
	require.ErrorAs(t, err, &mk)
	assert.Equal(t, "zone", mk.Key)
	assert.True(t, before.Equal(s.Snapshot()))
}

func TestValidateDetectsDivergence(t *testing.T) {
	s := New("wing", BoxShape{Max: geom.One})
	s.LayerDict().SetName("tail")

	err := s.Validate()
	var ine *InconsistentNameError
	require.ErrorAs(t, err, &ine)
	assert.Equal(t, "wing", ine.Surface)
	assert.Equal(t, AspectLayer, ine.Aspect)
	assert.Equal(t, "tail", ine.Got)
}

func TestAddRegion(t *testing.T) {
	stl := NewStl("hull", "hull.stl", "port")
	assert.Error(t, stl.AddRegion(New("box", BoxShape{Max: geom.One})))
	assert.Error(t, stl.AddRegion(New("port", SolidShape{})))
	require.NoError(t, stl.AddRegion(New("keel", SolidShape{})))
	assert.Len(t, stl.Regions(), 2)

	group, err := NewMulti("group")
	require.NoError(t, err)
	assert.Error(t, group.AddRegion(stl.Region("port")))
	assert.Error(t, group.AddRegion(New("transforms", BoxShape{Max: geom.One})))
	assert.Error(t, group.AddRegion(group))

	box := New("box", BoxShape{Max: geom.One})
	assert.Error(t, box.AddRegion(New("x", SolidShape{})))

	removed := stl.RemoveRegion("keel")
	require.NotNil(t, removed)
	assert.Nil(t, removed.Parent())
	assert.Nil(t, stl.RemoveRegion("keel"))

	stl.Detach()
	assert.Empty(t, stl.Regions())
}

func TestRenameRegionKeepsSiblingsUnique(t *testing.T) {
	a := New("a", BoxShape{Max: geom.One})
	b := New("b", BoxShape{Max: geom.One})
	group, err := NewMulti("group", a, b)
	require.NoError(t, err)

	_, err = a.Rename("b")
	require.Error(t, err)
	assert.Equal(t, "a", a.Name())
	_, err = a.Rename(KeyType)
	require.Error(t, err)
	_, err = a.Rename("transforms")
	require.Error(t, err)
	assertNamesInSync(t, a, "a")

	d, err := group.ToGeometryDict()
	require.NoError(t, err)
	assert.Equal(t, []string{KeyType, "a", "b"}, d.Keys())

	_, err = a.Rename("c")
	require.NoError(t, err)
	d, err = group.ToGeometryDict()
	require.NoError(t, err)
	assert.Equal(t, []string{KeyType, "c", "b"}, d.Keys())

	hull := NewStl("hull", "hull.stl", "port", "starboard")
	_, err = hull.Region("port").Rename("starboard")
	assert.Error(t, err)
	// Solids of an Stl live under "regions", so "type" is a fine name.
	_, err = hull.Region("port").Rename(KeyType)
	assert.NoError(t, err)
}

func TestRenamedSolidKeepsMeshRegion(t *testing.T) {
	hull := NewStl("hull", "hull.stl", "port", "starboard")
	hull.SetAppendRegionName(true)
	port := hull.Region("port")
	_, err := port.Rename("left")
	require.NoError(t, err)
	assert.Equal(t, SolidShape{Region: "port"}, port.Shape())
	assert.Equal(t, "hull_left", port.PatchName())
	assert.Same(t, port, hull.MeshSolid("port"))
	assert.Nil(t, hull.MeshSolid("left"))

	assert.Error(t, hull.AddRegion(New("port", SolidShape{})), "mesh region already mapped")

	d, err := hull.ToGeometryDict()
	require.NoError(t, err)
	regions, err := d.SubDict(KeyRegions)
	require.NoError(t, err)
	assert.Equal(t, []string{"port", "starboard"}, regions.Keys())
	rd, err := regions.SubDict("port")
	require.NoError(t, err)
	patch, err := rd.String(KeyRegionName)
	require.NoError(t, err)
	assert.Equal(t, "hull_left", patch)

	loaded, err := FromGeometry("hull", d)
	require.NoError(t, err)
	left := loaded.Region("left")
	require.NotNil(t, left)
	assert.Equal(t, SolidShape{Region: "port"}, left.Shape())
	assert.Equal(t, "hull_left", left.PatchName())
	assert.NotNil(t, loaded.Region("starboard"))
}

func TestAspectString(t *testing.T) {
	assert.Equal(t, "surface", AspectSurface.String())
	assert.Equal(t, "layer|zone", (AspectLayer | AspectZone).String())
	assert.Equal(t, "Aspect(0)", Aspect(0).String())
	assert.Equal(t, "surface|volume|layer|zone", AllAspects.String())
}

func TestErrorsMessages(t *testing.T) {
	err := error(&UnknownVariantError{Surface: "wing", Key: "type", Value: "searchableTorus"})
	assert.Equal(t, `surface "wing": unknown type "searchableTorus"`, err.Error())
	assert.True(t, errors.As(err, new(*UnknownVariantError)))
}
