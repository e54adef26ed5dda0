package surface

import "fmt"

// Kind identifies the shape variant of a surface.
type Kind int

const (
	Box Kind = iota
	Sphere
	Cylinder
	Ring
	Plane
	Stl   // imported triangulated mesh
	Solid // named region of an Stl
	Multi // group of member surfaces

	kindCount
)

func (k Kind) String() string {
	switch k {
	case Box:
		return "box"
	case Sphere:
		return "sphere"
	case Cylinder:
		return "cylinder"
	case Ring:
		return "ring"
	case Plane:
		return "plane"
	case Stl:
		return "stl"
	case Solid:
		return "solid"
	case Multi:
		return "multi"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// SingletonRule says when a kind is meshed as exactly one patch.
type SingletonRule int

const (
	SingletonAlways SingletonRule = iota
	SingletonNever
	// SingletonSingleRegion: singleton while it has at most one region.
	SingletonSingleRegion
)

// Capabilities are the static answers each kind gives to the
// orchestrator.
type Capabilities struct {
	Singleton         SingletonRule
	Regions           bool
	SurfaceRefinement bool
	VolumeRefinement  bool
	Layers            bool
	Zones             bool
}

var capabilities = map[Kind]Capabilities{
	Box:      {Singleton: SingletonAlways, SurfaceRefinement: true, VolumeRefinement: true, Layers: true, Zones: true},
	Sphere:   {Singleton: SingletonAlways, SurfaceRefinement: true, VolumeRefinement: true, Layers: true, Zones: true},
	Cylinder: {Singleton: SingletonAlways, SurfaceRefinement: true, VolumeRefinement: true, Layers: true, Zones: true},
	Ring:     {Singleton: SingletonAlways, SurfaceRefinement: true, Layers: true, Zones: true},
	Plane:    {Singleton: SingletonAlways, SurfaceRefinement: true, Zones: true},
	Stl:      {Singleton: SingletonSingleRegion, Regions: true, SurfaceRefinement: true, VolumeRefinement: true, Layers: true, Zones: true},
	Solid:    {Singleton: SingletonAlways, SurfaceRefinement: true, Layers: true, Zones: true},
	Multi:    {Singleton: SingletonNever, Regions: true, SurfaceRefinement: true, VolumeRefinement: true, Layers: true, Zones: true},
}

// typeNames is the geometry "type" vocabulary. Solids live inside their
// Stl's geometry node and have no type of their own.
var typeNames = map[Kind]string{
	Box:      "searchableBox",
	Sphere:   "searchableSphere",
	Cylinder: "searchableCylinder",
	Ring:     "searchableRing",
	Plane:    "searchablePlane",
	Stl:      "triSurfaceMesh",
	Multi:    "searchableSurfaceCollection",
	Solid:    "",
}

// kindsByType is the inverse of typeNames.
var kindsByType = map[string]Kind{}

func init() {
	if err := checkTables(kindCount); err != nil {
		panic(err)
	}
	for k, name := range typeNames {
		if name != "" {
			kindsByType[name] = k
		}
	}
}

// checkTables fails if any kind below n lacks a capability or type entry.
func checkTables(n Kind) error {
	for k := Kind(0); k < n; k++ {
		if _, ok := capabilities[k]; !ok {
			return &ConfigurationError{Kind: k, Message: "no capability entry"}
		}
		if _, ok := typeNames[k]; !ok {
			return &ConfigurationError{Kind: k, Message: "no geometry type entry"}
		}
	}
	return nil
}

// Capabilities returns the capability table entry for k.
func (k Kind) Capabilities() (Capabilities, error) {
	c, ok := capabilities[k]
	if !ok {
		return Capabilities{}, &ConfigurationError{Kind: k, Message: "no capability entry"}
	}
	return c, nil
}

// TypeName returns the geometry "type" value written for k.
func (k Kind) TypeName() (string, error) {
	name, ok := typeNames[k]
	if !ok {
		return "", &ConfigurationError{Kind: k, Message: "no geometry type entry"}
	}
	if name == "" {
		return "", &ConfigurationError{Kind: k, Message: "not a standalone geometry type"}
	}
	return name, nil
}

// KindOf maps a geometry "type" value back to its kind.
func KindOf(typeName string) (Kind, bool) {
	k, ok := kindsByType[typeName]
	return k, ok
}
