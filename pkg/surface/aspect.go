package surface

import (
	"fmt"
	"strings"

	"github.com/cs229254688/HELYX-OS/pkg/dict"
)

// Aspect selects one or more of the four configuration facets of a
// surface.
type Aspect uint8

const (
	AspectSurface Aspect = 1 << iota
	AspectVolume
	AspectLayer
	AspectZone

	AllAspects = AspectSurface | AspectVolume | AspectLayer | AspectZone
)

// aspects lists the single aspects in snapshot order.
var aspects = []Aspect{AspectSurface, AspectVolume, AspectLayer, AspectZone}

func (a Aspect) String() string {
	var parts []string
	for _, one := range aspects {
		if a&one != 0 {
			parts = append(parts, one.key())
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Aspect(%d)", uint8(a))
	}
	return strings.Join(parts, "|")
}

// key is the snapshot sub-node name of a single aspect.
func (a Aspect) key() string {
	switch a {
	case AspectSurface:
		return "surface"
	case AspectVolume:
		return "volume"
	case AspectLayer:
		return "layer"
	case AspectZone:
		return "zone"
	default:
		return ""
	}
}

func (a Aspect) field() Field {
	switch a {
	case AspectSurface:
		return FieldSurface
	case AspectVolume:
		return FieldVolume
	case AspectLayer:
		return FieldLayer
	default:
		return FieldZone
	}
}

// Aspect dictionary keys.
const (
	KeyLevel               = "level"
	KeyMode                = "mode"
	KeyFaceType            = "faceType"
	KeyCellZone            = "cellZone"
	KeyFaceZone            = "faceZone"
	KeyNSurfaceLayers      = "nSurfaceLayers"
	KeyExpansionRatio      = "expansionRatio"
	KeyFinalLayerThickness = "finalLayerThickness"

	None = "none"
)

// Default templates. New surfaces copy them, so they are never shared.
var (
	surfaceDefaults = func() *dict.Dict {
		d := dict.New("")
		d.Add(KeyLevel, "(0 0)")
		return d
	}()
	volumeDefaults = func() *dict.Dict {
		d := dict.New("")
		d.Add(KeyMode, None)
		return d
	}()
	zoneDefaults = func() *dict.Dict {
		d := dict.New("")
		d.Add(KeyFaceType, None)
		return d
	}()
	layerDefaults = func() *dict.Dict {
		d := dict.New("")
		d.Add(KeyNSurfaceLayers, 0)
		d.Add(KeyExpansionRatio, 1.25)
		d.Add(KeyFinalLayerThickness, 0.4)
		return d
	}()
)

func defaultsFor(a Aspect) *dict.Dict {
	switch a {
	case AspectSurface:
		return surfaceDefaults
	case AspectVolume:
		return volumeDefaults
	case AspectLayer:
		return layerDefaults
	default:
		return zoneDefaults
	}
}
