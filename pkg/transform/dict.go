package transform

import (
	"fmt"
	"strconv"

	"github.com/cs229254688/HELYX-OS/pkg/dict"
	"github.com/cs229254688/HELYX-OS/pkg/kernel"
)

// DictName is the key of the sub-node holding a baked transform.
const DictName = "transforms"

// ToDict encodes the steps as a "transforms" node with one child per
// step, keyed "0", "1", ... in order:
//
//	transforms
//	{
//	    0 { type translate; vector (1 0 0); }
//	    1 { type rotate; axis (0 0 1); angle 90; }
//	}
func (a Affine) ToDict() *dict.Dict {
	d := dict.New(DictName)
	for i, op := range a.ops {
		step := dict.New(strconv.Itoa(i))
		step.Add("type", op.Kind.String())
		switch op.Kind {
		case kernel.OpRotate:
			step.Add("axis", op.Vector)
			step.Add("angle", op.Angle)
		default:
			step.Add("vector", op.Vector)
		}
		d.AddDict(step)
	}
	return d
}

// FromDict decodes a node written by ToDict. Steps are read in the
// order they appear.
func FromDict(d *dict.Dict) (Affine, error) {
	var a Affine
	for _, step := range d.SubDicts() {
		kind, err := step.String("type")
		if err != nil {
			return Affine{}, fmt.Errorf("transform step %s: %w", step.Name(), err)
		}
		switch kind {
		case kernel.OpTranslate.String(), kernel.OpScale.String():
			v, err := step.Vec3("vector")
			if err != nil {
				return Affine{}, fmt.Errorf("transform step %s: %w", step.Name(), err)
			}
			if kind == kernel.OpScale.String() {
				a = a.Scale(v)
			} else {
				a = a.Translate(v)
			}
		case kernel.OpRotate.String():
			axis, err := step.Vec3("axis")
			if err != nil {
				return Affine{}, fmt.Errorf("transform step %s: %w", step.Name(), err)
			}
			angle, err := step.Float("angle")
			if err != nil {
				return Affine{}, fmt.Errorf("transform step %s: %w", step.Name(), err)
			}
			a = a.Rotate(axis, angle)
		default:
			return Affine{}, fmt.Errorf("transform step %s: unknown type %q", step.Name(), kind)
		}
	}
	return a, nil
}
