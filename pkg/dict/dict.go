// Package dict implements the configuration node used by every surface
// aspect: an ordered, named mapping from keys to scalar values or nested
// nodes.
//
// Defaults are applied only when a node is constructed. Lookups never fall
// back to a default; an absent key is a *MissingKeyError. Nodes never share
// children: every copy, default overlay and merge is a deep copy.
package dict

import (
	"fmt"
	"strings"

	"github.com/cs229254688/HELYX-OS/pkg/geom"
)

type entry struct {
	key   string
	value any // string, int, float64, bool or *Dict
}

// Dict is one configuration node. The zero value is an unnamed empty node
// ready for use.
type Dict struct {
	name    string
	entries []entry
	index   map[string]int
}

// New creates an empty node. Each defaults node is overlaid in order,
// copying only keys not already present.
func New(name string, defaults ...*Dict) *Dict {
	d := &Dict{name: name}
	for _, def := range defaults {
		d.overlayDefaults(def)
	}
	return d
}

// CopyOf deep-copies src and names the result name.
func CopyOf(name string, src *Dict) *Dict {
	d := src.Clone()
	d.name = name
	return d
}

func (d *Dict) overlayDefaults(def *Dict) {
	if def == nil {
		return
	}
	for _, e := range def.entries {
		if d.Found(e.key) {
			continue
		}
		d.set(e.key, copyValue(e.value))
	}
}

// Name returns the node name.
func (d *Dict) Name() string { return d.name }

// SetName renames the node.
func (d *Dict) SetName(name string) { d.name = name }

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.entries) }

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []string {
	keys := make([]string, len(d.entries))
	for i, e := range d.entries {
		keys[i] = e.key
	}
	return keys
}

// Found reports whether key is present, as a scalar or a nested node.
func (d *Dict) Found(key string) bool {
	_, ok := d.index[key]
	return ok
}

// IsDict reports whether key holds a nested node.
func (d *Dict) IsDict(key string) bool {
	i, ok := d.index[key]
	if !ok {
		return false
	}
	_, isDict := d.entries[i].value.(*Dict)
	return isDict
}

// Add sets key to a scalar value. Existing keys keep their position.
// Supported kinds are strings, booleans, integers, floats and geom.Vec3
// (stored in its "(x y z)" form). A *Dict value is stored under key with
// its name set to key. Any other type panics.
func (d *Dict) Add(key string, v any) {
	if child, ok := v.(*Dict); ok {
		child.name = key
		d.set(key, child)
		return
	}
	d.set(key, normalize(key, v))
}

// AddDict adds child keyed by its own name.
func (d *Dict) AddDict(child *Dict) {
	d.set(child.name, child)
}

// Remove deletes key and reports whether it was present.
func (d *Dict) Remove(key string) bool {
	i, ok := d.index[key]
	if !ok {
		return false
	}
	d.entries = append(d.entries[:i], d.entries[i+1:]...)
	d.reindex()
	return true
}

func (d *Dict) set(key string, v any) {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if i, ok := d.index[key]; ok {
		d.entries[i].value = v
		return
	}
	d.index[key] = len(d.entries)
	d.entries = append(d.entries, entry{key: key, value: v})
}

func (d *Dict) reindex() {
	d.index = make(map[string]int, len(d.entries))
	for i, e := range d.entries {
		d.index[e.key] = i
	}
}

func normalize(key string, v any) any {
	switch x := v.(type) {
	case string, bool, int, float64:
		return x
	case geom.Vec3:
		return x.String()
	case int8:
		return int(x)
	case int16:
		return int(x)
	case int32:
		return int(x)
	case int64:
		return int(x)
	case uint:
		return int(x)
	case uint8:
		return int(x)
	case uint16:
		return int(x)
	case uint32:
		return int(x)
	case uint64:
		return int(x)
	case float32:
		return float64(x)
	default:
		panic(fmt.Sprintf("dict: unsupported value type %T for key %q", v, key))
	}
}

// Lookup returns the raw scalar stored under key.
func (d *Dict) Lookup(key string) (any, error) {
	i, ok := d.index[key]
	if !ok {
		return nil, &MissingKeyError{Dict: d.name, Key: key}
	}
	v := d.entries[i].value
	if _, isDict := v.(*Dict); isDict {
		return nil, &TypeError{Dict: d.name, Key: key, Want: "scalar", Got: "dictionary"}
	}
	return v, nil
}

// String returns the string stored under key.
func (d *Dict) String(key string) (string, error) {
	v, err := d.Lookup(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", d.typeError(key, "string", v)
	}
	return s, nil
}

// Int returns the integer stored under key.
func (d *Dict) Int(key string) (int, error) {
	v, err := d.Lookup(key)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int)
	if !ok {
		return 0, d.typeError(key, "int", v)
	}
	return n, nil
}

// Float returns the number stored under key. Integers are widened.
func (d *Dict) Float(key string) (float64, error) {
	v, err := d.Lookup(key)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	default:
		return 0, d.typeError(key, "float", v)
	}
}

// Bool returns the boolean stored under key. The strings "true" and
// "false" are accepted as well, since dictionary files commonly carry
// them as words.
func (d *Dict) Bool(key string) (bool, error) {
	v, err := d.Lookup(key)
	if err != nil {
		return false, err
	}
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		switch strings.ToLower(x) {
		case "true", "yes", "on":
			return true, nil
		case "false", "no", "off":
			return false, nil
		}
	}
	return false, d.typeError(key, "bool", v)
}

// Vec3 parses the "(x y z)" string stored under key.
func (d *Dict) Vec3(key string) (geom.Vec3, error) {
	s, err := d.String(key)
	if err != nil {
		return geom.Vec3{}, err
	}
	v, err := geom.ParseVec3(s)
	if err != nil {
		return geom.Vec3{}, &TypeError{Dict: d.name, Key: key, Want: "vector", Got: fmt.Sprintf("%q", s)}
	}
	return v, nil
}

// SubDict returns the nested node under key. The node is returned by
// reference; Clone it before handing it to another owner.
func (d *Dict) SubDict(key string) (*Dict, error) {
	i, ok := d.index[key]
	if !ok {
		return nil, &MissingKeyError{Dict: d.name, Key: key}
	}
	child, isDict := d.entries[i].value.(*Dict)
	if !isDict {
		return nil, &MissingKeyError{Dict: d.name, Key: key, NotDict: true}
	}
	return child, nil
}

// SubDicts returns the nested nodes in insertion order.
func (d *Dict) SubDicts() []*Dict {
	var out []*Dict
	for _, e := range d.entries {
		if child, ok := e.value.(*Dict); ok {
			out = append(out, child)
		}
	}
	return out
}

// Walk visits every entry in order. For nested nodes value is the *Dict.
// Returning a non-nil error stops the walk.
func (d *Dict) Walk(fn func(key string, value any) error) error {
	for _, e := range d.entries {
		if err := fn(e.key, e.value); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dict) typeError(key, want string, got any) *TypeError {
	return &TypeError{Dict: d.name, Key: key, Want: want, Got: fmt.Sprintf("%T", got)}
}

// Clone returns a deep copy.
func (d *Dict) Clone() *Dict {
	if d == nil {
		return nil
	}
	c := &Dict{name: d.name}
	if len(d.entries) > 0 {
		c.entries = make([]entry, len(d.entries))
		for i, e := range d.entries {
			c.entries[i] = entry{key: e.key, value: copyValue(e.value)}
		}
		c.reindex()
	}
	return c
}

func copyValue(v any) any {
	if child, ok := v.(*Dict); ok {
		return child.Clone()
	}
	return v
}

// Equal reports deep equality of name, key order and values.
func (d *Dict) Equal(o *Dict) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.name != o.name || len(d.entries) != len(o.entries) {
		return false
	}
	for i, e := range d.entries {
		oe := o.entries[i]
		if e.key != oe.key {
			return false
		}
		a, aDict := e.value.(*Dict)
		b, bDict := oe.value.(*Dict)
		if aDict != bDict {
			return false
		}
		if aDict {
			if !a.Equal(b) {
				return false
			}
			continue
		}
		if e.value != oe.value {
			return false
		}
	}
	return true
}

// GoString renders the node in dictionary notation for logs and test
// failure messages.
func (d *Dict) GoString() string {
	var b strings.Builder
	d.write(&b, 0)
	return b.String()
}

func (d *Dict) write(b *strings.Builder, depth int) {
	indent := strings.Repeat("    ", depth)
	fmt.Fprintf(b, "%s%s\n%s{\n", indent, d.name, indent)
	for _, e := range d.entries {
		if child, ok := e.value.(*Dict); ok {
			child.write(b, depth+1)
			continue
		}
		fmt.Fprintf(b, "%s    %s %v;\n", indent, e.key, e.value)
	}
	fmt.Fprintf(b, "%s}\n", indent)
}
