// Package store persists configuration nodes as YAML. Key order is
// preserved in both directions, vectors stay in their "(x y z)" string
// form, and numbers and booleans keep their types.
package store

import (
	"fmt"
	"sort"

	"github.com/goccy/go-yaml"

	"github.com/cs229254688/HELYX-OS/pkg/dict"
)

// EncodeDict renders the entries of d as a YAML mapping. The node's own
// name is not written; the caller supplies it again to DecodeDict.
func EncodeDict(d *dict.Dict) ([]byte, error) {
	data, err := yaml.MarshalWithOptions(toMapSlice(d), yaml.Indent(2))
	if err != nil {
		return nil, fmt.Errorf("encoding %q: %w", d.Name(), err)
	}
	return data, nil
}

func toMapSlice(d *dict.Dict) yaml.MapSlice {
	ms := yaml.MapSlice{}
	_ = d.Walk(func(key string, value any) error {
		if child, ok := value.(*dict.Dict); ok {
			ms = append(ms, yaml.MapItem{Key: key, Value: toMapSlice(child)})
			return nil
		}
		ms = append(ms, yaml.MapItem{Key: key, Value: value})
		return nil
	})
	return ms
}

// DecodeDict parses a YAML mapping into a node called name. Sequences and
// null values are rejected.
func DecodeDict(name string, data []byte) (*dict.Dict, error) {
	var root yaml.MapSlice
	if err := yaml.UnmarshalWithOptions(data, &root, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("decoding %q: %w", name, err)
	}
	d := dict.New(name)
	if err := fill(d, root); err != nil {
		return nil, fmt.Errorf("decoding %q: %w", name, err)
	}
	return d, nil
}

func fill(d *dict.Dict, ms yaml.MapSlice) error {
	for _, item := range ms {
		key := fmt.Sprint(item.Key)
		if err := put(d, key, item.Value); err != nil {
			return err
		}
	}
	return nil
}

func put(d *dict.Dict, key string, value any) error {
	switch v := value.(type) {
	case yaml.MapSlice:
		child := dict.New(key)
		if err := fill(child, v); err != nil {
			return err
		}
		d.AddDict(child)
	case map[string]any:
		child := dict.New(key)
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := put(child, k, v[k]); err != nil {
				return err
			}
		}
		d.AddDict(child)
	case string, bool, int, int64, uint64, float64:
		d.Add(key, v)
	case nil:
		return fmt.Errorf("%s/%s: null value", d.Name(), key)
	default:
		return fmt.Errorf("%s/%s: unsupported value of type %T", d.Name(), key, value)
	}
	return nil
}
