package dict

// Merge layers overlay on top of base and returns a new node named like
// base. Neither input is modified.
//
// Merge semantics:
//   - scalars: overlay wins
//   - nested nodes present in both: merged recursively
//   - a nested node replacing a scalar (or the reverse): overlay wins
//   - keys only in overlay: appended in overlay order
func Merge(base, overlay *Dict) *Dict {
	if base == nil {
		return overlay.Clone()
	}
	result := base.Clone()
	if overlay == nil {
		return result
	}
	mergeInto(result, overlay)
	return result
}

// MergeAll merges layers left to right; later layers win.
func MergeAll(layers ...*Dict) *Dict {
	var result *Dict
	for _, l := range layers {
		result = Merge(result, l)
	}
	return result
}

// mergeInto merges overlay into dst, which must already be an owned copy.
func mergeInto(dst, overlay *Dict) {
	for _, e := range overlay.entries {
		src, srcIsDict := e.value.(*Dict)
		if srcIsDict && dst.IsDict(e.key) {
			existing, _ := dst.SubDict(e.key)
			mergeInto(existing, src)
			continue
		}
		dst.set(e.key, copyValue(e.value))
	}
}
