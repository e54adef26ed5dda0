package kernel

import "math"

// PolyData is a triangulated surface dataset.
// Points has 3 floats per point (x,y,z) and Polys has 3 indices per
// triangle. Regions names the sub-parts of the surface; PolyRegion holds one
// index into Regions per triangle and is empty when the dataset has no
// regions.
type PolyData struct {
	Name       string
	Points     []float64 // [x0,y0,z0, x1,y1,z1, ...]
	Polys      []uint32  // [i0,i1,i2, ...] triangles
	Regions    []string
	PolyRegion []int
}

// PointCount returns the number of points.
func (d *PolyData) PointCount() int {
	return len(d.Points) / 3
}

// PolyCount returns the number of triangles.
func (d *PolyData) PolyCount() int {
	return len(d.Polys) / 3
}

// IsEmpty returns true if the dataset has no geometry.
func (d *PolyData) IsEmpty() bool {
	return len(d.Points) == 0
}

// Point returns point i.
func (d *PolyData) Point(i int) [3]float64 {
	return [3]float64{d.Points[3*i], d.Points[3*i+1], d.Points[3*i+2]}
}

// Bounds returns the axis-aligned bounding box. An empty dataset returns
// zero bounds.
func (d *PolyData) Bounds() (min, max [3]float64) {
	if d.IsEmpty() {
		return min, max
	}
	for i := 0; i < 3; i++ {
		min[i] = math.Inf(1)
		max[i] = math.Inf(-1)
	}
	for p := 0; p < d.PointCount(); p++ {
		for i := 0; i < 3; i++ {
			v := d.Points[3*p+i]
			min[i] = math.Min(min[i], v)
			max[i] = math.Max(max[i], v)
		}
	}
	return min, max
}

// Clone returns a deep copy.
func (d *PolyData) Clone() *PolyData {
	return &PolyData{
		Name:       d.Name,
		Points:     append([]float64(nil), d.Points...),
		Polys:      append([]uint32(nil), d.Polys...),
		Regions:    append([]string(nil), d.Regions...),
		PolyRegion: append([]int(nil), d.PolyRegion...),
	}
}

// ExtractRegion returns a new dataset holding only the triangles of the
// named region, with unused points dropped. It returns nil if the region
// does not exist.
func (d *PolyData) ExtractRegion(name string) *PolyData {
	region := -1
	for i, r := range d.Regions {
		if r == name {
			region = i
			break
		}
	}
	if region < 0 || len(d.PolyRegion) != d.PolyCount() {
		return nil
	}

	out := &PolyData{Name: name, Regions: []string{name}}
	remap := make(map[uint32]uint32)
	for t := 0; t < d.PolyCount(); t++ {
		if d.PolyRegion[t] != region {
			continue
		}
		for j := 0; j < 3; j++ {
			src := d.Polys[3*t+j]
			dst, ok := remap[src]
			if !ok {
				dst = uint32(out.PointCount())
				remap[src] = dst
				out.Points = append(out.Points, d.Points[3*src], d.Points[3*src+1], d.Points[3*src+2])
			}
			out.Polys = append(out.Polys, dst)
		}
		out.PolyRegion = append(out.PolyRegion, 0)
	}
	return out
}

// Append concatenates datasets into a new one. Each input becomes one
// region of the result, named after the input's Name when it has no
// regions of its own.
func Append(name string, parts ...*PolyData) *PolyData {
	out := &PolyData{Name: name}
	for _, p := range parts {
		if p == nil {
			continue
		}
		offset := uint32(out.PointCount())
		out.Points = append(out.Points, p.Points...)
		for _, idx := range p.Polys {
			out.Polys = append(out.Polys, idx+offset)
		}

		regionOffset := len(out.Regions)
		if len(p.Regions) > 0 && len(p.PolyRegion) == p.PolyCount() {
			out.Regions = append(out.Regions, p.Regions...)
			for _, r := range p.PolyRegion {
				out.PolyRegion = append(out.PolyRegion, r+regionOffset)
			}
			continue
		}
		out.Regions = append(out.Regions, p.Name)
		for t := 0; t < p.PolyCount(); t++ {
			out.PolyRegion = append(out.PolyRegion, regionOffset)
		}
	}
	return out
}
