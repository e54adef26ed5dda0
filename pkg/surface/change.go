package surface

// Field names a mutable property of a Surface.
type Field string

const (
	FieldName             Field = "name"
	FieldVisible          Field = "visible"
	FieldAppendRegionName Field = "appendRegionName"
	FieldTransform        Field = "transformation"
	FieldTransformMode    Field = "transformMode"
	FieldShape            Field = "shape"
	FieldSurface          Field = "surfaceDictionary"
	FieldVolume           Field = "volumeDictionary"
	FieldLayer            Field = "layerDictionary"
	FieldZone             Field = "zoneDictionary"
)

// Change records one mutation. Setters return it instead of notifying
// observers; delivering it is up to the caller. A setter that changed
// nothing returns the zero Change.
type Change struct {
	Surface string
	Field   Field
	Old     any
	New     any
}

// IsZero reports whether c records no mutation.
func (c Change) IsZero() bool {
	return c.Field == ""
}
