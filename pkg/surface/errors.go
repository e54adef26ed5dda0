package surface

import "fmt"

// UnknownVariantError reports a persisted geometry node whose shape type
// is not part of the variant set.
type UnknownVariantError struct {
	Surface string
	Key     string
	Value   string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("surface %q: unknown %s %q", e.Surface, e.Key, e.Value)
}

// InconsistentNameError reports an aspect node whose name differs from its
// surface. Rename is atomic, so this means a broken invariant.
type InconsistentNameError struct {
	Surface string
	Aspect  Aspect
	Got     string
}

func (e *InconsistentNameError) Error() string {
	return fmt.Sprintf("surface %q: %s aspect is named %q", e.Surface, e.Aspect, e.Got)
}

// ConfigurationError reports a variant kind that is missing from the
// capability tables, or an operation the kind does not support.
type ConfigurationError struct {
	Kind    Kind
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("surface kind %v: %s", e.Kind, e.Message)
}
