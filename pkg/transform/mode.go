package transform

import "fmt"

// Mode decides where a surface's transform ends up.
type Mode int

const (
	// AppliedToDataset keeps the stored geometry untransformed; the
	// transform is applied whenever a transformed dataset is requested.
	AppliedToDataset Mode = iota
	// BakedIntoConfig writes the transform into the geometry dictionary.
	BakedIntoConfig
)

func (m Mode) String() string {
	switch m {
	case AppliedToDataset:
		return "appliedToDataset"
	case BakedIntoConfig:
		return "bakedIntoConfig"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "appliedToDataset":
		return AppliedToDataset, nil
	case "bakedIntoConfig":
		return BakedIntoConfig, nil
	default:
		return 0, fmt.Errorf("unknown transform mode %q", s)
	}
}
