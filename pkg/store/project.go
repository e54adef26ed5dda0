package store

import (
	"errors"
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"

	"github.com/cs229254688/HELYX-OS/pkg/dict"
)

// Project file keys.
const (
	KeyFormatVersion = "formatVersion"
	KeyGeometry      = "geometry"
	KeyRefinement    = "refinementSurfaces"
)

// CurrentFormat is the format version written by SaveProject.
const CurrentFormat = "1.0.0"

// supportedFormats is the range of versions LoadProject accepts.
const supportedFormats = "^1"

// Project is the persisted form of a geometry collection.
type Project struct {
	FormatVersion *semver.Version
	Geometry      *dict.Dict
	Refinement    *dict.Dict // may be nil
}

// ErrUnsupportedFormat is returned for project files outside the
// supported format range.
var ErrUnsupportedFormat = errors.New("unsupported project format")

// LoadProject reads a project file. A file without formatVersion is read
// as version 1.0.0.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project: %w", err)
	}
	p, err := ParseProject(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParseProject decodes project file contents.
func ParseProject(data []byte) (*Project, error) {
	root, err := DecodeDict("project", data)
	if err != nil {
		return nil, err
	}

	version := CurrentFormat
	if root.Found(KeyFormatVersion) {
		raw, err := root.Lookup(KeyFormatVersion)
		if err != nil {
			return nil, err
		}
		version = fmt.Sprint(raw)
	}
	v, err := checkFormat(version)
	if err != nil {
		return nil, err
	}

	geometry, err := root.SubDict(KeyGeometry)
	if err != nil {
		return nil, err
	}
	p := &Project{FormatVersion: v, Geometry: geometry}
	if root.IsDict(KeyRefinement) {
		p.Refinement, _ = root.SubDict(KeyRefinement)
	}
	return p, nil
}

func checkFormat(version string) (*semver.Version, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnsupportedFormat, version, err)
	}
	c, err := semver.NewConstraint(supportedFormats)
	if err != nil {
		return nil, err
	}
	if !c.Check(v) {
		return nil, fmt.Errorf("%w: %s does not satisfy %s", ErrUnsupportedFormat, v, supportedFormats)
	}
	return v, nil
}

// Encode renders the project file contents. The current format version
// is written regardless of p.FormatVersion.
func (p *Project) Encode() ([]byte, error) {
	root := dict.New("project")
	root.Add(KeyFormatVersion, CurrentFormat)
	if p.Geometry == nil {
		return nil, errors.New("project has no geometry")
	}
	root.AddDict(dict.CopyOf(KeyGeometry, p.Geometry))
	if p.Refinement != nil {
		root.AddDict(dict.CopyOf(KeyRefinement, p.Refinement))
	}
	return EncodeDict(root)
}

// SaveProject writes p to path.
func SaveProject(path string, p *Project) error {
	data, err := p.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing project: %w", err)
	}
	return nil
}
