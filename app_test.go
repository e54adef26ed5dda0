package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs229254688/HELYX-OS/pkg/store"
	"github.com/cs229254688/HELYX-OS/pkg/surface"
)

const exampleProject = "examples/wing.yaml"

func testApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.MeshCells = 16
	cfg.MeshSegments = 12
	cfg.PlaneSize = 2
	var logs bytes.Buffer
	return NewApp(cfg, newLogger("debug", "text", &logs)), &logs
}

// copyProject copies the example project into a temp dir so tests can
// overwrite it.
func copyProject(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(exampleProject)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "project.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestInspectExample(t *testing.T) {
	app, _ := testApp(t)
	var out bytes.Buffer
	require.NoError(t, app.Inspect(exampleProject, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 7)
	assert.Contains(t, lines[0], "name: wing, patch_name: wing, type: box")
	assert.Contains(t, lines[1], "name: nacelle")
	assert.Contains(t, lines[3], "type: plane")
	assert.Contains(t, lines[3], "volume=false")
	assert.Contains(t, lines[4], "name: hull, patch_name: hull, type: stl, singleton: false")
	assert.Contains(t, lines[4], "patch=false")
	assert.True(t, strings.HasPrefix(lines[5], "  [ name: port, patch_name: hull_port"))
	assert.Contains(t, lines[5], "patch=true")
}

func TestInspectMissingProject(t *testing.T) {
	app, _ := testApp(t)
	err := app.Inspect(filepath.Join(t.TempDir(), "none.yaml"), &bytes.Buffer{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestInspectReportsSkippedSurfaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`geometry:
  wing:
    type: searchableBox
    min: (0 0 0)
    max: (1 1 1)
  torus:
    type: searchableTorus
`), 0o644))

	app, logs := testApp(t)
	var out bytes.Buffer
	err := app.Inspect(path, &out)

	var uv *surface.UnknownVariantError
	require.ErrorAs(t, err, &uv)
	assert.Equal(t, "torus", uv.Surface)
	assert.Contains(t, out.String(), "name: wing")
	assert.NotContains(t, out.String(), "torus")
	assert.Contains(t, logs.String(), "surface skipped")
}

func TestDatasetsExample(t *testing.T) {
	app, logs := testApp(t)
	stats, err := app.Datasets(context.Background(), exampleProject)
	require.NoError(t, err)

	// The hull has no mesh loaded and is skipped.
	require.Len(t, stats, 4)
	var patches []string
	for _, s := range stats {
		patches = append(patches, s.Patch)
		assert.Positive(t, s.Triangles, "patch %s", s.Patch)
	}
	assert.Equal(t, []string{"wing", "nacelle", "fan", "ground"}, patches)
	assert.Contains(t, logs.String(), "surface has no dataset")

	// The nacelle is baked with a translation of (1 -1 0).
	nacelle := stats[1]
	const tol = 0.2
	assert.InDelta(t, 0.5, nacelle.Min[0], tol)
	assert.InDelta(t, 1.5, nacelle.Max[0], tol)
	assert.InDelta(t, -1.5, nacelle.Min[1], tol)
	assert.InDelta(t, -0.5, nacelle.Max[1], tol)

	ground := stats[3]
	assert.InDelta(t, -1, ground.Min[2], 1e-9)
	assert.InDelta(t, -1, ground.Max[2], 1e-9)
	assert.InDelta(t, 2, ground.Max[0]-ground.Min[0], 1e-9)

	var out bytes.Buffer
	require.NoError(t, writeStats(&out, stats))
	assert.Contains(t, out.String(), "SURFACE")
	assert.Contains(t, out.String(), "nacelle")
}

func TestRenameWritesOutput(t *testing.T) {
	path := copyProject(t)
	out := filepath.Join(t.TempDir(), "renamed.yaml")
	app, logs := testApp(t)

	require.NoError(t, app.Rename(path, "wing", "mainWing", out))
	assert.Contains(t, logs.String(), "surface renamed")

	p, err := store.LoadProject(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"mainWing", "nacelle", "fan", "ground", "hull"}, p.Geometry.Keys())
	layer, err := p.Refinement.SubDict("mainWing")
	require.NoError(t, err)
	layer, err = layer.SubDict("layer")
	require.NoError(t, err)
	n, err := layer.Int(surface.KeyNSurfaceLayers)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	nacelle, err := p.Geometry.SubDict("nacelle")
	require.NoError(t, err)
	assert.True(t, nacelle.IsDict("transforms"), "baked transform kept")

	// The source project is untouched.
	src, err := store.LoadProject(path)
	require.NoError(t, err)
	assert.Equal(t, "wing", src.Geometry.Keys()[0])
}

func TestRenameInPlace(t *testing.T) {
	path := copyProject(t)
	app, _ := testApp(t)
	require.NoError(t, app.Rename(path, "fan", "rotor", ""))

	p, err := store.LoadProject(path)
	require.NoError(t, err)
	assert.True(t, p.Geometry.IsDict("rotor"))
	assert.False(t, p.Geometry.Found("fan"))
}

func TestRenameErrors(t *testing.T) {
	path := copyProject(t)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	app, _ := testApp(t)
	assert.Error(t, app.Rename(path, "wing", "nacelle", ""), "duplicate name")
	assert.Error(t, app.Rename(path, "port", "left", ""), "regions are not top-level")
	assert.Error(t, app.Rename(path, "missing", "x", ""))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestNewAppDefaultsLogger(t *testing.T) {
	app := NewApp(DefaultConfig(), nil)
	assert.Same(t, slog.Default(), app.logger)
	assert.NotNil(t, app.kernel)
}
