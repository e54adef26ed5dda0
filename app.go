package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/cs229254688/HELYX-OS/pkg/geometry"
	"github.com/cs229254688/HELYX-OS/pkg/kernel"
	"github.com/cs229254688/HELYX-OS/pkg/kernel/sdfx"
	"github.com/cs229254688/HELYX-OS/pkg/store"
	"github.com/cs229254688/HELYX-OS/pkg/surface"
	"github.com/cs229254688/HELYX-OS/pkg/tessellate"
)

// App runs the surfacectl commands against project files.
type App struct {
	cfg    Config
	logger *slog.Logger
	kernel kernel.Kernel
}

// PatchStats summarizes the transformed dataset of one patch.
type PatchStats struct {
	Surface   string     `json:"surface"`
	Patch     string     `json:"patch"`
	Kind      string     `json:"kind"`
	Points    int        `json:"points"`
	Triangles int        `json:"triangles"`
	Min       [3]float64 `json:"min"`
	Max       [3]float64 `json:"max"`
}

// NewApp creates an App with the sdfx kernel configured from cfg.
func NewApp(cfg Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		cfg:    cfg,
		logger: logger,
		kernel: sdfx.New(sdfx.WithCells(cfg.MeshCells), sdfx.WithSegments(cfg.MeshSegments)),
	}
}

// load reads a project into a new collection. Surfaces that fail to load
// are skipped; the returned error describes them and the collection holds
// the rest.
func (a *App) load(path string, opts ...geometry.Option) (*store.Project, *geometry.Geometry, error) {
	p, err := store.LoadProject(path)
	if err != nil {
		return nil, nil, err
	}
	opts = append([]geometry.Option{geometry.WithLogger(a.logger)}, opts...)
	g := geometry.New(opts...)
	err = g.Load(p.Geometry, p.Refinement)
	a.logger.Debug("project loaded", "path", path, "format", p.FormatVersion.String(), "surfaces", g.Len())
	return p, g, err
}

// Inspect prints one line per surface and region of the project at path.
func (a *App) Inspect(path string, w io.Writer) error {
	_, g, loadErr := a.load(path)
	if g == nil {
		return loadErr
	}
	for _, s := range g.Surfaces() {
		printSurface(w, s, "")
		for _, r := range s.Regions() {
			printSurface(w, r, "  ")
		}
	}
	return loadErr
}

func printSurface(w io.Writer, s *surface.Surface, indent string) {
	fmt.Fprintf(w, "%s%s regions=%t surface=%t volume=%t layers=%t zones=%t patch=%t\n",
		indent, s, s.HasRegions(), s.HasSurfaceRefinement(), s.HasVolumeRefinement(),
		s.HasLayers(), s.HasZones(), s.WillBecomePatch())
}

// Datasets tessellates the project at path and returns the statistics of
// every patch, one per region for surfaces that carry regions.
func (a *App) Datasets(ctx context.Context, path string) ([]PatchStats, error) {
	_, g, loadErr := a.load(path)
	if g == nil {
		return nil, loadErr
	}
	parts, err := tessellate.Tessellate(ctx, g, a.kernel,
		tessellate.WithLogger(a.logger),
		tessellate.WithPlaneSize(a.cfg.PlaneSize),
		tessellate.WithLimit(a.cfg.Concurrency),
	)
	if err != nil {
		return nil, errors.Join(loadErr, err)
	}

	var stats []PatchStats
	for _, p := range parts {
		s := g.Get(p.Surface)
		if len(p.Data.Regions) == 0 {
			stats = append(stats, patchStats(p.Surface, s.PatchName(), p.Kind, p.Data))
			continue
		}
		for _, region := range p.Data.Regions {
			patch := region
			if r := s.MeshSolid(region); r != nil {
				patch = r.PatchName()
			}
			stats = append(stats, patchStats(p.Surface, patch, p.Kind, p.Data.ExtractRegion(region)))
		}
	}
	return stats, loadErr
}

func patchStats(name, patch string, k surface.Kind, d *kernel.PolyData) PatchStats {
	st := PatchStats{Surface: name, Patch: patch, Kind: k.String()}
	if d == nil {
		return st
	}
	st.Points = d.PointCount()
	st.Triangles = d.PolyCount()
	st.Min, st.Max = d.Bounds()
	return st
}

// writeStats prints stats as an aligned table.
func writeStats(w io.Writer, stats []PatchStats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SURFACE\tPATCH\tKIND\tPOINTS\tTRIANGLES\tMIN\tMAX")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			s.Surface, s.Patch, s.Kind, s.Points, s.Triangles, point(s.Min), point(s.Max))
	}
	return tw.Flush()
}

func point(p [3]float64) string {
	return fmt.Sprintf("(%g %g %g)", p[0], p[1], p[2])
}

// Rename renames a top-level surface and writes the project to out, or
// back to path when out is empty. A project with surfaces that fail to
// load is left untouched.
func (a *App) Rename(path, oldName, newName, out string) error {
	events := make(chan surface.Change, 1)
	p, g, err := a.load(path, geometry.WithEvents(events))
	if err != nil {
		return err
	}
	if err := g.Rename(oldName, newName); err != nil {
		return err
	}
	select {
	case c := <-events:
		a.logger.Info("surface renamed", "from", c.Old, "to", c.New)
	default:
		a.logger.Info("surface name unchanged", "surface", oldName)
	}

	p.Geometry, p.Refinement, err = g.Save()
	if err != nil {
		return err
	}
	if out == "" {
		out = path
	}
	if err := store.SaveProject(out, p); err != nil {
		return err
	}
	a.logger.Debug("project written", "path", out)
	return nil
}
