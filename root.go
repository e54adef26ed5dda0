package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// cli carries the state shared by the surfacectl commands.
type cli struct {
	cfgFile string
	cfg     Config
	app     *App
	stdout  io.Writer
	stderr  io.Writer
}

// newRootCmd builds the command tree writing results to stdout and logs
// to stderr.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}
	d := DefaultConfig()

	root := &cobra.Command{
		Use:   "surfacectl",
		Short: "Inspect and edit meshing surface projects",
		Long: `surfacectl reads surface projects (a geometry node plus refinement
settings per surface), lists their surfaces, tessellates them with the
sdfx kernel and performs simple edits such as renaming.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (YAML)")
	flags.String("log-level", d.LogLevel, "log level: debug, info, warn, error")
	flags.String("log-format", d.LogFormat, "log format: text, json")
	flags.Int("mesh-cells", d.MeshCells, "marching cubes resolution for closed primitives")
	flags.Int("mesh-segments", d.MeshSegments, "segments used to tessellate rings")
	flags.Float64("plane-size", d.PlaneSize, "side of the square drawn for planes")
	flags.Int("concurrency", d.Concurrency, "surfaces tessellated at once (0 for no limit)")

	root.AddCommand(c.inspectCmd(), c.datasetsCmd(), c.renameCmd())
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	v, err := newViper(c.cfgFile)
	if err != nil {
		return err
	}
	if err := v.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return err
	}
	c.cfg, err = loadConfig(v)
	if err != nil {
		return err
	}
	logger := newLogger(c.cfg.LogLevel, c.cfg.LogFormat, c.stderr)
	if f := v.ConfigFileUsed(); f != "" {
		logger.Debug("using config file", "file", f)
	}
	c.app = NewApp(c.cfg, logger)
	return nil
}

func (c *cli) inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <project>",
		Short: "List the surfaces of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return c.app.Inspect(args[0], c.stdout)
		},
	}
}

func (c *cli) datasetsCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "datasets <project>",
		Short: "Tessellate every visible surface and report its patches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("invalid format: %s (valid: table, json)", format)
			}
			stats, err := c.app.Datasets(cmd.Context(), args[0])
			if stats == nil && err != nil {
				return err
			}
			if format == "json" {
				enc := json.NewEncoder(c.stdout)
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(stats); encErr != nil {
					return encErr
				}
				return err
			}
			if werr := writeStats(c.stdout, stats); werr != nil {
				return werr
			}
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, json")
	return cmd
}

func (c *cli) renameCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "rename <project> <old> <new>",
		Short: "Rename a surface and save the project",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			return c.app.Rename(args[0], args[1], args[2], out)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the result here instead of overwriting the project")
	return cmd
}
