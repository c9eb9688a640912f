package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/debgems/pkg/deps"
	"github.com/matzehuels/debgems/pkg/pipeline"
	"github.com/matzehuels/debgems/pkg/report"
)

// loadStatus reads a status file into a result. The app name comes from
// the file name unless app is set.
func loadStatus(path, app string) (*pipeline.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open status file: %w", err)
	}
	defer f.Close()

	set, err := deps.ReadWorkingSet(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if app == "" {
		app = appFromStatusFile(path)
	}
	return &pipeline.Result{
		Result:   &deps.Result{Root: app, Set: set, Edges: set.Edges()},
		App:      app,
		Manifest: path,
		Summary:  report.Summarize(set),
	}, nil
}

// appFromStatusFile strips the status file suffix: "diaspora_debian_status.json"
// becomes "diaspora".
func appFromStatusFile(path string) string {
	base := filepath.Base(path)
	if app, ok := strings.CutSuffix(base, report.StatusFile("")); ok && app != "" {
		return app
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// filterRecords keeps the records whose color is in colors. An empty list
// keeps everything.
func filterRecords(set *deps.WorkingSet, colors []string) *deps.WorkingSet {
	if len(colors) == 0 {
		return set
	}
	keep := make(map[deps.Color]bool, len(colors))
	for _, c := range colors {
		keep[deps.Color(strings.ToLower(strings.TrimSpace(c)))] = true
	}
	out := deps.NewWorkingSet()
	for _, r := range set.Records() {
		if keep[r.Color] {
			out.Add(r)
		}
	}
	return out
}

// statusCommand creates the status command.
func (c *CLI) statusCommand() *cobra.Command {
	var (
		plain  bool
		colors []string
	)

	cmd := &cobra.Command{
		Use:   "status STATUS_FILE",
		Short: "Print a status file as a table",
		Example: `  debgems status diaspora_debian_status.json
  debgems status diaspora_debian_status.json --color red,violet`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeStatusFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadStatus(args[0], "")
			if err != nil {
				return err
			}
			set := filterRecords(res.Set, colors)
			out := cmd.OutOrStdout()
			if plain {
				if err := report.WriteText(out, set); err != nil {
					return err
				}
				_, err := fmt.Fprintln(out, report.SummaryLine(res.Summary))
				return err
			}
			if err := writeStatusTable(out, set); err != nil {
				return err
			}
			if len(colors) > 0 {
				_, err = fmt.Fprintf(out, "%d of %d gems shown\n", set.Len(), res.Set.Len())
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print plain text without colors or borders")
	cmd.Flags().StringSliceVar(&colors, "color", nil, "only show gems of these colors (green,yellow,blue,cyan,red,violet)")

	return cmd
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		app       string
		formats   string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "graph STATUS_FILE",
		Short: "Render a status file as a graph or report",
		Long: `Graph renders the records of an existing status file without contacting
Debian or RubyGems. SVG output uses the bundled Graphviz; PDF output also
needs rsvg-convert on the PATH.`,
		Example:           `  debgems graph diaspora_debian_status.json -f svg,html`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeStatusFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := pipeline.ParseFormats(formats)
			if err != nil {
				return err
			}
			res, err := loadStatus(args[0], app)
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("output-dir") {
				outputDir = cfg.OutputDir
			}

			prog := newProgress(c.Logger)
			runner := pipeline.NewRunner(cfg, nil, c.Logger)
			paths, err := runner.Write(cmd.Context(), res, outputDir, fs)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Rendered %d files", len(paths)))
			for _, p := range paths {
				printFile(p)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&app, "app", "a", "", "root name (default: derived from the file name)")
	cmd.Flags().StringVarP(&formats, "format", "f", pipeline.FormatSVG, "output formats: json,dot,svg,pdf,html,edges,txt")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".", "directory for output files")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}
