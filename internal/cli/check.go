package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/debgems/pkg/config"
	"github.com/matzehuels/debgems/pkg/deps"
	errs "github.com/matzehuels/debgems/pkg/errors"
	"github.com/matzehuels/debgems/pkg/pipeline"
	"github.com/matzehuels/debgems/pkg/report"
	"github.com/matzehuels/debgems/pkg/store"
)

// checkOptions holds the flags of the check command.
type checkOptions struct {
	app            string
	groups         []string
	formats        string
	outputDir      string
	seed           string
	backend        string
	workers        int
	refresh        bool
	noCache        bool
	noExperimental bool
	save           bool
	interactive    bool
	quiet          bool
}

// apply overlays flags that were set on top of cfg.
func (o *checkOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		cfg.OutputDir = o.outputDir
	}
	if flags.Changed("backend") {
		cfg.Backend = o.backend
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if o.noCache {
		cfg.Cache.Disabled = true
	}
	if o.noExperimental {
		cfg.Experimental = false
	}
	return cfg.Validate()
}

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check [Gemfile|NAME.gemspec]",
		Short: "Check the Debian packaging status of a Gemfile or gemspec",
		Long: `Check resolves every gem of a Gemfile or gemspec against the Debian archive.

Gems whose packaged version satisfies the declared requirement are done.
Everything else is expanded through its RubyGems dependencies until the whole
tree is classified. The status file and Graphviz graph are written to the
output directory.`,
		Example: `  # Check the Gemfile in the current directory
  debgems check

  # Check a gemspec and also write an HTML report and SVG graph
  debgems check mygem.gemspec --format json,dot,html,svg

  # Reuse the results of an earlier run
  debgems check --seed diaspora_debian_status.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest := "Gemfile"
			if len(args) == 1 {
				manifest = args[0]
			}
			return c.runCheck(cmd, manifest, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.app, "app", "a", "", "root name of the graph (default: derived from the manifest)")
	cmd.Flags().StringSliceVarP(&opts.groups, "groups", "g", nil, "Gemfile groups to check (default: runtime,production)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output formats: json,dot,svg,pdf,html,edges,txt (default: json,dot)")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", ".", "directory for output files")
	cmd.Flags().StringVar(&opts.seed, "seed", "", "status file of an earlier run to reuse")
	cmd.Flags().StringVar(&opts.backend, "backend", config.BackendCommand, "archive backend: command or api")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", deps.DefaultWorkers, "concurrent lookups")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached lookups")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the lookup cache")
	cmd.Flags().BoolVar(&opts.noExperimental, "no-experimental", false, "do not look for unsatisfied gems in experimental")
	cmd.Flags().BoolVar(&opts.save, "save", false, "save the run to the run store")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse the results interactively")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the status table")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	_ = cmd.RegisterFlagCompletionFunc("seed", completeStatusFiles)

	return cmd
}

func (c *CLI) runCheck(cmd *cobra.Command, manifest string, opts *checkOptions) error {
	ctx := cmd.Context()
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if err := opts.apply(cmd, cfg); err != nil {
		return err
	}
	formats, err := pipeline.ParseFormats(opts.formats)
	if err != nil {
		return err
	}

	runner, backend, err := c.newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	var spinner *Spinner
	if c.Logger.GetLevel() > LogDebug {
		spinner = newSpinner(ctx, os.Stderr, "Resolving "+manifest)
		spinner.Start()
	}
	res, checkErr := runner.Check(ctx, pipeline.Options{
		Manifest: manifest,
		App:      opts.app,
		Groups:   opts.groups,
		Seed:     opts.seed,
		Refresh:  opts.refresh,
		Progress: func(done, total int, rec *deps.Record) {
			if spinner != nil {
				spinner.SetMessage(fmt.Sprintf("Resolving %d/%d %s", done, total, rec.Name))
			}
		},
	})
	if spinner != nil {
		switch {
		case checkErr == nil:
			spinner.StopWithSuccess(fmt.Sprintf("Resolved %d gems", res.Set.Len()))
		case spinner.Cancelled():
			spinner.Stop()
		default:
			spinner.StopWithError(errs.UserMessage(checkErr))
		}
	}
	if res == nil {
		return checkErr
	}
	if checkErr != nil {
		printWarning("Interrupted after %d gems, writing partial results", res.Set.Len())
	}

	// Partial results are still written after an interrupt.
	writeCtx := context.WithoutCancel(ctx)
	prog := newProgress(c.Logger)
	paths, err := runner.Write(writeCtx, res, cfg.OutputDir, formats)
	if err != nil {
		return errors.Join(checkErr, err)
	}
	c.Logger.Debug("wrote outputs", "files", len(paths), "duration", prog.elapsed())

	printSuccess("Checked %s", StyleValue.Render(res.App))
	printSummary(res.Summary)
	printRunStats(res.Set.Len(), len(res.Edges), res.Duration)
	for _, p := range paths {
		printFile(p)
	}

	if opts.save {
		id, err := c.saveRun(writeCtx, cfg, res)
		if err != nil {
			return errors.Join(checkErr, err)
		}
		printDetail("Saved run %s", id)
		printNextStep("Show it again", appName+" runs show "+id)
	}

	switch {
	case opts.interactive && checkErr == nil:
		if err := browseRecords(ctx, res.App, res.Set.Records()); err != nil {
			return err
		}
	case !opts.quiet:
		if err := writeStatusTable(cmd.OutOrStdout(), res.Set); err != nil {
			return err
		}
	}
	return checkErr
}

func (c *CLI) saveRun(ctx context.Context, cfg *config.Config, res *pipeline.Result) (string, error) {
	st, err := pipeline.OpenStore(ctx, cfg)
	if err != nil {
		return "", err
	}
	defer st.Close()
	run := store.NewRun(res.App, res.Manifest, res.Result)
	if err := st.Save(ctx, run); err != nil {
		return "", err
	}
	return run.ID, nil
}

func writeStatusTable(w io.Writer, set *deps.WorkingSet) error {
	if set.Len() == 0 {
		_, err := fmt.Fprintln(w, "no gems")
		return err
	}
	return report.WriteTable(w, set)
}

// browseRecords runs the interactive record browser.
func browseRecords(ctx context.Context, app string, records []*deps.Record) error {
	p := tea.NewProgram(NewRecordListModel(app, records), tea.WithContext(ctx), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
