package cli

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/debgems/pkg/pipeline"
	"github.com/matzehuels/debgems/pkg/report"
	"github.com/matzehuels/debgems/pkg/store"
)

// runsCommand creates the runs command.
func (c *CLI) runsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Manage saved runs",
	}

	cmd.AddCommand(c.runsListCommand())
	cmd.AddCommand(c.runsShowCommand())
	cmd.AddCommand(c.runsDeleteCommand())

	return cmd
}

// withStore opens the configured run store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	st, err := pipeline.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func (c *CLI) runsListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				runs, err := st.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					printInfo("No saved runs")
					return nil
				}
				out := cmd.OutOrStdout()
				for _, r := range runs {
					fmt.Fprintf(out, "%s  %-20s  %3d%%  %4d gems  %s\n",
						r.ID, r.App, r.Summary.Percent, r.Summary.Total, formatRelativeTime(r.CreatedAt))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs (0 for all)")

	return cmd
}

func (c *CLI) runsShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show [ID]",
		Short: "Show a saved run",
		Long: `Show prints a saved run as a status table, or in one of the output formats.
Without an ID, the run is picked interactively.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, func(st store.Store) error {
				var id string
				if len(args) == 1 {
					id = args[0]
				} else {
					picked, err := pickRun(ctx, st)
					if err != nil || picked == "" {
						return err
					}
					id = picked
				}
				if err := store.ValidateID(id); err != nil {
					return err
				}
				run, err := st.Get(ctx, id)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if format == "" {
					printKeyValue("Run", run.ID)
					printKeyValue("App", run.App)
					printKeyValue("Manifest", run.Manifest)
					printKeyValue("Created", run.CreatedAt.Local().Format(time.DateTime))
					printKeyValue("Status", report.SummaryLine(run.Summary))
					return writeStatusTable(out, run.Result().Set)
				}

				res := &pipeline.Result{Result: run.Result(), App: run.App, Manifest: run.Manifest, Summary: run.Summary}
				data, err := pipeline.NewRunner(nil, nil, c.Logger).Render(ctx, res, format)
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "print in an output format (json,dot,svg,html,edges,txt) instead of a table")

	return cmd
}

func (c *CLI) runsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete saved runs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range args {
				if err := store.ValidateID(id); err != nil {
					return err
				}
			}
			return c.withStore(cmd.Context(), func(st store.Store) error {
				for _, id := range args {
					if err := st.Delete(cmd.Context(), id); err != nil {
						return err
					}
				}
				printSuccess("Deleted %d runs", len(args))
				return nil
			})
		},
	}
}

// pickRun lets the user choose a run. An empty ID means nothing was picked.
func pickRun(ctx context.Context, st store.Store) (string, error) {
	runs, err := st.List(ctx, 0)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		printInfo("No saved runs")
		return "", nil
	}
	final, err := tea.NewProgram(NewRunListModel(runs), tea.WithContext(ctx)).Run()
	if err != nil {
		return "", err
	}
	if m, ok := final.(RunListModel); ok && m.Selected != nil {
		return m.Selected.ID, nil
	}
	return "", nil
}
