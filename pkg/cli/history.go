package cli

import (
	"fmt"
	"strconv"

	"github.com/JayJamieson/csv-dwh/pkg/config"
	"github.com/JayJamieson/csv-dwh/pkg/render"
	"github.com/spf13/cobra"
)

const timeFormat = "2006-01-02 15:04:05"

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded runs, or the per-file outcome of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return a.runHistoryEvents(cmd, args[0])
			}
			return a.runHistory(cmd)
		},
	}

	cmd.Flags().Int("limit", 20, "Number of runs to show")
	return cmd
}

func (a *app) requireCatalog() error {
	if a.cfg.CatalogURL == "" {
		return fmt.Errorf("%w: history needs a run catalog (--catalog or %s_CATALOG_URL)",
			config.ErrInvalidConfig, config.EnvPrefix)
	}
	return nil
}

func (a *app) runHistory(cmd *cobra.Command) error {
	if err := a.requireCatalog(); err != nil {
		return err
	}
	cat, err := a.openCatalog()
	if err != nil {
		return err
	}
	defer closeWith(a.logger, "catalog", cat)

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := cat.RecentRuns(commandContext(cmd), limit)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		finished := "-"
		if run.FinishedAt != nil {
			finished = run.FinishedAt.Local().Format(timeFormat)
		}
		rows = append(rows, []string{run.ID, run.Kind, run.StartedAt.Local().Format(timeFormat), finished})
	}

	fmt.Fprintln(cmd.OutOrStdout(), render.Table([]string{"run", "kind", "started", "finished"}, rows))
	return nil
}

func (a *app) runHistoryEvents(cmd *cobra.Command, runID string) error {
	if err := a.requireCatalog(); err != nil {
		return err
	}
	cat, err := a.openCatalog()
	if err != nil {
		return err
	}
	defer closeWith(a.logger, "catalog", cat)

	ctx := commandContext(cmd)
	run, err := cat.GetRun(ctx, runID)
	if err != nil {
		return err
	}

	events, err := cat.Events(ctx, runID)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			strconv.Itoa(e.Seq), e.Subject, e.Target, string(e.Status), strconv.FormatInt(e.Rows, 10), e.Detail,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s run %s started %s\n", run.Kind, run.ID, run.StartedAt.Local().Format(timeFormat))
	fmt.Fprintln(out, render.Table([]string{"#", "file", "table", "status", "rows", "detail"}, rows))
	return nil
}
