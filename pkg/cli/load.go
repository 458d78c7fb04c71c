package cli

import (
	"github.com/JayJamieson/csv-dwh/pkg/config"
	"github.com/JayJamieson/csv-dwh/pkg/loader"
	"github.com/spf13/cobra"
)

func newLoadCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Convert every CSV in the data directory to UTF-8 and load it as a table",
		Long: `load detects the encoding of each *.csv file in the data directory,
rewrites the file in place as UTF-8 with a byte-order mark, and creates one
table per file named after the file without its extension. Column names come
from the header row and types are inferred by DuckDB.

A file that fails to convert or load is reported and skipped; the remaining
files are still processed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLoad(cmd)
		},
	}

	cmd.Flags().String("data-dir", config.DefaultDataDir, "Directory containing the CSV files")
	cmd.Flags().Bool("replace", false, "Replace tables that already exist")
	cmd.Flags().Int("preview", config.DefaultPreviewRows, "Lines and rows to preview per file (0 disables)")

	a.bindFlags(cmd, map[string]string{
		"data_dir":     "data-dir",
		"replace":      "replace",
		"preview_rows": "preview",
	})
	return cmd
}

func (a *app) runLoad(cmd *cobra.Command) error {
	database, err := a.openDatabase()
	if err != nil {
		return err
	}
	defer closeWith(a.logger, "database", database)

	cat := a.optionalCatalog()
	if cat != nil {
		defer closeWith(a.logger, "catalog", cat)
	}

	l := loader.New(database, recorderFor(cat), a.logger, loader.Options{
		Replace:     a.cfg.Replace,
		PreviewRows: a.cfg.PreviewRows,
	})

	summary, err := l.Run(commandContext(cmd), a.cfg.DataDir)
	if err != nil {
		return err
	}

	a.logger.Infof("tables created in %s: %d loaded, %d failed (run %s)",
		database.Path(), summary.Loaded(), summary.Failed(), summary.RunID)
	return nil
}
