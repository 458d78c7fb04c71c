package cli

import (
	"github.com/JayJamieson/csv-dwh/pkg/config"
	"github.com/JayJamieson/csv-dwh/pkg/modeler"
	"github.com/JayJamieson/csv-dwh/pkg/models"
	"github.com/spf13/cobra"
)

func newModelCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Build the dimensional model from the SQL scripts",
		Long: `model executes the dimensional model scripts from the SQL directory in a
fixed order, dimensions first:

  dim_suscripciones.sql
  dim_cuentas.sql
  dim_contenidos.sql
  dim_tiempo_dia.sql
  fact_creacion_contenido.sql
  fact_cuentas_suscripcion.sql

Each file is executed as one batch. Missing files are skipped, failing files
are reported, and nothing is rolled back.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runModel(cmd)
		},
	}

	cmd.Flags().String("sql-dir", config.DefaultSQLDir, "Directory containing the model SQL files")
	a.bindFlags(cmd, map[string]string{"sql_dir": "sql-dir"})
	return cmd
}

func (a *app) runModel(cmd *cobra.Command) error {
	database, err := a.openDatabase()
	if err != nil {
		return err
	}
	defer closeWith(a.logger, "database", database)

	cat := a.optionalCatalog()
	if cat != nil {
		defer closeWith(a.logger, "catalog", cat)
	}

	summary, err := modeler.New(database, a.cfg.SQLDir, recorderFor(cat), a.logger).Run(commandContext(cmd))
	if err != nil {
		return err
	}

	a.logger.Infof("execution complete: %d executed, %d failed, %d skipped (run %s)",
		summary.Count(models.StatusOK), summary.Count(models.StatusFailed),
		summary.Count(models.StatusSkipped), summary.RunID)
	return nil
}
