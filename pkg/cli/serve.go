package cli

import (
	"github.com/JayJamieson/csv-dwh/pkg/api"
	"github.com/JayJamieson/csv-dwh/pkg/config"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Browse loaded tables and recorded runs over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe()
		},
	}

	cmd.Flags().Int("port", config.DefaultPort, "Server port")
	a.bindFlags(cmd, map[string]string{"port": "port"})
	return cmd
}

func (a *app) runServe() error {
	database, err := a.openDatabase()
	if err != nil {
		return err
	}
	defer closeWith(a.logger, "database", database)

	var runs api.RunReader
	if cat := a.optionalCatalog(); cat != nil {
		defer closeWith(a.logger, "catalog", cat)
		runs = cat
	}

	server, err := api.New(api.Config{Port: a.cfg.Port}, database, runs, a.logger)
	if err != nil {
		return err
	}

	a.logger.Infof("serving %s on :%d", database.Path(), a.cfg.Port)
	return server.Start()
}
