package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/JayJamieson/csv-dwh/pkg/catalog"
	"github.com/JayJamieson/csv-dwh/pkg/config"
	"github.com/JayJamieson/csv-dwh/pkg/db"
	"github.com/JayJamieson/csv-dwh/pkg/logging"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes returned by the csv-dwh binary.
const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitUsageError    = 2
	ExitPanic         = 3
	ExitConfigError   = 10
	ExitDatabaseError = 11
)

var (
	// ErrUsage indicates invalid arguments or flags.
	ErrUsage = errors.New("usage error")

	// ErrDatabase indicates the DuckDB database could not be opened.
	ErrDatabase = errors.New("database unavailable")
)

// ExitCodeForError maps an error returned by Execute to a process exit code.
func ExitCodeForError(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrUsage):
		return ExitUsageError
	case errors.Is(err, config.ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrDatabase):
		return ExitDatabaseError
	}
	return ExitGeneralError
}

// app carries the state shared by every subcommand of one invocation.
type app struct {
	v      *viper.Viper
	cfg    config.Config
	logger *log.Logger
}

// NewRootCmd builds the csv-dwh command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	rootCmd := &cobra.Command{
		Use:   "csv-dwh",
		Short: "Load CSV exports into DuckDB and build a dimensional model on top",
		Long: `csv-dwh normalizes a directory of CSV files to UTF-8, loads each file into
its own DuckDB table, and then runs a fixed sequence of SQL scripts that build
the dimension and fact tables.

Typical use:
  csv-dwh load  --data-dir datos
  csv-dwh model --sql-dir modelo_dimensional

Exit Codes:
  0  - Success (individual files may still have failed; see the log)
  1  - General error
  2  - CLI usage error
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Database could not be opened`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a config file (default ./csv-dwh.yaml)")
	flags.String("database", config.DefaultDatabase, "DuckDB database file")
	flags.String("catalog", "", "Run catalog URL (file:catalog.db, libsql://...); empty disables it")
	flags.BoolP("verbose", "v", false, "Enable verbose output")

	_ = a.v.BindPFlag("database", flags.Lookup("database"))
	_ = a.v.BindPFlag("catalog_url", flags.Lookup("catalog"))
	_ = a.v.BindPFlag("verbose", flags.Lookup("verbose"))

	rootCmd.AddCommand(
		newLoadCmd(a),
		newModelCmd(a),
		newServeCmd(a),
		newHistoryCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the command tree against os.Args.
func Execute() error {
	rootCmd := NewRootCmd()
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func (a *app) setup(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(a.v, configFile)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logging.New(cmd.OutOrStdout(), cfg.Verbose)
	return nil
}

// bindFlags ties subcommand flags to config keys.
func (a *app) bindFlags(cmd *cobra.Command, keys map[string]string) {
	for key, flag := range keys {
		_ = a.v.BindPFlag(key, cmd.Flags().Lookup(flag))
	}
}

// openDatabase opens the DuckDB file, creating its directory if needed.
func (a *app) openDatabase() (*db.DB, error) {
	if dir := filepath.Dir(a.cfg.Database); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: failed to create database directory: %v", ErrDatabase, err)
		}
	}

	database, err := db.Open(a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	a.logger.Debugf("opened database %s", database.Path())
	return database, nil
}

// openCatalog returns a nil catalog and no error when none is configured.
func (a *app) openCatalog() (*catalog.Catalog, error) {
	if a.cfg.CatalogURL == "" {
		return nil, nil
	}

	c, err := catalog.Open(a.cfg.CatalogURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open run catalog %s: %w", a.cfg.CatalogURL, err)
	}
	return c, nil
}

// optionalCatalog is openCatalog for the jobs, which run without recording
// when the catalog cannot be opened.
func (a *app) optionalCatalog() *catalog.Catalog {
	c, err := a.openCatalog()
	if err != nil {
		a.logger.Warnf("run catalog disabled: %v", err)
		return nil
	}
	return c
}

func closeWith(logger *log.Logger, name string, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Errorf("error closing %s: %v", name, err)
	}
}

func recorderFor(c *catalog.Catalog) catalog.Recorder {
	if c == nil {
		return catalog.Discard
	}
	return c
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
