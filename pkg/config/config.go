// Package config resolves settings from flags, environment, an optional
// .env file and an optional csv-dwh.yaml file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "CSVDWH"
	FileName  = "csv-dwh"

	DefaultDatabase    = "datos/reto_sql.duckdb"
	DefaultDataDir     = "datos"
	DefaultSQLDir      = "modelo_dimensional"
	DefaultPort        = 8001
	DefaultPreviewRows = 5
)

// ErrInvalidConfig marks configuration problems so the CLI can map them to an exit code.
var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Database    string `mapstructure:"database"`
	DataDir     string `mapstructure:"data_dir"`
	SQLDir      string `mapstructure:"sql_dir"`
	CatalogURL  string `mapstructure:"catalog_url"`
	Port        int    `mapstructure:"port"`
	Verbose     bool   `mapstructure:"verbose"`
	Replace     bool   `mapstructure:"replace"`
	PreviewRows int    `mapstructure:"preview_rows"`
}

// New returns a viper instance with defaults and environment bindings.
// DATABASE_URL and PORT are honoured alongside the prefixed variables.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("database", DefaultDatabase)
	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("sql_dir", DefaultSQLDir)
	v.SetDefault("catalog_url", "")
	v.SetDefault("port", DefaultPort)
	v.SetDefault("verbose", false)
	v.SetDefault("replace", false)
	v.SetDefault("preview_rows", DefaultPreviewRows)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("catalog_url", EnvPrefix+"_CATALOG_URL", "DATABASE_URL")
	_ = v.BindEnv("port", EnvPrefix+"_PORT", "PORT")

	return v
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: failed to load %s: %v", ErrInvalidConfig, path, err)
	}
	return nil
}

// Load reads configFile, or csv-dwh.yaml from the working directory when
// configFile is empty, and decodes the merged settings.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("%w: failed to read config: %v", ErrInvalidConfig, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: failed to decode config: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return fmt.Errorf("%w: database path must not be empty", ErrInvalidConfig)
	}
	if c.PreviewRows < 0 {
		return fmt.Errorf("%w: preview_rows must not be negative", ErrInvalidConfig)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	return nil
}
