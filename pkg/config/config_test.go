package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultDatabase, cfg.Database)
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, DefaultSQLDir, cfg.SQLDir)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultPreviewRows, cfg.PreviewRows)
	assert.Empty(t, cfg.CatalogURL)
	assert.False(t, cfg.Replace)
}

func TestLoad_YAMLFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "csv-dwh.yaml"), []byte(
		"database: otra.duckdb\ndata_dir: csv\npreview_rows: 2\nreplace: true\n"), 0644))

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "otra.duckdb", cfg.Database)
	assert.Equal(t, "csv", cfg.DataDir)
	assert.Equal(t, 2, cfg.PreviewRows)
	assert.True(t, cfg.Replace)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "csv-dwh.yaml"), []byte("database: archivo.duckdb\n"), 0644))
	t.Setenv("CSVDWH_DATABASE", "env.duckdb")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "env.duckdb", cfg.Database)
}

func TestLoad_LegacyEnvNames(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "file:catalog.db")
	t.Setenv("PORT", "9090")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "file:catalog.db", cfg.CatalogURL)
	assert.Equal(t, 9090, cfg.Port)
}

func TestLoad_PrefixedEnvWinsOverLegacy(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "file:legacy.db")
	t.Setenv("CSVDWH_CATALOG_URL", "file:prefixed.db")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "file:prefixed.db", cfg.CatalogURL)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("CSVDWH_TEST_DOTENV=from-file\n"), 0644))
	t.Setenv("CSVDWH_TEST_DOTENV", "")
	os.Unsetenv("CSVDWH_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("CSVDWH_TEST_DOTENV"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestValidate(t *testing.T) {
	valid := Config{Database: "x.duckdb", Port: 8001}
	assert.NoError(t, valid.Validate())

	tests := map[string]Config{
		"empty database":   {Database: " "},
		"negative preview": {Database: "x", PreviewRows: -1},
		"port range":       {Database: "x", Port: 70000},
	}
	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
