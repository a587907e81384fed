package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_YAMLWithDefaults(t *testing.T) {
	path := writeFile(t, "cfg.yaml", `
catalog:
  name: pharma
forecast:
  horizon_weeks: 4
emails:
  embedder: hashing
  dimensions: 64
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "pharma", cfg.Catalog.Name)
	assert.Equal(t, "supply_chain_db", cfg.Catalog.Database)
	assert.Equal(t, 4, cfg.Forecast.HorizonWeeks)
	assert.Equal(t, 52, cfg.Forecast.SeasonLength)
	assert.Equal(t, 64, cfg.Emails.Dimensions)
	assert.Equal(t, 500, cfg.Emails.Count)
	assert.Equal(t, filepath.Join("data", "pharma.supply_chain_db.db"), cfg.DatabaseFile())
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "cfg.json", `{"transport": {"workers": 2}, "server": {"addr": ":9090"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Transport.Workers)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeFile(t, "cfg.yaml", "forecast:\n  horizon_weeks: 2\n")
	t.Setenv("SC_FORECAST__HORIZON_WEEKS", "6")
	t.Setenv("SC_LOGGING__LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Forecast.HorizonWeeks)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "main", cfg.Catalog.Name)
	assert.Equal(t, "hashing", cfg.Emails.Embedder)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "cfg.toml", "x = 1"))
	assert.ErrorContains(t, err, "unsupported config format")

	_, err = Load(writeFile(t, "cfg.yaml", "emails:\n  embedder: word2vec\n"))
	assert.ErrorContains(t, err, "emails: unknown embedder word2vec")

	_, err = Load(writeFile(t, "cfg.yaml", "logging:\n  format: xml\n"))
	assert.ErrorContains(t, err, "logging: unknown format xml")
}

func TestGeneratorConfig_Validate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	gen := cfg.Generator
	gen.MaxWholesalers = gen.MinWholesalers - 1
	assert.Error(t, gen.Validate())

	gen = cfg.Generator
	gen.StartDate = "28/11/2022"
	assert.Error(t, gen.Validate())

	start, err := cfg.Generator.Start()
	require.NoError(t, err)
	assert.Equal(t, 2022, start.Year())
}
