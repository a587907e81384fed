package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultPath is the config file looked up when no --config flag is given.
// It may be absent.
const DefaultPath = "supplychain.yaml"

// EnvPrefix prefixes environment overrides, e.g. SC_FORECAST__HORIZON_WEEKS=2.
const EnvPrefix = "SC_"

type Config struct {
	Catalog   CatalogConfig   `json:"catalog"`
	Storage   StorageConfig   `json:"storage"`
	Logging   LoggingConfig   `json:"logging"`
	Generator GeneratorConfig `json:"generator"`
	Forecast  ForecastConfig  `json:"forecast"`
	Transport TransportConfig `json:"transport"`
	Emails    EmailsConfig    `json:"emails"`
	LLM       LLMConfig       `json:"llm"`
	Server    ServerConfig    `json:"server"`
	Metrics   MetricsConfig   `json:"metrics"`
}

// Load reads the config file at path, applies SC_ environment overrides,
// fills defaults and validates every section. A missing file at DefaultPath
// is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	k := koanf.New(".")

	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		if !(path == DefaultPath && errors.Is(err, fs.ErrNotExist)) {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	c.Catalog.SetDefaults()
	c.Storage.SetDefaults()
	c.Logging.SetDefaults()
	c.Generator.SetDefaults()
	c.Forecast.SetDefaults()
	c.Transport.SetDefaults()
	c.Emails.SetDefaults()
	c.LLM.SetDefaults()
	c.Server.SetDefaults()
	c.Metrics.SetDefaults()
}

// Validate checks every section and prefixes errors with the section name.
func (c Config) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"catalog", c.Catalog.Validate},
		{"logging", c.Logging.Validate},
		{"generator", c.Generator.Validate},
		{"forecast", c.Forecast.Validate},
		{"transport", c.Transport.Validate},
		{"emails", c.Emails.Validate},
		{"llm", c.LLM.Validate},
		{"metrics", c.Metrics.Validate},
	}
	for _, check := range checks {
		if err := check.fn(); err != nil {
			return fmt.Errorf("%s: %w", check.name, err)
		}
	}
	return nil
}

// DatabaseFile is the SQLite file holding the catalog's managed tables.
func (c Config) DatabaseFile() string {
	return filepath.Join(c.Storage.Dir, fmt.Sprintf("%s.%s.db", c.Catalog.Name, c.Catalog.Database))
}
