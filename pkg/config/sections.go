package config

import (
	"fmt"
	"regexp"
	"time"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// CatalogConfig names the catalog and database holding the managed tables.
type CatalogConfig struct {
	Name     string `json:"name"`
	Database string `json:"database"`
}

func (c *CatalogConfig) SetDefaults() {
	if c.Name == "" {
		c.Name = "main"
	}
	if c.Database == "" {
		c.Database = "supply_chain_db"
	}
}

func (c CatalogConfig) Validate() error {
	if !identifierRe.MatchString(c.Name) {
		return fmt.Errorf("invalid catalog name %q", c.Name)
	}
	if !identifierRe.MatchString(c.Database) {
		return fmt.Errorf("invalid database name %q", c.Database)
	}
	return nil
}

// StorageConfig locates the database files.
type StorageConfig struct {
	Dir string `json:"dir"`
}

func (c *StorageConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "data"
	}
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level"`
	// Format is json, console or auto.
	Format string `json:"format"`
}

func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "auto"
	}
}

func (c LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %s", c.Level)
	}
	switch c.Format {
	case "json", "console", "auto":
	default:
		return fmt.Errorf("unknown format %s", c.Format)
	}
	return nil
}

// GeneratorConfig sizes the synthetic supply network.
type GeneratorConfig struct {
	Seed                uint64 `json:"seed"`
	Plants              int    `json:"plants"`
	Products            int    `json:"products"`
	DistributionCenters int    `json:"distribution_centers"`
	MinWholesalers      int    `json:"min_wholesalers"`
	MaxWholesalers      int    `json:"max_wholesalers"`
	Weeks               int    `json:"weeks"`
	StartDate           string `json:"start_date"`
}

func (c *GeneratorConfig) SetDefaults() {
	if c.Seed == 0 {
		c.Seed = 123
	}
	if c.Plants == 0 {
		c.Plants = 3
	}
	if c.Products == 0 {
		c.Products = 30
	}
	if c.DistributionCenters == 0 {
		c.DistributionCenters = 5
	}
	if c.MinWholesalers == 0 {
		c.MinWholesalers = 30
	}
	if c.MaxWholesalers == 0 {
		c.MaxWholesalers = 60
	}
	if c.Weeks == 0 {
		c.Weeks = 104
	}
	if c.StartDate == "" {
		c.StartDate = "2022-11-28"
	}
}

func (c GeneratorConfig) Validate() error {
	if c.Plants <= 0 || c.Products <= 0 || c.DistributionCenters <= 0 {
		return fmt.Errorf("plants, products and distribution_centers must be positive")
	}
	if c.MinWholesalers <= 0 || c.MaxWholesalers < c.MinWholesalers {
		return fmt.Errorf("wholesaler range [%d, %d] is invalid", c.MinWholesalers, c.MaxWholesalers)
	}
	if c.Weeks < 1 {
		return fmt.Errorf("weeks must be positive, got %d", c.Weeks)
	}
	if _, err := c.Start(); err != nil {
		return err
	}
	return nil
}

// Start parses StartDate.
func (c GeneratorConfig) Start() (time.Time, error) {
	t, err := time.Parse("2006-01-02", c.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start_date %q: %w", c.StartDate, err)
	}
	return t, nil
}

// ForecastConfig controls demand forecasting.
type ForecastConfig struct {
	HorizonWeeks int `json:"horizon_weeks"`
	SeasonLength int `json:"season_length"`
	Workers      int `json:"workers"`
}

func (c *ForecastConfig) SetDefaults() {
	if c.HorizonWeeks == 0 {
		c.HorizonWeeks = 1
	}
	if c.SeasonLength == 0 {
		c.SeasonLength = 52
	}
	if c.Workers == 0 {
		c.Workers = 8
	}
}

func (c ForecastConfig) Validate() error {
	if c.HorizonWeeks < 1 {
		return fmt.Errorf("horizon_weeks must be positive, got %d", c.HorizonWeeks)
	}
	if c.SeasonLength < 2 {
		return fmt.Errorf("season_length must be at least 2, got %d", c.SeasonLength)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	return nil
}

// TransportConfig controls the per product LP solves.
type TransportConfig struct {
	Workers   int     `json:"workers"`
	Tolerance float64 `json:"tolerance"`
}

func (c *TransportConfig) SetDefaults() {
	if c.Workers == 0 {
		c.Workers = 8
	}
	if c.Tolerance == 0 {
		c.Tolerance = 1e-7
	}
}

func (c TransportConfig) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %g", c.Tolerance)
	}
	return nil
}

// EmailsConfig controls email generation and the vector index.
type EmailsConfig struct {
	Count int    `json:"count"`
	Seed  uint64 `json:"seed"`
	// Embedder is "hashing" or "ollama".
	Embedder   string `json:"embedder"`
	Dimensions int    `json:"dimensions"`
	TopK       int    `json:"top_k"`
}

func (c *EmailsConfig) SetDefaults() {
	if c.Count == 0 {
		c.Count = 500
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	if c.Embedder == "" {
		c.Embedder = "hashing"
	}
	if c.Dimensions == 0 {
		c.Dimensions = 256
	}
	if c.TopK == 0 {
		c.TopK = 5
	}
}

func (c EmailsConfig) Validate() error {
	if c.Embedder != "hashing" && c.Embedder != "ollama" {
		return fmt.Errorf("unknown embedder %s", c.Embedder)
	}
	if c.Count < 0 {
		return fmt.Errorf("count cannot be negative, got %d", c.Count)
	}
	if c.Dimensions < 8 {
		return fmt.Errorf("dimensions must be at least 8, got %d", c.Dimensions)
	}
	return nil
}

// LLMConfig points at an Ollama compatible endpoint.
type LLMConfig struct {
	Enabled        bool   `json:"enabled"`
	Endpoint       string `json:"endpoint"`
	Model          string `json:"model"`
	EmbeddingModel string `json:"embedding_model"`
	TimeoutMs      int    `json:"timeout_ms"`
	MaxRetries     int    `json:"max_retries"`
}

func (c *LLMConfig) SetDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "http://localhost:11434"
	}
	if c.Model == "" {
		c.Model = "llama3.2"
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = "nomic-embed-text"
	}
	if c.TimeoutMs == 0 {
		c.TimeoutMs = 10000
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 1
	}
}

func (c LLMConfig) Validate() error {
	if c.TimeoutMs < 0 || c.MaxRetries < 0 {
		return fmt.Errorf("timeout_ms and max_retries cannot be negative")
	}
	return nil
}

// Timeout returns TimeoutMs as a duration.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// ServerConfig configures the query function HTTP server.
type ServerConfig struct {
	Addr string `json:"addr"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

func (c *MetricsConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "/metrics"
	}
}

func (c MetricsConfig) Validate() error {
	if c.Path == "" || c.Path[0] != '/' {
		return fmt.Errorf("path must start with /, got %q", c.Path)
	}
	return nil
}
