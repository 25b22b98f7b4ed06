package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	enrichmentAPIKeyEnv = "ENRICHMENT_API_KEY"
	storeURIEnv         = "STORE_URI"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Scraper    ScraperConfig    `yaml:"scraper"`
	Browser    BrowserConfig    `yaml:"browser"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Store      StoreConfig      `yaml:"store"`
	IO         IOConfig         `yaml:"io"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ScraperConfig holds the static fetch path configuration.
type ScraperConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	UserAgents []string      `yaml:"user_agents,omitempty"`
	// MinBodyChars is the visible-text length below which a static fetch
	// is considered JS-rendered and escalated to the browser.
	MinBodyChars int `yaml:"min_body_chars"`
}

// BrowserConfig holds the headless browser fallback configuration.
type BrowserConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Headless       bool          `yaml:"headless"`
	PoolSize       int           `yaml:"pool_size"`
	Timeout        time.Duration `yaml:"timeout"`
	SettleDelay    time.Duration `yaml:"settle_delay"`
	AcquireTimeout time.Duration `yaml:"acquire_timeout"`
	UserAgent      string        `yaml:"user_agent"`
}

// PipelineConfig holds orchestration limits and content thresholds.
type PipelineConfig struct {
	Workers          int           `yaml:"workers"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	RecencyWindow    time.Duration `yaml:"recency_window"`
	MinContentLength int           `yaml:"min_content_length"`
	MaxListingLinks  int           `yaml:"max_listing_links"`
}

// EnrichmentConfig describes the external inference service.
type EnrichmentConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
	Slots    int           `yaml:"slots"`
}

// StoreConfig describes the article store used for deduplication.
type StoreConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// IOConfig holds the input/output configuration.
type IOConfig struct {
	InputFile  string `yaml:"input_file"`
	OutputFile string `yaml:"output_file"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads the configuration from a YAML file and applies environment
// overrides on top of it.
func Load(filename string) (*AppConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config := CreateDefault()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	config.applyEnvOverrides()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// CreateDefault creates a configuration with the documented defaults.
func CreateDefault() *AppConfig {
	return &AppConfig{
		Scraper: ScraperConfig{
			Timeout:      15 * time.Second,
			MaxRetries:   2,
			RetryDelay:   2 * time.Second,
			UserAgents:   DefaultUserAgents,
			MinBodyChars: 250,
		},
		Browser: BrowserConfig{
			Enabled:        true,
			Headless:       true,
			PoolSize:       2,
			Timeout:        30 * time.Second,
			SettleDelay:    2 * time.Second,
			AcquireTimeout: 10 * time.Second,
			UserAgent:      DefaultUserAgents[0],
		},
		Pipeline: PipelineConfig{
			Workers:          8,
			RequestTimeout:   5 * time.Minute,
			RecencyWindow:    180 * 24 * time.Hour,
			MinContentLength: 200,
			MaxListingLinks:  10,
		},
		Enrichment: EnrichmentConfig{
			Endpoint: "http://localhost:8500",
			Timeout:  20 * time.Second,
			Slots:    4,
		},
		Store: StoreConfig{
			URI:        "",
			Database:   "scraper_db",
			Collection: "articles",
		},
		IO: IOConfig{
			OutputFile: "results.json",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c *AppConfig) Validate() error {
	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("pipeline.workers must be at least 1, got %d", c.Pipeline.Workers)
	}
	if c.Pipeline.MaxListingLinks < 1 {
		return fmt.Errorf("pipeline.max_listing_links must be at least 1, got %d", c.Pipeline.MaxListingLinks)
	}
	if c.Pipeline.MinContentLength < 1 {
		return fmt.Errorf("pipeline.min_content_length must be at least 1, got %d", c.Pipeline.MinContentLength)
	}
	if c.Browser.Enabled && c.Browser.PoolSize < 1 {
		return fmt.Errorf("browser.pool_size must be at least 1 when the browser is enabled, got %d", c.Browser.PoolSize)
	}
	if c.Enrichment.Slots < 1 {
		return fmt.Errorf("enrichment.slots must be at least 1, got %d", c.Enrichment.Slots)
	}
	return nil
}

func (c *AppConfig) applyEnvOverrides() {
	if v := os.Getenv(enrichmentAPIKeyEnv); v != "" {
		c.Enrichment.APIKey = v
	}
	if v := os.Getenv(storeURIEnv); v != "" {
		c.Store.URI = v
	}
	if len(c.Scraper.UserAgents) == 0 {
		c.Scraper.UserAgents = DefaultUserAgents
	}
}
