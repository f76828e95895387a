// Package config provides configuration management for the key pipeline.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"teakeys/internal/models"
)

// Configuration validation errors.
var (
	ErrNoSources                = errors.New("at least one source is required")
	ErrSourceMissingURLOrFile   = errors.New("either url or file is required")
	ErrSourceBothURLAndFile     = errors.New("url and file are mutually exclusive")
	ErrNoEnabledSources         = errors.New("at least one source must be enabled")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("retry.timeout_sec must be at least 1")
	ErrInvalidRate              = errors.New("fetch.requests_per_second must be non-negative")
	ErrInvalidBufferSize        = errors.New("fetch.buffer_size_kb must be at least 1")
	ErrInvalidExtractIndex      = errors.New("extract.header_rows, key_cell and value_cell must be non-negative")
	ErrEmptyRulePattern         = errors.New("normalize.rules pattern must not be empty")
	ErrMissingOutputPath        = errors.New("output.base_path is required")
	ErrMissingOutputDir         = errors.New("output.generated_dir, processed_dir and renamed_dir are required")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("logging.format must be 'text' or 'json'")
)

// Config represents the complete pipeline configuration.
type Config struct {
	Sources   []SourceConfig  `yaml:"sources" toml:"sources"`
	Retry     RetryPolicy     `yaml:"retry" toml:"retry"`
	Fetch     FetchConfig     `yaml:"fetch" toml:"fetch"`
	Extract   ExtractConfig   `yaml:"extract" toml:"extract"`
	Normalize NormalizeConfig `yaml:"normalize" toml:"normalize"`
	Output    OutputConfig    `yaml:"output" toml:"output"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

// SourceConfig represents one key reference page and, optionally, the dataset it describes.
type SourceConfig struct {
	Name       string   `yaml:"name" toml:"name"`
	URL        string   `yaml:"url" toml:"url"`
	File       string   `yaml:"file" toml:"file"`
	BackupURLs []string `yaml:"backup_urls" toml:"backup_urls"`
	// Dataset is a CSV whose columns are renamed with this source's mapping.
	Dataset string `yaml:"dataset" toml:"dataset"`
	// UseCleaned selects the normalized mapping for remapping instead of the raw one.
	UseCleaned bool `yaml:"use_cleaned" toml:"use_cleaned"`
	Enabled    bool `yaml:"enabled" toml:"enabled"`
}

// IsLocalFile returns true if this source uses a local file.
func (s SourceConfig) IsLocalFile() bool {
	return s.File != ""
}

// GetSource returns the file path if local, or URL if remote.
func (s SourceConfig) GetSource() string {
	if s.IsLocalFile() {
		return s.File
	}

	return s.URL
}

// GetAllURLs returns all URLs (primary + backups) for a source.
func (s SourceConfig) GetAllURLs() []string {
	urls := []string{s.URL}
	urls = append(urls, s.BackupURLs...)

	return urls
}

// DisplayName returns the name, falling back to the locator.
func (s SourceConfig) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}

	return s.GetSource()
}

// RetryPolicy defines retry behavior for remote fetches.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts" toml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms" toml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms" toml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier" toml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec" toml:"timeout_sec"`
}

// FetchConfig controls HTTP requests.
type FetchConfig struct {
	// RequestsPerSecond throttles requests; 0 disables throttling.
	RequestsPerSecond float64 `yaml:"requests_per_second" toml:"requests_per_second"`
	Burst             int     `yaml:"burst" toml:"burst"`
	BufferSizeKb      int     `yaml:"buffer_size_kb" toml:"buffer_size_kb"`
	UserAgent         string  `yaml:"user_agent" toml:"user_agent"`
}

// ExtractConfig selects the table rows and cells holding keys and descriptions.
type ExtractConfig struct {
	HeaderRows int `yaml:"header_rows" toml:"header_rows"`
	KeyCell    int `yaml:"key_cell" toml:"key_cell"`
	ValueCell  int `yaml:"value_cell" toml:"value_cell"`
}

// NormalizeConfig defines the description cleanup step.
type NormalizeConfig struct {
	Enabled     bool           `yaml:"enabled" toml:"enabled"`
	UseDefaults bool           `yaml:"use_defaults" toml:"use_defaults"`
	Rules       models.RuleSet `yaml:"rules" toml:"rules"`
}

// OutputConfig defines where artifacts are written.
type OutputConfig struct {
	BasePath     string `yaml:"base_path" toml:"base_path"`
	GeneratedDir string `yaml:"generated_dir" toml:"generated_dir"`
	ProcessedDir string `yaml:"processed_dir" toml:"processed_dir"`
	RenamedDir   string `yaml:"renamed_dir" toml:"renamed_dir"`
	CreateBackup bool   `yaml:"create_backup" toml:"create_backup"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns a complete configuration without sources.
func Default() *Config {
	return &Config{
		Retry: RetryPolicy{
			MaxAttempts:       3,
			InitialDelayMs:    500,
			MaxDelayMs:        30000,
			BackoffMultiplier: 2.0,
			TimeoutSec:        30,
		},
		Fetch: FetchConfig{
			RequestsPerSecond: 1,
			Burst:             1,
			BufferSizeKb:      4096,
			UserAgent:         "teakeys/1.0",
		},
		Extract: ExtractConfig{
			HeaderRows: 2,
			KeyCell:    0,
			ValueCell:  3,
		},
		Normalize: NormalizeConfig{
			Enabled:     true,
			UseDefaults: true,
		},
		Output: OutputConfig{
			BasePath:     "data",
			GeneratedDir: "Generated_Keys",
			ProcessedDir: "Processed_Keys",
			RenamedDir:   "Renamed_Data",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a YAML file, or TOML when the file has a
// .toml extension. Values missing from the file keep their Default() values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()

	if isTOML(path) {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to a YAML or TOML file, chosen by extension.
func (c *Config) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)

	if isTOML(path) {
		data, err = toml.Marshal(c)
	} else {
		data, err = yaml.Marshal(c)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Validate validates everything except the source list, which only the batch
// run needs; see ValidateSources.
func (c *Config) Validate() error {
	// Validate retry policy
	if c.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if c.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if c.Retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Fetch.RequestsPerSecond < 0 {
		return ErrInvalidRate
	}

	if c.Fetch.BufferSizeKb < 1 {
		return ErrInvalidBufferSize
	}

	if c.Extract.HeaderRows < 0 || c.Extract.KeyCell < 0 || c.Extract.ValueCell < 0 {
		return ErrInvalidExtractIndex
	}

	for i, r := range c.Normalize.Rules {
		if r.Pattern == "" {
			return fmt.Errorf("%w: rules[%d]", ErrEmptyRulePattern, i)
		}
	}

	// Validate output config
	if c.Output.BasePath == "" {
		return ErrMissingOutputPath
	}

	if c.Output.GeneratedDir == "" || c.Output.ProcessedDir == "" || c.Output.RenamedDir == "" {
		return ErrMissingOutputDir
	}

	// Validate logging config
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

// ValidateSources checks the source list used by a batch run.
func (c *Config) ValidateSources() error {
	if len(c.Sources) == 0 {
		return ErrNoSources
	}

	enabledCount := 0

	for i, src := range c.Sources {
		// Either URL or File must be provided
		if strings.TrimSpace(src.URL) == "" && strings.TrimSpace(src.File) == "" {
			return fmt.Errorf("%w: sources[%d]", ErrSourceMissingURLOrFile, i)
		}

		if src.URL != "" && src.File != "" {
			return fmt.Errorf("%w: sources[%d]", ErrSourceBothURLAndFile, i)
		}

		if src.Enabled {
			enabledCount++
		}
	}

	if enabledCount == 0 {
		return ErrNoEnabledSources
	}

	return nil
}

// GetEnabledSources returns only enabled sources.
func (c *Config) GetEnabledSources() []SourceConfig {
	var enabled []SourceConfig

	for _, src := range c.Sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}

	return enabled
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	// Cap at max delay
	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Sources: %d, MaxAttempts: %d, Output: %s}",
		len(c.Sources),
		c.Retry.MaxAttempts,
		c.Output.BasePath,
	)
}
