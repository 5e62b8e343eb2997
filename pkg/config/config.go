package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the watcher
type Config struct {
	// X API access
	X XConfig `yaml:"x" json:"x"`

	// Watch behavior
	Watch WatchConfig `yaml:"watch" json:"watch"`

	// Report output settings
	Report ReportConfig `yaml:"report" json:"report"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// XConfig holds X API credentials and endpoint settings
type XConfig struct {
	BearerToken    string        `yaml:"bearer_token" json:"bearer_token"`
	BaseURL        string        `yaml:"base_url" json:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// WatchConfig holds the polling behavior settings
type WatchConfig struct {
	Handle     string `yaml:"handle" json:"handle"`
	MaxResults int    `yaml:"max_results" json:"max_results"`
	StateFile  string `yaml:"state_file" json:"state_file"`
}

// ReportConfig holds report output settings
type ReportConfig struct {
	Directory string `yaml:"directory" json:"directory"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		X: XConfig{
			// x.com alias for the api.twitter.com v2 endpoints
			BaseURL:        "https://api.x.com/2",
			RequestTimeout: 30 * time.Second,
		},
		Watch: WatchConfig{
			Handle:     "Thekokocrypto",
			MaxResults: 25,
			StateFile:  "state.json",
		},
		Report: ReportConfig{
			Directory: ".",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if token := os.Getenv("X_BEARER_TOKEN"); token != "" {
		c.X.BearerToken = token
	}
	if baseURL := os.Getenv("XWATCH_BASE_URL"); baseURL != "" {
		c.X.BaseURL = baseURL
	}
	if handle := os.Getenv("HANDLE"); handle != "" {
		c.Watch.Handle = handle
	}
	if handle := os.Getenv("XWATCH_HANDLE"); handle != "" {
		c.Watch.Handle = handle
	}
	if stateFile := os.Getenv("XWATCH_STATE_FILE"); stateFile != "" {
		c.Watch.StateFile = stateFile
	}
	if reportDir := os.Getenv("XWATCH_REPORT_DIR"); reportDir != "" {
		c.Report.Directory = reportDir
	}
	if logLevel := os.Getenv("XWATCH_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".xwatch.yaml",
		".xwatch.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "xwatch", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "xwatch", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".xwatch.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid. Credential presence is
// checked separately so auth subcommands can run without a token.
func (c *Config) Validate() error {
	var errs []error

	if c.X.BaseURL == "" {
		errs = append(errs, errors.New("API base URL is required"))
	}
	if c.X.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.Watch.Handle == "" {
		errs = append(errs, errors.New("handle is required"))
	}
	if c.Watch.MaxResults < 5 || c.Watch.MaxResults > 100 {
		errs = append(errs, errors.New("max results must be between 5 and 100"))
	}
	if c.Watch.StateFile == "" {
		errs = append(errs, errors.New("state file path is required"))
	}

	if c.Report.Directory == "" {
		errs = append(errs, errors.New("report directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if handle, ok := flags["handle"].(string); ok && handle != "" {
		c.Watch.Handle = handle
	}
	if maxResults, ok := flags["max-results"].(int); ok && maxResults > 0 {
		c.Watch.MaxResults = maxResults
	}
	if stateFile, ok := flags["state-file"].(string); ok && stateFile != "" {
		c.Watch.StateFile = stateFile
	}
	if reportDir, ok := flags["report-dir"].(string); ok && reportDir != "" {
		c.Report.Directory = reportDir
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".xwatch.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
