package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the Discord channel archiver
type Config struct {
	// Discord API access
	Discord DiscordConfig `yaml:"discord" json:"discord"`

	// Request pacing configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Retry behavior for transient failures
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Backup run settings
	Backup BackupConfig `yaml:"backup" json:"backup"`

	// Channel targets to archive, in configuration order
	Channels []ChannelTarget `yaml:"channels" json:"channels"`

	// Topic targets, archived identically under a separate subtree
	Topics []ChannelTarget `yaml:"topics" json:"topics"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ChannelTarget maps a local archive name to a remote channel ID.
// The name doubles as the directory and log file key.
type ChannelTarget struct {
	Name string `yaml:"name" json:"name"`
	ID   string `yaml:"id" json:"id"`
}

// DiscordConfig holds Discord-specific configuration
type DiscordConfig struct {
	Token      string `yaml:"token" json:"token"`
	UserAgent  string `yaml:"user_agent" json:"user_agent"`
	APIBaseURL string `yaml:"api_base_url" json:"api_base_url"`
}

// RateLimitConfig holds request pacing configuration
type RateLimitConfig struct {
	RequestDelay      time.Duration `yaml:"request_delay" json:"request_delay"`
	ChannelDelay      time.Duration `yaml:"channel_delay" json:"channel_delay"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// RetryConfig holds retry configuration for page and image fetches.
// MaxAttempts of 1 means no retries, which mirrors the original behavior.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay    time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay     time.Duration `yaml:"max_delay" json:"max_delay"`
	Multiplier   float64       `yaml:"multiplier" json:"multiplier"`
	JitterFactor float64       `yaml:"jitter_factor" json:"jitter_factor"`
}

// OutputConfig holds archive directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
}

// BackupConfig holds run-level settings
type BackupConfig struct {
	PageLimit      int           `yaml:"page_limit" json:"page_limit"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
	Concurrency    int           `yaml:"concurrency" json:"concurrency"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Discord: DiscordConfig{
			UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/89.0.4389.82 Safari/537.36",
			APIBaseURL: "https://discord.com/api/v9",
		},
		RateLimit: RateLimitConfig{
			RequestDelay:      1500 * time.Millisecond,
			ChannelDelay:      3 * time.Second,
			RequestsPerMinute: 40,
		},
		Retry: RetryConfig{
			MaxAttempts:  1,
			BaseDelay:    1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
		Output: OutputConfig{
			BaseDirectory: "./backups",
		},
		Backup: BackupConfig{
			PageLimit:      100,
			RequestTimeout: 30 * time.Second,
			Concurrency:    1,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// DISCORD_TOKEN is the historical variable name, kept for .env files
	// written for earlier versions of the tool.
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		c.Discord.Token = token
	}
	if token := os.Getenv("DCBACKUP_TOKEN"); token != "" {
		c.Discord.Token = token
	}
	if userAgent := os.Getenv("DCBACKUP_USER_AGENT"); userAgent != "" {
		c.Discord.UserAgent = userAgent
	}
	if baseURL := os.Getenv("DCBACKUP_API_BASE_URL"); baseURL != "" {
		c.Discord.APIBaseURL = baseURL
	}

	if delay := os.Getenv("DCBACKUP_REQUEST_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil && d >= 0 {
			c.RateLimit.RequestDelay = d
		}
	}
	if delay := os.Getenv("DCBACKUP_CHANNEL_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil && d >= 0 {
			c.RateLimit.ChannelDelay = d
		}
	}
	if rpm := os.Getenv("DCBACKUP_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}

	if outputDir := os.Getenv("DCBACKUP_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}

	if concurrency := os.Getenv("DCBACKUP_CONCURRENCY"); concurrency != "" {
		var val int
		fmt.Sscanf(concurrency, "%d", &val)
		if val > 0 {
			c.Backup.Concurrency = val
		}
	}

	if logLevel := os.Getenv("DCBACKUP_LOG_LEVEL"); logLevel != "" {
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
		".dcbackup.yaml",
		".dcbackup.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "dcbackup", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "dcbackup", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".dcbackup.yaml"),
		filepath.Join(os.Getenv("HOME"), ".dcbackup.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// targetNamePattern restricts archive names to strings that are safe to use
// as directory and file name keys.
var targetNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// validateTargets checks a target list for empty IDs, unsafe names and
// duplicate names. The seen map is shared across lists so a channel and a
// topic cannot claim the same archive name either.
func validateTargets(kind string, targets []ChannelTarget, seen map[string]bool) []error {
	var errs []error

	for i, t := range targets {
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("%s %d: name is required", kind, i))
			continue
		}
		if !targetNamePattern.MatchString(t.Name) {
			errs = append(errs, fmt.Errorf("%s %q: name is not a safe directory key", kind, t.Name))
		}
		if t.ID == "" {
			errs = append(errs, fmt.Errorf("%s %q: id is required", kind, t.Name))
		}
		if seen[t.Name] {
			errs = append(errs, fmt.Errorf("%s %q: duplicate name", kind, t.Name))
		}
		seen[t.Name] = true
	}

	return errs
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Discord.APIBaseURL == "" {
		errs = append(errs, errors.New("API base URL is required"))
	}

	if c.RateLimit.RequestDelay < 0 {
		errs = append(errs, errors.New("request delay cannot be negative"))
	}
	if c.RateLimit.ChannelDelay < 0 {
		errs = append(errs, errors.New("channel delay cannot be negative"))
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}

	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("retry max attempts must be positive"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	if c.Backup.PageLimit <= 0 || c.Backup.PageLimit > 100 {
		errs = append(errs, errors.New("page limit must be between 1 and 100"))
	}
	if c.Backup.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.Backup.Concurrency <= 0 {
		errs = append(errs, errors.New("concurrency must be positive"))
	}

	seen := make(map[string]bool)
	errs = append(errs, validateTargets("channel", c.Channels, seen)...)
	errs = append(errs, validateTargets("topic", c.Topics, seen)...)

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

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if token, ok := flags["token"].(string); ok && token != "" {
		c.Discord.Token = token
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if delay, ok := flags["request-delay"].(time.Duration); ok && delay >= 0 {
		c.RateLimit.RequestDelay = delay
	}
	if delay, ok := flags["channel-delay"].(time.Duration); ok && delay >= 0 {
		c.RateLimit.ChannelDelay = delay
	}
	if concurrency, ok := flags["concurrency"].(int); ok && concurrency > 0 {
		c.Backup.Concurrency = concurrency
	}
	if maxAttempts, ok := flags["max-attempts"].(int); ok && maxAttempts > 0 {
		c.Retry.MaxAttempts = maxAttempts
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".dcbackup.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
