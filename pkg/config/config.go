package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the crawler reads
const EnvPrefix = "PIXIVCRAWLER_"

// Config holds all configuration options for the crawler
type Config struct {
	// Pixiv session
	Pixiv PixivConfig `yaml:"pixiv" json:"pixiv"`

	// Tag search settings
	Search SearchConfig `yaml:"search" json:"search"`

	// Timeouts, retries and pacing
	HTTP HTTPConfig `yaml:"http" json:"http"`

	// Stage 1 output
	Output OutputConfig `yaml:"output" json:"output"`

	// Stage 2 settings
	Process ProcessConfig `yaml:"process" json:"process"`

	// Gallery server
	Serve ServeConfig `yaml:"serve" json:"serve"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// PixivConfig holds the session headers sent to Pixiv
type PixivConfig struct {
	Cookie    string `yaml:"cookie" json:"cookie"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
	Language  string `yaml:"language" json:"language"`
}

// SearchConfig holds tag search settings
type SearchConfig struct {
	Tag               string `yaml:"tag" json:"tag"`
	TargetCount       int    `yaml:"target_count" json:"target_count"`
	ExcludeManga      bool   `yaml:"exclude_manga" json:"exclude_manga"`
	SortByOrientation bool   `yaml:"sort_by_orientation" json:"sort_by_orientation"`
}

// HTTPConfig holds request timeouts, retry policy and pacing delays
type HTTPConfig struct {
	FetchTimeout    time.Duration `yaml:"fetch_timeout" json:"fetch_timeout"`
	DownloadTimeout time.Duration `yaml:"download_timeout" json:"download_timeout"`
	MaxAttempts     int           `yaml:"max_attempts" json:"max_attempts"`
	RetryDelay      time.Duration `yaml:"retry_delay" json:"retry_delay"`
	PageDelay       time.Duration `yaml:"page_delay" json:"page_delay"`
	ResourceDelay   time.Duration `yaml:"resource_delay" json:"resource_delay"`
	ArtworkDelay    time.Duration `yaml:"artwork_delay" json:"artwork_delay"`
}

// OutputConfig holds the stage 1 download location
type OutputConfig struct {
	SaveRoot string `yaml:"save_root" json:"save_root"`
}

// ProcessConfig holds the stage 2 transform settings
type ProcessConfig struct {
	SourceRoot   string `yaml:"source_root" json:"source_root"`
	OutputRoot   string `yaml:"output_root" json:"output_root"`
	MaxDimension int    `yaml:"max_dimension" json:"max_dimension"`
	Quality      int    `yaml:"quality" json:"quality"`
}

// ServeConfig holds gallery server settings
type ServeConfig struct {
	Address   string        `yaml:"address" json:"address"`
	Port      int           `yaml:"port" json:"port"`
	ImageRoot string        `yaml:"image_root" json:"image_root"`
	Tag       string        `yaml:"tag" json:"tag"`
	CacheSize int           `yaml:"cache_size" json:"cache_size"`
	CacheTTL  time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Pixiv: PixivConfig{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			Language:  "zh",
		},
		Search: SearchConfig{
			TargetCount:       500,
			ExcludeManga:      true,
			SortByOrientation: true,
		},
		HTTP: HTTPConfig{
			FetchTimeout:    15 * time.Second,
			DownloadTimeout: 30 * time.Second,
			MaxAttempts:     3,
			RetryDelay:      3 * time.Second,
			PageDelay:       time.Second,
			ResourceDelay:   100 * time.Millisecond,
			ArtworkDelay:    300 * time.Millisecond,
		},
		Output: OutputConfig{
			SaveRoot: "pixiv_images",
		},
		Process: ProcessConfig{
			SourceRoot:   "pixiv_images",
			OutputRoot:   "api_ready_images",
			MaxDimension: 1920,
			Quality:      25,
		},
		Serve: ServeConfig{
			Address:   "127.0.0.1",
			Port:      8080,
			ImageRoot: "api_ready_images",
			CacheSize: 64,
			CacheTTL:  5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from PIXIVCRAWLER_* environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	setString := func(name string, dst *string) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	setBool := func(name string, dst *bool) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}
	setDuration := func(name string, dst *time.Duration) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = d
		}
	}

	setString("COOKIE", &c.Pixiv.Cookie)
	setString("USER_AGENT", &c.Pixiv.UserAgent)
	setString("LANGUAGE", &c.Pixiv.Language)

	setString("TAG", &c.Search.Tag)
	setInt("TARGET_COUNT", &c.Search.TargetCount)
	setBool("EXCLUDE_MANGA", &c.Search.ExcludeManga)
	setBool("SORT_BY_ORIENTATION", &c.Search.SortByOrientation)

	setDuration("FETCH_TIMEOUT", &c.HTTP.FetchTimeout)
	setDuration("DOWNLOAD_TIMEOUT", &c.HTTP.DownloadTimeout)
	setInt("MAX_ATTEMPTS", &c.HTTP.MaxAttempts)
	setDuration("RETRY_DELAY", &c.HTTP.RetryDelay)

	setString("SAVE_ROOT", &c.Output.SaveRoot)

	setString("SOURCE_ROOT", &c.Process.SourceRoot)
	setString("OUTPUT_ROOT", &c.Process.OutputRoot)
	setInt("MAX_DIMENSION", &c.Process.MaxDimension)
	setInt("QUALITY", &c.Process.Quality)

	setString("ADDRESS", &c.Serve.Address)
	setInt("PORT", &c.Serve.Port)
	setString("IMAGE_ROOT", &c.Serve.ImageRoot)
	setString("SERVE_TAG", &c.Serve.Tag)

	setString("LOG_LEVEL", &c.Logging.Level)
	setString("LOG_FILE", &c.Logging.File)

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil
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

// DefaultPath returns the per-user config file location
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "pixivcrawler", "config.yaml")
}

// findConfigFile searches for config file in standard locations
func findConfigFile() string {
	locations := []string{
		".pixivcrawler.yaml",
		".pixivcrawler.yml",
		DefaultPath(),
		filepath.Join(os.Getenv("HOME"), ".pixivcrawler.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks value ranges common to every command
func (c *Config) Validate() error {
	var errs []error

	if c.Search.TargetCount < 1 {
		errs = append(errs, errors.New("target count must be at least 1"))
	}

	if c.HTTP.FetchTimeout <= 0 {
		errs = append(errs, errors.New("fetch timeout must be positive"))
	}
	if c.HTTP.DownloadTimeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.HTTP.MaxAttempts < 1 {
		errs = append(errs, errors.New("max attempts must be at least 1"))
	}
	if c.HTTP.RetryDelay < 0 || c.HTTP.PageDelay < 0 || c.HTTP.ResourceDelay < 0 || c.HTTP.ArtworkDelay < 0 {
		errs = append(errs, errors.New("delays cannot be negative"))
	}

	if c.Output.SaveRoot == "" {
		errs = append(errs, errors.New("save root is required"))
	}

	if c.Process.MaxDimension < 0 {
		errs = append(errs, errors.New("max dimension cannot be negative"))
	}
	if c.Process.Quality < 1 || c.Process.Quality > 100 {
		errs = append(errs, errors.New("quality must be between 1 and 100"))
	}

	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		errs = append(errs, errors.New("port must be between 0 and 65535"))
	}
	if c.Serve.CacheSize < 1 {
		errs = append(errs, errors.New("cache size must be at least 1"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	return errors.Join(errs...)
}

// ValidateFetch adds the requirements of the fetch command to Validate
func (c *Config) ValidateFetch() error {
	var errs []error
	if err := c.Validate(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.Pixiv.Cookie) == "" {
		errs = append(errs, errors.New("pixiv cookie is required"))
	}
	if strings.TrimSpace(c.Search.Tag) == "" {
		errs = append(errs, errors.New("search tag is required"))
	}
	return errors.Join(errs...)
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

	// The file may hold the session cookie
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges explicitly set command line flags into the
// configuration. Keys are flag names; absent keys leave values untouched.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["cookie"].(string); ok && v != "" {
		c.Pixiv.Cookie = v
	}
	if v, ok := flags["tag"].(string); ok && v != "" {
		c.Search.Tag = v
	}
	if v, ok := flags["limit"].(int); ok {
		c.Search.TargetCount = v
	}
	if v, ok := flags["exclude-manga"].(bool); ok {
		c.Search.ExcludeManga = v
	}
	if v, ok := flags["sort"].(bool); ok {
		c.Search.SortByOrientation = v
	}
	if v, ok := flags["output"].(string); ok && v != "" {
		c.Output.SaveRoot = v
	}
	if v, ok := flags["source"].(string); ok && v != "" {
		c.Process.SourceRoot = v
	}
	if v, ok := flags["dest"].(string); ok && v != "" {
		c.Process.OutputRoot = v
	}
	if v, ok := flags["max-dimension"].(int); ok {
		c.Process.MaxDimension = v
	}
	if v, ok := flags["quality"].(int); ok {
		c.Process.Quality = v
	}
	if v, ok := flags["address"].(string); ok && v != "" {
		c.Serve.Address = v
	}
	if v, ok := flags["port"].(int); ok {
		c.Serve.Port = v
	}
	if v, ok := flags["image-root"].(string); ok && v != "" {
		c.Serve.ImageRoot = v
	}
	if v, ok := flags["serve-tag"].(string); ok && v != "" {
		c.Serve.Tag = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := flags["log-file"].(string); ok && v != "" {
		c.Logging.File = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// godotenv never overrides variables already present in the environment
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".pixivcrawler.env"))

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
