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

// Config holds all configuration options for the profile scraper
type Config struct {
	// Operating window: when scraping is allowed to run
	Schedule ScheduleConfig `yaml:"schedule" json:"schedule"`

	// Randomized delay ranges for human-plausible pacing
	Pacing PacingConfig `yaml:"pacing" json:"pacing"`

	// Browser session settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Target site settings
	Target TargetConfig `yaml:"target" json:"target"`

	// Output settings: data directory and store file names
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// MaxRecords caps the number of profiles processed per run
	MaxRecords int `yaml:"max_records" json:"max_records"`
}

// ScheduleConfig defines the weekly operating window
type ScheduleConfig struct {
	// Days lists the permitted weekdays (time.Weekday values, Sunday=0)
	Days        []time.Weekday `yaml:"days" json:"days"`
	StartHour   int            `yaml:"start_hour" json:"start_hour"`
	StartMinute int            `yaml:"start_minute" json:"start_minute"`
	EndHour     int            `yaml:"end_hour" json:"end_hour"`
	EndMinute   int            `yaml:"end_minute" json:"end_minute"`
	Timezone    string         `yaml:"timezone" json:"timezone"`
}

// PacingConfig defines the randomized delay ranges
type PacingConfig struct {
	// Long delay between consecutive profile scrapes
	MinDelay time.Duration `yaml:"min_delay" json:"min_delay"`
	MaxDelay time.Duration `yaml:"max_delay" json:"max_delay"`

	// Short delays for in-page interactions
	ScrollDelayMin time.Duration `yaml:"scroll_delay_min" json:"scroll_delay_min"`
	ScrollDelayMax time.Duration `yaml:"scroll_delay_max" json:"scroll_delay_max"`
	ClickDelayMin  time.Duration `yaml:"click_delay_min" json:"click_delay_min"`
	ClickDelayMax  time.Duration `yaml:"click_delay_max" json:"click_delay_max"`
}

// BrowserConfig holds browser session configuration
type BrowserConfig struct {
	Headless          bool          `yaml:"headless" json:"headless"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout" json:"navigation_timeout"`
	UserAgent         string        `yaml:"user_agent" json:"user_agent"`
	// NavsPerMinute caps page navigations per minute, 0 disables the cap
	NavsPerMinute int `yaml:"navs_per_minute" json:"navs_per_minute"`
	MaxNavRetries int `yaml:"max_nav_retries" json:"max_nav_retries"`
}

// TargetConfig holds target site configuration
type TargetConfig struct {
	BaseURL  string `yaml:"base_url" json:"base_url"`
	LoginURL string `yaml:"login_url" json:"login_url"`
	// ProfilePathMarker identifies candidate record links on listing pages
	ProfilePathMarker string `yaml:"profile_path_marker" json:"profile_path_marker"`
	// ScrollBudget is the maximum number of reveal attempts during discovery
	ScrollBudget int `yaml:"scroll_budget" json:"scroll_budget"`
}

// OutputConfig holds data directory configuration
type OutputConfig struct {
	DataDir    string `yaml:"data_dir" json:"data_dir"`
	JSONFile   string `yaml:"json_file" json:"json_file"`
	CSVFile    string `yaml:"csv_file" json:"csv_file"`
	LedgerFile string `yaml:"ledger_file" json:"ledger_file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Schedule: ScheduleConfig{
			Days: []time.Weekday{
				time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
			},
			StartHour:   9,
			StartMinute: 0,
			EndHour:     16,
			EndMinute:   30,
			Timezone:    "America/New_York",
		},
		Pacing: PacingConfig{
			MinDelay:       60 * time.Second,
			MaxDelay:       600 * time.Second,
			ScrollDelayMin: 1 * time.Second,
			ScrollDelayMax: 3 * time.Second,
			ClickDelayMin:  2 * time.Second,
			ClickDelayMax:  4 * time.Second,
		},
		Browser: BrowserConfig{
			Headless:          true,
			NavigationTimeout: 30 * time.Second,
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
				"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			NavsPerMinute: 10,
			MaxNavRetries: 3,
		},
		Target: TargetConfig{
			BaseURL:           "https://www.linkedin.com",
			LoginURL:          "https://www.linkedin.com/login",
			ProfilePathMarker: "/in/",
			ScrollBudget:      3,
		},
		Output: OutputConfig{
			DataDir:    "./data",
			JSONFile:   "profiles.json",
			CSVFile:    "profiles.csv",
			LedgerFile: "scraped_urls.txt",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
		MaxRecords: 50,
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if dataDir := os.Getenv("SCRAPER_DATA_DIR"); dataDir != "" {
		c.Output.DataDir = dataDir
	}
	if tz := os.Getenv("SCRAPER_TIMEZONE"); tz != "" {
		c.Schedule.Timezone = tz
	}
	if headless := os.Getenv("SCRAPER_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) == "true"
	}
	if logLevel := os.Getenv("SCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if maxRecords := os.Getenv("SCRAPER_MAX_RECORDS"); maxRecords != "" {
		if val, err := strconv.Atoi(maxRecords); err == nil && val > 0 {
			c.MaxRecords = val
		}
	}
	if timeout := os.Getenv("SCRAPER_NAV_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			c.Browser.NavigationTimeout = d
		}
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
		".profilescraper.yaml",
		".profilescraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "profilescraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "profilescraper", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".profilescraper.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// Schedule
	if len(c.Schedule.Days) == 0 {
		errs = append(errs, errors.New("at least one operating day is required"))
	}
	for _, d := range c.Schedule.Days {
		if d < time.Sunday || d > time.Saturday {
			errs = append(errs, fmt.Errorf("invalid operating day: %d", d))
		}
	}
	if c.Schedule.StartHour < 0 || c.Schedule.StartHour > 23 {
		errs = append(errs, errors.New("start hour must be between 0 and 23"))
	}
	if c.Schedule.EndHour < 0 || c.Schedule.EndHour > 23 {
		errs = append(errs, errors.New("end hour must be between 0 and 23"))
	}
	if c.Schedule.StartMinute < 0 || c.Schedule.StartMinute > 59 {
		errs = append(errs, errors.New("start minute must be between 0 and 59"))
	}
	if c.Schedule.EndMinute < 0 || c.Schedule.EndMinute > 59 {
		errs = append(errs, errors.New("end minute must be between 0 and 59"))
	}
	startOfDay := c.Schedule.StartHour*60 + c.Schedule.StartMinute
	endOfDay := c.Schedule.EndHour*60 + c.Schedule.EndMinute
	if startOfDay > endOfDay {
		errs = append(errs, errors.New("window start must not be after window end"))
	}

	// Pacing: each range must satisfy min <= max
	if c.Pacing.MinDelay <= 0 {
		errs = append(errs, errors.New("min delay must be positive"))
	}
	if c.Pacing.MinDelay > c.Pacing.MaxDelay {
		errs = append(errs, errors.New("min delay must not exceed max delay"))
	}
	if c.Pacing.ScrollDelayMin > c.Pacing.ScrollDelayMax {
		errs = append(errs, errors.New("scroll delay min must not exceed max"))
	}
	if c.Pacing.ClickDelayMin > c.Pacing.ClickDelayMax {
		errs = append(errs, errors.New("click delay min must not exceed max"))
	}

	// Browser
	if c.Browser.NavigationTimeout <= 0 {
		errs = append(errs, errors.New("navigation timeout must be positive"))
	}
	if c.Browser.NavsPerMinute < 0 {
		errs = append(errs, errors.New("navs per minute cannot be negative"))
	}

	// Target
	if c.Target.BaseURL == "" {
		errs = append(errs, errors.New("target base URL is required"))
	}
	if c.Target.LoginURL == "" {
		errs = append(errs, errors.New("target login URL is required"))
	}
	if c.Target.ScrollBudget <= 0 {
		errs = append(errs, errors.New("scroll budget must be positive"))
	}

	// Output
	if c.Output.DataDir == "" {
		errs = append(errs, errors.New("data directory is required"))
	}
	if c.Output.JSONFile == "" || c.Output.CSVFile == "" || c.Output.LedgerFile == "" {
		errs = append(errs, errors.New("output file names are required"))
	}

	// Run budget
	if c.MaxRecords <= 0 {
		errs = append(errs, errors.New("max records must be positive"))
	}

	// Logging
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
	if dataDir, ok := flags["data-dir"].(string); ok && dataDir != "" {
		c.Output.DataDir = dataDir
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = headless
	}
	if maxRecords, ok := flags["max-records"].(int); ok && maxRecords > 0 {
		c.MaxRecords = maxRecords
	}
	if tz, ok := flags["timezone"].(string); ok && tz != "" {
		c.Schedule.Timezone = tz
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
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".profilescraper.env"))

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
