package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
	}, cfg.Schedule.Days)
	assert.Equal(t, 9, cfg.Schedule.StartHour)
	assert.Equal(t, 16, cfg.Schedule.EndHour)
	assert.Equal(t, 30, cfg.Schedule.EndMinute)

	assert.Equal(t, 60*time.Second, cfg.Pacing.MinDelay)
	assert.Equal(t, 600*time.Second, cfg.Pacing.MaxDelay)

	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 50, cfg.MaxRecords)

	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "no operating days",
			mutate:  func(c *Config) { c.Schedule.Days = nil },
			wantErr: "at least one operating day",
		},
		{
			name:    "min delay exceeds max",
			mutate:  func(c *Config) { c.Pacing.MinDelay = 700 * time.Second },
			wantErr: "min delay must not exceed max delay",
		},
		{
			name:    "scroll delay inverted",
			mutate:  func(c *Config) { c.Pacing.ScrollDelayMin = 10 * time.Second },
			wantErr: "scroll delay min must not exceed max",
		},
		{
			name: "window start after end",
			mutate: func(c *Config) {
				c.Schedule.StartHour = 17
				c.Schedule.EndHour = 9
			},
			wantErr: "window start must not be after window end",
		},
		{
			name:    "invalid start hour",
			mutate:  func(c *Config) { c.Schedule.StartHour = 25 },
			wantErr: "start hour must be between 0 and 23",
		},
		{
			name:    "zero max records",
			mutate:  func(c *Config) { c.MaxRecords = 0 },
			wantErr: "max records must be positive",
		},
		{
			name:    "empty data dir",
			mutate:  func(c *Config) { c.Output.DataDir = "" },
			wantErr: "data directory is required",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yamlContent := `
schedule:
  days: [1, 2, 3]
  start_hour: 8
  end_hour: 18
  timezone: "Europe/Berlin"
output:
  data_dir: "/tmp/scrape-data"
max_records: 25
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Wednesday}, cfg.Schedule.Days)
	assert.Equal(t, 8, cfg.Schedule.StartHour)
	assert.Equal(t, 18, cfg.Schedule.EndHour)
	assert.Equal(t, "Europe/Berlin", cfg.Schedule.Timezone)
	assert.Equal(t, "/tmp/scrape-data", cfg.Output.DataDir)
	assert.Equal(t, 25, cfg.MaxRecords)

	// Untouched sections keep their defaults
	assert.Equal(t, 60*time.Second, cfg.Pacing.MinDelay)
}

func TestLoadFromFileMissingIsNotAnError(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err) // explicit path that does not exist is an error

	// empty path with no config file anywhere falls through silently
	cfg2 := DefaultConfig()
	assert.NoError(t, cfg2.LoadFromFile(""))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SCRAPER_DATA_DIR", "/env/data")
	t.Setenv("SCRAPER_TIMEZONE", "UTC")
	t.Setenv("SCRAPER_HEADLESS", "false")
	t.Setenv("SCRAPER_MAX_RECORDS", "7")
	t.Setenv("SCRAPER_NAV_TIMEOUT", "45s")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "/env/data", cfg.Output.DataDir)
	assert.Equal(t, "UTC", cfg.Schedule.Timezone)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 7, cfg.MaxRecords)
	assert.Equal(t, 45*time.Second, cfg.Browser.NavigationTimeout)
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"data-dir":    "/flag/data",
		"headless":    false,
		"max-records": 3,
		"timezone":    "Asia/Tokyo",
	})

	assert.Equal(t, "/flag/data", cfg.Output.DataDir)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 3, cfg.MaxRecords)
	assert.Equal(t, "Asia/Tokyo", cfg.Schedule.Timezone)
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved", "config.yaml")

	cfg := DefaultConfig()
	cfg.MaxRecords = 11
	require.NoError(t, cfg.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, 11, loaded.MaxRecords)
}
