package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "Asia/Singapore", config.Scheduler.Timezone)
	assert.Equal(t, 1000, config.Scheduler.HistorySize)
	assert.Equal(t, 3, config.Fetcher.MaxAttempts)
	assert.Equal(t, 2*time.Second, config.Fetcher.RequestDelay.Std())
	assert.Equal(t, 100, config.Extract.MinContentLength)
	assert.True(t, config.Fetcher.CheckRobots)
	require.NoError(t, config.Validate())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/harvest.toml")
	require.Error(t, err)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harvest.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 9000

[fetcher]
request_delay = "5s"
max_attempts = 4

[[sources]]
name = "moh-guidelines"
type = "moh"
schedule = "0 2 * * *"
enabled = true
urls = ["https://www.moh.gov.sg/guidelines/diabetes"]
`), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, config.Server.Port)
	assert.Equal(t, 5*time.Second, config.Fetcher.RequestDelay.Std())
	assert.Equal(t, 4, config.Fetcher.MaxAttempts)
	assert.Equal(t, "localhost", config.Server.Host, "unset fields keep defaults")
	require.Len(t, config.Sources, 1)
	assert.Equal(t, "moh", config.Sources[0].Type)
}

func TestLoadConfig_DurationStrings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harvest.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[fetcher]
request_delay = "2s"
request_timeout = "30s"
javascript_wait_time = "1500ms"
`), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, config.Fetcher.RequestDelay.Std())
	assert.Equal(t, 30*time.Second, config.Fetcher.RequestTimeout.Std())
	assert.Equal(t, 1500*time.Millisecond, config.Fetcher.JavaScriptWaitTime.Std())
}

func TestLoadConfig_BadDurationString(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harvest.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[fetcher]
request_delay = "two seconds"
`), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HARVEST_SERVER_PORT", "7777")
	t.Setenv("HARVEST_LOG_LEVEL", "debug")
	t.Setenv("HARVEST_SCHEDULER_TIMEZONE", "UTC")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 7777, config.Server.Port)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "UTC", config.Scheduler.Timezone)
}

func TestValidate_BadSourceType(t *testing.T) {
	config := DefaultConfig()
	config.Sources = []SourceConfig{
		{Name: "bad", Type: "rss", Schedule: "0 2 * * *"},
	}

	require.Error(t, config.Validate())
}

func TestValidate_BadSchedule(t *testing.T) {
	config := DefaultConfig()
	config.Sources = []SourceConfig{
		{Name: "bad", Type: "moh", Schedule: "every tuesday"},
	}

	err := config.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron schedule")
}

func TestValidate_BadTimezone(t *testing.T) {
	config := DefaultConfig()
	config.Scheduler.Timezone = "Not/AZone"

	require.Error(t, config.Validate())
}

func TestValidateJobSchedule(t *testing.T) {
	tests := []struct {
		schedule string
		valid    bool
	}{
		{"0 2 * * *", true},
		{"0 */6 * * *", true},
		{"0 3 * * 1", true},
		{"*/5 * * * *", true},
		{"0 2 * *", false},       // four fields
		{"0 2 * * * *", false},   // six fields
		{"61 2 * * *", false},    // minute out of range
		{"not a schedule", false},
	}

	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			err := ValidateJobSchedule(tt.schedule)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
