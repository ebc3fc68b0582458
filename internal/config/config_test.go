package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const validConfig = `
[server]
http_port = 8080

[database]
host = "localhost"
port = 5432
user = "lessons"
password = "secret"
dbname = "lessons"
sslmode = "disable"

[logs]
file = "lessons.log"
level = "info"

[schedule]
open_weekdays = ["monday", "tuesday", "wednesday", "thursday", "friday", "saturday"]
day_start = "09:00"
day_end = "20:00"

[booking]

[payments]
provider_url = "http://localhost:9090"
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	// Незаданные значения добиваются дефолтами
	assert.Equal(t, 60, cfg.Schedule.SlotDurationMinutes)
	assert.Equal(t, 24, cfg.Booking.NoticeHours)
	assert.Equal(t, 6, cfg.Booking.GroupCapacity)
	assert.Equal(t, 52, cfg.Booking.MaxSeriesOccurrences)
	assert.Equal(t, 10, cfg.Payments.TimeoutSeconds)
	assert.Equal(t, 60, cfg.Payments.SweepIntervalMinutes)
}

func TestLoad_WeeklySchedule(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	schedule := cfg.WeeklySchedule()

	assert.True(t, schedule.IsOpenOn(time.Monday))
	assert.True(t, schedule.IsOpenOn(time.Saturday))
	assert.False(t, schedule.IsOpenOn(time.Sunday))
	assert.Equal(t, "09:00", schedule.DayStart.String())
	assert.Equal(t, "20:00", schedule.DayEnd.String())
}

func TestLoad_InvalidConfigs(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing port",
			body: `
[database]
host = "localhost"
dbname = "lessons"
[schedule]
open_weekdays = ["monday"]
day_start = "09:00"
day_end = "20:00"
`,
		},
		{
			name: "unknown weekday",
			body: `
[server]
http_port = 8080
[database]
host = "localhost"
dbname = "lessons"
[schedule]
open_weekdays = ["someday"]
day_start = "09:00"
day_end = "20:00"
`,
		},
		{
			name: "bad day_start",
			body: `
[server]
http_port = 8080
[database]
host = "localhost"
dbname = "lessons"
[schedule]
open_weekdays = ["monday"]
day_start = "9am"
day_end = "20:00"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestDatabaseConfig_DSN_EnvOverride(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	t.Setenv("LESSONS_DB_PASSWORD", "from-env")

	assert.Contains(t, cfg.Database.DSN(), "password=from-env")
}
