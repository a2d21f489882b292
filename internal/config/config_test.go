package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/gpufanctl/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	oldArgs := os.Args
	os.Args = append([]string{"gpufanctl"}, args...)
	t.Cleanup(func() { os.Args = oldArgs })
}

func TestLoadDefaults(t *testing.T) {
	withArgs(t)
	// Point at a nonexistent file so a host /etc config cannot interfere
	t.Setenv("GPUFANCTL_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, 2, cfg.Interval, "Expected default Interval 2")
	assert.Equal(t, 18, cfg.MinSpeed, "Expected default MinSpeed 18")
	assert.Equal(t, 100, cfg.MaxSpeed, "Expected default MaxSpeed 100")
	assert.InDelta(t, 70.0, cfg.TempLow, 1e-9, "Expected default TempLow 70")
	assert.InDelta(t, 90.0, cfg.TempHigh, 1e-9, "Expected default TempHigh 90")
	assert.Equal(t, 10, cfg.WindowSize, "Expected default WindowSize 10")
	assert.InDelta(t, 2.5, cfg.CurveFactor, 1e-9, "Expected default CurveFactor 2.5")
	assert.InDelta(t, 2.0, cfg.Hysteresis, 1e-9, "Expected default Hysteresis 2")
	assert.Equal(t, config.SensorRocmSMI, cfg.Sensor, "Expected default sensor rocm-smi")
	assert.False(t, cfg.Monitor, "Expected default Monitor false")
	assert.False(t, cfg.Telemetry, "Expected default Telemetry false")
}

func TestLoadFromFile(t *testing.T) {
	withArgs(t)
	tempDir := t.TempDir()

	configContent := []byte(`
interval = 5
min_speed = 20
max_speed = 90
temp_low = 65.0
temp_high = 85.0
window_size = 6
curve_factor = 1.0
hysteresis = 3.0
sensor = "nvml"
monitor = true
telemetry = true
database = "/path/to/telemetry.db"
`)
	configPath := filepath.Join(tempDir, "gpufanctl.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("GPUFANCTL_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Interval, "Expected Interval 5")
	assert.Equal(t, 20, cfg.MinSpeed, "Expected MinSpeed 20")
	assert.Equal(t, 90, cfg.MaxSpeed, "Expected MaxSpeed 90")
	assert.InDelta(t, 65.0, cfg.TempLow, 1e-9, "Expected TempLow 65")
	assert.InDelta(t, 85.0, cfg.TempHigh, 1e-9, "Expected TempHigh 85")
	assert.Equal(t, 6, cfg.WindowSize, "Expected WindowSize 6")
	assert.InDelta(t, 1.0, cfg.CurveFactor, 1e-9, "Expected CurveFactor 1.0")
	assert.InDelta(t, 3.0, cfg.Hysteresis, 1e-9, "Expected Hysteresis 3.0")
	assert.Equal(t, config.SensorNVML, cfg.Sensor, "Expected sensor nvml")
	assert.True(t, cfg.Monitor, "Expected Monitor true")
	assert.True(t, cfg.Telemetry, "Expected Telemetry true")
	assert.Equal(t, "/path/to/telemetry.db", cfg.TelemetryDB, "Expected TelemetryDB path")
}

func TestFlagsOverrideFile(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
temp_high = 85.0
hysteresis = 3.0
`)
	configPath := filepath.Join(tempDir, "gpufanctl.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("GPUFANCTL_CONFIG", configPath)
	withArgs(t, "--temp-high", "95", "--monitor")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.InDelta(t, 95.0, cfg.TempHigh, 1e-9, "Expected flag to override file value")
	assert.InDelta(t, 3.0, cfg.Hysteresis, 1e-9, "Expected file value to survive")
	assert.True(t, cfg.Monitor, "Expected Monitor to be set by flag")
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	withArgs(t)
	tempDir := t.TempDir()

	configContent := []byte(`
This is not a valid TOML file
`)
	configPath := filepath.Join(tempDir, "gpufanctl.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("GPUFANCTL_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read configuration")
}

func TestValidate(t *testing.T) {
	valid := config.Config{
		Interval:    2,
		MinSpeed:    18,
		MaxSpeed:    100,
		TempLow:     70,
		TempHigh:    90,
		WindowSize:  10,
		CurveFactor: 2.5,
		Hysteresis:  2,
		Sensor:      config.SensorRocmSMI,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero interval", func(c *config.Config) { c.Interval = 0 }},
		{"negative min speed", func(c *config.Config) { c.MinSpeed = -1 }},
		{"min speed at max", func(c *config.Config) { c.MinSpeed = 100 }},
		{"max speed above 100", func(c *config.Config) { c.MaxSpeed = 101 }},
		{"temp high not above temp low", func(c *config.Config) { c.TempHigh = 70 }},
		{"zero window size", func(c *config.Config) { c.WindowSize = 0 }},
		{"zero curve factor", func(c *config.Config) { c.CurveFactor = 0 }},
		{"negative hysteresis", func(c *config.Config) { c.Hysteresis = -1 }},
		{"unknown sensor", func(c *config.Config) { c.Sensor = "hwmon" }},
		{"telemetry without database", func(c *config.Config) { c.Telemetry = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
