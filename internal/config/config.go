package config

import (
	"os"

	"codeberg.org/mutker/gpufanctl/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultConfigPath = "/etc"
	configName        = "gpufanctl"
	configType        = "toml"
	configEnv         = "GPUFANCTL_CONFIG"

	defaultInterval    = 2
	defaultMinSpeed    = 18
	defaultMaxSpeed    = 100
	defaultTempLow     = 70.0
	defaultTempHigh    = 90.0
	defaultWindowSize  = 10
	defaultCurveFactor = 2.5
	defaultHysteresis  = 2.0
	defaultSensor      = SensorRocmSMI
)

// Sensor backend identifiers
const (
	SensorRocmSMI = "rocm-smi"
	SensorNVML    = "nvml"
)

type Config struct {
	Interval    int     `mapstructure:"interval"`
	MinSpeed    int     `mapstructure:"min_speed"`
	MaxSpeed    int     `mapstructure:"max_speed"`
	TempLow     float64 `mapstructure:"temp_low"`
	TempHigh    float64 `mapstructure:"temp_high"`
	WindowSize  int     `mapstructure:"window_size"`
	CurveFactor float64 `mapstructure:"curve_factor"`
	Hysteresis  float64 `mapstructure:"hysteresis"`
	Sensor      string  `mapstructure:"sensor"`
	Monitor     bool    `mapstructure:"monitor"`
	Telemetry   bool    `mapstructure:"telemetry"`
	TelemetryDB string  `mapstructure:"database"`
	Debug       bool    `mapstructure:"debug"`
	Verbose     bool    `mapstructure:"verbose"`
}

// Load reads configuration from file, environment and command line flags,
// in ascending order of precedence, and validates the result.
func Load() (*Config, error) {
	errFactory := errors.New()
	v := viper.New()

	v.SetDefault("interval", defaultInterval)
	v.SetDefault("min_speed", defaultMinSpeed)
	v.SetDefault("max_speed", defaultMaxSpeed)
	v.SetDefault("temp_low", defaultTempLow)
	v.SetDefault("temp_high", defaultTempHigh)
	v.SetDefault("window_size", defaultWindowSize)
	v.SetDefault("curve_factor", defaultCurveFactor)
	v.SetDefault("hysteresis", defaultHysteresis)
	v.SetDefault("sensor", defaultSensor)
	v.SetDefault("monitor", false)
	v.SetDefault("telemetry", false)
	v.SetDefault("database", "")
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)

	flags := pflag.NewFlagSet(configName, pflag.ContinueOnError)
	flags.Int("interval", defaultInterval, "Seconds between temperature polls")
	flags.Int("min-speed", defaultMinSpeed, "Minimum fan speed percentage")
	flags.Int("max-speed", defaultMaxSpeed, "Maximum fan speed percentage")
	flags.Float64("temp-low", defaultTempLow, "Temperature where fan speed starts increasing")
	flags.Float64("temp-high", defaultTempHigh, "Temperature where fan speed reaches maximum")
	flags.Int("window-size", defaultWindowSize, "Number of temperature samples to average")
	flags.Float64("curve-factor", defaultCurveFactor, "Fan curve exponent (1.0 = linear)")
	flags.Float64("hysteresis", defaultHysteresis, "Minimum fan speed change to apply")
	flags.String("sensor", defaultSensor, "Temperature sensor backend (rocm-smi or nvml)")
	flags.Bool("monitor", false, "Only monitor temperatures, never set fan speed")
	flags.Bool("telemetry", false, "Enable telemetry collection")
	flags.String("database", "", "Path to telemetry database")
	flags.Bool("debug", false, "Enable debugging mode")
	flags.Bool("verbose", false, "Enable verbose logging")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	if path := os.Getenv(configEnv); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(defaultConfigPath)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	// Flags set on the command line override file values
	flags.Visit(func(f *pflag.Flag) {
		key := normalizeFlagName(f.Name)
		v.Set(key, f.Value.String())
	})

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the startup invariants. A violation is fatal: the control
// loop must never start with an inconsistent curve or window.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.MinSpeed < 0 || c.MinSpeed >= c.MaxSpeed || c.MaxSpeed > 100 {
		return errFactory.WithData(errors.ErrInvalidConfig,
			map[string]int{"min_speed": c.MinSpeed, "max_speed": c.MaxSpeed})
	}
	if c.TempHigh <= c.TempLow {
		return errFactory.WithData(errors.ErrInvalidConfig,
			map[string]float64{"temp_low": c.TempLow, "temp_high": c.TempHigh})
	}
	if c.WindowSize < 1 {
		return errFactory.WithData(errors.ErrInvalidConfig,
			map[string]int{"window_size": c.WindowSize})
	}
	if c.CurveFactor <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig,
			map[string]float64{"curve_factor": c.CurveFactor})
	}
	if c.Hysteresis < 0 {
		return errFactory.WithData(errors.ErrInvalidConfig,
			map[string]float64{"hysteresis": c.Hysteresis})
	}
	if c.Sensor != SensorRocmSMI && c.Sensor != SensorNVML {
		return errFactory.WithData(errors.ErrInvalidConfig,
			map[string]string{"sensor": c.Sensor})
	}
	if c.Telemetry && c.TelemetryDB == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig,
			"telemetry enabled without a database path")
	}

	return nil
}

func normalizeFlagName(name string) string {
	switch name {
	case "min-speed":
		return "min_speed"
	case "max-speed":
		return "max_speed"
	case "temp-low":
		return "temp_low"
	case "temp-high":
		return "temp_high"
	case "window-size":
		return "window_size"
	case "curve-factor":
		return "curve_factor"
	default:
		return name
	}
}
