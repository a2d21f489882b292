package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/gpufanctl/internal/actuator"
	"codeberg.org/mutker/gpufanctl/internal/config"
	"codeberg.org/mutker/gpufanctl/internal/control"
	"codeberg.org/mutker/gpufanctl/internal/errors"
	"codeberg.org/mutker/gpufanctl/internal/logger"
	"codeberg.org/mutker/gpufanctl/internal/pid"
	"codeberg.org/mutker/gpufanctl/internal/sensor"
	"codeberg.org/mutker/gpufanctl/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	logger.Debug().Msg("Config loaded")

	if err := checkPrerequisites(cfg); err != nil {
		logger.Error().Err(err).Msg("Startup check failed")
		os.Exit(1)
	}

	if err := pid.Write(); err != nil {
		logger.Error().Err(err).Msg("Failed to acquire PID file")
		os.Exit(1)
	}
	defer pid.Remove()

	reader, err := newReader(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize temperature sensor")
		os.Exit(1)
	}
	if closer, ok := reader.(io.Closer); ok {
		defer closer.Close()
	}

	collector, err := telemetry.NewService(telemetry.Config{
		Enabled: cfg.Telemetry,
		DBPath:  cfg.TelemetryDB,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize telemetry")
		os.Exit(1)
	}
	defer collector.Close()

	driver := actuator.NewIPMIDriver(cfg.MinSpeed, cfg.MaxSpeed)

	logger.Info().
		Float64("temp_low", cfg.TempLow).
		Float64("temp_high", cfg.TempHigh).
		Int("min_speed", cfg.MinSpeed).
		Int("max_speed", cfg.MaxSpeed).
		Int("window_size", cfg.WindowSize).
		Float64("curve_factor", cfg.CurveFactor).
		Float64("hysteresis", cfg.Hysteresis).
		Int("interval", cfg.Interval).
		Msg("Starting fan controller")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	controller := control.New(cfg, reader, driver, collector)
	if err := controller.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Error in main loop")
		os.Exit(1)
	}

	logger.Info().Msg("Exiting...")
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func newReader(cfg *config.Config) (sensor.Reader, error) {
	if cfg.Sensor == config.SensorNVML {
		return sensor.NewNVMLReader()
	}

	return sensor.NewRocmSMIReader(), nil
}

// checkPrerequisites verifies root privileges and the presence of the
// external tools the selected backends shell out to.
func checkPrerequisites(cfg *config.Config) error {
	errFactory := errors.New()

	if !cfg.Monitor {
		if os.Geteuid() != 0 {
			return errFactory.New(errors.ErrNotPrivileged)
		}
		if _, err := exec.LookPath(actuator.IPMIToolBinary); err != nil {
			return errFactory.WithData(errors.ErrMissingTool, actuator.IPMIToolBinary)
		}
	}

	if cfg.Sensor == config.SensorRocmSMI {
		if _, err := exec.LookPath(sensor.RocmSMIBinary); err != nil {
			return errFactory.WithData(errors.ErrMissingTool, sensor.RocmSMIBinary)
		}
	}

	return nil
}
