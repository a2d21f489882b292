package control

import (
	"context"
	"time"

	"codeberg.org/mutker/gpufanctl/internal/actuator"
	"codeberg.org/mutker/gpufanctl/internal/config"
	"codeberg.org/mutker/gpufanctl/internal/logger"
	"codeberg.org/mutker/gpufanctl/internal/sensor"
	"codeberg.org/mutker/gpufanctl/internal/telemetry"
)

// Controller runs the closed control loop: poll temperatures, smooth,
// map through the curve, damp, and command the actuator. It owns the
// applied-speed state and exits only on context cancellation.
type Controller struct {
	cfg       *config.Config
	reader    sensor.Reader
	driver    actuator.Driver
	collector telemetry.Collector

	averager *Averager
	curve    Curve
	damper   Damper

	// last speed the actuator accepted; never updated on a failed write
	appliedSpeed int
}

func New(cfg *config.Config, reader sensor.Reader, driver actuator.Driver, collector telemetry.Collector) *Controller {
	return &Controller{
		cfg:       cfg,
		reader:    reader,
		driver:    driver,
		collector: collector,
		averager:  NewAverager(cfg.WindowSize),
		curve: Curve{
			MinSpeed: cfg.MinSpeed,
			MaxSpeed: cfg.MaxSpeed,
			TempLow:  cfg.TempLow,
			TempHigh: cfg.TempHigh,
			Factor:   cfg.CurveFactor,
		},
		damper:       Damper{Threshold: cfg.Hysteresis},
		appliedSpeed: cfg.MinSpeed,
	}
}

// Run commands the fans once to the minimum speed as a defined starting
// state, then polls until the context is cancelled. Cancellation is only
// observed between ticks; the actuator is left at its last applied speed
// on exit so losing fan control never also spins the fans down.
func (c *Controller) Run(ctx context.Context) error {
	interval := time.Duration(c.cfg.Interval) * time.Second

	if c.cfg.Monitor {
		logger.Info().Msg("Monitor mode activated. Logging GPU temperatures...")
	} else if err := c.driver.Apply(ctx, c.appliedSpeed); err != nil {
		logger.Warn().Err(err).Int("speed", c.appliedSpeed).Msg("Failed to set initial fan speed")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.Tick(ctx)
		}
	}
}

// Tick performs a single control iteration. Sensor and actuator failures
// are logged and absorbed: the next tick retries from unchanged state.
func (c *Controller) Tick(ctx context.Context) {
	temperatures, err := c.reader.Read(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Could not read GPU temperatures, retrying next tick")
		return
	}

	current := maxOf(temperatures)
	c.averager.Add(current)

	if !c.averager.WarmedUp() {
		logger.Info().
			Float64("temperature", current).
			Int("samples", c.averager.Len()).
			Msg("Collecting temperature samples")
		c.record(ctx, current, len(temperatures), 0, 0, false)
		return
	}

	smoothed, _ := c.averager.Smoothed()
	rawMax, _ := c.averager.RawMax()

	target := c.curve.Speed(smoothed)
	decided := c.damper.Decide(c.appliedSpeed, target)

	if !c.cfg.Monitor && decided != c.appliedSpeed {
		if err := c.driver.Apply(ctx, decided); err != nil {
			logger.Error().Err(err).
				Int("from", c.appliedSpeed).
				Int("to", decided).
				Msg("Failed to set fan speed, retrying next tick")
		} else {
			logger.Info().
				Int("from", c.appliedSpeed).
				Int("to", decided).
				Msg("Fan speed changed")
			c.appliedSpeed = decided
		}
	}

	logger.Debug().
		Float64("temperature", current).
		Float64("smoothed", smoothed).
		Float64("raw_max", rawMax).
		Float64("target", target).
		Int("decided", decided).
		Int("applied", c.appliedSpeed).
		Int("devices", len(temperatures)).
		Msg("")

	c.record(ctx, current, len(temperatures), smoothed, decided, true)
}

// AppliedSpeed returns the last speed the actuator accepted.
func (c *Controller) AppliedSpeed() int {
	return c.appliedSpeed
}

// SampleCount returns the number of control values currently buffered.
func (c *Controller) SampleCount() int {
	return c.averager.Len()
}

func (c *Controller) record(ctx context.Context, current float64, devices int, smoothed float64, target int, warmedUp bool) {
	rawMax, _ := c.averager.RawMax()
	snapshot := &telemetry.Snapshot{
		Timestamp: time.Now(),
		Temperature: telemetry.TempMetrics{
			Current:     current,
			Smoothed:    smoothed,
			RawMax:      rawMax,
			DeviceCount: devices,
		},
		FanSpeed: telemetry.FanMetrics{
			Target:  target,
			Applied: c.appliedSpeed,
		},
		SystemState: telemetry.StateMetrics{
			WarmedUp: warmedUp,
			Monitor:  c.cfg.Monitor,
		},
	}

	if err := c.collector.Record(ctx, snapshot); err != nil {
		logger.Debug().Err(err).Msg("Failed to record telemetry snapshot")
	}
}

func maxOf(values []float64) float64 {
	result := values[0]
	for _, v := range values[1:] {
		if v > result {
			result = v
		}
	}

	return result
}
