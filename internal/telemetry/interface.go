package telemetry

import (
	"context"
	"time"
)

// Collector records one snapshot per control tick
type Collector interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

// Snapshot captures the controller state at the end of a tick
type Snapshot struct {
	Timestamp   time.Time
	Temperature TempMetrics
	FanSpeed    FanMetrics
	SystemState StateMetrics
}

type TempMetrics struct {
	Current     float64
	Smoothed    float64
	RawMax      float64
	DeviceCount int
}

type FanMetrics struct {
	Target  int
	Applied int
}

type StateMetrics struct {
	WarmedUp bool
	Monitor  bool
}
