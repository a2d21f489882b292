package sensor

import "codeberg.org/mutker/gpufanctl/internal/errors"

const (
	ErrUnavailable = errors.ErrorCode("sensor_unavailable")
	ErrInitFailed  = errors.ErrorCode("sensor_init_failed")
)
