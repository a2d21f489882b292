package sensor

import "context"

// Reader produces one temperature reading per sensed GPU, in degrees
// Celsius. Implementations must return a non-empty slice or an error
// carrying ErrUnavailable; the control loop does not distinguish between
// the ways a read can fail.
type Reader interface {
	Read(ctx context.Context) ([]float64, error)
}
