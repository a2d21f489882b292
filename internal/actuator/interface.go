package actuator

import "context"

// Driver issues the hardware command that sets the fan speed to the given
// percentage. Callers pass an already clamped value; implementations
// re-clamp as a last line of defense.
type Driver interface {
	Apply(ctx context.Context, percent int) error
}
