package control

import "math"

// Damper suppresses insignificant fan speed changes so the actuator is not
// re-commanded for every minor temperature fluctuation. A threshold of 0
// always applies the newly computed speed.
type Damper struct {
	Threshold float64
}

// Decide returns the speed that should be applied: the previous speed when
// the computed target differs from it by less than the threshold, otherwise
// the target truncated to an integer. A difference of exactly the threshold
// applies the change.
func (d Damper) Decide(previous int, target float64) int {
	if math.Abs(target-float64(previous)) < d.Threshold {
		return previous
	}

	return int(target)
}
