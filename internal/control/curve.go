package control

import "math"

// Curve maps a temperature to a target fan speed percentage. With a factor
// of 1.0 the mapping is plain linear interpolation; factors above 1.0 keep
// the fans quiet near TempLow and ramp aggressively towards TempHigh.
type Curve struct {
	MinSpeed int
	MaxSpeed int
	TempLow  float64
	TempHigh float64
	Factor   float64
}

// Speed returns the target fan speed for the given temperature. The result
// is always within [MinSpeed, MaxSpeed] and non-decreasing in temperature.
// TempHigh > TempLow is guaranteed by config validation, so the normalized
// temperature inside the branch is always in (0, 1).
func (c Curve) Speed(temperature float64) float64 {
	if temperature <= c.TempLow {
		return float64(c.MinSpeed)
	}
	if temperature >= c.TempHigh {
		return float64(c.MaxSpeed)
	}

	normalized := (temperature - c.TempLow) / (c.TempHigh - c.TempLow)
	shaped := math.Pow(normalized, c.Factor)

	return float64(c.MinSpeed) + shaped*float64(c.MaxSpeed-c.MinSpeed)
}
