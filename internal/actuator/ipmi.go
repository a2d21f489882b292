package actuator

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"codeberg.org/mutker/gpufanctl/internal/errors"
	"codeberg.org/mutker/gpufanctl/internal/logger"
)

const (
	IPMIToolBinary = "ipmitool"

	applyTimeout = 10 * time.Second
)

// rawCommandPrefix addresses the BMC fan duty cycle register on SuperMicro
// boards; the final argument is the speed percentage as a hex byte.
var rawCommandPrefix = []string{"raw", "0x30", "0x70", "0x66", "0x01", "0x02"}

// ipmiDriver sets the chassis fan duty cycle through ipmitool.
type ipmiDriver struct {
	binary   string
	minSpeed int
	maxSpeed int
}

func NewIPMIDriver(minSpeed, maxSpeed int) Driver {
	return &ipmiDriver{
		binary:   IPMIToolBinary,
		minSpeed: minSpeed,
		maxSpeed: maxSpeed,
	}
}

func (d *ipmiDriver) Apply(ctx context.Context, percent int) error {
	errFactory := errors.New()

	percent = clamp(percent, d.minSpeed, d.maxSpeed)

	ctx, cancel := context.WithTimeout(ctx, applyTimeout)
	defer cancel()

	args := append(append([]string{}, rawCommandPrefix...), speedArg(percent))
	if err := exec.CommandContext(ctx, d.binary, args...).Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return errFactory.Wrap(ErrCommandFailed, ctx.Err())
		}
		return errFactory.Wrap(ErrCommandFailed, err)
	}

	logger.Debug().Int("percent", percent).Str("arg", speedArg(percent)).Msg("Set fan speed")

	return nil
}

// speedArg formats a percentage as the hex byte ipmitool expects.
func speedArg(percent int) string {
	return fmt.Sprintf("0x%02x", percent)
}

func clamp(value, minValue, maxValue int) int {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}

	return value
}
