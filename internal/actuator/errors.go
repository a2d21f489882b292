package actuator

import "codeberg.org/mutker/gpufanctl/internal/errors"

const (
	ErrCommandFailed = errors.ErrorCode("actuator_command_failed")
)
