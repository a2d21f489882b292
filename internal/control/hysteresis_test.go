package control_test

import (
	"testing"

	"codeberg.org/mutker/gpufanctl/internal/control"
	"github.com/stretchr/testify/assert"
)

func TestSmallChangeSuppressed(t *testing.T) {
	damper := control.Damper{Threshold: 2}

	// Reference scenario: target ≈32.5 against an applied speed of 31
	assert.Equal(t, 31, damper.Decide(31, 32.496), "Expected change below threshold to be suppressed")
	assert.Equal(t, 31, damper.Decide(31, 29.6))
}

func TestSignificantChangeApplied(t *testing.T) {
	damper := control.Damper{Threshold: 2}

	// Reference scenario: target ≈32.5 against an applied speed of 28
	assert.Equal(t, 32, damper.Decide(28, 32.496), "Expected change at or above threshold to be applied")
	assert.Equal(t, 25, damper.Decide(40, 25.0))
}

func TestExactThresholdApplies(t *testing.T) {
	damper := control.Damper{Threshold: 2}

	// The suppression band is exclusive: a difference of exactly the
	// threshold applies the change
	assert.Equal(t, 32, damper.Decide(30, 32.0))
	assert.Equal(t, 28, damper.Decide(30, 28.0))
}

func TestZeroThresholdAlwaysApplies(t *testing.T) {
	damper := control.Damper{Threshold: 0}

	assert.Equal(t, 30, damper.Decide(30, 30.4), "Expected target to be truncated to integer")
	assert.Equal(t, 31, damper.Decide(30, 31.0))
}
