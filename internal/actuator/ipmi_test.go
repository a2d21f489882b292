package actuator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpeedArg(t *testing.T) {
	assert.Equal(t, "0x12", speedArg(18))
	assert.Equal(t, "0x20", speedArg(32))
	assert.Equal(t, "0x64", speedArg(100))
	assert.Equal(t, "0x00", speedArg(0))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 18, clamp(5, 18, 100), "Expected values below the floor to clamp up")
	assert.Equal(t, 100, clamp(140, 18, 100), "Expected values above the ceiling to clamp down")
	assert.Equal(t, 42, clamp(42, 18, 100))
}
