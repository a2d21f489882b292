package sensor

import (
	"testing"

	"codeberg.org/mutker/gpufanctl/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemperatures(t *testing.T) {
	out := []byte(`{
		"card0": {"Temperature (Sensor edge) (C)": "65.0", "Temperature (Sensor junction) (C)": "71.0"},
		"card1": {"Temperature (Sensor edge) (C)": "68.5"},
		"system": {"Driver version": "6.2.4"}
	}`)

	temperatures, err := parseTemperatures(out)
	require.NoError(t, err)
	assert.ElementsMatch(t, []float64{65.0, 68.5}, temperatures)
}

func TestParseTemperaturesNumericValues(t *testing.T) {
	out := []byte(`{"card0": {"Temperature (Sensor edge) (C)": 72.5}}`)

	temperatures, err := parseTemperatures(out)
	require.NoError(t, err)
	assert.ElementsMatch(t, []float64{72.5}, temperatures)
}

func TestParseTemperaturesSkipsUnparseableCards(t *testing.T) {
	out := []byte(`{
		"card0": {"Temperature (Sensor edge) (C)": "not-a-number"},
		"card1": {"Temperature (Sensor edge) (C)": "79.0"}
	}`)

	temperatures, err := parseTemperatures(out)
	require.NoError(t, err)
	assert.ElementsMatch(t, []float64{79.0}, temperatures)
}

func TestParseTemperaturesInvalidJSON(t *testing.T) {
	_, err := parseTemperatures([]byte("ERROR: rocm-smi not supported"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrUnavailable), "Expected sensor_unavailable")
}

func TestParseTemperaturesNoCards(t *testing.T) {
	_, err := parseTemperatures([]byte(`{"system": {"Driver version": "6.2.4"}}`))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrUnavailable), "Expected sensor_unavailable")
}
