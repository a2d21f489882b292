package sensor

import (
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"codeberg.org/mutker/gpufanctl/internal/errors"
	"codeberg.org/mutker/gpufanctl/internal/logger"
)

const (
	RocmSMIBinary = "rocm-smi"

	readTimeout = 5 * time.Second
	edgeTempKey = "Temperature (Sensor edge) (C)"
	cardPrefix  = "card"
)

// rocmReader reads per-device edge temperatures by invoking rocm-smi and
// parsing its JSON output.
type rocmReader struct {
	binary string
}

func NewRocmSMIReader() Reader {
	return &rocmReader{binary: RocmSMIBinary}
}

func (r *rocmReader) Read(ctx context.Context) ([]float64, error) {
	errFactory := errors.New()

	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, r.binary, "--showtemp", "--json").Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errFactory.Wrap(ErrUnavailable, ctx.Err())
		}
		return nil, errFactory.Wrap(ErrUnavailable, err)
	}

	temperatures, err := parseTemperatures(out)
	if err != nil {
		return nil, err
	}

	logger.Debug().Floats64("temperatures", temperatures).Msg("Read GPU temperatures")

	return temperatures, nil
}

// parseTemperatures extracts edge temperatures from rocm-smi JSON output,
// which maps card identifiers to sensor key/value pairs. Cards without a
// parseable edge temperature are skipped.
func parseTemperatures(out []byte) ([]float64, error) {
	errFactory := errors.New()

	var cards map[string]map[string]any
	if err := json.Unmarshal(out, &cards); err != nil {
		return nil, errFactory.Wrap(ErrUnavailable, err)
	}

	var temperatures []float64
	for name, sensors := range cards {
		if !strings.HasPrefix(name, cardPrefix) {
			continue
		}

		raw, ok := sensors[edgeTempKey]
		if !ok {
			continue
		}

		switch value := raw.(type) {
		case string:
			temperature, err := strconv.ParseFloat(value, 64)
			if err != nil {
				continue
			}
			temperatures = append(temperatures, temperature)
		case float64:
			temperatures = append(temperatures, value)
		}
	}

	if len(temperatures) == 0 {
		return nil, errFactory.WithMessage(ErrUnavailable, "no GPU temperatures found in output")
	}

	return temperatures, nil
}
