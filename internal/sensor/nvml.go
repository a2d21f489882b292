package sensor

import (
	"context"

	"codeberg.org/mutker/gpufanctl/internal/errors"
	"codeberg.org/mutker/gpufanctl/internal/logger"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// nvmlReader reads die temperatures from all NVIDIA GPUs via NVML. It is
// the sensor backend for boxes without ROCm tooling.
type nvmlReader struct {
	count int
}

func NewNVMLReader() (Reader, error) {
	errFactory := errors.New()

	if ret := nvml.Init(); ret != nvml.SUCCESS {
		return nil, errFactory.Wrap(ErrInitFailed, newNVMLError(ret))
	}

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		nvml.Shutdown()
		return nil, errFactory.Wrap(ErrInitFailed, newNVMLError(ret))
	}
	if count == 0 {
		nvml.Shutdown()
		return nil, errFactory.WithMessage(ErrInitFailed, "no NVIDIA GPUs found")
	}

	logger.Debug().Int("devices", count).Msg("NVML sensor initialized")

	return &nvmlReader{count: count}, nil
}

func (r *nvmlReader) Read(_ context.Context) ([]float64, error) {
	errFactory := errors.New()

	temperatures := make([]float64, 0, r.count)
	for i := 0; i < r.count; i++ {
		device, ret := nvml.DeviceGetHandleByIndex(i)
		if ret != nvml.SUCCESS {
			return nil, errFactory.Wrap(ErrUnavailable, newNVMLError(ret))
		}

		temperature, ret := device.GetTemperature(nvml.TEMPERATURE_GPU)
		if ret != nvml.SUCCESS {
			return nil, errFactory.Wrap(ErrUnavailable, newNVMLError(ret))
		}

		temperatures = append(temperatures, float64(temperature))
	}

	return temperatures, nil
}

// Close releases the NVML library handle.
func (r *nvmlReader) Close() error {
	errFactory := errors.New()

	if ret := nvml.Shutdown(); ret != nvml.SUCCESS {
		return errFactory.Wrap(errors.ErrShutdownFailed, newNVMLError(ret))
	}

	return nil
}

// nvmlError adapts an NVML return code to the error interface
type nvmlError struct {
	ret nvml.Return
}

func (e *nvmlError) Error() string {
	return nvml.ErrorString(e.ret)
}

func newNVMLError(ret nvml.Return) error {
	if ret == nvml.SUCCESS {
		return nil
	}

	return &nvmlError{ret: ret}
}
