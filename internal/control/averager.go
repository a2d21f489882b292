package control

// Averager maintains a fixed-capacity window of recent control values and
// exposes smoothed statistics over it. A single noisy sample should never
// move the fan speed on its own.
type Averager struct {
	window   []float64
	capacity int
}

func NewAverager(capacity int) *Averager {
	return &Averager{
		window:   make([]float64, 0, capacity),
		capacity: capacity,
	}
}

// Add appends a value to the window, evicting the oldest entry once the
// window is at capacity.
func (a *Averager) Add(value float64) {
	a.window = append(a.window, value)
	if len(a.window) > a.capacity {
		a.window = a.window[1:]
	}
}

// Smoothed returns the arithmetic mean of the window. The second return is
// false while the window is empty; callers must not treat that as zero.
func (a *Averager) Smoothed() (float64, bool) {
	if len(a.window) == 0 {
		return 0, false
	}

	sum := 0.0
	for _, v := range a.window {
		sum += v
	}

	return sum / float64(len(a.window)), true
}

// RawMax returns the maximum value currently in the window.
func (a *Averager) RawMax() (float64, bool) {
	if len(a.window) == 0 {
		return 0, false
	}

	rawMax := a.window[0]
	for _, v := range a.window[1:] {
		if v > rawMax {
			rawMax = v
		}
	}

	return rawMax, true
}

// WarmedUp reports whether enough samples have been collected for the
// smoothed value to be trusted: at least half the window size, rounded down.
func (a *Averager) WarmedUp() bool {
	return len(a.window) >= a.capacity/2
}

func (a *Averager) Len() int {
	return len(a.window)
}
