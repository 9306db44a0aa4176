package linkedin

import "time"

// DelayRange is a closed interval to draw uniform waits from.
type DelayRange struct {
	Min time.Duration
	Max time.Duration
}

var (
	DefaultPacing  = DelayRange{Min: 400 * time.Millisecond, Max: 1100 * time.Millisecond}
	DefaultBackoff = DelayRange{Min: 1200 * time.Millisecond, Max: 1500 * time.Millisecond}
)

// Pick maps `unit`, a number in [0, 1), into the range.
func (r DelayRange) Pick(unit float64) time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	span := float64(r.Max-r.Min) + 1
	d := r.Min + time.Duration(unit*span)
	if d > r.Max {
		return r.Max
	}
	return d
}
