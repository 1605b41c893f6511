package volume

import "math"

// Range is a closed numeric interval
type Range struct {
	Min, Max float64
}

var (
	// Unit is the native level range of a controller
	Unit = Range{0, 1}
	// PercentRange is the range shown to users
	PercentRange = Range{0, 100}
)

// Scale maps v from one range onto another
func Scale(v float64, from, to Range) float64 {
	return to.Min + (v-from.Min)*(to.Max-to.Min)/(from.Max-from.Min)
}

func clamp(v float64, r Range) float64 {
	return math.Max(r.Min, math.Min(r.Max, v))
}

// Percent returns the level of c on the 0-100 scale
func Percent(c Controller) (float64, error) {
	level, err := c.Level()
	if err != nil {
		return 0, err
	}
	return Scale(float64(level), Unit, PercentRange), nil
}

// SetPercent sets the level of c from the 0-100 scale, clamping out-of-range values.
// It returns the percentage actually applied.
func SetPercent(c Controller, p float64) (float64, error) {
	p = clamp(p, PercentRange)
	if err := c.SetLevel(float32(Scale(p, PercentRange, Unit))); err != nil {
		return 0, err
	}
	return p, nil
}

// Increment raises the level of c by amount percent, stopping at 100
func Increment(c Controller, amount float64) (float64, error) {
	current, err := Percent(c)
	if err != nil {
		return 0, err
	}
	return SetPercent(c, current+amount)
}

// Decrement lowers the level of c by amount percent, stopping at 0
func Decrement(c Controller, amount float64) (float64, error) {
	current, err := Percent(c)
	if err != nil {
		return 0, err
	}
	return SetPercent(c, current-amount)
}

func Mute(c Controller) error   { return c.SetMuted(true) }
func Unmute(c Controller) error { return c.SetMuted(false) }

// Toggle flips the mute state of c and returns the new state
func Toggle(c Controller) (bool, error) {
	muted, err := c.Muted()
	if err != nil {
		return false, err
	}
	if err := c.SetMuted(!muted); err != nil {
		return false, err
	}
	return !muted, nil
}
