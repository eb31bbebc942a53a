package schedule

import (
	"math"
	"time"
)

// earlyCompletion shortens every ramp so the target is reached 15 minutes
// before the window closes, giving the equipment time to settle.
const earlyCompletion = 15 * time.Minute

// Ramp interpolates linearly from initial to target over a window shortened
// by earlyCompletion. Elapsed values at or past the shortened window return
// the target; non-positive elapsed returns the initial value. The result is
// rounded to 2 decimal places.
func Ramp(total, elapsed time.Duration, initial, target float64) float64 {
	short := total - earlyCompletion
	if elapsed <= 0 {
		return round2(initial)
	}
	if elapsed >= short {
		return round2(target)
	}
	ratio := elapsed.Seconds() / short.Seconds()
	return round2(initial + (target-initial)*ratio)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
