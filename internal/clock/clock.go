package clock

import "time"

// NowFunc returns the current time; audit comments, task creation and
// history end times all read it.
var NowFunc = time.Now

// Now returns NowFunc() truncated to milliseconds so that persisted and
// in-memory timestamps compare equal.
func Now() time.Time { return NowFunc().Truncate(time.Millisecond) }

// Freeze pins NowFunc to a ticking fake starting at start; every call advances
// it by step. The returned func restores the previous clock.
func Freeze(start time.Time, step time.Duration) func() {
	prev := NowFunc
	current := start
	NowFunc = func() time.Time {
		ret := current
		current = current.Add(step)
		return ret
	}
	return func() { NowFunc = prev }
}
