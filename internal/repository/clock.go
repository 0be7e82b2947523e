package repository

import "github.com/jonboulle/clockwork"

// clock is the package time source for record timestamps. Tests freeze it via
// SetClock to make (observed_at, id) ordering deterministic.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
