package domain

import "github.com/jonboulle/clockwork"

// clock stamps RenderedAt. Tests freeze it with SetClock.
var clock = clockwork.NewRealClock()

// SetClock replaces the render clock. Pass nil to go back to wall time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
