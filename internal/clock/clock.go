package clock

import "time"

// Clock supplies "now" for every time comparison in the engine so policy
// boundaries can be tested exactly.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func New() Clock { return systemClock{} }

// Fixed is a clock pinned to one instant, for tests.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }
