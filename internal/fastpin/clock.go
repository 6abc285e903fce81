package fastpin

import "time"

// Clock abstracts time retrieval so business logic is deterministic in tests.
// Date-bucketing in particular depends on "now" being injectable.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
