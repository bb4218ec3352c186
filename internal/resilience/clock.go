package resilience

import "time"

// Clock abstracts time for recovery-window checks so tests can
// control it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
