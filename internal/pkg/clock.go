package pkg

import "time"

type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system clock.
type SystemClock struct{}

func (that SystemClock) Now() time.Time {
	return time.Now().UTC()
}
