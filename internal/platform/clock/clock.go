package clock

import "time"

// Clock abstracts wall-clock reads so timer derivation and services stay
// deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
