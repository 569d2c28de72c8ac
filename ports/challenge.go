package ports

import "time"

// ChallengeRenderer draws a human-solvable challenge
type ChallengeRenderer interface {
	// Generate returns the plain answer and its rendered artifact.
	Generate() (answer string, image string, err error)
}

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

// Now returns f().
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock returns wall-clock time
var SystemClock Clock = ClockFunc(time.Now)
