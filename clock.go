// clock.go
package main

import "time"

// Clock abstracts the wall clock so join timestamps are testable.
type Clock interface {
	Now() time.Time
}

// RealClock reports the current time in UTC.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// MockClock is a fixed, manually advanced clock for tests.
type MockClock struct {
	currentTime time.Time
}

func (mc *MockClock) Now() time.Time {
	return mc.currentTime
}

// Advance moves the mocked time forward by d.
func (mc *MockClock) Advance(d time.Duration) {
	mc.currentTime = mc.currentTime.Add(d)
}
