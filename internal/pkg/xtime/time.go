package xtime

import "time"

// UTCNow returns the current time in UTC.
func UTCNow() time.Time {
	return time.Now().UTC()
}

var utcNowFunc = UTCNow

// Now returns the current UTC time via the configured clock function.
// Timestamps persisted by the application must come from here so tests
// can pin the clock.
func Now() time.Time {
	return utcNowFunc()
}

// SetNowFunc sets the function used to get the current UTC time.
// This is primarily used for testing to mock the current time.
func SetNowFunc(f func() time.Time) {
	utcNowFunc = f
}

// ResetNowFunc resets the clock to the default implementation.
// This should be called in test cleanup to avoid affecting other tests.
func ResetNowFunc() {
	utcNowFunc = UTCNow
}
