package ratelimit

import "time"

// Limiter spends one request of class for client. When it refuses, wait is the time
// until the next token; 0 means the limiter cannot tell.
type Limiter interface {
	Allow(client, class string) (ok bool, wait time.Duration)
}

// Clock provides current time.
type Clock interface {
	Now() time.Time
}

// RealClock reads the wall clock.
type RealClock struct{}

// Now returns current time.
func (RealClock) Now() time.Time { return time.Now() }

// NopLimiter allows every request; used when rate limiting is disabled.
type NopLimiter struct{}

// Allow always allows.
func (NopLimiter) Allow(string, string) (bool, time.Duration) { return true, 0 }
