package ratelimit

import (
	"sync"
	"time"
)

// Limiter caps the rate of browser navigations. This is a safety cap on
// top of the randomized pacing delays, not a replacement for them.
type Limiter interface {
	// Allow checks if a navigation is allowed under the current rate limit
	Allow() bool
	// Wait blocks until the rate limit allows another navigation
	Wait()
	// Reset resets the limiter state
	Reset()
}

// SlidingWindow tracks navigations within a moving time window
type SlidingWindow struct {
	windowSize  time.Duration
	maxRequests int
	requests    []time.Time
	mu          sync.Mutex
}

// NewSlidingWindow creates a sliding window limiter allowing maxRequests
// per windowSize
func NewSlidingWindow(maxRequests int, windowSize time.Duration) *SlidingWindow {
	return &SlidingWindow{
		windowSize:  windowSize,
		maxRequests: maxRequests,
		requests:    make([]time.Time, 0, maxRequests),
	}
}

// Allow checks if a navigation can proceed
func (sw *SlidingWindow) Allow() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := time.Now()
	sw.cleanOldRequests(now)

	if len(sw.requests) < sw.maxRequests {
		sw.requests = append(sw.requests, now)
		return true
	}

	return false
}

// Wait blocks until a navigation is allowed
func (sw *SlidingWindow) Wait() {
	for !sw.Allow() {
		sw.mu.Lock()
		var timeToWait time.Duration
		if len(sw.requests) > 0 {
			timeToWait = sw.windowSize - time.Since(sw.requests[0])
		}
		sw.mu.Unlock()

		if timeToWait > 0 {
			time.Sleep(timeToWait)
		} else {
			time.Sleep(100 * time.Millisecond)
		}
	}
}

// Reset clears all recorded navigations
func (sw *SlidingWindow) Reset() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.requests = sw.requests[:0]
}

// cleanOldRequests removes navigations outside the sliding window
func (sw *SlidingWindow) cleanOldRequests(now time.Time) {
	cutoff := now.Add(-sw.windowSize)

	i := 0
	for i < len(sw.requests) && sw.requests[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		copy(sw.requests, sw.requests[i:])
		sw.requests = sw.requests[:len(sw.requests)-i]
	}
}

// Unlimited is a Limiter that never blocks, used when the navigation cap
// is disabled
type Unlimited struct{}

func (Unlimited) Allow() bool { return true }
func (Unlimited) Wait()       {}
func (Unlimited) Reset()      {}

// ForNavsPerMinute returns a limiter for the configured cap; zero disables it
func ForNavsPerMinute(perMinute int) Limiter {
	if perMinute <= 0 {
		return Unlimited{}
	}
	return NewSlidingWindow(perMinute, time.Minute)
}
