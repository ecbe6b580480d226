package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlidingWindowAllowsUpToLimit(t *testing.T) {
	sw := NewSlidingWindow(3, time.Minute)

	assert.True(t, sw.Allow())
	assert.True(t, sw.Allow())
	assert.True(t, sw.Allow())
	assert.False(t, sw.Allow())
}

func TestSlidingWindowReset(t *testing.T) {
	sw := NewSlidingWindow(1, time.Minute)

	assert.True(t, sw.Allow())
	assert.False(t, sw.Allow())

	sw.Reset()
	assert.True(t, sw.Allow())
}

func TestSlidingWindowExpiry(t *testing.T) {
	sw := NewSlidingWindow(2, 50*time.Millisecond)

	assert.True(t, sw.Allow())
	assert.True(t, sw.Allow())
	assert.False(t, sw.Allow())

	time.Sleep(60 * time.Millisecond)
	assert.True(t, sw.Allow())
}

func TestSlidingWindowWait(t *testing.T) {
	sw := NewSlidingWindow(1, 50*time.Millisecond)

	assert.True(t, sw.Allow())
	start := time.Now()
	sw.Wait()
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestForNavsPerMinute(t *testing.T) {
	assert.IsType(t, Unlimited{}, ForNavsPerMinute(0))
	assert.IsType(t, &SlidingWindow{}, ForNavsPerMinute(10))

	u := ForNavsPerMinute(0)
	for i := 0; i < 100; i++ {
		assert.True(t, u.Allow())
	}
}
