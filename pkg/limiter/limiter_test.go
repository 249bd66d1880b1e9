package limiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefreshLimiter_Allow(t *testing.T) {
	l := NewRefreshLimiter(time.Hour, 1)

	assert.True(t, l.Allow())
	assert.False(t, l.Allow(), "second refresh within the interval is throttled")
}

func TestRefreshLimiter_Burst(t *testing.T) {
	l := NewRefreshLimiter(time.Hour, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(), "refresh %d fits in the burst", i)
	}
	assert.False(t, l.Allow())
}

func TestRefreshLimiter_Update(t *testing.T) {
	l := NewRefreshLimiter(time.Hour, 1)
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())

	l.Update(time.Nanosecond, 1)
	time.Sleep(time.Millisecond)
	assert.True(t, l.Allow(), "relaxed limit admits the next refresh")
}
