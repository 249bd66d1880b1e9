package refresh

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lisenok-cargo/cargomanager/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int64
	err   error
}

func (c *countingRefresher) RefreshRates(context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestRefresher_RunCallsTarget(t *testing.T) {
	target := &countingRefresher{}
	r := New(target, 5*time.Millisecond, logger.NewNop())

	r.Run()
	require.Eventually(t, func() bool {
		return target.calls.Load() >= 2
	}, time.Second, time.Millisecond)

	r.Stop()
}

func TestRefresher_StopHaltsLoop(t *testing.T) {
	target := &countingRefresher{}
	r := New(target, 5*time.Millisecond, logger.NewNop())

	r.Run()
	require.Eventually(t, func() bool {
		return target.calls.Load() >= 1
	}, time.Second, time.Millisecond)
	r.Stop()

	settled := target.calls.Load()
	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, settled, target.calls.Load())
}

func TestRefresher_StopIsIdempotent(t *testing.T) {
	r := New(&countingRefresher{}, time.Minute, logger.NewNop())
	r.Run()
	r.Stop()
	r.Stop()
}

func TestRefresher_TargetErrorKeepsLoopAlive(t *testing.T) {
	target := &countingRefresher{err: errors.New("server unavailable")}
	r := New(target, 5*time.Millisecond, logger.NewNop())

	r.Run()
	require.Eventually(t, func() bool {
		return target.calls.Load() >= 3
	}, time.Second, time.Millisecond)

	r.Stop()
}
