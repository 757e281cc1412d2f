package guard_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/INIRU/Tinklepaw-sub002/internal/guard"
)

func TestCreationGuard_TryAcquireRelease(t *testing.T) {
	g := guard.New()

	assert.True(t, g.TryAcquire("owner-1"), "first acquire should succeed")
	assert.True(t, g.Held("owner-1"))
	assert.False(t, g.TryAcquire("owner-1"), "second acquire for the same owner should fail")

	assert.True(t, g.TryAcquire("owner-2"), "different owners must not contend")

	g.Release("owner-1")
	assert.False(t, g.Held("owner-1"))
	assert.True(t, g.TryAcquire("owner-1"), "acquire should succeed again after release")
}

func TestCreationGuard_ReleaseUnheldIsNoop(t *testing.T) {
	g := guard.New()
	g.Release("never-acquired")
	assert.True(t, g.TryAcquire("never-acquired"))
}

func TestCreationGuard_ConcurrentAcquireSingleWinner(t *testing.T) {
	g := guard.New()
	const attempts = 64

	var winners int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if g.TryAcquire("owner-1") {
				atomic.AddInt32(&winners, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&winners), "exactly one concurrent acquire may win")
	assert.True(t, g.Held("owner-1"))
}
