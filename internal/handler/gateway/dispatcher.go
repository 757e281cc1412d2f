package gateway

import (
	"context"
	"sync"

	"github.com/INIRU/Tinklepaw-sub002/internal/domain"
)

// Dispatcher serializes event handling per member while letting different
// members' events run concurrently. Events for one member are handled one at
// a time in arrival order; a lazily started worker goroutine drains each
// member's queue and exits when it runs dry.
type Dispatcher struct {
	handler func(context.Context, domain.VoiceStateEvent)

	mu sync.Mutex
	// A key's presence means a worker goroutine owns that member's queue,
	// even when the slice is momentarily empty mid-drain.
	queues map[string][]domain.VoiceStateEvent
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher invoking handler for every event.
func NewDispatcher(handler func(context.Context, domain.VoiceStateEvent)) *Dispatcher {
	if handler == nil {
		panic("handler cannot be nil for Dispatcher")
	}
	return &Dispatcher{
		handler: handler,
		queues:  make(map[string][]domain.VoiceStateEvent),
	}
}

// Dispatch enqueues one event. It never blocks on the handler.
func (d *Dispatcher) Dispatch(ctx context.Context, ev domain.VoiceStateEvent) {
	if ev.MemberID == "" {
		return
	}
	d.mu.Lock()
	q, running := d.queues[ev.MemberID]
	d.queues[ev.MemberID] = append(q, ev)
	if !running {
		d.wg.Add(1)
		go d.drain(ctx, ev.MemberID)
	}
	d.mu.Unlock()
}

// Wait blocks until all in-flight queues are drained. Used on shutdown and
// in tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) drain(ctx context.Context, memberID string) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		q := d.queues[memberID]
		if len(q) == 0 {
			delete(d.queues, memberID)
			d.mu.Unlock()
			return
		}
		ev := q[0]
		d.queues[memberID] = q[1:]
		d.mu.Unlock()

		d.handler(ctx, ev)
	}
}
