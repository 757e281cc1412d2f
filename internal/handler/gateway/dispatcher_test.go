package gateway_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/INIRU/Tinklepaw-sub002/internal/domain"
	"github.com/INIRU/Tinklepaw-sub002/internal/handler/gateway"
)

func TestDispatcher_PerMemberOrderPreserved(t *testing.T) {
	// Record the order events arrive at the handler, per member.
	var mu sync.Mutex
	seen := make(map[string][]string)
	d := gateway.NewDispatcher(func(_ context.Context, ev domain.VoiceStateEvent) {
		mu.Lock()
		seen[ev.MemberID] = append(seen[ev.MemberID], ev.NewChannelID)
		mu.Unlock()
	})

	ctx := context.Background()
	const perMember = 50
	members := []string{"m1", "m2", "m3"}
	for i := 0; i < perMember; i++ {
		for _, m := range members {
			d.Dispatch(ctx, domain.VoiceStateEvent{
				GuildID:      "guild-1",
				MemberID:     m,
				NewChannelID: string(rune('a' + i%26)),
			})
		}
	}
	d.Wait()

	mu.Lock()
	defer mu.Unlock()
	for _, m := range members {
		require.Len(t, seen[m], perMember, "member %s must receive every event", m)
		for i, ch := range seen[m] {
			assert.Equal(t, string(rune('a'+i%26)), ch, "member %s event %d out of order", m, i)
		}
	}
}

func TestDispatcher_DifferentMembersRunConcurrently(t *testing.T) {
	// m1's handler blocks until m2's handler has run; this only terminates
	// when the two members' queues drain independently.
	m2Done := make(chan struct{})
	d := gateway.NewDispatcher(func(_ context.Context, ev domain.VoiceStateEvent) {
		switch ev.MemberID {
		case "m1":
			<-m2Done
		case "m2":
			close(m2Done)
		}
	})

	ctx := context.Background()
	d.Dispatch(ctx, domain.VoiceStateEvent{MemberID: "m1"})
	d.Dispatch(ctx, domain.VoiceStateEvent{MemberID: "m2"})
	d.Wait()
}

func TestDispatcher_EmptyMemberIDDropped(t *testing.T) {
	called := false
	d := gateway.NewDispatcher(func(_ context.Context, _ domain.VoiceStateEvent) {
		called = true
	})

	d.Dispatch(context.Background(), domain.VoiceStateEvent{GuildID: "guild-1"})
	d.Wait()

	assert.False(t, called, "events without a member ID must be dropped")
}

func TestNewDispatcher_NilHandlerPanics(t *testing.T) {
	assert.Panics(t, func() { gateway.NewDispatcher(nil) })
}
