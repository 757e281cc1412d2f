package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/INIRU/Tinklepaw-sub002/internal/domain"
	"github.com/INIRU/Tinklepaw-sub002/internal/platform"
	"github.com/INIRU/Tinklepaw-sub002/internal/service"
)

const (
	testGuildID = "guild-1"
	testTrigger = "trigger-chan"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		in   service.ClassifyInput
		want service.Actions
	}{
		{
			name: "trigger join creates",
			in: service.ClassifyInput{
				Event: domain.VoiceStateEvent{
					GuildID: testGuildID, MemberID: "m1", NewChannelID: testTrigger,
				},
				GuildID:          testGuildID,
				TriggerChannelID: testTrigger,
			},
			want: service.Actions{Create: true},
		},
		{
			name: "bot join is ignored",
			in: service.ClassifyInput{
				Event: domain.VoiceStateEvent{
					GuildID: testGuildID, MemberID: "bot1", IsBot: true, NewChannelID: testTrigger,
				},
				GuildID:          testGuildID,
				TriggerChannelID: testTrigger,
			},
			want: service.Actions{},
		},
		{
			name: "foreign guild is ignored",
			in: service.ClassifyInput{
				Event: domain.VoiceStateEvent{
					GuildID: "other-guild", MemberID: "m1", NewChannelID: testTrigger,
				},
				GuildID:          testGuildID,
				TriggerChannelID: testTrigger,
			},
			want: service.Actions{},
		},
		{
			name: "no trigger configured means no create",
			in: service.ClassifyInput{
				Event: domain.VoiceStateEvent{
					GuildID: testGuildID, MemberID: "m1", NewChannelID: testTrigger,
				},
				GuildID: testGuildID,
			},
			want: service.Actions{},
		},
		{
			name: "leaving a tracked room cleans up",
			in: service.ClassifyInput{
				Event: domain.VoiceStateEvent{
					GuildID: testGuildID, MemberID: "m1", PrevChannelID: "room-1",
				},
				GuildID:          testGuildID,
				TriggerChannelID: testTrigger,
				LeftRoomTracked:  true,
			},
			want: service.Actions{Cleanup: true},
		},
		{
			name: "leaving an untracked channel does nothing",
			in: service.ClassifyInput{
				Event: domain.VoiceStateEvent{
					GuildID: testGuildID, MemberID: "m1", PrevChannelID: "random-chan",
				},
				GuildID:          testGuildID,
				TriggerChannelID: testTrigger,
			},
			want: service.Actions{},
		},
		{
			name: "own room into trigger fires both",
			in: service.ClassifyInput{
				Event: domain.VoiceStateEvent{
					GuildID: testGuildID, MemberID: "m1",
					PrevChannelID: "room-1", NewChannelID: testTrigger,
				},
				GuildID:          testGuildID,
				TriggerChannelID: testTrigger,
				LeftRoomTracked:  true,
			},
			want: service.Actions{Cleanup: true, Create: true},
		},
		{
			name: "mid-creation owner may not create again",
			in: service.ClassifyInput{
				Event: domain.VoiceStateEvent{
					GuildID: testGuildID, MemberID: "m1", NewChannelID: testTrigger,
				},
				GuildID:          testGuildID,
				TriggerChannelID: testTrigger,
				OwnerMidCreate:   true,
			},
			want: service.Actions{},
		},
		{
			name: "same-channel update is not a departure",
			in: service.ClassifyInput{
				Event: domain.VoiceStateEvent{
					GuildID: testGuildID, MemberID: "m1",
					PrevChannelID: "room-1", NewChannelID: "room-1",
				},
				GuildID:          testGuildID,
				TriggerChannelID: testTrigger,
				LeftRoomTracked:  true,
			},
			want: service.Actions{},
		},
		{
			name: "trigger to trigger does not re-create",
			in: service.ClassifyInput{
				Event: domain.VoiceStateEvent{
					GuildID: testGuildID, MemberID: "m1",
					PrevChannelID: testTrigger, NewChannelID: testTrigger,
				},
				GuildID:          testGuildID,
				TriggerChannelID: testTrigger,
			},
			want: service.Actions{},
		},
		{
			name: "missing member ID is dropped",
			in: service.ClassifyInput{
				Event: domain.VoiceStateEvent{
					GuildID: testGuildID, NewChannelID: testTrigger,
				},
				GuildID:          testGuildID,
				TriggerChannelID: testTrigger,
			},
			want: service.Actions{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, service.Classify(tc.in))
		})
	}
}

func TestHumanCount(t *testing.T) {
	assert.Equal(t, 0, service.HumanCount(nil))
	assert.Equal(t, 0, service.HumanCount([]platform.Occupant{{MemberID: "b", IsBot: true}}))
	assert.Equal(t, 2, service.HumanCount([]platform.Occupant{
		{MemberID: "m1"},
		{MemberID: "b", IsBot: true},
		{MemberID: "m2"},
	}))
}

func TestDecideLockOverrides_Locked(t *testing.T) {
	everyone, owner := service.DecideLockOverrides(true)

	require.NotNil(t, everyone.Connect)
	assert.False(t, *everyone.Connect, "locked must deny connect to everyone")
	assert.Nil(t, everyone.ManageChannel)
	assert.Nil(t, everyone.MoveMembers)

	require.NotNil(t, owner.Connect)
	require.NotNil(t, owner.ManageChannel)
	require.NotNil(t, owner.MoveMembers)
	assert.True(t, *owner.Connect)
	assert.True(t, *owner.ManageChannel)
	assert.True(t, *owner.MoveMembers)
}

func TestDecideLockOverrides_Unlocked(t *testing.T) {
	everyone, owner := service.DecideLockOverrides(false)

	// Unlocked clears the deny back to inherit, not an explicit allow, so
	// category-level rules keep applying.
	assert.Nil(t, everyone.Connect)

	require.NotNil(t, owner.Connect)
	assert.True(t, *owner.Connect, "owner keeps rights in both lock states")
}

func TestTemplateFromLiveSettings(t *testing.T) {
	live := &platform.LiveSettings{
		Name:              "My Hangout",
		UserLimit:         150,
		RTCRegion:         "seoul",
		Voice:             true,
		LockedForEveryone: true,
	}

	tpl := service.TemplateFromLiveSettings("owner-1", live)

	assert.Equal(t, "owner-1", tpl.OwnerID)
	assert.Equal(t, "My Hangout", tpl.RoomName)
	assert.Equal(t, domain.MaxUserLimit, tpl.UserLimit, "snapshot clamps out-of-range values")
	assert.Equal(t, "seoul", tpl.RTCRegion)
	assert.True(t, tpl.IsLocked)
}

func TestTemplateFromLiveSettings_EmptyNameFallsBack(t *testing.T) {
	tpl := service.TemplateFromLiveSettings("owner-1", &platform.LiveSettings{Name: "  "})
	assert.Equal(t, "개인 통화방", tpl.RoomName)
}
