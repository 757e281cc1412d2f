package service

import (
	"github.com/INIRU/Tinklepaw-sub002/internal/domain"
	"github.com/INIRU/Tinklepaw-sub002/internal/platform"
)

// The room lifecycle engine: pure decision logic over an event plus a
// snapshot of the surrounding state. No I/O happens here; the orchestrator
// gathers the inputs and performs whatever the engine decides.

// ClassifyInput is everything Classify needs to judge one presence event.
type ClassifyInput struct {
	Event            domain.VoiceStateEvent
	GuildID          string // configured guild; events for other guilds are ignored
	TriggerChannelID string // empty when no trigger channel is configured
	LeftRoomTracked  bool   // whether Event.PrevChannelID has a registry row
	OwnerMidCreate   bool   // whether the member is already in the creation guard
}

// Actions is what the orchestrator must do for one event. Both flags can be
// set at once: a member hopping from their own auto room straight into the
// trigger channel vacates the old room and requests a new one.
type Actions struct {
	Cleanup bool // begin empty-room cleanup of Event.PrevChannelID
	Create  bool // begin room creation for Event.MemberID
}

// Classify decides what a presence transition demands. Bots, foreign guilds,
// moves between untracked non-trigger channels, and re-entries from the
// trigger channel itself all classify as nothing to do.
func Classify(in ClassifyInput) Actions {
	ev := in.Event
	if ev.IsBot || ev.GuildID != in.GuildID || ev.MemberID == "" {
		return Actions{}
	}

	var out Actions
	if ev.PrevChannelID != "" && ev.PrevChannelID != ev.NewChannelID && in.LeftRoomTracked {
		out.Cleanup = true
	}

	if in.TriggerChannelID != "" &&
		ev.NewChannelID == in.TriggerChannelID &&
		ev.PrevChannelID != in.TriggerChannelID &&
		!in.OwnerMidCreate {
		out.Create = true
	}
	return out
}

// HumanCount returns the number of non-bot occupants. Cleanup fires only
// when this reaches zero, evaluated after the departure is applied.
func HumanCount(occupants []platform.Occupant) int {
	n := 0
	for _, o := range occupants {
		if !o.IsBot {
			n++
		}
	}
	return n
}

// DecideLockOverrides maps a template's lock flag to the permission overrides
// for the everyone role and the owner. Locked denies connect to everyone and
// explicitly re-grants it to the owner; unlocked clears the everyone deny
// back to inherit (not allow) so category-level rules still apply. The owner
// keeps connect, manage and move rights in both states.
func DecideLockOverrides(locked bool) (everyone, owner platform.PermissionOverride) {
	if locked {
		everyone.Connect = platform.Bool(false)
	}
	owner = platform.PermissionOverride{
		Connect:       platform.Bool(true),
		ManageChannel: platform.Bool(true),
		MoveMembers:   platform.Bool(true),
	}
	return everyone, owner
}

// TemplateFromLiveSettings snapshots a room's current live configuration into
// the owner's template, clamping into valid ranges on the way.
func TemplateFromLiveSettings(ownerID string, live *platform.LiveSettings) domain.RoomTemplate {
	return domain.RoomTemplate{
		OwnerID:   ownerID,
		RoomName:  domain.NormalizeRoomName(live.Name, "개인 통화방"),
		UserLimit: domain.ClampUserLimit(live.UserLimit),
		RTCRegion: live.RTCRegion,
		IsLocked:  live.LockedForEveryone,
	}
}
