// Package platform defines the chat platform collaborator interfaces the
// orchestrator drives. Implementations live in subpackages; tests use mocks.
package platform

import "context"

// ChannelAPI is the platform's channel control surface. Every method maps to
// one platform call; callers are expected to tolerate and log failures rather
// than abort, relying on the transport's own timeout.
type ChannelAPI interface {
	// CreateVoiceChannel creates a voice channel and returns its identity.
	CreateVoiceChannel(ctx context.Context, params CreateVoiceChannelParams) (*VoiceChannel, error)

	// DeleteChannel removes a channel. The reason ends up in the platform's
	// audit log.
	DeleteChannel(ctx context.Context, channelID, reason string) error

	// ModifyVoiceChannel patches the given fields; nil fields are untouched.
	ModifyVoiceChannel(ctx context.Context, channelID string, patch ModifyVoiceChannelParams) error

	// SetPermissionOverride edits the channel override for one subject
	// (member or the everyone role). Nil fields mean inherit.
	SetPermissionOverride(ctx context.Context, channelID, subjectID string, override PermissionOverride) error

	// MoveMember moves a connected member into the given voice channel.
	MoveMember(ctx context.Context, guildID, memberID, channelID string) error

	// ChannelOccupants lists the members currently connected to a channel.
	ChannelOccupants(ctx context.Context, channelID string) ([]Occupant, error)

	// ChannelLiveSettings fetches the channel's current configuration as the
	// platform sees it right now. The live values are authoritative for
	// template snapshots, regardless of out-of-band edits.
	ChannelLiveSettings(ctx context.Context, channelID string) (*LiveSettings, error)
}

// CreateVoiceChannelParams describes a room to create.
type CreateVoiceChannelParams struct {
	GuildID   string
	Name      string
	ParentID  string // category; empty for top level
	UserLimit int    // 0 = unlimited
	RTCRegion string // empty = automatic
	Reason    string // audit log reason
}

// VoiceChannel is the created channel as confirmed by the platform.
type VoiceChannel struct {
	ID       string
	ParentID string
	Voice    bool // false when the platform returned a non-voice channel
}

// ModifyVoiceChannelParams is a partial channel update.
type ModifyVoiceChannelParams struct {
	Name      *string
	UserLimit *int
	RTCRegion *string
}

// PermissionOverride is a per-subject channel override. A nil field clears
// the override back to inherit, so category-level rules apply again.
type PermissionOverride struct {
	Connect       *bool
	ManageChannel *bool
	MoveMembers   *bool
}

// Occupant is one member connected to a voice channel.
type Occupant struct {
	MemberID string
	IsBot    bool
}

// LiveSettings is a channel's current live configuration.
type LiveSettings struct {
	Name              string
	UserLimit         int
	RTCRegion         string
	ParentID          string
	Voice             bool // whether the channel is actually voice-capable
	LockedForEveryone bool // everyone role has an explicit connect deny
}

// Bool returns a pointer to b, for building overrides and patches.
func Bool(b bool) *bool { return &b }

// String returns a pointer to s.
func String(s string) *string { return &s }

// Int returns a pointer to i.
func Int(i int) *int { return &i }
