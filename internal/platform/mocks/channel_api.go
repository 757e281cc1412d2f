// Package mocks provides a testify mock of the platform channel API.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/INIRU/Tinklepaw-sub002/internal/platform"
)

// ChannelAPI is a mock of platform.ChannelAPI.
type ChannelAPI struct {
	mock.Mock
}

func (m *ChannelAPI) CreateVoiceChannel(ctx context.Context, params platform.CreateVoiceChannelParams) (*platform.VoiceChannel, error) {
	args := m.Called(ctx, params)
	var ch *platform.VoiceChannel
	if args.Get(0) != nil {
		ch = args.Get(0).(*platform.VoiceChannel)
	}
	return ch, args.Error(1)
}

func (m *ChannelAPI) DeleteChannel(ctx context.Context, channelID, reason string) error {
	args := m.Called(ctx, channelID, reason)
	return args.Error(0)
}

func (m *ChannelAPI) ModifyVoiceChannel(ctx context.Context, channelID string, patch platform.ModifyVoiceChannelParams) error {
	args := m.Called(ctx, channelID, patch)
	return args.Error(0)
}

func (m *ChannelAPI) SetPermissionOverride(ctx context.Context, channelID, subjectID string, override platform.PermissionOverride) error {
	args := m.Called(ctx, channelID, subjectID, override)
	return args.Error(0)
}

func (m *ChannelAPI) MoveMember(ctx context.Context, guildID, memberID, channelID string) error {
	args := m.Called(ctx, guildID, memberID, channelID)
	return args.Error(0)
}

func (m *ChannelAPI) ChannelOccupants(ctx context.Context, channelID string) ([]platform.Occupant, error) {
	args := m.Called(ctx, channelID)
	var occupants []platform.Occupant
	if args.Get(0) != nil {
		occupants = args.Get(0).([]platform.Occupant)
	}
	return occupants, args.Error(1)
}

func (m *ChannelAPI) ChannelLiveSettings(ctx context.Context, channelID string) (*platform.LiveSettings, error) {
	args := m.Called(ctx, channelID)
	var live *platform.LiveSettings
	if args.Get(0) != nil {
		live = args.Get(0).(*platform.LiveSettings)
	}
	return live, args.Error(1)
}
