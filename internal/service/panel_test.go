package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/INIRU/Tinklepaw-sub002/internal/domain"
	"github.com/INIRU/Tinklepaw-sub002/internal/guard"
	"github.com/INIRU/Tinklepaw-sub002/internal/platform"
	platformmocks "github.com/INIRU/Tinklepaw-sub002/internal/platform/mocks"
	"github.com/INIRU/Tinklepaw-sub002/internal/repository"
	"github.com/INIRU/Tinklepaw-sub002/internal/repository/mocks"
	"github.com/INIRU/Tinklepaw-sub002/internal/service"
)

type panelFixture struct {
	templates *mocks.TemplateRepository
	rooms     *mocks.AutoRoomRepository
	config    *mocks.ConfigRepository
	channels  *platformmocks.ChannelAPI
	guard     *guard.CreationGuard
	svc       *service.RoomControlService
}

func newPanelFixture() *panelFixture {
	f := &panelFixture{
		templates: new(mocks.TemplateRepository),
		rooms:     new(mocks.AutoRoomRepository),
		config:    new(mocks.ConfigRepository),
		channels:  new(platformmocks.ChannelAPI),
		guard:     guard.New(),
	}
	f.svc = service.NewRoomControlService(testGuildID, f.templates, f.rooms, f.config, f.channels, f.guard)
	return f
}

func (f *panelFixture) assertExpectations(t *testing.T) {
	f.templates.AssertExpectations(t)
	f.rooms.AssertExpectations(t)
	f.config.AssertExpectations(t)
	f.channels.AssertExpectations(t)
}

func TestRoomControlService_CreateRoom_WithLimitOverride(t *testing.T) {
	// Arrange
	f := newPanelFixture()
	ctx := context.Background()

	f.templates.On("FindByOwner", ctx, "m1").Return(nil, repository.ErrTemplateNotFound).Once()
	f.config.On("Current", ctx).
		Return(&domain.GuildConfig{TriggerChannelID: testTrigger, OverrideCategoryID: "cat-1"}, nil).Once()

	f.channels.On("CreateVoiceChannel", ctx, mock.MatchedBy(func(p platform.CreateVoiceChannelParams) bool {
		return p.Name == "Aria의 통화방" && p.UserLimit == 2 && p.ParentID == "cat-1"
	})).Return(&platform.VoiceChannel{ID: "room-1", ParentID: "cat-1", Voice: true}, nil).Once()
	f.channels.On("SetPermissionOverride", ctx, "room-1", mock.AnythingOfType("string"), mock.Anything).Return(nil)
	f.rooms.On("Save", ctx, mock.AnythingOfType("*domain.AutoRoom")).Return(nil).Once()

	// The chosen limit is persisted so the next automatic room matches.
	f.templates.On("Save", ctx, mock.MatchedBy(func(tpl *domain.RoomTemplate) bool {
		return tpl.OwnerID == "m1" && tpl.UserLimit == 2
	})).Return(nil).Once()

	// Act
	limit := 2
	room, err := f.svc.CreateRoom(ctx, "m1", "Aria", &limit)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, "room-1", room.ChannelID)
	assert.Equal(t, "m1", room.OwnerID)
	f.assertExpectations(t)
	assert.False(t, f.guard.Held("m1"))
}

func TestRoomControlService_CreateRoom_GuardBusy(t *testing.T) {
	// Arrange: an automatic create for the same owner is in flight.
	f := newPanelFixture()
	require.True(t, f.guard.TryAcquire("m1"))

	// Act
	room, err := f.svc.CreateRoom(context.Background(), "m1", "Aria", nil)

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrCreationInProgress))
	assert.Nil(t, room)
	f.channels.AssertNotCalled(t, "CreateVoiceChannel", mock.Anything, mock.Anything)
}

func TestRoomControlService_CreateRoom_EmptyOwner(t *testing.T) {
	f := newPanelFixture()
	_, err := f.svc.CreateRoom(context.Background(), "", "Aria", nil)
	assert.True(t, errors.Is(err, service.ErrInvalidInput))
}

func TestRoomControlService_Rename(t *testing.T) {
	// Arrange
	f := newPanelFixture()
	ctx := context.Background()
	room := &domain.AutoRoom{ChannelID: "room-1", OwnerID: "m1"}

	f.rooms.On("FindByChannelID", ctx, "room-1").Return(room, nil).Once()
	f.channels.On("ModifyVoiceChannel", ctx, "room-1", platform.ModifyVoiceChannelParams{
		Name: platform.String("New Name"),
	}).Return(nil).Once()
	// The rename refreshes the owner's template from live settings.
	f.channels.On("ChannelLiveSettings", ctx, "room-1").
		Return(&platform.LiveSettings{Name: "New Name", Voice: true}, nil).Once()
	f.templates.On("Save", ctx, mock.MatchedBy(func(tpl *domain.RoomTemplate) bool {
		return tpl.OwnerID == "m1" && tpl.RoomName == "New Name"
	})).Return(nil).Once()

	// Act
	err := f.svc.Rename(ctx, "room-1", "  New Name  ")

	// Assert
	require.NoError(t, err)
	f.assertExpectations(t)
}

func TestRoomControlService_Rename_BlankNameRejected(t *testing.T) {
	f := newPanelFixture()
	ctx := context.Background()
	f.rooms.On("FindByChannelID", ctx, "room-1").
		Return(&domain.AutoRoom{ChannelID: "room-1", OwnerID: "m1"}, nil).Once()

	err := f.svc.Rename(ctx, "room-1", "   ")

	assert.True(t, errors.Is(err, service.ErrInvalidInput))
	f.channels.AssertNotCalled(t, "ModifyVoiceChannel", mock.Anything, mock.Anything, mock.Anything)
}

func TestRoomControlService_Rename_UntrackedChannel(t *testing.T) {
	f := newPanelFixture()
	ctx := context.Background()
	f.rooms.On("FindByChannelID", ctx, "manual-chan").Return(nil, repository.ErrAutoRoomNotFound).Once()

	err := f.svc.Rename(ctx, "manual-chan", "New Name")

	assert.True(t, errors.Is(err, service.ErrRoomNotTracked))
}

func TestRoomControlService_SetUserLimit_Clamped(t *testing.T) {
	// Arrange
	f := newPanelFixture()
	ctx := context.Background()
	f.rooms.On("FindByChannelID", ctx, "room-1").
		Return(&domain.AutoRoom{ChannelID: "room-1", OwnerID: "m1"}, nil).Once()
	f.channels.On("ModifyVoiceChannel", ctx, "room-1", platform.ModifyVoiceChannelParams{
		UserLimit: platform.Int(domain.MaxUserLimit),
	}).Return(nil).Once()
	f.channels.On("ChannelLiveSettings", ctx, "room-1").
		Return(&platform.LiveSettings{Name: "Aria의 통화방", UserLimit: domain.MaxUserLimit, Voice: true}, nil).Once()
	f.templates.On("Save", ctx, mock.AnythingOfType("*domain.RoomTemplate")).Return(nil).Once()

	// Act
	err := f.svc.SetUserLimit(ctx, "room-1", 500)

	// Assert
	require.NoError(t, err)
	f.assertExpectations(t)
}

func TestRoomControlService_SetLock(t *testing.T) {
	// Arrange
	f := newPanelFixture()
	ctx := context.Background()
	f.rooms.On("FindByChannelID", ctx, "room-1").
		Return(&domain.AutoRoom{ChannelID: "room-1", OwnerID: "m1"}, nil).Once()

	f.channels.On("SetPermissionOverride", ctx, "room-1", testGuildID, platform.PermissionOverride{
		Connect: platform.Bool(false),
	}).Return(nil).Once()
	f.channels.On("SetPermissionOverride", ctx, "room-1", "m1", platform.PermissionOverride{
		Connect:       platform.Bool(true),
		ManageChannel: platform.Bool(true),
		MoveMembers:   platform.Bool(true),
	}).Return(nil).Once()

	// The live fetch may not reflect the overrides yet; the lock flag is
	// forced into the template regardless.
	f.channels.On("ChannelLiveSettings", ctx, "room-1").
		Return(&platform.LiveSettings{Name: "Aria의 통화방", Voice: true, LockedForEveryone: false}, nil).Once()
	f.templates.On("Save", ctx, mock.MatchedBy(func(tpl *domain.RoomTemplate) bool {
		return tpl.OwnerID == "m1" && tpl.IsLocked
	})).Return(nil).Once()

	// Act
	err := f.svc.SetLock(ctx, "room-1", true)

	// Assert
	require.NoError(t, err)
	f.assertExpectations(t)
}

func TestRoomControlService_Invite(t *testing.T) {
	// Arrange
	f := newPanelFixture()
	ctx := context.Background()
	f.rooms.On("FindByChannelID", ctx, "room-1").
		Return(&domain.AutoRoom{ChannelID: "room-1", OwnerID: "m1"}, nil).Once()
	f.channels.On("SetPermissionOverride", ctx, "room-1", "guest-1", platform.PermissionOverride{
		Connect: platform.Bool(true),
	}).Return(nil).Once()

	// Act
	err := f.svc.Invite(ctx, "room-1", "guest-1")

	// Assert
	require.NoError(t, err)
	f.assertExpectations(t)
}

func TestRoomControlService_DeleteRoom_SnapshotsAndForgets(t *testing.T) {
	// Arrange: manual delete ignores occupancy but still snapshots.
	f := newPanelFixture()
	ctx := context.Background()
	f.rooms.On("FindByChannelID", ctx, "room-1").
		Return(&domain.AutoRoom{ChannelID: "room-1", OwnerID: "m1"}, nil).Once()
	f.channels.On("ChannelLiveSettings", ctx, "room-1").
		Return(&platform.LiveSettings{Name: "Aria의 통화방", UserLimit: 4, Voice: true}, nil).Once()
	f.templates.On("Save", ctx, mock.MatchedBy(func(tpl *domain.RoomTemplate) bool {
		return tpl.OwnerID == "m1" && tpl.UserLimit == 4
	})).Return(nil).Once()
	f.channels.On("DeleteChannel", ctx, "room-1", "voice room panel delete").Return(nil).Once()
	f.rooms.On("Delete", ctx, "room-1").Return(nil).Once()

	// Act
	err := f.svc.DeleteRoom(ctx, "room-1")

	// Assert
	require.NoError(t, err)
	f.assertExpectations(t)
	f.channels.AssertNotCalled(t, "ChannelOccupants", mock.Anything, mock.Anything)
}

func TestRoomControlService_DeleteRoom_PlatformDeleteFailureStillForgets(t *testing.T) {
	// Arrange
	f := newPanelFixture()
	ctx := context.Background()
	f.rooms.On("FindByChannelID", ctx, "room-1").
		Return(&domain.AutoRoom{ChannelID: "room-1", OwnerID: "m1"}, nil).Once()
	f.channels.On("ChannelLiveSettings", ctx, "room-1").
		Return(nil, errors.New("platform: unknown channel")).Once()
	f.channels.On("DeleteChannel", ctx, "room-1", "voice room panel delete").
		Return(errors.New("platform: unknown channel")).Once()
	f.rooms.On("Delete", ctx, "room-1").Return(nil).Once()

	// Act
	err := f.svc.DeleteRoom(ctx, "room-1")

	// Assert
	require.NoError(t, err)
	f.assertExpectations(t)
}

func TestRoomControlService_UpdateConfig(t *testing.T) {
	// Arrange
	f := newPanelFixture()
	ctx := context.Background()
	f.config.On("Current", ctx).Return(&domain.GuildConfig{ID: 1}, nil).Once()
	f.config.On("Save", ctx, mock.MatchedBy(func(cfg *domain.GuildConfig) bool {
		return cfg.TriggerChannelID == "new-trigger" && cfg.OverrideCategoryID == "new-cat"
	})).Return(nil).Once()

	// Act
	err := f.svc.UpdateConfig(ctx, "new-trigger", "new-cat")

	// Assert
	require.NoError(t, err)
	f.assertExpectations(t)
}
