package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/INIRU/Tinklepaw-sub002/internal/domain"
	"github.com/INIRU/Tinklepaw-sub002/internal/guard"
	"github.com/INIRU/Tinklepaw-sub002/internal/platform"
	"github.com/INIRU/Tinklepaw-sub002/internal/repository"
)

// ErrCreationInProgress is returned when a manual create races an automatic
// one for the same owner.
var ErrCreationInProgress = errors.New("room creation already in progress for this owner")

// RoomControlService exposes the manual admin primitives behind the panel:
// create, rename, relimit, lock, region, invite, delete, plus runtime config
// updates. It drives the same stores and channel API as the automatic flow
// but never goes through the event path, and unlike the event path its
// failures surface to the caller.
type RoomControlService struct {
	guildID   string
	templates repository.TemplateRepository
	rooms     repository.AutoRoomRepository
	config    repository.ConfigRepository
	channels  platform.ChannelAPI
	guard     *guard.CreationGuard
}

// NewRoomControlService creates the panel service.
func NewRoomControlService(
	guildID string,
	templates repository.TemplateRepository,
	rooms repository.AutoRoomRepository,
	config repository.ConfigRepository,
	channels platform.ChannelAPI,
	creationGuard *guard.CreationGuard,
) *RoomControlService {
	if guildID == "" {
		panic("guild ID cannot be empty for RoomControlService")
	}
	if templates == nil || rooms == nil || config == nil || channels == nil || creationGuard == nil {
		panic("RoomControlService dependencies cannot be nil")
	}
	return &RoomControlService{
		guildID:   guildID,
		templates: templates,
		rooms:     rooms,
		config:    config,
		channels:  channels,
		guard:     creationGuard,
	}
}

// CreateRoom creates a room for the owner from their template. A non-nil
// userLimit overrides the template's limit (the panel's SOLO/DUO/PARTY
// buttons). The creation guard is shared with the automatic flow, so a
// manual create cannot duplicate an in-flight automatic one.
func (s *RoomControlService) CreateRoom(ctx context.Context, ownerID, displayName string, userLimit *int) (*domain.AutoRoom, error) {
	if ownerID == "" {
		return nil, ErrInvalidInput
	}
	if !s.guard.TryAcquire(ownerID) {
		return nil, ErrCreationInProgress
	}
	defer s.guard.Release(ownerID)

	logCtx := logrus.WithField("owner_id", ownerID)

	fallback := domain.DefaultTemplate(ownerID, displayName)
	template, err := s.templates.FindByOwner(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, repository.ErrTemplateNotFound) {
			logCtx.WithError(err).Error("Panel.CreateRoom: Template lookup failed, using defaults")
		}
		template = &fallback
	}
	normalized := template.Normalize(fallback.RoomName)
	if userLimit != nil {
		normalized.UserLimit = domain.ClampUserLimit(*userLimit)
	}

	cfg, err := s.config.Current(ctx)
	if err != nil {
		logCtx.WithError(err).Error("Panel.CreateRoom: Failed to load guild config")
		return nil, ErrInternalServer
	}
	parentID := cfg.OverrideCategoryID
	if parentID == "" && cfg.TriggerChannelID != "" {
		if trigger, terr := s.channels.ChannelLiveSettings(ctx, cfg.TriggerChannelID); terr == nil {
			parentID = trigger.ParentID
		}
	}

	created, err := s.channels.CreateVoiceChannel(ctx, platform.CreateVoiceChannelParams{
		GuildID:   s.guildID,
		Name:      normalized.RoomName,
		ParentID:  parentID,
		UserLimit: normalized.UserLimit,
		RTCRegion: normalized.RTCRegion,
		Reason:    fmt.Sprintf("voice room panel create for %s", ownerID),
	})
	if err != nil {
		logCtx.WithError(err).Error("Panel.CreateRoom: Channel creation failed")
		return nil, ErrInternalServer
	}
	if !created.Voice {
		_ = s.channels.DeleteChannel(ctx, created.ID, "invalid auto voice room type")
		logCtx.Warn("Panel.CreateRoom: Platform returned a non-voice channel")
		return nil, ErrInternalServer
	}

	everyone, owner := DecideLockOverrides(normalized.IsLocked)
	if err := s.channels.SetPermissionOverride(ctx, created.ID, s.guildID, everyone); err != nil {
		logCtx.WithError(err).Error("Panel.CreateRoom: Failed to set everyone override")
	}
	if err := s.channels.SetPermissionOverride(ctx, created.ID, ownerID, owner); err != nil {
		logCtx.WithError(err).Error("Panel.CreateRoom: Failed to set owner override")
	}

	room := domain.AutoRoom{ChannelID: created.ID, OwnerID: ownerID, CategoryID: created.ParentID}
	if err := s.rooms.Save(ctx, &room); err != nil {
		logCtx.WithError(err).Error("Panel.CreateRoom: Failed to register room")
		return nil, ErrInternalServer
	}

	// Persist the chosen settings so the next automatic room matches.
	if err := s.templates.Save(ctx, &normalized); err != nil {
		logCtx.WithError(err).Error("Panel.CreateRoom: Failed to save template")
	}

	logCtx.WithField("channel_id", created.ID).Info("Panel.CreateRoom: Room created")
	return &room, nil
}

// Rename changes a tracked room's display name.
func (s *RoomControlService) Rename(ctx context.Context, channelID, name string) error {
	room, err := s.trackedRoom(ctx, channelID)
	if err != nil {
		return err
	}
	normalized := domain.NormalizeRoomName(name, "")
	if normalized == "" {
		return ErrInvalidInput
	}
	if err := s.channels.ModifyVoiceChannel(ctx, channelID, platform.ModifyVoiceChannelParams{
		Name: platform.String(normalized),
	}); err != nil {
		logrus.WithError(err).WithField("channel_id", channelID).Error("Panel.Rename: Channel patch failed")
		return ErrInternalServer
	}
	s.refreshTemplate(ctx, room, nil)
	return nil
}

// SetUserLimit changes a tracked room's connect limit; 0 means unlimited.
func (s *RoomControlService) SetUserLimit(ctx context.Context, channelID string, limit int) error {
	room, err := s.trackedRoom(ctx, channelID)
	if err != nil {
		return err
	}
	clamped := domain.ClampUserLimit(limit)
	if err := s.channels.ModifyVoiceChannel(ctx, channelID, platform.ModifyVoiceChannelParams{
		UserLimit: platform.Int(clamped),
	}); err != nil {
		logrus.WithError(err).WithField("channel_id", channelID).Error("Panel.SetUserLimit: Channel patch failed")
		return ErrInternalServer
	}
	s.refreshTemplate(ctx, room, nil)
	return nil
}

// SetRegion changes a tracked room's RTC region; empty means automatic.
func (s *RoomControlService) SetRegion(ctx context.Context, channelID, region string) error {
	room, err := s.trackedRoom(ctx, channelID)
	if err != nil {
		return err
	}
	if err := s.channels.ModifyVoiceChannel(ctx, channelID, platform.ModifyVoiceChannelParams{
		RTCRegion: platform.String(region),
	}); err != nil {
		logrus.WithError(err).WithField("channel_id", channelID).Error("Panel.SetRegion: Channel patch failed")
		return ErrInternalServer
	}
	s.refreshTemplate(ctx, room, nil)
	return nil
}

// SetLock locks or unlocks a tracked room for the general membership while
// keeping the owner's rights, then records the new state in the template.
func (s *RoomControlService) SetLock(ctx context.Context, channelID string, locked bool) error {
	room, err := s.trackedRoom(ctx, channelID)
	if err != nil {
		return err
	}
	everyone, owner := DecideLockOverrides(locked)
	if err := s.channels.SetPermissionOverride(ctx, channelID, s.guildID, everyone); err != nil {
		logrus.WithError(err).WithField("channel_id", channelID).Error("Panel.SetLock: Everyone override failed")
		return ErrInternalServer
	}
	if err := s.channels.SetPermissionOverride(ctx, channelID, room.OwnerID, owner); err != nil {
		logrus.WithError(err).WithField("channel_id", channelID).Error("Panel.SetLock: Owner override failed")
		return ErrInternalServer
	}
	s.refreshTemplate(ctx, room, func(t *domain.RoomTemplate) { t.IsLocked = locked })
	return nil
}

// Invite grants a member explicit connect permission on a tracked room, used
// for letting someone into a locked room.
func (s *RoomControlService) Invite(ctx context.Context, channelID, memberID string) error {
	if memberID == "" {
		return ErrInvalidInput
	}
	if _, err := s.trackedRoom(ctx, channelID); err != nil {
		return err
	}
	if err := s.channels.SetPermissionOverride(ctx, channelID, memberID, platform.PermissionOverride{
		Connect: platform.Bool(true),
	}); err != nil {
		logrus.WithError(err).WithField("channel_id", channelID).Error("Panel.Invite: Override failed")
		return ErrInternalServer
	}
	return nil
}

// DeleteRoom tears down a tracked room regardless of occupancy, snapshotting
// its live settings first so the owner's next room looks the same. The
// registry row goes away even when the platform delete fails.
func (s *RoomControlService) DeleteRoom(ctx context.Context, channelID string) error {
	room, err := s.trackedRoom(ctx, channelID)
	if err != nil {
		return err
	}
	logCtx := logrus.WithFields(logrus.Fields{"channel_id": channelID, "owner_id": room.OwnerID})

	if live, lerr := s.channels.ChannelLiveSettings(ctx, channelID); lerr == nil && live.Voice {
		snapshot := TemplateFromLiveSettings(room.OwnerID, live)
		if serr := s.templates.Save(ctx, &snapshot); serr != nil {
			logCtx.WithError(serr).Error("Panel.DeleteRoom: Failed to snapshot template")
		}
	}
	if derr := s.channels.DeleteChannel(ctx, channelID, "voice room panel delete"); derr != nil {
		logCtx.WithError(derr).Warn("Panel.DeleteRoom: Channel deletion failed, channel may already be gone")
	}
	if ferr := s.rooms.Delete(ctx, channelID); ferr != nil {
		logCtx.WithError(ferr).Error("Panel.DeleteRoom: Failed to remove registry row")
		return ErrInternalServer
	}
	logCtx.Info("Panel.DeleteRoom: Room deleted")
	return nil
}

// Config returns the current runtime configuration.
func (s *RoomControlService) Config(ctx context.Context) (*domain.GuildConfig, error) {
	cfg, err := s.config.Current(ctx)
	if err != nil {
		logrus.WithError(err).Error("Panel.Config: Failed to load guild config")
		return nil, ErrInternalServer
	}
	return cfg, nil
}

// UpdateConfig replaces the trigger channel and override category.
func (s *RoomControlService) UpdateConfig(ctx context.Context, triggerChannelID, overrideCategoryID string) error {
	cfg, err := s.config.Current(ctx)
	if err != nil {
		logrus.WithError(err).Error("Panel.UpdateConfig: Failed to load guild config")
		return ErrInternalServer
	}
	cfg.TriggerChannelID = triggerChannelID
	cfg.OverrideCategoryID = overrideCategoryID
	if err := s.config.Save(ctx, cfg); err != nil {
		logrus.WithError(err).Error("Panel.UpdateConfig: Failed to save guild config")
		return ErrInternalServer
	}
	logrus.WithFields(logrus.Fields{
		"trigger_channel_id":   triggerChannelID,
		"override_category_id": overrideCategoryID,
	}).Info("Panel.UpdateConfig: Guild config updated")
	return nil
}

func (s *RoomControlService) trackedRoom(ctx context.Context, channelID string) (*domain.AutoRoom, error) {
	if channelID == "" {
		return nil, ErrInvalidInput
	}
	room, err := s.rooms.FindByChannelID(ctx, channelID)
	if err != nil {
		if errors.Is(err, repository.ErrAutoRoomNotFound) {
			return nil, ErrRoomNotTracked
		}
		logrus.WithError(err).WithField("channel_id", channelID).Error("Panel: Registry lookup failed")
		return nil, ErrInternalServer
	}
	return room, nil
}

// refreshTemplate re-snapshots a tracked room's live settings into its
// owner's template, with an optional mutation applied before saving (e.g. a
// lock change that the live fetch may not reflect yet).
func (s *RoomControlService) refreshTemplate(ctx context.Context, room *domain.AutoRoom, mutate func(*domain.RoomTemplate)) {
	logCtx := logrus.WithFields(logrus.Fields{"channel_id": room.ChannelID, "owner_id": room.OwnerID})
	live, err := s.channels.ChannelLiveSettings(ctx, room.ChannelID)
	if err != nil {
		logCtx.WithError(err).Warn("Panel: Could not refresh template from live settings")
		return
	}
	snapshot := TemplateFromLiveSettings(room.OwnerID, live)
	if mutate != nil {
		mutate(&snapshot)
	}
	if err := s.templates.Save(ctx, &snapshot); err != nil {
		logCtx.WithError(err).Error("Panel: Failed to save refreshed template")
	}
}
