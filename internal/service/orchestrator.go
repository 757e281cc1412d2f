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

// VoiceStateService is the auto-room orchestrator. It consumes presence
// transitions, drives the lifecycle engine's decisions against the platform,
// and keeps the template store and room registry in sync with the live
// channels. Store updates follow the corresponding platform effect; platform
// failures degrade to log-and-continue so one bad call only loses one flow,
// and the next qualifying event retries the equivalent action implicitly.
type VoiceStateService struct {
	guildID   string
	templates repository.TemplateRepository
	rooms     repository.AutoRoomRepository
	config    repository.ConfigRepository
	channels  platform.ChannelAPI
	guard     *guard.CreationGuard
}

// NewVoiceStateService creates the orchestrator.
func NewVoiceStateService(
	guildID string,
	templates repository.TemplateRepository,
	rooms repository.AutoRoomRepository,
	config repository.ConfigRepository,
	channels platform.ChannelAPI,
	creationGuard *guard.CreationGuard,
) *VoiceStateService {
	if guildID == "" {
		panic("guild ID cannot be empty for VoiceStateService")
	}
	if templates == nil || rooms == nil || config == nil || channels == nil || creationGuard == nil {
		panic("VoiceStateService dependencies cannot be nil")
	}
	return &VoiceStateService{
		guildID:   guildID,
		templates: templates,
		rooms:     rooms,
		config:    config,
		channels:  channels,
		guard:     creationGuard,
	}
}

// HandleVoiceState processes one presence transition. Calls for the same
// member arrive serialized by the gateway dispatcher; calls for different
// members may run concurrently.
func (s *VoiceStateService) HandleVoiceState(ctx context.Context, ev domain.VoiceStateEvent) {
	logCtx := logrus.WithFields(logrus.Fields{
		"member_id": ev.MemberID,
		"prev":      ev.PrevChannelID,
		"next":      ev.NewChannelID,
	})

	// Runtime config is re-read per event; the trigger channel can change
	// while the service is running.
	cfg, err := s.config.Current(ctx)
	if err != nil {
		logCtx.WithError(err).Error("VoiceState: Failed to load guild config, dropping event")
		return
	}

	var vacated *domain.AutoRoom
	if ev.PrevChannelID != "" {
		vacated, err = s.rooms.FindByChannelID(ctx, ev.PrevChannelID)
		if err != nil && !errors.Is(err, repository.ErrAutoRoomNotFound) {
			logCtx.WithError(err).Error("VoiceState: Registry lookup failed, treating channel as untracked")
		}
	}

	act := Classify(ClassifyInput{
		Event:            ev,
		GuildID:          s.guildID,
		TriggerChannelID: cfg.TriggerChannelID,
		LeftRoomTracked:  vacated != nil,
		OwnerMidCreate:   s.guard.Held(ev.MemberID),
	})

	if act.Cleanup {
		s.CleanupTrackedRoom(ctx, vacated, "auto voice room empty cleanup")
	}
	if act.Create {
		s.createRoomFor(ctx, cfg, ev)
	}
}

// CleanupTrackedRoom tears down a tracked room once it holds no humans.
// Occupancy is re-fetched here, after the departure, so stale or reordered
// events cannot delete an occupied room. Channels that vanished or changed
// type out-of-band just lose their registry row. The registry row is dropped
// unconditionally once snapshot and deletion have been attempted, so a single
// failed delete call cannot pin a stale row forever. Re-running this for an
// already-removed room is a no-op.
func (s *VoiceStateService) CleanupTrackedRoom(ctx context.Context, room *domain.AutoRoom, reason string) {
	if room == nil {
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"channel_id": room.ChannelID,
		"owner_id":   room.OwnerID,
	})

	live, err := s.channels.ChannelLiveSettings(ctx, room.ChannelID)
	if err != nil {
		logCtx.WithError(err).Info("Cleanup: Channel already gone, dropping registry row")
		s.forgetRoom(ctx, room.ChannelID, logCtx)
		return
	}
	if !live.Voice {
		logCtx.Warn("Cleanup: Tracked channel is no longer a voice channel, dropping registry row")
		s.forgetRoom(ctx, room.ChannelID, logCtx)
		return
	}

	occupants, err := s.channels.ChannelOccupants(ctx, room.ChannelID)
	if err != nil {
		logCtx.WithError(err).Error("Cleanup: Occupancy check failed, leaving room alone")
		return
	}
	if HumanCount(occupants) > 0 {
		logCtx.Debug("Cleanup: Room still occupied, skipping")
		return
	}

	// Snapshot before deletion: losing the latest tweak is preferable to
	// leaking the channel, so a failed save does not stop the teardown.
	snapshot := TemplateFromLiveSettings(room.OwnerID, live)
	if err := s.templates.Save(ctx, &snapshot); err != nil {
		logCtx.WithError(err).Error("Cleanup: Failed to snapshot live settings into template")
	}

	if err := s.channels.DeleteChannel(ctx, room.ChannelID, reason); err != nil {
		logCtx.WithError(err).Warn("Cleanup: Channel deletion failed, channel may already be gone")
	}
	s.forgetRoom(ctx, room.ChannelID, logCtx)
	logCtx.Info("Cleanup: Auto room torn down")
}

// CleanupChannel is the registry-keyed entry point used by the janitor sweep.
// Untracked channels are a guaranteed no-op.
func (s *VoiceStateService) CleanupChannel(ctx context.Context, channelID, reason string) {
	room, err := s.rooms.FindByChannelID(ctx, channelID)
	if err != nil {
		if !errors.Is(err, repository.ErrAutoRoomNotFound) {
			logrus.WithError(err).WithField("channel_id", channelID).Error("Cleanup: Registry lookup failed")
		}
		return
	}
	s.CleanupTrackedRoom(ctx, room, reason)
}

func (s *VoiceStateService) forgetRoom(ctx context.Context, channelID string, logCtx *logrus.Entry) {
	if err := s.rooms.Delete(ctx, channelID); err != nil {
		logCtx.WithError(err).Error("Cleanup: Failed to remove registry row")
	}
}

// createRoomFor runs the trigger-join path: guard, template, create, lock,
// register, move. The guard insert and its deferred release are the only two
// steps that must not be skipped; everything else degrades to log-and-return.
func (s *VoiceStateService) createRoomFor(ctx context.Context, cfg *domain.GuildConfig, ev domain.VoiceStateEvent) {
	logCtx := logrus.WithFields(logrus.Fields{
		"owner_id": ev.MemberID,
		"trigger":  cfg.TriggerChannelID,
	})

	// Checked-and-set before any asynchronous work; this is the sole defense
	// against duplicate rooms from rapid repeated trigger joins.
	if !s.guard.TryAcquire(ev.MemberID) {
		logCtx.Debug("Create: Owner already mid-creation, ignoring duplicate trigger join")
		return
	}
	defer s.guard.Release(ev.MemberID)

	// An owner who already has a live room gets moved back into it instead
	// of a second room. A dead row falls through to normal creation.
	if existing, err := s.rooms.FindLatestByOwner(ctx, ev.MemberID); err == nil {
		if live, lerr := s.channels.ChannelLiveSettings(ctx, existing.ChannelID); lerr == nil && live.Voice {
			logCtx.WithField("channel_id", existing.ChannelID).Info("Create: Reusing existing auto room")
			if merr := s.channels.MoveMember(ctx, s.guildID, ev.MemberID, existing.ChannelID); merr != nil {
				logCtx.WithError(merr).Warn("Create: Failed to move owner into existing room")
			}
			return
		}
		s.forgetRoom(ctx, existing.ChannelID, logCtx)
	} else if !errors.Is(err, repository.ErrAutoRoomNotFound) {
		logCtx.WithError(err).Error("Create: Registry lookup for existing room failed")
	}

	template := s.loadTemplate(ctx, ev, logCtx)

	parentID := cfg.OverrideCategoryID
	if parentID == "" {
		if trigger, err := s.channels.ChannelLiveSettings(ctx, cfg.TriggerChannelID); err == nil {
			parentID = trigger.ParentID
		} else {
			logCtx.WithError(err).Warn("Create: Could not resolve trigger channel parent, creating at top level")
		}
	}

	created, err := s.channels.CreateVoiceChannel(ctx, platform.CreateVoiceChannelParams{
		GuildID:   s.guildID,
		Name:      template.RoomName,
		ParentID:  parentID,
		UserLimit: template.UserLimit,
		RTCRegion: template.RTCRegion,
		Reason:    fmt.Sprintf("voice auto room create for %s", ev.MemberName),
	})
	if err != nil {
		logCtx.WithError(err).Error("Create: Channel creation failed")
		return
	}
	logCtx = logCtx.WithField("channel_id", created.ID)

	// Defensive check against platform inconsistency: never register or move
	// anyone into something that is not actually a voice channel.
	if !created.Voice {
		logCtx.Warn("Create: Platform returned a non-voice channel, deleting it")
		if derr := s.channels.DeleteChannel(ctx, created.ID, "invalid auto voice room type"); derr != nil {
			logCtx.WithError(derr).Error("Create: Failed to delete invalid channel")
		}
		return
	}

	s.applyLockOverrides(ctx, created.ID, ev.MemberID, template.IsLocked, logCtx)

	room := domain.AutoRoom{
		ChannelID:  created.ID,
		OwnerID:    ev.MemberID,
		CategoryID: created.ParentID,
	}
	if err := s.rooms.Save(ctx, &room); err != nil {
		// The room exists but is untracked; skip the move rather than risk
		// deleting a channel the owner may already be sitting in.
		logCtx.WithError(err).Error("Create: Failed to register auto room")
		return
	}

	// Best-effort tail step: the room's existence does not depend on it.
	s.moveOwnerIn(ctx, cfg.TriggerChannelID, ev.MemberID, created.ID, logCtx)
	logCtx.Info("Create: Auto room created")
}

func (s *VoiceStateService) loadTemplate(ctx context.Context, ev domain.VoiceStateEvent, logCtx *logrus.Entry) domain.RoomTemplate {
	fallback := domain.DefaultTemplate(ev.MemberID, ev.MemberName)
	template, err := s.templates.FindByOwner(ctx, ev.MemberID)
	if err != nil {
		if !errors.Is(err, repository.ErrTemplateNotFound) {
			logCtx.WithError(err).Error("Create: Template lookup failed, using defaults")
		}
		return fallback.Normalize(fallback.RoomName)
	}
	return template.Normalize(fallback.RoomName)
}

func (s *VoiceStateService) applyLockOverrides(ctx context.Context, channelID, ownerID string, locked bool, logCtx *logrus.Entry) {
	everyone, owner := DecideLockOverrides(locked)
	if err := s.channels.SetPermissionOverride(ctx, channelID, s.guildID, everyone); err != nil {
		logCtx.WithError(err).Error("Create: Failed to set everyone override")
	}
	if err := s.channels.SetPermissionOverride(ctx, channelID, ownerID, owner); err != nil {
		logCtx.WithError(err).Error("Create: Failed to set owner override")
	}
}

// moveOwnerIn moves the owner into the new room, but only when they are still
// waiting in the trigger channel; they may have left during creation.
func (s *VoiceStateService) moveOwnerIn(ctx context.Context, triggerChannelID, memberID, channelID string, logCtx *logrus.Entry) {
	occupants, err := s.channels.ChannelOccupants(ctx, triggerChannelID)
	if err != nil {
		logCtx.WithError(err).Warn("Create: Could not verify owner still in trigger channel, skipping move")
		return
	}
	for _, o := range occupants {
		if o.MemberID == memberID {
			if err := s.channels.MoveMember(ctx, s.guildID, memberID, channelID); err != nil {
				logCtx.WithError(err).Warn("Create: Failed to move owner into new room")
			}
			return
		}
	}
	logCtx.Debug("Create: Owner left the trigger channel during creation, skipping move")
}
