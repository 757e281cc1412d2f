package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/INIRU/Tinklepaw-sub002/internal/repository"
	"github.com/INIRU/Tinklepaw-sub002/internal/tasks"
)

// Default sweep parameters, used when a task carries no payload.
const (
	DefaultSweepIdleSeconds = 120
	DefaultSweepBatchLimit  = 200
)

// RoomCleaner is the slice of the orchestrator the sweep needs: an
// idempotent, registry-keyed cleanup that only deletes empty rooms.
type RoomCleaner interface {
	CleanupChannel(ctx context.Context, channelID, reason string)
}

// AutoRoomSweepHandler processes the periodic idle-room sweep. It exists for
// rooms orphaned without a departure event: a process restart between the
// last leave and the cleanup, or an event the transport never delivered.
// Occupied rooms are protected by the cleanup's own occupancy check.
type AutoRoomSweepHandler struct {
	rooms   repository.AutoRoomRepository
	cleaner RoomCleaner
}

// NewAutoRoomSweepHandler creates the handler.
func NewAutoRoomSweepHandler(rooms repository.AutoRoomRepository, cleaner RoomCleaner) *AutoRoomSweepHandler {
	if rooms == nil {
		panic("AutoRoomRepository cannot be nil for AutoRoomSweepHandler")
	}
	if cleaner == nil {
		panic("RoomCleaner cannot be nil for AutoRoomSweepHandler")
	}
	return &AutoRoomSweepHandler{rooms: rooms, cleaner: cleaner}
}

// ProcessTask implements asynq.Handler.
func (h *AutoRoomSweepHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	payload := tasks.AutoRoomSweepPayload{
		IdleSeconds: DefaultSweepIdleSeconds,
		BatchLimit:  DefaultSweepBatchLimit,
	}
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("sweep: decode payload: %w", err)
		}
	}

	logCtx := logrus.WithField("task_type", t.Type())
	cutoff := time.Now().Add(-time.Duration(payload.IdleSeconds) * time.Second)

	rooms, err := h.rooms.FindCreatedBefore(ctx, cutoff, payload.BatchLimit)
	if err != nil {
		logCtx.WithError(err).Error("Sweep: Failed to list candidate rooms")
		return fmt.Errorf("sweep: list rooms: %w", err)
	}
	if len(rooms) == 0 {
		logCtx.Debug("Sweep: No candidate rooms")
		return nil
	}

	logCtx.Infof("Sweep: Checking %d candidate rooms", len(rooms))
	for _, room := range rooms {
		h.cleaner.CleanupChannel(ctx, room.ChannelID, "voice auto room idle janitor cleanup")
	}
	return nil
}
