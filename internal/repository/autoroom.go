package repository

import (
	"context"
	"time"

	"github.com/INIRU/Tinklepaw-sub002/internal/domain"
)

// AutoRoomRepository tracks live, system-created voice rooms.
type AutoRoomRepository interface {
	// FindByChannelID returns the registry row for a channel, or
	// ErrAutoRoomNotFound when the channel is not tracked.
	FindByChannelID(ctx context.Context, channelID string) (*domain.AutoRoom, error)

	// FindLatestByOwner returns the owner's most recently created room, or
	// ErrAutoRoomNotFound.
	FindLatestByOwner(ctx context.Context, ownerID string) (*domain.AutoRoom, error)

	// Save upserts the registry row keyed by ChannelID.
	Save(ctx context.Context, room *domain.AutoRoom) error

	// Delete removes the row for a channel. Deleting a channel that is not
	// tracked is a no-op, not an error; cleanup relies on this for idempotency.
	Delete(ctx context.Context, channelID string) error

	// FindCreatedBefore lists rooms created before the cutoff, oldest first,
	// capped at limit. Used by the idle-room sweep.
	FindCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.AutoRoom, error)
}
