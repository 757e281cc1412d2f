package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/INIRU/Tinklepaw-sub002/internal/domain"
	"github.com/INIRU/Tinklepaw-sub002/internal/repository"
)

// GormAutoRoomRepository is the GORM implementation of AutoRoomRepository.
type GormAutoRoomRepository struct {
	db *gorm.DB
}

// NewGormAutoRoomRepository creates the repository.
func NewGormAutoRoomRepository(db *gorm.DB) *GormAutoRoomRepository {
	if db == nil {
		panic("database connection cannot be nil for GormAutoRoomRepository")
	}
	return &GormAutoRoomRepository{db: db}
}

// FindByChannelID returns the registry row for a live channel.
func (r *GormAutoRoomRepository) FindByChannelID(ctx context.Context, channelID string) (*domain.AutoRoom, error) {
	var room domain.AutoRoom
	err := r.db.WithContext(ctx).Where("channel_id = ?", channelID).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAutoRoomNotFound
		}
		return nil, fmt.Errorf("gorm: find auto room by channel %s: %w", channelID, err)
	}
	return &room, nil
}

// FindLatestByOwner returns the owner's most recently created room.
func (r *GormAutoRoomRepository) FindLatestByOwner(ctx context.Context, ownerID string) (*domain.AutoRoom, error) {
	var room domain.AutoRoom
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAutoRoomNotFound
		}
		return nil, fmt.Errorf("gorm: find latest auto room for owner %s: %w", ownerID, err)
	}
	return &room, nil
}

// Save upserts the registry row keyed by channel ID.
func (r *GormAutoRoomRepository) Save(ctx context.Context, room *domain.AutoRoom) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "channel_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"owner_id", "category_id"}),
	}).Create(room).Error
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save auto room %s: %w", room.ChannelID, err)
	}
	return nil
}

// Delete removes the row for a channel. Missing rows are not an error so
// repeated cleanup of the same room stays a no-op.
func (r *GormAutoRoomRepository) Delete(ctx context.Context, channelID string) error {
	err := r.db.WithContext(ctx).Where("channel_id = ?", channelID).Delete(&domain.AutoRoom{}).Error
	if err != nil {
		return fmt.Errorf("gorm: delete auto room %s: %w", channelID, err)
	}
	return nil
}

// FindCreatedBefore lists tracked rooms older than the cutoff, oldest first.
func (r *GormAutoRoomRepository) FindCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.AutoRoom, error) {
	var rooms []domain.AutoRoom
	err := r.db.WithContext(ctx).
		Where("created_at <= ?", cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find auto rooms created before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return rooms, nil
}
