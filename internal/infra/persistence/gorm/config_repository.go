package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/INIRU/Tinklepaw-sub002/internal/domain"
)

// guildConfigRowID pins the single configuration row.
const guildConfigRowID = 1

// GormConfigRepository is the GORM implementation of ConfigRepository.
type GormConfigRepository struct {
	db *gorm.DB
}

// NewGormConfigRepository creates the repository.
func NewGormConfigRepository(db *gorm.DB) *GormConfigRepository {
	if db == nil {
		panic("database connection cannot be nil for GormConfigRepository")
	}
	return &GormConfigRepository{db: db}
}

// Current reads the configuration row. A missing row means nothing has been
// configured yet, which is normal operation, so it returns an empty config.
func (r *GormConfigRepository) Current(ctx context.Context) (*domain.GuildConfig, error) {
	var cfg domain.GuildConfig
	err := r.db.WithContext(ctx).First(&cfg, guildConfigRowID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &domain.GuildConfig{ID: guildConfigRowID}, nil
		}
		return nil, fmt.Errorf("gorm: load guild config: %w", err)
	}
	return &cfg, nil
}

// Save upserts the configuration row.
func (r *GormConfigRepository) Save(ctx context.Context, cfg *domain.GuildConfig) error {
	cfg.ID = guildConfigRowID
	if err := r.db.WithContext(ctx).Save(cfg).Error; err != nil {
		return fmt.Errorf("gorm: save guild config: %w", err)
	}
	return nil
}
