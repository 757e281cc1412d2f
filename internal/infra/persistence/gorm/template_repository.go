package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/INIRU/Tinklepaw-sub002/internal/domain"
	"github.com/INIRU/Tinklepaw-sub002/internal/repository"
)

// GormTemplateRepository is the GORM implementation of TemplateRepository.
type GormTemplateRepository struct {
	db *gorm.DB
}

// NewGormTemplateRepository creates the repository.
func NewGormTemplateRepository(db *gorm.DB) *GormTemplateRepository {
	if db == nil {
		panic("database connection cannot be nil for GormTemplateRepository")
	}
	return &GormTemplateRepository{db: db}
}

// FindByOwner returns the owner's saved template.
func (r *GormTemplateRepository) FindByOwner(ctx context.Context, ownerID string) (*domain.RoomTemplate, error) {
	var template domain.RoomTemplate
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("gorm: find template for owner %s: %w", ownerID, err)
	}
	return &template, nil
}

// Save upserts the template keyed by owner. Every save overwrites the whole
// preference row; templates are never appended.
func (r *GormTemplateRepository) Save(ctx context.Context, template *domain.RoomTemplate) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"room_name", "user_limit", "rtc_region", "is_locked", "updated_at"}),
	}).Create(template).Error
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save template for owner %s: %w", template.OwnerID, err)
	}
	return nil
}
