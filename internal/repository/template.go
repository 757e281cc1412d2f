package repository

import (
	"context"

	"github.com/INIRU/Tinklepaw-sub002/internal/domain"
)

// TemplateRepository persists per-owner room templates.
type TemplateRepository interface {
	// FindByOwner returns the owner's template, or ErrTemplateNotFound.
	FindByOwner(ctx context.Context, ownerID string) (*domain.RoomTemplate, error)

	// Save upserts the template keyed by OwnerID. Last write wins; templates
	// are owner-scoped so concurrent writers are rare by construction.
	Save(ctx context.Context, template *domain.RoomTemplate) error
}
