// Package mocks provides testify mock implementations of the repository
// interfaces for service-level tests.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/INIRU/Tinklepaw-sub002/internal/domain"
)

// TemplateRepository is a mock of repository.TemplateRepository.
type TemplateRepository struct {
	mock.Mock
}

func (m *TemplateRepository) FindByOwner(ctx context.Context, ownerID string) (*domain.RoomTemplate, error) {
	args := m.Called(ctx, ownerID)
	var template *domain.RoomTemplate
	if args.Get(0) != nil {
		template = args.Get(0).(*domain.RoomTemplate)
	}
	return template, args.Error(1)
}

func (m *TemplateRepository) Save(ctx context.Context, template *domain.RoomTemplate) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}
