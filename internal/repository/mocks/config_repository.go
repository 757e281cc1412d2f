package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/INIRU/Tinklepaw-sub002/internal/domain"
)

// ConfigRepository is a mock of repository.ConfigRepository.
type ConfigRepository struct {
	mock.Mock
}

func (m *ConfigRepository) Current(ctx context.Context) (*domain.GuildConfig, error) {
	args := m.Called(ctx)
	var cfg *domain.GuildConfig
	if args.Get(0) != nil {
		cfg = args.Get(0).(*domain.GuildConfig)
	}
	return cfg, args.Error(1)
}

func (m *ConfigRepository) Save(ctx context.Context, cfg *domain.GuildConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}
