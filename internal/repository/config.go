package repository

import (
	"context"

	"github.com/INIRU/Tinklepaw-sub002/internal/domain"
)

// ConfigRepository stores the guild's runtime configuration.
type ConfigRepository interface {
	// Current returns the live configuration. When no row exists yet it
	// returns a zero-value config (no trigger channel) rather than an error.
	Current(ctx context.Context) (*domain.GuildConfig, error)

	// Save upserts the single configuration row.
	Save(ctx context.Context, cfg *domain.GuildConfig) error
}
