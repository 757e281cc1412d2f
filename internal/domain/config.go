package domain

import "time"

// GuildConfig is the runtime configuration row for the guild. It can change
// while the service is running, so callers read it per event instead of
// caching it at startup. A missing row (no trigger channel configured) is
// normal operation: the auto-create path simply never fires.
type GuildConfig struct {
	ID                 uint      `gorm:"primaryKey"`
	TriggerChannelID   string    `gorm:"size:32"` // voice channel whose entry creates a room
	OverrideCategoryID string    `gorm:"size:32"` // optional parent for new rooms; empty = trigger channel's parent
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}
