package domain

import "time"

// AutoRoom is the registry row for a live, system-created voice room. A row
// exists iff the channel was created by this service and has not been torn
// down yet; channels without a row are never touched by cleanup, which is
// what protects manually created rooms.
type AutoRoom struct {
	ID         uint      `gorm:"primaryKey"`
	ChannelID  string    `gorm:"uniqueIndex:idx_channel;size:32;not null"` // live voice channel ID
	OwnerID    string    `gorm:"index:idx_room_owner;size:32;not null"`
	CategoryID string    `gorm:"size:32"` // parent category, empty when uncategorized
	CreatedAt  time.Time `gorm:"autoCreateTime;index:idx_room_created"`
}
