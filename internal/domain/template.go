package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// MaxRoomNameLength is the longest room name the platform accepts.
	MaxRoomNameLength = 90
	// MaxUserLimit is the largest connect limit the platform accepts; 0 means unlimited.
	MaxUserLimit = 99
)

// RoomTemplate is the durable per-owner room preference. It is overwritten on
// every save and never deleted automatically, so it survives the room itself.
type RoomTemplate struct {
	ID        uint      `gorm:"primaryKey"`
	OwnerID   string    `gorm:"uniqueIndex:idx_owner;size:32;not null"` // platform member ID of the owner
	RoomName  string    `gorm:"size:191;not null"`
	UserLimit int       `gorm:"not null;default:0"` // 0 = unlimited
	RTCRegion string    `gorm:"size:64"`            // empty = automatic
	IsLocked  bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// DefaultTemplate returns the template used for an owner with no saved
// preference: "<display name>의 통화방", unlimited, automatic region, unlocked.
func DefaultTemplate(ownerID, displayName string) RoomTemplate {
	return RoomTemplate{
		OwnerID:  ownerID,
		RoomName: fmt.Sprintf("%s의 통화방", displayName),
	}
}

// Normalize clamps the template fields into the ranges the platform accepts.
// It is total: any input degrades to a usable value instead of an error, so a
// broken stored template can never block room creation.
func (t RoomTemplate) Normalize(fallbackName string) RoomTemplate {
	t.RoomName = NormalizeRoomName(t.RoomName, fallbackName)
	t.UserLimit = ClampUserLimit(t.UserLimit)
	return t
}

// ClampUserLimit truncates a connect limit into [0, MaxUserLimit].
func ClampUserLimit(limit int) int {
	if limit < 0 {
		return 0
	}
	if limit > MaxUserLimit {
		return MaxUserLimit
	}
	return limit
}

// NormalizeRoomName trims the name, substitutes the fallback when the result
// is empty, and truncates to MaxRoomNameLength without splitting a rune.
func NormalizeRoomName(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fallback
	}
	runes := []rune(name)
	if len(runes) > MaxRoomNameLength {
		return string(runes[:MaxRoomNameLength])
	}
	return name
}
