package setup

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/INIRU/Tinklepaw-sub002/internal/domain"
)

// MigrateDB creates or updates the tables backing the template store, the
// room registry and the runtime guild config.
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}

	err := db.AutoMigrate(
		&domain.RoomTemplate{},
		&domain.AutoRoom{},
		&domain.GuildConfig{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate tables: %w", err)
	}

	logrus.Info("Database migration completed successfully")
	return nil
}
