package store

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the process-wide store connection, assigned by Init.
var DB *gorm.DB

// Init opens the configured database and migrates the KV schema. Should be
// called once at startup; repositories default to this connection.
func Init() error {
	config := GetConfig()

	var dialector gorm.Dialector
	switch config.Driver {
	case "postgres":
		dialector = postgres.Open(config.DSN)
	case "sqlite":
		dialector = sqlite.Open(config.DSN)
	default:
		return fmt.Errorf("unsupported store driver %q", config.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.LogLevel(config.GormLogLevel)),
	})
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", config.Driver, err)
	}

	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return fmt.Errorf("failed to migrate store schema: %w", err)
	}

	DB = db
	logrus.WithField("driver", config.Driver).Info("[store] connection established")
	return nil
}
