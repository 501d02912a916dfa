package database

import (
	"fmt"
	"log"

	"ghl-timezone-sync/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitGorm opens the sqlite job store and migrates it. The default DSN is an
// in-memory database, so job history lives only as long as the process.
func InitGorm(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open job store: %w", err)
	}

	// A shared in-memory database disappears when its last connection
	// closes, and concurrent writers hit "table is locked". One long-lived
	// connection avoids both.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("job store pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := db.AutoMigrate(&models.JobRun{}); err != nil {
		return nil, fmt.Errorf("migrate job store: %w", err)
	}

	log.Println("Job store initialized")
	return db, nil
}
