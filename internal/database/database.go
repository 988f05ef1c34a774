package database

import (
	"fmt"
	"log"
	"time"

	"chart-studio/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database initialized successfully")
	return db, nil
}

// Migrate creates or updates the schema for all models. Also used by tests
// against an in-memory database.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.ChartTemplate{},
		&models.ChartInstance{},
		&models.ExportPreset{},
		&models.MarketDataCache{},
		&models.Upload{},
		&models.CustomFont{},
		&models.CustomLogo{},
	); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}
	return nil
}
