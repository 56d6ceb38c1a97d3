package database

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"subcatalog/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the SQLite catalog at dbPath, creating the parent
// directory when needed. Timestamps are produced in UTC.
func Open(dbPath string) (*gorm.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		log.Printf("Database file %s does not exist. Creating it...", dbPath)
	}

	return gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  logger.Default.LogMode(logger.Silent),
	})
}

// Migrate creates the seed domain and target tables if absent.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.SeedDomain{}, &models.Target{})
}
