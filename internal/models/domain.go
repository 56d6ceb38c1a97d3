package models

import (
	"time"
)

// SeedDomain is a root domain submitted for enumeration.
type SeedDomain struct {
	ID          uint       `gorm:"primaryKey" json:"-"`
	Name        string     `gorm:"not null;uniqueIndex" json:"name"`
	LastScanned *time.Time `json:"last_scanned"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
}
