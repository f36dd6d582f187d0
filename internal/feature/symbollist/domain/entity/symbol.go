// Package entity defines the domain models for the symbollist feature.
package entity

import (
	"strings"
	"time"
)

// Symbol is a ticker the service ingests candles for and runs backtests on.
// Inactive symbols stay in the table but are skipped by ingest and batch runs.
type Symbol struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:20;not null;uniqueIndex"`
	Name      string    `gorm:"size:255;not null"`
	Market    string    `gorm:"size:100;not null"`
	IsActive  bool      `gorm:"not null;default:true"`
	SortKey   int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// NormalizeCode trims and upper-cases a ticker code ("  aapl " -> "AAPL").
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
