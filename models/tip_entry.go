package models

import "time"

// TipEntry is one ledger cell: the predicted price of a town at a target turn.
// A later tip for the same (town, target turn) replaces the earlier one.
type TipEntry struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	HeroTown    string `gorm:"size:32;not null;uniqueIndex:idx_town_target"`
	TargetTurn  int    `gorm:"not null;uniqueIndex:idx_town_target"`
	CurrentTurn int    `gorm:"not null"`
	PriceChange int    `gorm:"not null"`
	SourceURL   string `gorm:"size:1024"`
	Channel     string `gorm:"size:64;index"`
}
