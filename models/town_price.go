package models

import "time"

// TownPrice is an observed price of a town at a turn, entered by an editor.
// Tips chain their predicted prices off these.
type TownPrice struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	HeroTown  string `gorm:"size:32;not null;uniqueIndex:idx_town_turn"`
	Turn      int    `gorm:"not null;uniqueIndex:idx_town_turn"`
	Price     int    `gorm:"not null"`
	Editor    string `gorm:"size:255"`
}
