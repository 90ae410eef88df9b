package models

import "time"

// Role names. Reviewers may read the ledger and submit tips; editors may also drain failed images.
const (
	RoleEditor   = "editor"
	RoleReviewer = "reviewer"
)

// Role represents account roles with numeric primary key
type Role struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string `gorm:"size:32;uniqueIndex;not null"`
	Description string `gorm:"size:255"`
}
