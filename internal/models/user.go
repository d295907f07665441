package models

import "time"

// User is the single owner account guarding the API. Profiles (family
// members) live in their own table; the user only authenticates.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
