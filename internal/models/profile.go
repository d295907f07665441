package models

import "time"

const (
	DefaultProfileColor  = "#1f6aa5"
	DefaultProfileAvatar = "👤"
)

type Profile struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"not null"`
	Age        int
	Gender     string
	Color      string `gorm:"not null;default:#1f6aa5"`
	Avatar     string `gorm:"not null;default:👤"`
	LastActive time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
