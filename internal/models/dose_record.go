package models

import "time"

// DoseRecord is one taken (or planned) dose in the history log. Records
// are append-only; they disappear only when their whole profile is
// deleted.
type DoseRecord struct {
	ID           uint      `gorm:"primaryKey"`
	ProfileID    uint      `gorm:"not null;index"`
	MedicineName string    `gorm:"not null"`
	Dosage       string    `gorm:"not null"`
	DateTaken    time.Time `gorm:"type:date;not null;index"`
	TimeTaken    TimeOfDay `gorm:"serializer:json"`
	Notes        string
	Completed    bool `gorm:"not null;default:true"`
	CreatedAt    time.Time
}
