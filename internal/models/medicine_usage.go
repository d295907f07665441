package models

import "time"

// MedicineUsage is the per-profile usage aggregate behind autofill
// suggestions: how often a medicine was logged, with what dosage last,
// and when.
type MedicineUsage struct {
	ID           uint   `gorm:"primaryKey"`
	ProfileID    uint   `gorm:"not null;uniqueIndex:uidx_profile_medicine"`
	MedicineName string `gorm:"not null;uniqueIndex:uidx_profile_medicine"`
	CommonDosage string
	UsageCount   int `gorm:"not null;default:0"`
	LastUsed     time.Time
}
