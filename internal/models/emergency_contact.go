package models

type EmergencyContact struct {
	ID          uint   `gorm:"primaryKey"`
	ContactName string `gorm:"not null"`
	PhoneNumber string `gorm:"not null"`
	ContactType string
	Priority    int `gorm:"not null;default:1"`
}
