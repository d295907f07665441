package models

import "time"

const (
	CadenceDaily            = "daily"
	CadenceSpecificWeekdays = "specific_weekdays"
	CadenceEveryOtherDay    = "every_other_day"
	CadenceWeekly           = "weekly"
)

func ValidCadenceKind(kind string) bool {
	switch kind {
	case CadenceDaily, CadenceSpecificWeekdays, CadenceEveryOtherDay, CadenceWeekly:
		return true
	default:
		return false
	}
}

// Schedule describes one medication reminder. The engine mutates only
// LastFiredAt and SnoozedUntil; everything else changes through explicit
// user actions. Inactive schedules are retained but never evaluated.
type Schedule struct {
	ID           uint   `gorm:"primaryKey"`
	ProfileID    uint   `gorm:"not null;index"`
	MedicineName string `gorm:"not null"`
	Dosage       string `gorm:"not null"`
	CadenceKind  string `gorm:"not null;default:daily"`
	// WeekdaySet holds "Mon".."Sun" tags; interpreted only when
	// CadenceKind is specific_weekdays.
	WeekdaySet   []string    `gorm:"serializer:json"`
	TriggerTimes []TimeOfDay `gorm:"serializer:json"`
	Active       bool        `gorm:"not null;default:true"`
	LastFiredAt  *time.Time
	SnoozedUntil *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (schedule Schedule) FiresOnWeekday(tag string) bool {
	for _, member := range schedule.WeekdaySet {
		if member == tag {
			return true
		}
	}
	return false
}
