package db

import (
	"time"

	"github.com/terraincognita07/pillbox/internal/models"
	"gorm.io/gorm"
)

type ScheduleRepository struct {
	database *gorm.DB
}

func NewScheduleRepository(database *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{database: database}
}

func (repo *ScheduleRepository) ListByProfile(profileID uint) ([]models.Schedule, error) {
	schedules := make([]models.Schedule, 0)
	if err := repo.database.
		Where("profile_id = ?", profileID).
		Order("active DESC, id ASC").
		Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

func (repo *ScheduleRepository) ListActive(profileID uint) ([]models.Schedule, error) {
	schedules := make([]models.Schedule, 0)
	if err := repo.database.
		Where("profile_id = ? AND active = ?", profileID, true).
		Order("id ASC").
		Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

func (repo *ScheduleRepository) FindByID(scheduleID uint) (models.Schedule, bool, error) {
	schedule := models.Schedule{}
	result := repo.database.Where("id = ?", scheduleID).Limit(1).Find(&schedule)
	if result.Error != nil {
		return models.Schedule{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Schedule{}, false, nil
	}
	return schedule, true, nil
}

func (repo *ScheduleRepository) Create(schedule *models.Schedule) error {
	return repo.database.Create(schedule).Error
}

func (repo *ScheduleRepository) Save(schedule *models.Schedule) error {
	return repo.database.Save(schedule).Error
}

func (repo *ScheduleRepository) SetLastFired(scheduleID uint, firedAt time.Time) error {
	return repo.database.Model(&models.Schedule{}).
		Where("id = ?", scheduleID).
		Update("last_fired_at", firedAt).Error
}

// SetSnoozedUntil writes the snooze deadline; a nil until clears it.
func (repo *ScheduleRepository) SetSnoozedUntil(scheduleID uint, until *time.Time) error {
	return repo.database.Model(&models.Schedule{}).
		Where("id = ?", scheduleID).
		Update("snoozed_until", until).Error
}

// Deactivate soft-deletes: the schedule stops being evaluated but stays
// in the table.
func (repo *ScheduleRepository) Deactivate(scheduleID uint) error {
	return repo.database.Model(&models.Schedule{}).
		Where("id = ?", scheduleID).
		Update("active", false).Error
}

func (repo *ScheduleRepository) CountActive(profileID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Schedule{}).
		Where("profile_id = ? AND active = ?", profileID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
