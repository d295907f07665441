package db

import (
	"time"

	"github.com/terraincognita07/pillbox/internal/models"
	"gorm.io/gorm"
)

type DoseRecordRepository struct {
	database *gorm.DB
}

func NewDoseRecordRepository(database *gorm.DB) *DoseRecordRepository {
	return &DoseRecordRepository{database: database}
}

func (repo *DoseRecordRepository) Append(record *models.DoseRecord) error {
	return repo.database.Create(record).Error
}

func (repo *DoseRecordRepository) ListByProfile(profileID uint, since *time.Time) ([]models.DoseRecord, error) {
	query := repo.database.Where("profile_id = ?", profileID)
	if since != nil {
		query = query.Where("date_taken >= ?", *since)
	}

	records := make([]models.DoseRecord, 0)
	if err := query.Order("date_taken DESC, id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (repo *DoseRecordRepository) CountOnDate(profileID uint, day time.Time) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.DoseRecord{}).
		Where("profile_id = ? AND date_taken = ?", profileID, day).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DistinctCompletedDates returns, newest first, the dates carrying at
// least one completed dose. Feeds the streak calculation.
func (repo *DoseRecordRepository) DistinctCompletedDates(profileID uint) ([]time.Time, error) {
	dates := make([]time.Time, 0)
	if err := repo.database.Model(&models.DoseRecord{}).
		Distinct("date_taken").
		Where("profile_id = ? AND completed = ?", profileID, true).
		Order("date_taken DESC").
		Pluck("date_taken", &dates).Error; err != nil {
		return nil, err
	}
	return dates, nil
}
