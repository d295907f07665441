package db

import (
	"time"

	"github.com/terraincognita07/pillbox/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MedicineUsageRepository struct {
	database *gorm.DB
}

func NewMedicineUsageRepository(database *gorm.DB) *MedicineUsageRepository {
	return &MedicineUsageRepository{database: database}
}

// Upsert increments the usage counter for (profile, medicine) or inserts
// the row with count 1, refreshing the remembered dosage and last-used
// date either way.
func (repo *MedicineUsageRepository) Upsert(profileID uint, medicineName string, dosage string, usedOn time.Time) error {
	usage := models.MedicineUsage{
		ProfileID:    profileID,
		MedicineName: medicineName,
		CommonDosage: dosage,
		UsageCount:   1,
		LastUsed:     usedOn,
	}
	return repo.database.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "profile_id"}, {Name: "medicine_name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"usage_count":   gorm.Expr("usage_count + 1"),
			"common_dosage": dosage,
			"last_used":     usedOn,
		}),
	}).Create(&usage).Error
}

func (repo *MedicineUsageRepository) ListByProfile(profileID uint) ([]models.MedicineUsage, error) {
	usages := make([]models.MedicineUsage, 0)
	if err := repo.database.
		Where("profile_id = ?", profileID).
		Order("usage_count DESC, last_used DESC").
		Find(&usages).Error; err != nil {
		return nil, err
	}
	return usages, nil
}

func (repo *MedicineUsageRepository) ListSuggestions(profileID uint, limit int) ([]models.MedicineUsage, error) {
	usages := make([]models.MedicineUsage, 0, limit)
	if err := repo.database.
		Where("profile_id = ?", profileID).
		Order("usage_count DESC, last_used DESC").
		Limit(limit).
		Find(&usages).Error; err != nil {
		return nil, err
	}
	return usages, nil
}

func (repo *MedicineUsageRepository) Create(usage *models.MedicineUsage) error {
	return repo.database.Create(usage).Error
}

func (repo *MedicineUsageRepository) FindByName(profileID uint, medicineName string) (models.MedicineUsage, bool, error) {
	usage := models.MedicineUsage{}
	result := repo.database.
		Where("profile_id = ? AND medicine_name = ?", profileID, medicineName).
		Limit(1).
		Find(&usage)
	if result.Error != nil {
		return models.MedicineUsage{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.MedicineUsage{}, false, nil
	}
	return usage, true, nil
}
