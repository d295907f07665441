package db

import (
	"time"

	"github.com/terraincognita07/pillbox/internal/models"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	database *gorm.DB
}

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{database: database}
}

func (repo *ProfileRepository) List() ([]models.Profile, error) {
	profiles := make([]models.Profile, 0)
	if err := repo.database.Order("last_active DESC, id ASC").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (repo *ProfileRepository) FindByID(profileID uint) (models.Profile, bool, error) {
	profile := models.Profile{}
	result := repo.database.Where("id = ?", profileID).Limit(1).Find(&profile)
	if result.Error != nil {
		return models.Profile{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Profile{}, false, nil
	}
	return profile, true, nil
}

func (repo *ProfileRepository) Create(profile *models.Profile) error {
	return repo.database.Create(profile).Error
}

func (repo *ProfileRepository) Save(profile *models.Profile) error {
	return repo.database.Save(profile).Error
}

func (repo *ProfileRepository) TouchLastActive(profileID uint, at time.Time) error {
	return repo.database.Model(&models.Profile{}).
		Where("id = ?", profileID).
		Update("last_active", at).Error
}

// Delete removes the profile together with its schedules, history and
// usage aggregate in one transaction.
func (repo *ProfileRepository) Delete(profileID uint) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("profile_id = ?", profileID).Delete(&models.DoseRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("profile_id = ?", profileID).Delete(&models.Schedule{}).Error; err != nil {
			return err
		}
		if err := tx.Where("profile_id = ?", profileID).Delete(&models.MedicineUsage{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", profileID).Delete(&models.Profile{}).Error
	})
}
