package db

import (
	"github.com/terraincognita07/pillbox/internal/models"
	"gorm.io/gorm"
)

type EmergencyContactRepository struct {
	database *gorm.DB
}

func NewEmergencyContactRepository(database *gorm.DB) *EmergencyContactRepository {
	return &EmergencyContactRepository{database: database}
}

func (repo *EmergencyContactRepository) List() ([]models.EmergencyContact, error) {
	contacts := make([]models.EmergencyContact, 0)
	if err := repo.database.
		Order("priority ASC, contact_type ASC, contact_name ASC").
		Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

func (repo *EmergencyContactRepository) Create(contact *models.EmergencyContact) error {
	return repo.database.Create(contact).Error
}

func (repo *EmergencyContactRepository) Delete(contactID uint) error {
	return repo.database.Where("id = ?", contactID).Delete(&models.EmergencyContact{}).Error
}
