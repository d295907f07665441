package db

import "gorm.io/gorm"

type Repositories struct {
	Users             *UserRepository
	Profiles          *ProfileRepository
	Schedules         *ScheduleRepository
	DoseRecords       *DoseRecordRepository
	MedicineUsages    *MedicineUsageRepository
	EmergencyContacts *EmergencyContactRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:             NewUserRepository(database),
		Profiles:          NewProfileRepository(database),
		Schedules:         NewScheduleRepository(database),
		DoseRecords:       NewDoseRecordRepository(database),
		MedicineUsages:    NewMedicineUsageRepository(database),
		EmergencyContacts: NewEmergencyContactRepository(database),
	}
}
