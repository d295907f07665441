package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/pillbox/internal/models"
	"github.com/terraincognita07/pillbox/internal/security"
)

// BackupFormatVersion marks the document layout; restore refuses
// documents from a newer layout.
const BackupFormatVersion = 1

const backupNonceAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

type BackupProfileStore interface {
	FindByID(profileID uint) (models.Profile, bool, error)
	Create(profile *models.Profile) error
}

type BackupScheduleStore interface {
	ListByProfile(profileID uint) ([]models.Schedule, error)
	Create(schedule *models.Schedule) error
}

type BackupRecordStore interface {
	ListByProfile(profileID uint, since *time.Time) ([]models.DoseRecord, error)
	Append(record *models.DoseRecord) error
}

type BackupUsageStore interface {
	ListByProfile(profileID uint) ([]models.MedicineUsage, error)
	Create(usage *models.MedicineUsage) error
}

// BackupService builds and restores the per-profile JSON document:
// profile, schedules, dose history and the usage aggregate. That is
// enough to fully reconstruct engine state.
type BackupService struct {
	profiles  BackupProfileStore
	schedules BackupScheduleStore
	records   BackupRecordStore
	usage     BackupUsageStore
	location  *time.Location
	now       func() time.Time
}

func NewBackupService(profiles BackupProfileStore, schedules BackupScheduleStore, records BackupRecordStore, usage BackupUsageStore, location *time.Location) *BackupService {
	if location == nil {
		location = time.Local
	}
	return &BackupService{
		profiles:  profiles,
		schedules: schedules,
		records:   records,
		usage:     usage,
		location:  location,
		now:       time.Now,
	}
}

type BackupDocument struct {
	Version    int              `json:"version"`
	ExportedAt string           `json:"exported_at"`
	Profile    BackupProfile    `json:"profile"`
	Schedules  []BackupSchedule `json:"schedules"`
	History    []BackupRecord   `json:"history"`
	Usage      []BackupUsage    `json:"usage"`
}

type BackupProfile struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender,omitempty"`
	Color  string `json:"color"`
	Avatar string `json:"avatar"`
}

type BackupSchedule struct {
	MedicineName string             `json:"medicine_name"`
	Dosage       string             `json:"dosage"`
	CadenceKind  string             `json:"cadence_kind"`
	WeekdaySet   []string           `json:"weekday_set,omitempty"`
	TriggerTimes []models.TimeOfDay `json:"trigger_times"`
	Active       bool               `json:"active"`
	LastFiredAt  string             `json:"last_fired_at,omitempty"`
	SnoozedUntil string             `json:"snoozed_until,omitempty"`
}

type BackupRecord struct {
	MedicineName string           `json:"medicine_name"`
	Dosage       string           `json:"dosage"`
	DateTaken    string           `json:"date_taken"`
	TimeTaken    models.TimeOfDay `json:"time_taken"`
	Notes        string           `json:"notes,omitempty"`
	Completed    bool             `json:"completed"`
}

type BackupUsage struct {
	MedicineName string `json:"medicine_name"`
	CommonDosage string `json:"common_dosage,omitempty"`
	UsageCount   int    `json:"usage_count"`
	LastUsed     string `json:"last_used,omitempty"`
}

func (service *BackupService) Export(profileID uint) (BackupDocument, error) {
	profile, found, err := service.profiles.FindByID(profileID)
	if err != nil {
		return BackupDocument{}, fmt.Errorf("load profile: %w", err)
	}
	if !found {
		return BackupDocument{}, fmt.Errorf("profile %d not found", profileID)
	}

	schedules, err := service.schedules.ListByProfile(profileID)
	if err != nil {
		return BackupDocument{}, fmt.Errorf("load schedules: %w", err)
	}

	records, err := service.records.ListByProfile(profileID, nil)
	if err != nil {
		return BackupDocument{}, fmt.Errorf("load history: %w", err)
	}

	usages, err := service.usage.ListByProfile(profileID)
	if err != nil {
		return BackupDocument{}, fmt.Errorf("load usage aggregate: %w", err)
	}

	document := BackupDocument{
		Version:    BackupFormatVersion,
		ExportedAt: service.now().In(service.location).Format(time.RFC3339),
		Profile: BackupProfile{
			Name:   profile.Name,
			Age:    profile.Age,
			Gender: profile.Gender,
			Color:  profile.Color,
			Avatar: profile.Avatar,
		},
		Schedules: make([]BackupSchedule, 0, len(schedules)),
		History:   make([]BackupRecord, 0, len(records)),
		Usage:     make([]BackupUsage, 0, len(usages)),
	}

	for _, schedule := range schedules {
		entry := BackupSchedule{
			MedicineName: schedule.MedicineName,
			Dosage:       schedule.Dosage,
			CadenceKind:  schedule.CadenceKind,
			WeekdaySet:   schedule.WeekdaySet,
			TriggerTimes: schedule.TriggerTimes,
			Active:       schedule.Active,
		}
		if schedule.LastFiredAt != nil {
			entry.LastFiredAt = schedule.LastFiredAt.In(service.location).Format(time.RFC3339)
		}
		if schedule.SnoozedUntil != nil {
			entry.SnoozedUntil = schedule.SnoozedUntil.In(service.location).Format(time.RFC3339)
		}
		document.Schedules = append(document.Schedules, entry)
	}

	for _, record := range records {
		document.History = append(document.History, BackupRecord{
			MedicineName: record.MedicineName,
			Dosage:       record.Dosage,
			DateTaken:    DateOnly(record.DateTaken).Format(time.DateOnly),
			TimeTaken:    record.TimeTaken,
			Notes:        record.Notes,
			Completed:    record.Completed,
		})
	}

	for _, usage := range usages {
		entry := BackupUsage{
			MedicineName: usage.MedicineName,
			CommonDosage: usage.CommonDosage,
			UsageCount:   usage.UsageCount,
		}
		if !usage.LastUsed.IsZero() {
			entry.LastUsed = DateOnly(usage.LastUsed).Format(time.DateOnly)
		}
		document.Usage = append(document.Usage, entry)
	}

	return document, nil
}

// Import recreates the document's profile under a fresh identifier and
// returns the new profile ID.
func (service *BackupService) Import(document BackupDocument) (uint, error) {
	if document.Version > BackupFormatVersion {
		return 0, fmt.Errorf("unsupported backup version %d", document.Version)
	}
	if strings.TrimSpace(document.Profile.Name) == "" {
		return 0, fmt.Errorf("backup profile has no name")
	}

	profile := models.Profile{
		Name:       document.Profile.Name,
		Age:        document.Profile.Age,
		Gender:     document.Profile.Gender,
		Color:      document.Profile.Color,
		Avatar:     document.Profile.Avatar,
		LastActive: service.now().In(service.location),
	}
	if profile.Color == "" {
		profile.Color = models.DefaultProfileColor
	}
	if profile.Avatar == "" {
		profile.Avatar = models.DefaultProfileAvatar
	}
	if err := service.profiles.Create(&profile); err != nil {
		return 0, fmt.Errorf("create profile: %w", err)
	}

	for index, entry := range document.Schedules {
		schedule := models.Schedule{
			ProfileID:    profile.ID,
			MedicineName: entry.MedicineName,
			Dosage:       entry.Dosage,
			CadenceKind:  entry.CadenceKind,
			WeekdaySet:   entry.WeekdaySet,
			TriggerTimes: models.NormalizeTriggerTimes(entry.TriggerTimes),
			Active:       entry.Active,
		}
		if !models.ValidCadenceKind(schedule.CadenceKind) {
			return 0, fmt.Errorf("schedule %d: unknown cadence kind %q", index, entry.CadenceKind)
		}
		if entry.LastFiredAt != "" {
			lastFired, err := time.ParseInLocation(time.RFC3339, entry.LastFiredAt, service.location)
			if err != nil {
				return 0, fmt.Errorf("schedule %d: parse last_fired_at: %w", index, err)
			}
			schedule.LastFiredAt = &lastFired
		}
		if entry.SnoozedUntil != "" {
			snoozed, err := time.ParseInLocation(time.RFC3339, entry.SnoozedUntil, service.location)
			if err != nil {
				return 0, fmt.Errorf("schedule %d: parse snoozed_until: %w", index, err)
			}
			schedule.SnoozedUntil = &snoozed
		}
		if err := service.schedules.Create(&schedule); err != nil {
			return 0, fmt.Errorf("restore schedule %d: %w", index, err)
		}
	}

	for index, entry := range document.History {
		dateTaken, err := time.ParseInLocation(time.DateOnly, entry.DateTaken, service.location)
		if err != nil {
			return 0, fmt.Errorf("record %d: parse date_taken: %w", index, err)
		}
		record := models.DoseRecord{
			ProfileID:    profile.ID,
			MedicineName: entry.MedicineName,
			Dosage:       entry.Dosage,
			DateTaken:    dateTaken,
			TimeTaken:    entry.TimeTaken,
			Notes:        entry.Notes,
			Completed:    entry.Completed,
		}
		if err := service.records.Append(&record); err != nil {
			return 0, fmt.Errorf("restore record %d: %w", index, err)
		}
	}

	for index, entry := range document.Usage {
		usage := models.MedicineUsage{
			ProfileID:    profile.ID,
			MedicineName: entry.MedicineName,
			CommonDosage: entry.CommonDosage,
			UsageCount:   entry.UsageCount,
		}
		if entry.LastUsed != "" {
			lastUsed, err := time.ParseInLocation(time.DateOnly, entry.LastUsed, service.location)
			if err != nil {
				return 0, fmt.Errorf("usage %d: parse last_used: %w", index, err)
			}
			usage.LastUsed = lastUsed
		}
		if err := service.usage.Create(&usage); err != nil {
			return 0, fmt.Errorf("restore usage %d: %w", index, err)
		}
	}

	return profile.ID, nil
}

// FileName builds the suggested download name for an export, carrying a
// short random nonce so repeated exports never collide.
func (service *BackupService) FileName(profileName string) string {
	slug := strings.ToLower(strings.TrimSpace(profileName))
	slug = strings.ReplaceAll(slug, " ", "-")
	if slug == "" {
		slug = "profile"
	}

	nonce, err := security.RandomString(6, backupNonceAlphabet)
	if err != nil {
		nonce = "backup"
	}
	stamp := service.now().In(service.location).Format("20060102")
	return fmt.Sprintf("pillbox_%s_%s_%s.json", slug, stamp, nonce)
}
