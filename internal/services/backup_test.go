package services

import (
	"strings"
	"testing"
	"time"

	"github.com/terraincognita07/pillbox/internal/models"
)

type fakeBackupStore struct {
	profiles  []models.Profile
	schedules []models.Schedule
	records   []models.DoseRecord
	usages    []models.MedicineUsage
}

func (store *fakeBackupStore) FindByID(profileID uint) (models.Profile, bool, error) {
	for _, profile := range store.profiles {
		if profile.ID == profileID {
			return profile, true, nil
		}
	}
	return models.Profile{}, false, nil
}

func (store *fakeBackupStore) Create(profile *models.Profile) error {
	profile.ID = uint(len(store.profiles) + 1)
	store.profiles = append(store.profiles, *profile)
	return nil
}

func (store *fakeBackupStore) ListByProfile(profileID uint) ([]models.Schedule, error) {
	matched := make([]models.Schedule, 0)
	for _, schedule := range store.schedules {
		if schedule.ProfileID == profileID {
			matched = append(matched, schedule)
		}
	}
	return matched, nil
}

func (store *fakeBackupStore) CreateSchedule(schedule *models.Schedule) error {
	schedule.ID = uint(len(store.schedules) + 1)
	store.schedules = append(store.schedules, *schedule)
	return nil
}

func (store *fakeBackupStore) ListRecords(profileID uint, since *time.Time) ([]models.DoseRecord, error) {
	matched := make([]models.DoseRecord, 0)
	for _, record := range store.records {
		if record.ProfileID == profileID {
			matched = append(matched, record)
		}
	}
	return matched, nil
}

func (store *fakeBackupStore) Append(record *models.DoseRecord) error {
	record.ID = uint(len(store.records) + 1)
	store.records = append(store.records, *record)
	return nil
}

func (store *fakeBackupStore) ListUsages(profileID uint) ([]models.MedicineUsage, error) {
	matched := make([]models.MedicineUsage, 0)
	for _, usage := range store.usages {
		if usage.ProfileID == profileID {
			matched = append(matched, usage)
		}
	}
	return matched, nil
}

func (store *fakeBackupStore) CreateUsage(usage *models.MedicineUsage) error {
	usage.ID = uint(len(store.usages) + 1)
	store.usages = append(store.usages, *usage)
	return nil
}

// The interface sets overlap on method names, so the fake is wrapped
// per concern.
type fakeScheduleBackupStore struct{ *fakeBackupStore }

func (store fakeScheduleBackupStore) Create(schedule *models.Schedule) error {
	return store.CreateSchedule(schedule)
}

type fakeRecordBackupStore struct{ *fakeBackupStore }

func (store fakeRecordBackupStore) ListByProfile(profileID uint, since *time.Time) ([]models.DoseRecord, error) {
	return store.ListRecords(profileID, since)
}

type fakeUsageBackupStore struct{ *fakeBackupStore }

func (store fakeUsageBackupStore) ListByProfile(profileID uint) ([]models.MedicineUsage, error) {
	return store.ListUsages(profileID)
}

func (store fakeUsageBackupStore) Create(usage *models.MedicineUsage) error {
	return store.CreateUsage(usage)
}

func newBackupService(store *fakeBackupStore, at time.Time) *BackupService {
	service := NewBackupService(
		store,
		fakeScheduleBackupStore{store},
		fakeRecordBackupStore{store},
		fakeUsageBackupStore{store},
		time.UTC,
	)
	service.now = func() time.Time { return at }
	return service
}

func seededBackupStore(at time.Time) *fakeBackupStore {
	lastFired := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	return &fakeBackupStore{
		profiles: []models.Profile{{
			ID: 1, Name: "Grandma", Age: 78, Color: "#aa3366", Avatar: "👵",
		}},
		schedules: []models.Schedule{{
			ID:           1,
			ProfileID:    1,
			MedicineName: "Metformin",
			Dosage:       "500mg",
			CadenceKind:  models.CadenceSpecificWeekdays,
			WeekdaySet:   []string{"Mon", "Thu"},
			TriggerTimes: []models.TimeOfDay{{Hour: 8, Minute: 0}, {Hour: 20, Minute: 0}},
			Active:       true,
			LastFiredAt:  &lastFired,
		}},
		records: []models.DoseRecord{{
			ID:           1,
			ProfileID:    1,
			MedicineName: "Metformin",
			Dosage:       "500mg",
			DateTaken:    time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
			TimeTaken:    models.TimeOfDay{Hour: 8, Minute: 2},
			Notes:        "Logged from reminder",
			Completed:    true,
		}},
		usages: []models.MedicineUsage{{
			ID:           1,
			ProfileID:    1,
			MedicineName: "Metformin",
			CommonDosage: "500mg",
			UsageCount:   12,
			LastUsed:     time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		}},
	}
}

func TestBackupExportImportRoundTrip(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	source := seededBackupStore(at)
	document, err := newBackupService(source, at).Export(1)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	if document.Version != BackupFormatVersion {
		t.Fatalf("expected version %d, got %d", BackupFormatVersion, document.Version)
	}
	if document.Profile.Name != "Grandma" {
		t.Fatalf("unexpected profile %+v", document.Profile)
	}
	if len(document.Schedules) != 1 || len(document.History) != 1 || len(document.Usage) != 1 {
		t.Fatalf("unexpected document shape: %d schedules, %d records, %d usages",
			len(document.Schedules), len(document.History), len(document.Usage))
	}
	if document.Schedules[0].LastFiredAt == "" {
		t.Fatalf("expected last_fired_at to be exported")
	}
	if document.History[0].DateTaken != "2026-03-01" {
		t.Fatalf("expected date 2026-03-01, got %s", document.History[0].DateTaken)
	}

	target := &fakeBackupStore{}
	profileID, err := newBackupService(target, at).Import(document)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if profileID == 0 {
		t.Fatalf("expected a fresh profile id")
	}

	if len(target.profiles) != 1 || target.profiles[0].Name != "Grandma" {
		t.Fatalf("unexpected restored profiles: %+v", target.profiles)
	}
	restored := target.schedules[0]
	if restored.ProfileID != profileID {
		t.Fatalf("expected schedule bound to profile %d, got %d", profileID, restored.ProfileID)
	}
	if restored.CadenceKind != models.CadenceSpecificWeekdays || len(restored.WeekdaySet) != 2 {
		t.Fatalf("unexpected restored schedule: %+v", restored)
	}
	if restored.LastFiredAt == nil || !restored.LastFiredAt.Equal(*source.schedules[0].LastFiredAt) {
		t.Fatalf("expected last fired to survive the round trip")
	}
	if target.records[0].Notes != "Logged from reminder" {
		t.Fatalf("unexpected restored record: %+v", target.records[0])
	}
	if target.usages[0].UsageCount != 12 {
		t.Fatalf("expected usage count to survive, got %d", target.usages[0].UsageCount)
	}
}

func TestBackupImportRejectsNewerVersion(t *testing.T) {
	t.Parallel()

	target := &fakeBackupStore{}
	service := newBackupService(target, time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))

	_, err := service.Import(BackupDocument{Version: BackupFormatVersion + 1, Profile: BackupProfile{Name: "X"}})
	if err == nil {
		t.Fatalf("expected newer format version to be rejected")
	}
	if len(target.profiles) != 0 {
		t.Fatalf("expected nothing written on rejection")
	}
}

func TestBackupImportRequiresProfileName(t *testing.T) {
	t.Parallel()

	service := newBackupService(&fakeBackupStore{}, time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))
	if _, err := service.Import(BackupDocument{Version: BackupFormatVersion, Profile: BackupProfile{Name: "  "}}); err == nil {
		t.Fatalf("expected nameless backup to be rejected")
	}
}

func TestBackupImportRejectsUnknownCadence(t *testing.T) {
	t.Parallel()

	service := newBackupService(&fakeBackupStore{}, time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))
	document := BackupDocument{
		Version: BackupFormatVersion,
		Profile: BackupProfile{Name: "X"},
		Schedules: []BackupSchedule{{
			MedicineName: "M", Dosage: "1", CadenceKind: "hourly",
			TriggerTimes: []models.TimeOfDay{{Hour: 8, Minute: 0}},
		}},
	}
	if _, err := service.Import(document); err == nil {
		t.Fatalf("expected unknown cadence kind to be rejected")
	}
}

func TestBackupFileName(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	service := newBackupService(&fakeBackupStore{}, at)

	name := service.FileName("Grandma Rose")
	if !strings.HasPrefix(name, "pillbox_grandma-rose_20260310_") {
		t.Fatalf("unexpected file name %q", name)
	}
	if !strings.HasSuffix(name, ".json") {
		t.Fatalf("expected .json suffix, got %q", name)
	}

	fallback := service.FileName("   ")
	if !strings.HasPrefix(fallback, "pillbox_profile_") {
		t.Fatalf("expected profile fallback slug, got %q", fallback)
	}
}
