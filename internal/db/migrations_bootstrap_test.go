package db

import (
	"path/filepath"
	"reflect"
	"testing"

	"gorm.io/gorm"
)

func TestOpenSQLiteAppliesEmbeddedMigrationsOnCleanDatabase(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "pillbox-clean.db")
	database := openSQLiteForBootstrapTest(t, databasePath)

	expectedTables := []string{
		"users",
		"profiles",
		"schedules",
		"dose_records",
		"medicine_usages",
		"emergency_contacts",
	}
	for _, table := range expectedTables {
		if !database.Migrator().HasTable(table) {
			t.Fatalf("expected table %s to exist after migrations", table)
		}
	}

	assertAllEmbeddedMigrationsApplied(t, database)
}

func TestOpenSQLiteSeedsEmergencyContactsOnce(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "pillbox-seeds.db")
	database := openSQLiteForBootstrapTest(t, databasePath)

	var count int64
	if err := database.Raw(`SELECT COUNT(*) FROM emergency_contacts`).Scan(&count).Error; err != nil {
		t.Fatalf("count emergency contacts: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 seeded emergency contacts, got %d", count)
	}

	var firstContact struct {
		ContactName string `gorm:"column:contact_name"`
		Priority    int    `gorm:"column:priority"`
	}
	if err := database.
		Raw(`SELECT contact_name, priority FROM emergency_contacts ORDER BY priority ASC LIMIT 1`).
		Scan(&firstContact).Error; err != nil {
		t.Fatalf("load first contact: %v", err)
	}
	if firstContact.ContactName != "Emergency Services" || firstContact.Priority != 1 {
		t.Fatalf("unexpected first seeded contact: %+v", firstContact)
	}
}

func TestOpenSQLiteMigrationBootstrapIsIdempotent(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "pillbox-idempotent.db")

	firstOpen, err := OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("first open sqlite: %v", err)
	}
	firstRecords := loadMigrationRecords(t, firstOpen)

	firstSQLDB, err := firstOpen.DB()
	if err != nil {
		t.Fatalf("first open sql db: %v", err)
	}
	if err := firstSQLDB.Close(); err != nil {
		t.Fatalf("close first sql db: %v", err)
	}

	secondOpen := openSQLiteForBootstrapTest(t, databasePath)
	secondRecords := loadMigrationRecords(t, secondOpen)

	if !reflect.DeepEqual(firstRecords, secondRecords) {
		t.Fatalf("expected migration records to remain unchanged between boots, before=%v after=%v", firstRecords, secondRecords)
	}

	// Seed guards must not duplicate rows on the second boot either.
	var count int64
	if err := secondOpen.Raw(`SELECT COUNT(*) FROM emergency_contacts`).Scan(&count).Error; err != nil {
		t.Fatalf("count emergency contacts: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected seeds to stay at 3 rows, got %d", count)
	}
}

func TestMedicineUsagesUniquePerProfileAndName(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "pillbox-unique.db")
	database := openSQLiteForBootstrapTest(t, databasePath)

	insert := `INSERT INTO medicine_usages (profile_id, medicine_name, usage_count) VALUES (?, ?, ?)`
	if err := database.Exec(insert, 1, "Aspirin", 1).Error; err != nil {
		t.Fatalf("insert usage row: %v", err)
	}
	if err := database.Exec(insert, 1, "Aspirin", 1).Error; err == nil {
		t.Fatal("expected duplicate (profile, medicine) insert to fail")
	}
	// Same medicine for a different profile is fine.
	if err := database.Exec(insert, 2, "Aspirin", 1).Error; err != nil {
		t.Fatalf("insert usage row for second profile: %v", err)
	}
}

func openSQLiteForBootstrapTest(t *testing.T, databasePath string) *gorm.DB {
	t.Helper()

	database, err := OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return database
}

func assertAllEmbeddedMigrationsApplied(t *testing.T, database *gorm.DB) {
	t.Helper()

	migrations, err := loadEmbeddedMigrations()
	if err != nil {
		t.Fatalf("load embedded migrations: %v", err)
	}
	expectedVersions := make([]string, 0, len(migrations))
	for _, migration := range migrations {
		expectedVersions = append(expectedVersions, migration.Version)
	}

	var rows []struct {
		Version string `gorm:"column:version"`
	}
	if err := database.Raw(`SELECT version FROM schema_migrations ORDER BY version ASC`).Scan(&rows).Error; err != nil {
		t.Fatalf("load applied migration versions: %v", err)
	}
	actualVersions := make([]string, 0, len(rows))
	for _, row := range rows {
		actualVersions = append(actualVersions, row.Version)
	}

	if !reflect.DeepEqual(expectedVersions, actualVersions) {
		t.Fatalf("unexpected applied migration versions: expected=%v actual=%v", expectedVersions, actualVersions)
	}
}

type migrationRecord struct {
	Version   string `gorm:"column:version"`
	Name      string `gorm:"column:name"`
	AppliedAt string `gorm:"column:applied_at"`
}

func loadMigrationRecords(t *testing.T, database *gorm.DB) []migrationRecord {
	t.Helper()

	records := make([]migrationRecord, 0)
	if err := database.Raw(
		`SELECT version, name, applied_at FROM schema_migrations ORDER BY version ASC`,
	).Scan(&records).Error; err != nil {
		t.Fatalf("load migration records: %v", err)
	}
	return records
}
