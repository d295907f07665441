package services

import (
	"testing"
	"time"

	"github.com/terraincognita07/pillbox/internal/models"
)

type fakeStatsStore struct {
	records []models.DoseRecord
	active  int64
}

func (store *fakeStatsStore) ListByProfile(profileID uint, since *time.Time) ([]models.DoseRecord, error) {
	matched := make([]models.DoseRecord, 0)
	for _, record := range store.records {
		if record.ProfileID != profileID {
			continue
		}
		if since != nil && record.DateTaken.Before(*since) {
			continue
		}
		matched = append(matched, record)
	}
	return matched, nil
}

func (store *fakeStatsStore) CountOnDate(profileID uint, day time.Time) (int64, error) {
	var count int64
	for _, record := range store.records {
		if record.ProfileID == profileID && DateOnly(record.DateTaken).Equal(DateOnly(day)) {
			count++
		}
	}
	return count, nil
}

func (store *fakeStatsStore) DistinctCompletedDates(profileID uint) ([]time.Time, error) {
	seen := make(map[time.Time]struct{})
	dates := make([]time.Time, 0)
	for _, record := range store.records {
		if record.ProfileID != profileID || !record.Completed {
			continue
		}
		day := DateOnly(record.DateTaken)
		if _, duplicate := seen[day]; duplicate {
			continue
		}
		seen[day] = struct{}{}
		dates = append(dates, day)
	}
	return dates, nil
}

func (store *fakeStatsStore) CountActive(profileID uint) (int64, error) {
	return store.active, nil
}

func doseOn(day time.Time, medicine string, completed bool) models.DoseRecord {
	return models.DoseRecord{
		ProfileID:    1,
		MedicineName: medicine,
		Dosage:       "1 tablet",
		DateTaken:    DateOnly(day),
		TimeTaken:    models.TimeOfDay{Hour: 8, Minute: 0},
		Completed:    completed,
	}
}

func TestStreak(t *testing.T) {
	t.Parallel()

	today := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	day := func(offset int) time.Time { return today.AddDate(0, 0, offset) }

	cases := []struct {
		name  string
		dates []time.Time
		want  int
	}{
		{name: "no history", dates: nil, want: 0},
		{name: "single dose today", dates: []time.Time{day(0)}, want: 1},
		{name: "three consecutive days", dates: []time.Time{day(0), day(-1), day(-2)}, want: 3},
		{name: "gap before today breaks streak", dates: []time.Time{day(-1), day(-2)}, want: 0},
		{name: "gap in the middle", dates: []time.Time{day(0), day(-1), day(-3), day(-4)}, want: 2},
		{name: "unsorted input", dates: []time.Time{day(-2), day(0), day(-1)}, want: 3},
	}

	for _, testCase := range cases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			if got := Streak(testCase.dates, today); got != testCase.want {
				t.Fatalf("expected streak %d, got %d", testCase.want, got)
			}
		})
	}
}

func TestBuildReport(t *testing.T) {
	t.Parallel()

	today := time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)
	store := &fakeStatsStore{records: []models.DoseRecord{
		doseOn(today, "Aspirin", true),
		doseOn(today.AddDate(0, 0, -1), "Aspirin", true),
		doseOn(today.AddDate(0, 0, -1), "Vitamin D", true),
		doseOn(today.AddDate(0, 0, -2), "Aspirin", false),
		doseOn(today.AddDate(0, 0, -40), "Old Med", true),
	}}

	service := NewStatsService(store, store, time.UTC)
	service.now = func() time.Time { return today }

	report, err := service.BuildReport(1, 30, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.PeriodDays != 30 {
		t.Fatalf("expected period 30, got %d", report.PeriodDays)
	}
	if report.TotalRecords != 4 {
		t.Fatalf("expected 4 records in the window, got %d", report.TotalRecords)
	}
	if report.CompletedDays != 2 {
		t.Fatalf("expected 2 completed days, got %d", report.CompletedDays)
	}
	if report.DistinctMedicines != 2 {
		t.Fatalf("expected 2 distinct medicines, got %d", report.DistinctMedicines)
	}
	if len(report.MostTaken) == 0 || report.MostTaken[0].MedicineName != "Aspirin" || report.MostTaken[0].Count != 3 {
		t.Fatalf("expected Aspirin x3 on top, got %+v", report.MostTaken)
	}
	if want := float64(2) / 30 * 100; report.AdherenceRate != want {
		t.Fatalf("expected adherence rate %.2f, got %.2f", want, report.AdherenceRate)
	}
}

func TestBuildReportAllTime(t *testing.T) {
	t.Parallel()

	today := time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)
	store := &fakeStatsStore{records: []models.DoseRecord{
		doseOn(today.AddDate(0, 0, -40), "Old Med", true),
	}}

	service := NewStatsService(store, store, time.UTC)
	service.now = func() time.Time { return today }

	report, err := service.BuildReport(1, 0, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TotalRecords != 1 {
		t.Fatalf("expected all-time report to include old records, got %d", report.TotalRecords)
	}
	if report.AdherenceRate != 0 {
		t.Fatalf("expected no rate without a bounded period, got %.2f", report.AdherenceRate)
	}
}

func TestBuildDashboard(t *testing.T) {
	t.Parallel()

	today := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	store := &fakeStatsStore{
		records: []models.DoseRecord{
			doseOn(today, "Aspirin", true),
			doseOn(today, "Vitamin D", true),
			doseOn(today.AddDate(0, 0, -1), "Aspirin", true),
		},
		active: 3,
	}

	service := NewStatsService(store, store, time.UTC)
	service.now = func() time.Time { return today }

	summary, err := service.BuildDashboard(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TodayCount != 2 {
		t.Fatalf("expected 2 doses today, got %d", summary.TodayCount)
	}
	if summary.DayStreak != 2 {
		t.Fatalf("expected streak of 2, got %d", summary.DayStreak)
	}
	if summary.ActiveSchedules != 3 {
		t.Fatalf("expected 3 active schedules, got %d", summary.ActiveSchedules)
	}
}

func TestTopMedicinesOrderAndLimit(t *testing.T) {
	t.Parallel()

	counts := map[string]int{"B": 2, "A": 2, "C": 5, "D": 1}
	ranked := topMedicines(counts, 3)

	if len(ranked) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(ranked))
	}
	if ranked[0].MedicineName != "C" {
		t.Fatalf("expected C first, got %s", ranked[0].MedicineName)
	}
	// Ties break alphabetically.
	if ranked[1].MedicineName != "A" || ranked[2].MedicineName != "B" {
		t.Fatalf("unexpected tie order: %+v", ranked)
	}
}
