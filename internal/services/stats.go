package services

import (
	"sort"
	"time"

	"github.com/terraincognita07/pillbox/internal/models"
)

type StatsRecordReader interface {
	ListByProfile(profileID uint, since *time.Time) ([]models.DoseRecord, error)
	CountOnDate(profileID uint, day time.Time) (int64, error)
	DistinctCompletedDates(profileID uint) ([]time.Time, error)
}

type ActiveScheduleCounter interface {
	CountActive(profileID uint) (int64, error)
}

type StatsService struct {
	records   StatsRecordReader
	schedules ActiveScheduleCounter
	location  *time.Location
	now       func() time.Time
}

func NewStatsService(records StatsRecordReader, schedules ActiveScheduleCounter, location *time.Location) *StatsService {
	if location == nil {
		location = time.Local
	}
	return &StatsService{
		records:   records,
		schedules: schedules,
		location:  location,
		now:       time.Now,
	}
}

type MedicineCount struct {
	MedicineName string `json:"medicine_name"`
	Count        int    `json:"count"`
}

type AdherenceReport struct {
	PeriodDays        int             `json:"period_days"`
	TotalRecords      int             `json:"total_records"`
	CompletedDays     int             `json:"completed_days"`
	AdherenceRate     float64         `json:"adherence_rate"`
	DistinctMedicines int             `json:"distinct_medicines"`
	MostTaken         []MedicineCount `json:"most_taken"`
}

type DashboardSummary struct {
	TodayCount      int64 `json:"today_count"`
	DayStreak       int   `json:"day_streak"`
	ActiveSchedules int64 `json:"active_schedules"`
}

// BuildReport aggregates the dose history over the trailing periodDays
// (0 means all time).
func (service *StatsService) BuildReport(profileID uint, periodDays int, mostTakenLimit int) (AdherenceReport, error) {
	var since *time.Time
	today := DateOnly(service.now().In(service.location))
	if periodDays > 0 {
		cutoff := today.AddDate(0, 0, -periodDays)
		since = &cutoff
	}

	records, err := service.records.ListByProfile(profileID, since)
	if err != nil {
		return AdherenceReport{}, err
	}

	report := AdherenceReport{PeriodDays: periodDays, TotalRecords: len(records)}

	medicines := make(map[string]int)
	completedDays := make(map[string]struct{})
	for _, record := range records {
		medicines[record.MedicineName]++
		if record.Completed {
			completedDays[DateOnly(record.DateTaken).Format(time.DateOnly)] = struct{}{}
		}
	}

	report.DistinctMedicines = len(medicines)
	report.CompletedDays = len(completedDays)
	if periodDays > 0 {
		report.AdherenceRate = float64(report.CompletedDays) / float64(periodDays) * 100
	}
	report.MostTaken = topMedicines(medicines, mostTakenLimit)
	return report, nil
}

func (service *StatsService) BuildDashboard(profileID uint) (DashboardSummary, error) {
	today := DateOnly(service.now().In(service.location))

	todayCount, err := service.records.CountOnDate(profileID, today)
	if err != nil {
		return DashboardSummary{}, err
	}

	dates, err := service.records.DistinctCompletedDates(profileID)
	if err != nil {
		return DashboardSummary{}, err
	}

	activeSchedules, err := service.schedules.CountActive(profileID)
	if err != nil {
		return DashboardSummary{}, err
	}

	return DashboardSummary{
		TodayCount:      todayCount,
		DayStreak:       Streak(dates, today),
		ActiveSchedules: activeSchedules,
	}, nil
}

// Streak counts consecutive logged days ending today. A gap before
// today (including no dose yet today) means a streak of zero.
func Streak(dates []time.Time, today time.Time) int {
	days := make([]time.Time, len(dates))
	for index, date := range dates {
		days[index] = DateOnly(date)
	}
	sort.Slice(days, func(i, j int) bool { return days[j].Before(days[i]) })

	today = DateOnly(today)
	streak := 0
	for _, day := range days {
		expected := today.AddDate(0, 0, -streak)
		if !day.Equal(expected) {
			break
		}
		streak++
	}
	return streak
}

func topMedicines(counts map[string]int, limit int) []MedicineCount {
	if limit <= 0 {
		limit = 5
	}

	ranked := make([]MedicineCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, MedicineCount{MedicineName: name, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count == ranked[j].Count {
			return ranked[i].MedicineName < ranked[j].MedicineName
		}
		return ranked[i].Count > ranked[j].Count
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
