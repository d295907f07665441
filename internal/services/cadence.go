package services

import (
	"math"
	"time"

	"github.com/terraincognita07/pillbox/internal/models"
)

// DateOnly strips the time-of-day component, keeping the location.
func DateOnly(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, value.Location())
}

// DaysBetweenDates counts whole calendar days from the date of from to
// the date of to, ignoring time-of-day on both sides.
func DaysBetweenDates(from time.Time, to time.Time) int {
	delta := DateOnly(to).Sub(DateOnly(from))
	return int(math.Round(delta.Hours() / 24))
}

// IsDue decides whether a schedule should fire for the given trigger
// time at now. It is pure: minute-boundary deduplication and snooze
// suppression are the engine's job.
//
// Daily fires whenever the minute-truncated time of day matches the
// trigger. SpecificWeekdays additionally requires today's weekday tag in
// the schedule's weekday set (an empty set never fires). EveryOtherDay
// and Weekly require at least 2 (respectively 7) whole days since the
// date of the last fire; a schedule that has never fired is always due.
func IsDue(schedule models.Schedule, trigger models.TimeOfDay, now time.Time) bool {
	if !trigger.Matches(now) {
		return false
	}

	switch schedule.CadenceKind {
	case models.CadenceDaily:
		return true
	case models.CadenceSpecificWeekdays:
		return schedule.FiresOnWeekday(models.WeekdayTag(now))
	case models.CadenceEveryOtherDay:
		return daysSinceLastFire(schedule, now) >= 2
	case models.CadenceWeekly:
		return daysSinceLastFire(schedule, now) >= 7
	default:
		return false
	}
}

// daysSinceLastFire compares date components only: a fire late on day D
// still blocks day D+1 exactly as one at midnight would. Never-fired
// schedules report an unreachable high count so the first occurrence
// always fires.
func daysSinceLastFire(schedule models.Schedule, now time.Time) int {
	if schedule.LastFiredAt == nil {
		return math.MaxInt32
	}
	return DaysBetweenDates(*schedule.LastFiredAt, now)
}
