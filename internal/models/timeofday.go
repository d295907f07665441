package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// TimeOfDay is a wall-clock hour:minute value with minute granularity.
// It is kept structured internally and rendered as "HH:MM" only at the
// JSON boundary.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func NewTimeOfDay(hour int, minute int) TimeOfDay {
	return TimeOfDay{Hour: hour, Minute: minute}
}

func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(raw, "%d:%d", &hour, &minute); err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", raw, err)
	}
	value := TimeOfDay{Hour: hour, Minute: minute}
	if !value.Valid() {
		return TimeOfDay{}, fmt.Errorf("time of day %q out of range", raw)
	}
	return value, nil
}

func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Matches reports whether the minute-truncated time of day of now equals t.
func (t TimeOfDay) Matches(now time.Time) bool {
	return now.Hour() == t.Hour && now.Minute() == t.Minute
}

// At anchors the time of day on the calendar date of day, in day's location.
func (t TimeOfDay) At(day time.Time) time.Time {
	year, month, date := day.Date()
	return time.Date(year, month, date, t.Hour, t.Minute, 0, 0, day.Location())
}

func (t TimeOfDay) Before(other TimeOfDay) bool {
	if t.Hour != other.Hour {
		return t.Hour < other.Hour
	}
	return t.Minute < other.Minute
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// NormalizeTriggerTimes drops invalid values, collapses duplicates and
// returns the result in ascending order.
func NormalizeTriggerTimes(values []TimeOfDay) []TimeOfDay {
	seen := make(map[TimeOfDay]struct{}, len(values))
	normalized := make([]TimeOfDay, 0, len(values))
	for _, value := range values {
		if !value.Valid() {
			continue
		}
		if _, duplicate := seen[value]; duplicate {
			continue
		}
		seen[value] = struct{}{}
		normalized = append(normalized, value)
	}
	sort.Slice(normalized, func(i, j int) bool {
		return normalized[i].Before(normalized[j])
	})
	return normalized
}

// WeekdayTag returns the three-letter weekday tag ("Mon" .. "Sun") used in
// schedule weekday sets.
func WeekdayTag(day time.Time) string {
	return day.Format("Mon")
}
