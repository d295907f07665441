package services

import (
	"fmt"
	"time"
)

// Snooze suppresses a schedule's triggers until now + duration,
// overwriting any existing snooze. There is no snooze timer: expiry is
// observed (and the field cleared) by the poll loop itself.
func (engine *Engine) Snooze(scheduleID uint, duration time.Duration) (time.Time, error) {
	if duration <= 0 {
		duration = DefaultSnoozeDuration
	}

	until := engine.now().In(engine.location).Add(duration)
	if err := engine.schedules.SetSnoozedUntil(scheduleID, &until); err != nil {
		return time.Time{}, fmt.Errorf("persist snooze: %w", err)
	}

	engine.log.WithField("schedule_id", scheduleID).
		WithField("until", until.Format(time.RFC3339)).
		Info("schedule snoozed")
	return until, nil
}
