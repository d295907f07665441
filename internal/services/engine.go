package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/pillbox/internal/models"
)

const (
	DefaultPollInterval   = 5 * time.Second
	DefaultSnoozeDuration = time.Hour
)

// ScheduleStore is the persistence surface the engine needs. The engine
// only ever writes the two fields it owns: last_fired_at and
// snoozed_until.
type ScheduleStore interface {
	ListActive(profileID uint) ([]models.Schedule, error)
	SetLastFired(scheduleID uint, firedAt time.Time) error
	SetSnoozedUntil(scheduleID uint, until *time.Time) error
}

// TriggerEvent is emitted once per due (schedule, trigger time, calendar
// minute). Events are ephemeral: once emitted they count as delivered
// and are never re-emitted, even if the follow-up last-fired write
// fails.
type TriggerEvent struct {
	ScheduleID    uint             `json:"schedule_id"`
	ProfileID     uint             `json:"profile_id"`
	MedicineName  string           `json:"medicine_name"`
	Dosage        string           `json:"dosage"`
	ScheduledTime models.TimeOfDay `json:"scheduled_time"`
	FiredAt       time.Time        `json:"fired_at"`
}

// Engine polls the active profile's schedules and turns due trigger
// times into TriggerEvents. One profile session runs at a time; starting
// a new one replaces the previous session together with its
// minute-dedup marker.
type Engine struct {
	schedules    ScheduleStore
	location     *time.Location
	log          *logrus.Logger
	pollInterval time.Duration
	now          func() time.Time

	mu      sync.Mutex
	session *pollSession
	cancel  context.CancelFunc

	subscribersMu sync.Mutex
	subscribers   map[int]chan TriggerEvent
	nextSubID     int
}

// pollSession is the per-profile loop state. lastSeenMinute is what
// keeps a 5s ticker from firing the same minute twice; it dies with the
// session on profile switch.
type pollSession struct {
	profileID      uint
	lastSeenMinute time.Time
}

func NewEngine(schedules ScheduleStore, location *time.Location, logger *logrus.Logger, pollInterval time.Duration) *Engine {
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if pollInterval <= 0 || pollInterval > time.Minute {
		pollInterval = DefaultPollInterval
	}
	return &Engine{
		schedules:    schedules,
		location:     location,
		log:          logger,
		pollInterval: pollInterval,
		now:          time.Now,
		subscribers:  make(map[int]chan TriggerEvent),
	}
}

// Start begins polling for the given profile, replacing any running
// session. The loop stops when ctx is cancelled or Stop is called.
func (engine *Engine) Start(ctx context.Context, profileID uint) {
	engine.mu.Lock()
	engine.stopLocked()

	loopCtx, cancel := context.WithCancel(ctx)
	session := &pollSession{profileID: profileID}
	engine.session = session
	engine.cancel = cancel
	engine.mu.Unlock()

	engine.log.WithField("profile_id", profileID).Info("reminder engine started")

	go engine.loop(loopCtx, session)
}

func (engine *Engine) Stop() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.stopLocked()
}

func (engine *Engine) stopLocked() {
	if engine.cancel != nil {
		engine.cancel()
		engine.cancel = nil
	}
	if engine.session != nil {
		engine.log.WithField("profile_id", engine.session.profileID).Info("reminder engine stopped")
		engine.session = nil
	}
}

// ActiveProfile reports the profile the engine is currently polling for.
func (engine *Engine) ActiveProfile() (uint, bool) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.session == nil {
		return 0, false
	}
	return engine.session.profileID, true
}

// Subscribe registers a buffered event channel. The returned cancel
// function unregisters and closes it. Slow consumers drop events rather
// than blocking a pass.
func (engine *Engine) Subscribe(buffer int) (<-chan TriggerEvent, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	events := make(chan TriggerEvent, buffer)

	engine.subscribersMu.Lock()
	id := engine.nextSubID
	engine.nextSubID++
	engine.subscribers[id] = events
	engine.subscribersMu.Unlock()

	cancel := func() {
		engine.subscribersMu.Lock()
		defer engine.subscribersMu.Unlock()
		if _, registered := engine.subscribers[id]; registered {
			delete(engine.subscribers, id)
			close(events)
		}
	}
	return events, cancel
}

func (engine *Engine) loop(ctx context.Context, session *pollSession) {
	ticker := time.NewTicker(engine.pollInterval)
	defer ticker.Stop()

	engine.runPass(session)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			engine.runPass(session)
		}
	}
}

// runPass executes one evaluation pass for the session. Passes are
// serialized with Start/Stop/Snooze; each one runs to completion.
func (engine *Engine) runPass(session *pollSession) {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	if engine.session != session {
		// Stale ticker racing a profile switch.
		return
	}

	now := engine.now().In(engine.location)
	minute := now.Truncate(time.Minute)
	if minute.Equal(session.lastSeenMinute) {
		return
	}
	session.lastSeenMinute = minute

	schedules, err := engine.schedules.ListActive(session.profileID)
	if err != nil {
		engine.log.WithError(err).WithField("profile_id", session.profileID).Error("list active schedules failed")
		return
	}

	for index := range schedules {
		if err := engine.evaluateSchedule(&schedules[index], now); err != nil {
			engine.log.WithError(err).
				WithField("schedule_id", schedules[index].ID).
				Warn("schedule evaluation failed, continuing pass")
		}
	}
}

// evaluateSchedule handles one schedule within a pass. A failure (or
// panic) here is isolated: the pass carries on with the remaining
// schedules.
func (engine *Engine) evaluateSchedule(schedule *models.Schedule, now time.Time) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("evaluation panicked: %v", recovered)
		}
	}()

	if schedule.SnoozedUntil != nil {
		if now.Before(*schedule.SnoozedUntil) {
			return nil
		}
		// The snooze window has elapsed; clear it explicitly and fall
		// through to normal evaluation in this same pass.
		if clearErr := engine.schedules.SetSnoozedUntil(schedule.ID, nil); clearErr != nil {
			return fmt.Errorf("clear expired snooze: %w", clearErr)
		}
		schedule.SnoozedUntil = nil
	}

	for _, trigger := range models.NormalizeTriggerTimes(schedule.TriggerTimes) {
		if !IsDue(*schedule, trigger, now) {
			continue
		}

		engine.emit(TriggerEvent{
			ScheduleID:    schedule.ID,
			ProfileID:     schedule.ProfileID,
			MedicineName:  schedule.MedicineName,
			Dosage:        schedule.Dosage,
			ScheduledTime: trigger,
			FiredAt:       now,
		})

		// last_fired_at records (today, trigger time), not the actual
		// fire instant: the EveryOtherDay/Weekly date deltas are
		// computed against this value. The write happens before the
		// next trigger is considered.
		firedAt := trigger.At(now)
		if writeErr := engine.schedules.SetLastFired(schedule.ID, firedAt); writeErr != nil {
			// The event is already delivered; record the inconsistency
			// and move on rather than re-emitting on the next pass.
			engine.log.WithError(writeErr).
				WithField("schedule_id", schedule.ID).
				Error("persist last fired failed after emit")
		}
		fired := firedAt
		schedule.LastFiredAt = &fired
	}
	return nil
}

func (engine *Engine) emit(event TriggerEvent) {
	engine.subscribersMu.Lock()
	defer engine.subscribersMu.Unlock()

	engine.log.WithFields(logrus.Fields{
		"schedule_id": event.ScheduleID,
		"medicine":    event.MedicineName,
		"scheduled":   event.ScheduledTime.String(),
	}).Info("reminder triggered")

	for _, subscriber := range engine.subscribers {
		select {
		case subscriber <- event:
		default:
			engine.log.WithField("schedule_id", event.ScheduleID).Warn("subscriber buffer full, event dropped")
		}
	}
}
