package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/pillbox/internal/models"
)

const quickLogNotes = "Logged from reminder"

type AckOutcome string

const (
	OutcomeDismiss AckOutcome = "dismiss"
	OutcomeLogNow  AckOutcome = "log_now"
)

func ValidAckOutcome(outcome AckOutcome) bool {
	return outcome == OutcomeDismiss || outcome == OutcomeLogNow
}

type DoseAppender interface {
	Append(record *models.DoseRecord) error
}

type UsageUpserter interface {
	Upsert(profileID uint, medicineName string, dosage string, usedOn time.Time) error
}

// QuickLogService turns a trigger acknowledgement into history: a
// dismissed event is simply discarded, a logged one becomes a
// DoseRecord plus an update of the usage aggregate behind autofill
// suggestions.
type QuickLogService struct {
	records  DoseAppender
	usage    UsageUpserter
	location *time.Location
	log      *logrus.Logger
	now      func() time.Time
}

func NewQuickLogService(records DoseAppender, usage UsageUpserter, location *time.Location, logger *logrus.Logger) *QuickLogService {
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &QuickLogService{
		records:  records,
		usage:    usage,
		location: location,
		log:      logger,
		now:      time.Now,
	}
}

func (service *QuickLogService) AcknowledgeTrigger(event TriggerEvent, outcome AckOutcome) error {
	switch outcome {
	case OutcomeDismiss:
		service.log.WithField("schedule_id", event.ScheduleID).Debug("trigger dismissed")
		return nil
	case OutcomeLogNow:
		return service.logNow(event)
	default:
		return fmt.Errorf("unknown acknowledgement outcome %q", outcome)
	}
}

// logNow records the dose at the acknowledgement instant, not at the
// scheduled trigger time.
func (service *QuickLogService) logNow(event TriggerEvent) error {
	now := service.now().In(service.location)
	today := DateOnly(now)

	record := models.DoseRecord{
		ProfileID:    event.ProfileID,
		MedicineName: event.MedicineName,
		Dosage:       event.Dosage,
		DateTaken:    today,
		TimeTaken:    models.NewTimeOfDay(now.Hour(), now.Minute()),
		Notes:        quickLogNotes,
		Completed:    true,
	}
	if err := service.records.Append(&record); err != nil {
		return fmt.Errorf("append dose record: %w", err)
	}

	if err := service.usage.Upsert(event.ProfileID, event.MedicineName, event.Dosage, today); err != nil {
		return fmt.Errorf("update medicine usage: %w", err)
	}

	service.log.WithFields(logrus.Fields{
		"profile_id": event.ProfileID,
		"medicine":   event.MedicineName,
	}).Info("dose logged from reminder")
	return nil
}
