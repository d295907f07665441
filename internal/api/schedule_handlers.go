package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/pillbox/internal/models"
)

var weekdayTags = map[string]struct{}{
	"Mon": {}, "Tue": {}, "Wed": {}, "Thu": {}, "Fri": {}, "Sat": {}, "Sun": {},
}

type schedulePayload struct {
	ProfileID    uint     `json:"profile_id"`
	MedicineName string   `json:"medicine_name"`
	Dosage       string   `json:"dosage"`
	CadenceKind  string   `json:"cadence_kind"`
	WeekdaySet   []string `json:"weekday_set"`
	TriggerTimes []string `json:"trigger_times"`
	Active       *bool    `json:"active"`
}

// parseSchedulePayload validates and converts the boundary
// representation (strings) into the structured schedule fields.
func parseSchedulePayload(payload schedulePayload) (models.Schedule, string) {
	schedule := models.Schedule{
		ProfileID:    payload.ProfileID,
		MedicineName: strings.TrimSpace(payload.MedicineName),
		Dosage:       strings.TrimSpace(payload.Dosage),
		CadenceKind:  strings.TrimSpace(payload.CadenceKind),
		Active:       true,
	}
	if payload.Active != nil {
		schedule.Active = *payload.Active
	}

	if schedule.MedicineName == "" {
		return models.Schedule{}, "medicine_name is required"
	}
	if schedule.Dosage == "" {
		return models.Schedule{}, "dosage is required"
	}
	if !models.ValidCadenceKind(schedule.CadenceKind) {
		return models.Schedule{}, "unknown cadence_kind"
	}
	if len(payload.TriggerTimes) == 0 {
		return models.Schedule{}, "at least one trigger time is required"
	}

	triggers := make([]models.TimeOfDay, 0, len(payload.TriggerTimes))
	for _, raw := range payload.TriggerTimes {
		trigger, err := models.ParseTimeOfDay(strings.TrimSpace(raw))
		if err != nil {
			return models.Schedule{}, "invalid trigger time " + raw
		}
		triggers = append(triggers, trigger)
	}
	schedule.TriggerTimes = models.NormalizeTriggerTimes(triggers)

	for _, tag := range payload.WeekdaySet {
		trimmed := strings.TrimSpace(tag)
		if _, valid := weekdayTags[trimmed]; !valid {
			return models.Schedule{}, "invalid weekday tag " + tag
		}
		schedule.WeekdaySet = append(schedule.WeekdaySet, trimmed)
	}
	if schedule.CadenceKind == models.CadenceSpecificWeekdays && len(schedule.WeekdaySet) == 0 {
		return models.Schedule{}, "specific_weekdays requires a weekday_set"
	}

	return schedule, ""
}

func (handler *Handler) ListSchedules(c *fiber.Ctx) error {
	profileID, err := parseProfileIDQuery(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid profile_id")
	}

	schedules, err := handler.repos.Schedules.ListByProfile(profileID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load schedules")
	}
	return c.JSON(schedules)
}

func (handler *Handler) CreateSchedule(c *fiber.Ctx) error {
	payload := schedulePayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if payload.ProfileID == 0 {
		return apiError(c, fiber.StatusBadRequest, "profile_id is required")
	}

	schedule, message := parseSchedulePayload(payload)
	if message != "" {
		return apiError(c, fiber.StatusBadRequest, message)
	}

	if _, found, err := handler.repos.Profiles.FindByID(schedule.ProfileID); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load profile")
	} else if !found {
		return apiError(c, fiber.StatusNotFound, "profile not found")
	}

	if err := handler.repos.Schedules.Create(&schedule); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create schedule")
	}
	return c.Status(fiber.StatusCreated).JSON(schedule)
}

func (handler *Handler) UpdateSchedule(c *fiber.Ctx) error {
	scheduleID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}

	payload := schedulePayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	existing, found, err := handler.repos.Schedules.FindByID(scheduleID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load schedule")
	}
	if !found {
		return apiError(c, fiber.StatusNotFound, "schedule not found")
	}

	payload.ProfileID = existing.ProfileID
	updated, message := parseSchedulePayload(payload)
	if message != "" {
		return apiError(c, fiber.StatusBadRequest, message)
	}

	existing.MedicineName = updated.MedicineName
	existing.Dosage = updated.Dosage
	existing.CadenceKind = updated.CadenceKind
	existing.WeekdaySet = updated.WeekdaySet
	existing.TriggerTimes = updated.TriggerTimes
	existing.Active = updated.Active

	if err := handler.repos.Schedules.Save(&existing); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to update schedule")
	}
	return c.JSON(existing)
}

// DeleteSchedule soft-deletes: the row is deactivated, not removed, so
// history stays explainable.
func (handler *Handler) DeleteSchedule(c *fiber.Ctx) error {
	scheduleID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}

	if err := handler.repos.Schedules.Deactivate(scheduleID); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to deactivate schedule")
	}
	return c.JSON(fiber.Map{"ok": true})
}

type snoozePayload struct {
	Minutes int `json:"minutes"`
}

func (handler *Handler) SnoozeSchedule(c *fiber.Ctx) error {
	scheduleID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}

	payload := snoozePayload{}
	if err := c.BodyParser(&payload); err != nil && len(c.Body()) > 0 {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	if _, found, err := handler.repos.Schedules.FindByID(scheduleID); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load schedule")
	} else if !found {
		return apiError(c, fiber.StatusNotFound, "schedule not found")
	}

	duration := handler.snoozeDuration
	if payload.Minutes > 0 {
		duration = time.Duration(payload.Minutes) * time.Minute
	}

	until, err := handler.engine.Snooze(scheduleID, duration)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to snooze schedule")
	}
	return c.JSON(fiber.Map{"snoozed_until": until.Format(time.RFC3339)})
}
