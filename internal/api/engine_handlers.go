package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/pillbox/internal/models"
	"github.com/terraincognita07/pillbox/internal/services"
)

type engineStartPayload struct {
	ProfileID uint `json:"profile_id"`
}

// StartEngine begins (or switches) the reminder poll loop for a
// profile. Starting for a new profile replaces the previous session.
func (handler *Handler) StartEngine(c *fiber.Ctx) error {
	payload := engineStartPayload{}
	if err := c.BodyParser(&payload); err != nil || payload.ProfileID == 0 {
		return apiError(c, fiber.StatusBadRequest, "profile_id is required")
	}

	_, found, err := handler.repos.Profiles.FindByID(payload.ProfileID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load profile")
	}
	if !found {
		return apiError(c, fiber.StatusNotFound, "profile not found")
	}

	// The loop outlives the request; shutdown goes through engine.Stop.
	handler.engine.Start(context.Background(), payload.ProfileID)
	if err := handler.repos.Profiles.TouchLastActive(payload.ProfileID, time.Now().In(handler.location)); err != nil {
		handler.log.WithError(err).Warn("touch last active failed")
	}
	return c.JSON(fiber.Map{"running": true, "profile_id": payload.ProfileID})
}

func (handler *Handler) StopEngine(c *fiber.Ctx) error {
	handler.engine.Stop()
	return c.JSON(fiber.Map{"running": false})
}

func (handler *Handler) EngineStatus(c *fiber.Ctx) error {
	profileID, running := handler.engine.ActiveProfile()
	status := fiber.Map{"running": running}
	if running {
		status["profile_id"] = profileID
	}
	return c.JSON(status)
}

// PendingTriggers drains the buffered trigger events. Each event is
// delivered exactly once; callers are expected to acknowledge them.
func (handler *Handler) PendingTriggers(c *fiber.Ctx) error {
	events := handler.pending.drain()
	return c.JSON(fiber.Map{"events": events})
}

type ackPayload struct {
	Outcome       string `json:"outcome"`
	ScheduleID    uint   `json:"schedule_id"`
	ProfileID     uint   `json:"profile_id"`
	MedicineName  string `json:"medicine_name"`
	Dosage        string `json:"dosage"`
	ScheduledTime string `json:"scheduled_time"`
	FiredAt       string `json:"fired_at"`
}

func (handler *Handler) AcknowledgeTrigger(c *fiber.Ctx) error {
	payload := ackPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	outcome := services.AckOutcome(payload.Outcome)
	if !services.ValidAckOutcome(outcome) {
		return apiError(c, fiber.StatusBadRequest, "outcome must be dismiss or log_now")
	}
	if payload.ScheduleID == 0 || payload.ProfileID == 0 {
		return apiError(c, fiber.StatusBadRequest, "schedule_id and profile_id are required")
	}

	event := services.TriggerEvent{
		ScheduleID:   payload.ScheduleID,
		ProfileID:    payload.ProfileID,
		MedicineName: payload.MedicineName,
		Dosage:       payload.Dosage,
	}
	if payload.ScheduledTime != "" {
		scheduled, err := models.ParseTimeOfDay(payload.ScheduledTime)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid scheduled_time")
		}
		event.ScheduledTime = scheduled
	}
	if payload.FiredAt != "" {
		firedAt, err := time.ParseInLocation(time.RFC3339, payload.FiredAt, handler.location)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid fired_at")
		}
		event.FiredAt = firedAt
	}

	if err := handler.quickLog.AcknowledgeTrigger(event, outcome); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "acknowledgement failed")
	}
	return c.JSON(fiber.Map{"ok": true})
}
