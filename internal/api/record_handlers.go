package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/pillbox/internal/models"
	"github.com/terraincognita07/pillbox/internal/services"
)

type recordPayload struct {
	ProfileID    uint   `json:"profile_id"`
	MedicineName string `json:"medicine_name"`
	Dosage       string `json:"dosage"`
	DateTaken    string `json:"date_taken"`
	TimeTaken    string `json:"time_taken"`
	Notes        string `json:"notes"`
	Completed    *bool  `json:"completed"`
}

func (handler *Handler) ListRecords(c *fiber.Ctx) error {
	profileID, err := parseProfileIDQuery(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid profile_id")
	}

	var since *time.Time
	if rawDays := c.Query("days"); rawDays != "" {
		days, err := strconv.Atoi(rawDays)
		if err != nil || days < 0 {
			return apiError(c, fiber.StatusBadRequest, "invalid days")
		}
		cutoff := services.DateOnly(time.Now().In(handler.location)).AddDate(0, 0, -days)
		since = &cutoff
	}

	records, err := handler.repos.DoseRecords.ListByProfile(profileID, since)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load records")
	}
	return c.JSON(records)
}

// CreateRecord logs a dose entered by hand. Like the quick-log path it
// also feeds the usage aggregate.
func (handler *Handler) CreateRecord(c *fiber.Ctx) error {
	payload := recordPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	if payload.ProfileID == 0 {
		return apiError(c, fiber.StatusBadRequest, "profile_id is required")
	}
	medicineName := strings.TrimSpace(payload.MedicineName)
	dosage := strings.TrimSpace(payload.Dosage)
	if medicineName == "" || dosage == "" {
		return apiError(c, fiber.StatusBadRequest, "medicine_name and dosage are required")
	}

	now := time.Now().In(handler.location)
	record := models.DoseRecord{
		ProfileID:    payload.ProfileID,
		MedicineName: medicineName,
		Dosage:       dosage,
		DateTaken:    services.DateOnly(now),
		TimeTaken:    models.NewTimeOfDay(now.Hour(), now.Minute()),
		Notes:        strings.TrimSpace(payload.Notes),
		Completed:    true,
	}
	if payload.Completed != nil {
		record.Completed = *payload.Completed
	}
	if payload.DateTaken != "" {
		dateTaken, err := time.ParseInLocation(time.DateOnly, payload.DateTaken, handler.location)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid date_taken")
		}
		record.DateTaken = dateTaken
	}
	if payload.TimeTaken != "" {
		timeTaken, err := models.ParseTimeOfDay(payload.TimeTaken)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid time_taken")
		}
		record.TimeTaken = timeTaken
	}

	if _, found, err := handler.repos.Profiles.FindByID(payload.ProfileID); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load profile")
	} else if !found {
		return apiError(c, fiber.StatusNotFound, "profile not found")
	}

	if err := handler.repos.DoseRecords.Append(&record); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to save record")
	}
	if err := handler.repos.MedicineUsages.Upsert(payload.ProfileID, medicineName, dosage, record.DateTaken); err != nil {
		handler.log.WithError(err).Warn("usage aggregate update failed")
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

// Suggestions returns the autofill candidates for the record form,
// most-used medicines first.
func (handler *Handler) Suggestions(c *fiber.Ctx) error {
	profileID, err := parseProfileIDQuery(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid profile_id")
	}

	limit := 20
	if rawLimit := c.Query("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed <= 0 {
			return apiError(c, fiber.StatusBadRequest, "invalid limit")
		}
		limit = parsed
	}

	usages, err := handler.repos.MedicineUsages.ListSuggestions(profileID, limit)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load suggestions")
	}
	return c.JSON(usages)
}
