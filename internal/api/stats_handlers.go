package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) AdherenceReport(c *fiber.Ctx) error {
	profileID, err := parseProfileIDQuery(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid profile_id")
	}

	periodDays := 30
	if rawDays := c.Query("days"); rawDays != "" {
		parsed, err := strconv.Atoi(rawDays)
		if err != nil || parsed < 0 {
			return apiError(c, fiber.StatusBadRequest, "invalid days")
		}
		periodDays = parsed
	}

	report, err := handler.stats.BuildReport(profileID, periodDays, 5)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build report")
	}
	return c.JSON(report)
}

func (handler *Handler) Dashboard(c *fiber.Ctx) error {
	profileID, err := parseProfileIDQuery(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid profile_id")
	}

	summary, err := handler.stats.BuildDashboard(profileID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build dashboard")
	}
	return c.JSON(summary)
}
