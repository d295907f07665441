package api

import (
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/pillbox/internal/models"
)

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type profilePayload struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
	Color  string `json:"color"`
	Avatar string `json:"avatar"`
}

func (payload profilePayload) validate() string {
	if strings.TrimSpace(payload.Name) == "" {
		return "name is required"
	}
	if payload.Age < 0 || payload.Age > 150 {
		return "age out of range"
	}
	if payload.Color != "" && !hexColorRegex.MatchString(payload.Color) {
		return "color must be a #rrggbb value"
	}
	return ""
}

func (handler *Handler) ListProfiles(c *fiber.Ctx) error {
	profiles, err := handler.repos.Profiles.List()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load profiles")
	}
	return c.JSON(profiles)
}

func (handler *Handler) CreateProfile(c *fiber.Ctx) error {
	payload := profilePayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if message := payload.validate(); message != "" {
		return apiError(c, fiber.StatusBadRequest, message)
	}

	profile := models.Profile{
		Name:       strings.TrimSpace(payload.Name),
		Age:        payload.Age,
		Gender:     strings.TrimSpace(payload.Gender),
		Color:      payload.Color,
		Avatar:     payload.Avatar,
		LastActive: time.Now().In(handler.location),
	}
	if profile.Color == "" {
		profile.Color = models.DefaultProfileColor
	}
	if profile.Avatar == "" {
		profile.Avatar = models.DefaultProfileAvatar
	}

	if err := handler.repos.Profiles.Create(&profile); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create profile")
	}
	return c.Status(fiber.StatusCreated).JSON(profile)
}

func (handler *Handler) UpdateProfile(c *fiber.Ctx) error {
	profileID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}

	payload := profilePayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if message := payload.validate(); message != "" {
		return apiError(c, fiber.StatusBadRequest, message)
	}

	profile, found, err := handler.repos.Profiles.FindByID(profileID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load profile")
	}
	if !found {
		return apiError(c, fiber.StatusNotFound, "profile not found")
	}

	profile.Name = strings.TrimSpace(payload.Name)
	profile.Age = payload.Age
	profile.Gender = strings.TrimSpace(payload.Gender)
	if payload.Color != "" {
		profile.Color = payload.Color
	}
	if payload.Avatar != "" {
		profile.Avatar = payload.Avatar
	}

	if err := handler.repos.Profiles.Save(&profile); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to update profile")
	}
	return c.JSON(profile)
}

// DeleteProfile removes the profile and everything it owns. A running
// engine session for this profile is stopped first.
func (handler *Handler) DeleteProfile(c *fiber.Ctx) error {
	profileID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}

	if active, running := handler.engine.ActiveProfile(); running && active == profileID {
		handler.engine.Stop()
	}

	if err := handler.repos.Profiles.Delete(profileID); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to delete profile")
	}
	return c.JSON(fiber.Map{"ok": true})
}
