package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/pillbox/internal/models"
)

type contactPayload struct {
	ContactName string `json:"contact_name"`
	PhoneNumber string `json:"phone_number"`
	ContactType string `json:"contact_type"`
	Priority    int    `json:"priority"`
}

func (handler *Handler) ListContacts(c *fiber.Ctx) error {
	contacts, err := handler.repos.EmergencyContacts.List()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load contacts")
	}
	return c.JSON(contacts)
}

func (handler *Handler) CreateContact(c *fiber.Ctx) error {
	payload := contactPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	contact := models.EmergencyContact{
		ContactName: strings.TrimSpace(payload.ContactName),
		PhoneNumber: strings.TrimSpace(payload.PhoneNumber),
		ContactType: strings.TrimSpace(payload.ContactType),
		Priority:    payload.Priority,
	}
	if contact.ContactName == "" || contact.PhoneNumber == "" {
		return apiError(c, fiber.StatusBadRequest, "contact_name and phone_number are required")
	}
	if contact.Priority <= 0 {
		contact.Priority = 1
	}

	if err := handler.repos.EmergencyContacts.Create(&contact); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create contact")
	}
	return c.Status(fiber.StatusCreated).JSON(contact)
}

func (handler *Handler) DeleteContact(c *fiber.Ctx) error {
	contactID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}

	if err := handler.repos.EmergencyContacts.Delete(contactID); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to delete contact")
	}
	return c.JSON(fiber.Map{"ok": true})
}
