package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/pillbox/internal/services"
)

// ExportBackup streams the profile's backup document as a JSON
// download.
func (handler *Handler) ExportBackup(c *fiber.Ctx) error {
	profileID, err := parseProfileIDQuery(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid profile_id")
	}

	document, err := handler.backup.Export(profileID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "export failed")
	}

	fileName := handler.backup.FileName(document.Profile.Name)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return c.JSON(document)
}

// RestoreBackup imports a backup document under a fresh profile. The
// existing profiles are untouched.
func (handler *Handler) RestoreBackup(c *fiber.Ctx) error {
	document := services.BackupDocument{}
	if err := c.BodyParser(&document); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid backup document")
	}

	profileID, err := handler.backup.Import(document)
	if err != nil {
		handler.log.WithError(err).Warn("backup restore failed")
		return apiError(c, fiber.StatusBadRequest, "restore failed: "+err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"profile_id": profileID})
}
