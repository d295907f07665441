package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Get("/setup-status", handler.SetupStatus)
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)

	profiles := api.Group("/profiles", handler.AuthRequired)
	profiles.Get("", handler.ListProfiles)
	profiles.Post("", handler.CreateProfile)
	profiles.Put("/:id", handler.UpdateProfile)
	profiles.Delete("/:id", handler.DeleteProfile)

	schedules := api.Group("/schedules", handler.AuthRequired)
	schedules.Get("", handler.ListSchedules)
	schedules.Post("", handler.CreateSchedule)
	schedules.Put("/:id", handler.UpdateSchedule)
	schedules.Delete("/:id", handler.DeleteSchedule)
	schedules.Post("/:id/snooze", handler.SnoozeSchedule)

	engine := api.Group("/engine", handler.AuthRequired)
	engine.Post("/start", handler.StartEngine)
	engine.Post("/stop", handler.StopEngine)
	engine.Get("/status", handler.EngineStatus)
	engine.Get("/triggers", handler.PendingTriggers)
	engine.Post("/triggers/ack", handler.AcknowledgeTrigger)

	records := api.Group("/records", handler.AuthRequired)
	records.Get("", handler.ListRecords)
	records.Post("", handler.CreateRecord)
	records.Get("/suggestions", handler.Suggestions)

	stats := api.Group("/stats", handler.AuthRequired)
	stats.Get("/report", handler.AdherenceReport)
	stats.Get("/dashboard", handler.Dashboard)

	backup := api.Group("/backup", handler.AuthRequired)
	backup.Get("/export", handler.ExportBackup)
	backup.Post("/restore", handler.RestoreBackup)

	contacts := api.Group("/contacts", handler.AuthRequired)
	contacts.Get("", handler.ListContacts)
	contacts.Post("", handler.CreateContact)
	contacts.Delete("/:id", handler.DeleteContact)
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
