package api

import (
	"net/mail"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/pillbox/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type credentialsInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SetupStatus tells a fresh client whether the one-time owner
// registration is still open.
func (handler *Handler) SetupStatus(c *fiber.Ctx) error {
	count, err := handler.repos.Users.Count()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "setup status unavailable")
	}
	return c.JSON(fiber.Map{"needs_setup": count == 0})
}

// Register creates the owner account. Only one account exists; further
// registrations are refused.
func (handler *Handler) Register(c *fiber.Ctx) error {
	input := credentialsInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	email := normalizeEmail(input.Email)
	if email == "" {
		return apiError(c, fiber.StatusBadRequest, "invalid email")
	}
	if len(input.Password) < 8 {
		return apiError(c, fiber.StatusBadRequest, "password too short")
	}

	count, err := handler.repos.Users.Count()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "registration unavailable")
	}
	if count > 0 {
		return apiError(c, fiber.StatusConflict, "owner account already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "registration unavailable")
	}

	user := models.User{Email: email, PasswordHash: string(hash)}
	if err := handler.repos.Users.Create(&user); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "registration unavailable")
	}

	if err := handler.setAuthCookie(c, &user); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "session setup failed")
	}
	handler.log.WithField("email", email).Info("owner account created")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true})
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	input := credentialsInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	email := normalizeEmail(input.Email)
	user, found, err := handler.repos.Users.FindByEmail(email)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "login unavailable")
	}
	if !found || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		return apiError(c, fiber.StatusUnauthorized, "invalid credentials")
	}

	if err := handler.setAuthCookie(c, &user); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "session setup failed")
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

func normalizeEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return ""
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ""
	}
	return email
}
