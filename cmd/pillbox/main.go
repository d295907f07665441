package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/pillbox/internal/api"
	"github.com/terraincognita07/pillbox/internal/db"
	"github.com/terraincognita07/pillbox/internal/logger"
	"github.com/terraincognita07/pillbox/internal/services"
)

func main() {
	_ = godotenv.Load()

	log := logger.New(getEnv("LOG_LEVEL", "info"), getEnv("ENVIRONMENT", "development"))

	location := mustLoadLocation(getEnv("TZ", "UTC"), log)
	time.Local = location

	secretKey := getEnv("SECRET_KEY", "change_me_in_production")
	dbPath := getEnv("DB_PATH", filepath.Join("data", "pillbox.db"))
	port := getEnv("PORT", "8080")

	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		log.WithError(err).Fatal("database init failed")
	}

	repos := db.NewRepositories(database)

	pollInterval := time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 5, log)) * time.Second
	snoozeDuration := time.Duration(getEnvInt("SNOOZE_MINUTES", 60, log)) * time.Minute

	engine := services.NewEngine(repos.Schedules, location, log, pollInterval)

	handler := api.NewHandler(repos, engine, api.Config{
		SecretKey:      secretKey,
		Location:       location,
		CookieSecure:   getEnv("COOKIE_SECURE", "false") == "true",
		SnoozeDuration: snoozeDuration,
		Logger:         log,
	})
	defer handler.Close()

	app := fiber.New(fiber.Config{
		AppName:               "Pillbox",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(compress.New())

	api.RegisterRoutes(app, handler)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		engine.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.WithError(err).Error("server shutdown failed")
		}
	}()

	log.WithField("port", port).WithField("db", dbPath).WithField("tz", location.String()).Info("pillbox listening")
	if err := app.Listen(":" + port); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

func mustLoadLocation(name string, log *logrus.Logger) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		log.Warnf("invalid TZ %q, falling back to UTC", name)
		return time.UTC
	}
	return location
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int, log *logrus.Logger) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		log.Warnf("invalid %s %q, using %d", key, raw, fallback)
		return fallback
	}
	return value
}
