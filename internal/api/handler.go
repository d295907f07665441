package api

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/pillbox/internal/db"
	"github.com/terraincognita07/pillbox/internal/services"
)

const (
	authCookieName      = "pillbox_session"
	defaultAuthTokenTTL = 7 * 24 * time.Hour
	maxPendingTriggers  = 100
)

type Handler struct {
	repos          *db.Repositories
	engine         *services.Engine
	quickLog       *services.QuickLogService
	stats          *services.StatsService
	backup         *services.BackupService
	secretKey      []byte
	location       *time.Location
	cookieSecure   bool
	snoozeDuration time.Duration
	log            *logrus.Logger

	pending     *pendingTriggers
	unsubscribe func()
}

type Config struct {
	SecretKey      string
	Location       *time.Location
	CookieSecure   bool
	SnoozeDuration time.Duration
	Logger         *logrus.Logger
}

func NewHandler(repos *db.Repositories, engine *services.Engine, config Config) *Handler {
	location := config.Location
	if location == nil {
		location = time.Local
	}
	log := config.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	snoozeDuration := config.SnoozeDuration
	if snoozeDuration <= 0 {
		snoozeDuration = services.DefaultSnoozeDuration
	}

	handler := &Handler{
		repos:          repos,
		engine:         engine,
		quickLog:       services.NewQuickLogService(repos.DoseRecords, repos.MedicineUsages, location, log),
		stats:          services.NewStatsService(repos.DoseRecords, repos.Schedules, location),
		backup:         services.NewBackupService(repos.Profiles, repos.Schedules, repos.DoseRecords, repos.MedicineUsages, location),
		secretKey:      []byte(config.SecretKey),
		location:       location,
		cookieSecure:   config.CookieSecure,
		snoozeDuration: snoozeDuration,
		log:            log,
		pending:        &pendingTriggers{},
	}

	events, cancel := engine.Subscribe(maxPendingTriggers)
	handler.unsubscribe = cancel
	go handler.collectTriggers(events)

	return handler
}

// Close detaches the handler from the engine's event stream.
func (handler *Handler) Close() {
	if handler.unsubscribe != nil {
		handler.unsubscribe()
	}
}

func (handler *Handler) collectTriggers(events <-chan services.TriggerEvent) {
	for event := range events {
		handler.pending.add(event)
	}
}

// pendingTriggers buffers emitted events until a consumer fetches them.
// Fetching drains the buffer: every event is handed out exactly once.
type pendingTriggers struct {
	mu     sync.Mutex
	events []services.TriggerEvent
}

func (pending *pendingTriggers) add(event services.TriggerEvent) {
	pending.mu.Lock()
	defer pending.mu.Unlock()
	pending.events = append(pending.events, event)
	if len(pending.events) > maxPendingTriggers {
		pending.events = pending.events[len(pending.events)-maxPendingTriggers:]
	}
}

func (pending *pendingTriggers) drain() []services.TriggerEvent {
	pending.mu.Lock()
	defer pending.mu.Unlock()
	drained := pending.events
	pending.events = nil
	return drained
}
