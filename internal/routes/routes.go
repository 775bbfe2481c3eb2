package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/vidstream/vidstream/internal/channel"
	"github.com/vidstream/vidstream/internal/config"
	"github.com/vidstream/vidstream/internal/middleware"
	"github.com/vidstream/vidstream/internal/session"
	"github.com/vidstream/vidstream/internal/storage"
	"github.com/vidstream/vidstream/internal/user"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg     config.Config
	DB      *pgxpool.Pool
	Cache   *redis.Client
	Uploads storage.Uploader
	Logger  *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Outside of dev the backing services are mandatory, even though main
	// also checks.
	if !isDev(d.Cfg.AppEnv) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	if d.Uploads == nil {
		d.Uploads = storage.NewMemoryUploader()
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	// Health
	RegisterHealthRoutes(app, d)

	// Services and handlers
	var userRepo user.Repository
	if d.DB != nil {
		userRepo = user.NewPostgresRepository(d.DB)
	} else {
		userRepo = user.NewMemoryRepository()
	}
	var channelRepo channel.Repository
	if d.DB != nil {
		channelRepo = channel.NewPostgresRepository(d.DB)
	} else {
		channelRepo = channel.NewMemoryRepository()
	}
	var statsCache *channel.StatsCache
	if d.Cache != nil {
		statsCache = channel.NewStatsCache(d.Cache, 0)
	}

	issuer := session.NewIssuer(d.Cfg)
	userSvc := user.NewService(userRepo, d.Uploads)
	sessionSvc := session.NewService(userRepo, issuer, d.Logger)
	channelSvc := channel.NewService(channelRepo, userRepo, statsCache)

	userHandler := user.NewHandler(userSvc)
	sessionHandler := session.NewHandler(sessionSvc, issuer)
	channelHandler := channel.NewHandler(channelSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	authenticate := middleware.Authenticate(issuer, userRepo)
	RegisterUserRoutes(api, userHandler, sessionHandler, authenticate)
	RegisterChannelRoutes(api, channelHandler, authenticate)

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
