// Package app wires repositories, services, handlers and middleware into a Fiber app.
package app

import (
	"net/http"
	"time"

	"storedir/internal/config"
	"storedir/internal/handlers"
	"storedir/internal/mailer"
	"storedir/internal/middleware"
	"storedir/internal/repositories"
	"storedir/internal/services"
	"storedir/internal/uploads"
	"storedir/internal/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"
)

const sessionCookie = "session_id"

// Deps are the collaborators the app is built from.
type Deps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Stores  repositories.StoreRepository
	Users   repositories.UserRepository
	Reviews repositories.ReviewRepository
	Mail    mailer.Sender
	Uploads *uploads.Processor

	// Storage backs the session store. Nil keeps sessions in memory.
	Storage fiber.Storage
	// Views overrides the embedded templates.
	Views fiber.Views
}

// New builds the Fiber app with every route registered.
func New(deps Deps) (*fiber.App, error) {
	cfg := deps.Config
	logger := deps.Logger

	views := deps.Views
	if views == nil {
		engine, err := NewViews()
		if err != nil {
			return nil, err
		}
		views = engine
	}

	app := fiber.New(fiber.Config{
		AppName:               "storedir",
		Views:                 views,
		ErrorHandler:          handlers.ErrorHandler(logger),
		UnescapePath:          true,
		BodyLimit:             10 * 1024 * 1024,
		DisableStartupMessage: !cfg.IsDevelopment(),
	})

	sessions := session.New(session.Config{
		Storage:        deps.Storage,
		Expiration:     cfg.SessionTTL,
		KeyLookup:      "cookie:" + sessionCookie,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	})
	flash := web.NewFlash(sessions)
	view := handlers.NewRenderer(flash, logger)

	// Services
	storeService := services.NewStoreService(deps.Stores, logger)
	heartService := services.NewHeartService(deps.Users, deps.Stores)
	reviewService := services.NewReviewService(deps.Reviews, deps.Stores)
	authService := services.NewAuthService(deps.Users, deps.Mail, cfg.JWTSecret, logger)

	// Middleware
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})
	app.Static("/uploads", cfg.UploadDir)
	app.Use("/public", filesystem.New(filesystem.Config{
		Root:       http.FS(staticFS),
		PathPrefix: "static",
		MaxAge:     3600,
	}))

	app.Use(middleware.LoadUser(authService, logger))
	requireAuth := middleware.AuthRequired(flash)

	// Routes
	handlers.NewStoreHandler(storeService, deps.Uploads, view, requireAuth).RegisterRoutes(app)
	handlers.NewAuthHandler(authService, view, requireAuth, logger).RegisterRoutes(app)
	handlers.NewReviewHandler(reviewService, view, requireAuth).RegisterRoutes(app)
	handlers.NewAPIHandler(storeService, heartService, requireAuth).RegisterRoutes(app.Group("/api"))

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not found.")
	})
	return app, nil
}
