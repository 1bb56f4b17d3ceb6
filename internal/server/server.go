package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/arzan03/OnboardGate/internal/config"
	"github.com/arzan03/OnboardGate/internal/handlers"
	"github.com/arzan03/OnboardGate/internal/metrics"
	"github.com/arzan03/OnboardGate/internal/middleware"
	"github.com/arzan03/OnboardGate/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const sessionCookie = "session_id"

// Deps are the collaborators of the HTTP application.
type Deps struct {
	Config    config.Config
	Users     services.UserStore
	Questions services.QuestionStore
	// Sessions nil selects Fiber's in-memory storage.
	Sessions fiber.Storage
	// Exports nil disables GET /admin/users/export.
	Exports   services.ObjectStore
	Log       zerolog.Logger
	AccessLog io.Writer
}

// NewApp builds the Fiber application with every route registered.
func NewApp(d Deps) *fiber.App {
	log := d.Log

	app := fiber.New(fiber.Config{
		AppName:      "onboardgate",
		ErrorHandler: errorHandler(log),
	})

	accessLog := d.AccessLog
	if accessLog == nil {
		accessLog = os.Stdout
	}

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		Output: accessLog,
	}))
	corsConfig := cors.Config{AllowOrigins: d.Config.CORSOrigin}
	if corsConfig.AllowOrigins != "" && corsConfig.AllowOrigins != "*" {
		corsConfig.AllowCredentials = true
	}
	app.Use(cors.New(corsConfig))
	app.Use(metrics.Middleware())

	sessions := session.New(session.Config{
		Expiration:     d.Config.Session.TTL,
		Storage:        d.Sessions,
		KeyLookup:      "cookie:" + sessionCookie,
		CookieHTTPOnly: true,
		CookieSecure:   d.Config.Session.CookieSecure,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
		KeyGenerator:   uuid.NewString,
	})

	gate := middleware.NewGate(sessions, d.Users, log)
	authHandler := handlers.NewAuthHandler(services.NewAuthService(d.Users), sessions, log)
	onboardingHandler := handlers.NewOnboardingHandler(services.NewOnboardingService(d.Users, d.Questions, log), log)
	adminHandler := handlers.NewAdminHandler(services.NewAdminService(d.Users, d.Questions, d.Exports, log), log)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "OnboardGate API is running", "status": "OK"})
	})
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", metrics.Handler())

	// Auth Routes
	auth := app.Group("/auth")
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/me", gate.RequireAuth, authHandler.Me)

	// Questionnaire Routes
	app.Get("/questions", gate.RequireAuth, onboardingHandler.ListQuestions)
	user := app.Group("/user", gate.RequireAuth)
	user.Post("/responses", onboardingHandler.SubmitResponses)

	// Admin Routes
	admin := app.Group("/admin", gate.RequireAuth, middleware.RequireAdmin)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Get("/users/export", adminHandler.ExportResponses)
	admin.Patch("/users/:id/approve", adminHandler.ApproveUser)
	admin.Patch("/users/:id/reject", adminHandler.RejectUser)

	return app
}

func errorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}
		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
		}
		return c.Status(code).JSON(fiber.Map{"message": message})
	}
}

// Server owns the application and the backends it was built on.
type Server struct {
	app    *fiber.App
	stores *Stores
	addr   string
	log    zerolog.Logger
}

// New opens the configured backends and builds the application.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Server, error) {
	stores, err := OpenStores(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if err := stores.OpenSessions(ctx, cfg, log); err != nil {
		_ = stores.Close(ctx)
		return nil, err
	}
	if err := stores.OpenExports(ctx, cfg, log); err != nil {
		_ = stores.Close(ctx)
		return nil, err
	}

	app := NewApp(Deps{
		Config:    cfg,
		Users:     stores.Users,
		Questions: stores.Questions,
		Sessions:  stores.Sessions,
		Exports:   stores.Exports,
		Log:       log,
	})

	port := cfg.Port
	if port == 0 {
		port = 8080
	}

	return &Server{
		app:    app,
		stores: stores,
		addr:   fmt.Sprintf(":%d", port),
		log:    log,
	}, nil
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.addr).Msg("starting server")
	return s.app.Listen(s.addr)
}

// Shutdown stops accepting requests and closes the backends.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.app.ShutdownWithContext(ctx)
	if closeErr := s.stores.Close(ctx); err == nil {
		err = closeErr
	}
	return err
}
