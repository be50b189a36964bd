package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"libris/internal/config"
	"libris/internal/database"
	"libris/internal/handlers"
	"libris/internal/middleware"
	"libris/internal/openlibrary"
	"libris/internal/services"
	"libris/internal/types"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Services
	olClient := openlibrary.NewFetcher(cfg, logger)
	authService := services.NewAuthService(db, logger)
	catalogService := services.NewCatalogService(db, olClient, logger)
	libraryService := services.NewLibraryService(db, logger)

	// Cookie sessions
	sessionStore := session.New(session.Config{
		Expiration:     cfg.SessionExpiration,
		KeyGenerator:   uuid.NewString,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("libris")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		result := services.HealthCheck(cfg, db)
		status := fiber.StatusOK
		if result.Status != "healthy" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(result)
	})

	// Create handlers
	authHandler := &handlers.AuthHandler{Auth: authService, Store: sessionStore, Logger: logger}
	bookHandler := &handlers.BookHandler{Catalog: catalogService, Library: libraryService, Logger: logger}
	libraryHandler := &handlers.LibraryHandler{Library: libraryService, Logger: logger}

	// API routes under /api
	api := app.Group("/api")

	// Authentication routes (public)
	api.Post("/signup", authHandler.Signup)
	api.Post("/login", authHandler.Login)
	api.Post("/logout", authHandler.Logout)

	// Catalog routes (all require a signed-in session)
	requireUser := middleware.RequireUser(sessionStore)
	api.Post("/books/search", requireUser, bookHandler.Search)
	api.Get("/books/:book_id", requireUser, bookHandler.Get)

	// Per-user library routes
	users := api.Group("/users/:user_id", requireUser)
	users.Get("/books", libraryHandler.ListBooks)
	users.Post("/books/:book_id", libraryHandler.AddBook)
	users.Delete("/books/:book_id", libraryHandler.RemoveBook)
	users.Get("/tags", libraryHandler.ListTags)
	users.Post("/tags", libraryHandler.AddTag)
	users.Delete("/tags/:tag_id", libraryHandler.RemoveTag)
	users.Get("/tags/:tag_id/books", libraryHandler.BooksByTag)
	users.Post("/books/:book_id/tags/:tag_id", libraryHandler.TagBook)
	users.Delete("/books/:book_id/tags/:tag_id", libraryHandler.UntagBook)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Info("gracefully shutting down")
		_ = app.Shutdown()
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	logger.Info("server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}
	if e, ok := err.(*types.CustomError); ok {
		code = e.Code
		message = e.Message
		errorType = e.Type
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
