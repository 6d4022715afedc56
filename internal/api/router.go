package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/iris/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/iris/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/iris/internal/api/middleware"
)

type Dependencies struct {
	CompareService handler.CompareService
	EngineName     string
	// DB is optional; when set /ready also checks the database
	DB        *pgxpool.Pool
	RateLimit middleware.RateLimiterConfig
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	deps        *Dependencies
	rateLimiter *middleware.RateLimiter
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Iris API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "POST",
		AllowHeaders: "Content-Type",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	engineName := ""
	var db handler.Pinger
	if r.deps != nil {
		engineName = r.deps.EngineName
		if r.deps.DB != nil {
			db = r.deps.DB
		}
	}

	healthHandler := handler.NewHealthHandler(engineName, db)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	// Comparison routes only exist when a service was provided
	if r.deps == nil || r.deps.CompareService == nil {
		return
	}

	// Unset fields fall back to the limiter defaults
	r.rateLimiter = middleware.NewRateLimiter(r.deps.RateLimit)

	compareHandler := handler.NewCompareHandler(r.deps.CompareService, r.logger)
	r.app.Post("/compare", r.rateLimiter.Handler(), compareHandler.Compare)
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	// Stop rate limiter cleanup goroutine
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}

	return r.app.Shutdown()
}
