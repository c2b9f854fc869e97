// Package main provides the Automata API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/ninjagenz/automata/pkg/engine"
	"github.com/ninjagenz/automata/pkg/persistence"
	"github.com/ninjagenz/automata/pkg/registry"
	"github.com/ninjagenz/automata/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	engine      *engine.Engine
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persist persistence.Persistence,
	reg *registry.Registry,
	eng *engine.Engine,
) *API {
	return &API{
		logger:      logger,
		persistence: persist,
		registry:    reg,
		engine:      eng,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.engine, a.persistence, a.registry, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Automata API")
	})

	v1 := app.Group("/v1")
	v1.Post("/triggers", handlers.Trigger)
	v1.Get("/variables/:event", handlers.GetVariables)

	rules := v1.Group("/workspaces/:workspaceID/rules")
	rules.Get("/", handlers.GetRules)
	rules.Post("/", handlers.CreateRule)
	rules.Get("/:id", handlers.GetRule)
	rules.Patch("/:id", handlers.UpdateRule)
	rules.Delete("/:id", handlers.DeleteRule)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
