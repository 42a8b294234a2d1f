// Package main provides the pipeboard API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/pipeboard/pipeboard/pkg/cmd"
	"github.com/pipeboard/pipeboard/pkg/persistence"
	"github.com/pipeboard/pipeboard/pkg/registry"
	"github.com/pipeboard/pipeboard/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	validate    *validator.Validate
	sessions    *web.Sessions
}

func NewAPI(logger *slog.Logger, store persistence.Persistence, reg *registry.Registry) *API {
	return &API{
		logger:      logger,
		persistence: store,
		registry:    reg,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		sessions: web.NewSessions(func() web.EditBus {
			return cmd.NewEditBus(logger)
		}, logger),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.persistence, a.registry, a.validate, a.sessions, a.logger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Pipeboard API")
	})

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Post("/import", handlers.ImportWorkflow)
	w.Get("/:name", handlers.GetWorkflow)
	w.Delete("/:name", handlers.DeleteWorkflow)
	w.Get("/:name/export", handlers.ExportWorkflow)
	w.Get("/:name/validate", handlers.ValidateWorkflow)

	// Edit history:
	w.Get("/:name/history", handlers.GetHistory)
	w.Post("/:name/history/undo", handlers.UndoEdit)
	w.Post("/:name/history/redo", handlers.RedoEdit)

	// Graph endpoints:
	w.Get("/:name/graph", handlers.GetGraph)
	w.Post("/:name/graph/arrange", handlers.ArrangeGraph)
	w.Post("/:name/graph/nodes", handlers.AddNode)
	w.Patch("/:name/graph/nodes/:nodeId", handlers.UpdateNode)
	w.Delete("/:name/graph/nodes/:nodeId", handlers.DeleteNode)
	w.Post("/:name/graph/edges", handlers.AddEdge)
	w.Delete("/:name/graph/edges/:edgeId", handlers.DeleteEdge)
	w.Post("/:name/graph/connections/check", handlers.CheckConnection)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
