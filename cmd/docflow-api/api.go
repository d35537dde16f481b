// Package main provides the Docflow API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/dukex/docflow/pkg/directory"
	"github.com/dukex/docflow/pkg/eventbus"
	"github.com/dukex/docflow/pkg/persistence"
	"github.com/dukex/docflow/pkg/services"
	"github.com/dukex/docflow/pkg/web"
	"github.com/dukex/docflow/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"
)

type API struct {
	logger        *slog.Logger
	persistence   persistence.Persistence
	directory     directory.Directory
	publisher     eventbus.EventPublisher
	tracer        trace.Tracer
	registrarRole string
	validate      *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	directory directory.Directory,
	publisher eventbus.EventPublisher,
	tracer trace.Tracer,
	registrarRole string,
) *API {
	return &API{
		logger:        logger,
		persistence:   persistence,
		directory:     directory,
		publisher:     publisher,
		tracer:        tracer,
		registrarRole: registrarRole,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	builder := workflow.NewBuilder(a.directory, a.registrarRole, a.logger)
	activator := workflow.NewActivator(a.logger)

	documentService := services.NewDocument(a.persistence, a.directory, builder, activator, a.publisher, a.tracer, a.logger)
	workflowService := services.NewWorkflow(a.persistence, activator, a.publisher, a.tracer, a.logger)
	registrationService := services.NewRegistration(a.persistence, a.publisher, a.registrarRole, a.tracer, a.logger)

	historyService := services.NewHistory(a.persistence, a.tracer, a.logger)

	handlers := web.NewAPIHandlers(documentService, workflowService, registrationService, historyService, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Docflow API")
	})

	app.Get("/health", handlers.HealthCheck)

	c := app.Group("/correspondence", web.Authenticate(a.directory))
	c.Get("/", handlers.ListDocuments)
	c.Post("/:slug", handlers.CreateDocument)
	c.Get("/:id/detail", handlers.GetDocument)
	c.Get("/:id/history", handlers.GetDocumentHistory)
	c.Post("/:id/registration", handlers.RegisterDocument)
	c.Post("/:id/workflow/activate", handlers.ActivateWorkflow)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
