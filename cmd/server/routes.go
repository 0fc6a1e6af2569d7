package main

import (
	"github.com/gofiber/fiber/v2"
)

// registerRoutes registers all HTTP routes
func registerRoutes(app *fiber.App, deps *Dependencies) {
	// Health check routes
	app.Get("/health", deps.HealthHandler.Health)
	app.Get("/ready", deps.HealthHandler.Ready)
	app.Get("/live", deps.HealthHandler.Live)

	v1 := app.Group("/v1")

	// Sessions and response capture
	sessions := v1.Group("/sessions")
	{
		sessions.Post("/", deps.SessionHandler.Create)
		sessions.Get("/", deps.SessionHandler.List)
		sessions.Get("/:id", deps.SessionHandler.Get)
		sessions.Post("/:id/complete", deps.SessionHandler.Complete)
		sessions.Post("/:id/abandon", deps.SessionHandler.Abandon)
		sessions.Post("/:id/responses", deps.SessionHandler.RecordResponse)
		sessions.Get("/:id/responses", deps.SessionHandler.ListResponses)

		// Trace export: GET streams the file, POST queues a background
		// export to object storage.
		sessions.Get("/:id/export", deps.ExportHandler.Download)
		sessions.Post("/:id/export", deps.ExportHandler.Enqueue)
	}

	// Individual responses
	responses := v1.Group("/responses")
	{
		responses.Get("/:id", deps.SessionHandler.GetResponse)
		responses.Post("/:id/submit", deps.SessionHandler.SubmitResponse)
		responses.Post("/:id/analysis", deps.AnalysisHandler.Trigger)
		responses.Get("/:id/analysis", deps.AnalysisHandler.Latest)
		responses.Post("/:id/audio", deps.AnalysisHandler.UploadAudio)
	}

	// Scenario catalog
	scenarios := v1.Group("/scenarios")
	{
		scenarios.Post("/", deps.ScenarioHandler.Create)
		scenarios.Get("/", deps.ScenarioHandler.List)
		scenarios.Get("/:id", deps.ScenarioHandler.Get)
		scenarios.Put("/:id", deps.ScenarioHandler.Update)
		scenarios.Delete("/:id", deps.ScenarioHandler.Delete)
	}

	// Experiments
	experiments := v1.Group("/experiments")
	{
		experiments.Post("/", deps.ExperimentHandler.Create)
		experiments.Get("/", deps.ExperimentHandler.List)
		experiments.Get("/:id", deps.ExperimentHandler.Get)
		experiments.Post("/:id/activate", deps.ExperimentHandler.Activate)
		experiments.Post("/:id/deactivate", deps.ExperimentHandler.Deactivate)
	}

	// Users
	users := v1.Group("/users")
	{
		users.Post("/", deps.UserHandler.Create)
		users.Get("/:id", deps.UserHandler.Get)
		users.Put("/:id/preferences", deps.UserHandler.UpdatePreferences)
	}
}
