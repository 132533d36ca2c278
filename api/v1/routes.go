package v1

import (
	"murphy/api/v1/handlers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(app *fiber.App, d handlers.Deps) {
	api := app.Group("/api/v1")

	handlers.RegisterHealth(api, d)
	handlers.RegisterCategories(api.Group("/categories"), d)

	laws := api.Group("/laws")
	handlers.RegisterSubmissions(laws, d)
	handlers.RegisterLaws(laws, d)
	handlers.RegisterVotes(laws, d)

	handlers.RegisterSystem(api.Group("/system"), d)

	if d.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{})))
	}
}
