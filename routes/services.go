package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/carmedic/backend/controllers"
	"github.com/carmedic/backend/middleware"
)

// SetupServiceRoutes configures all service catalog related routes
func SetupServiceRoutes(app *fiber.App) {
	services := app.Group("/api/services")

	services.Get("/", controllers.GetServices)
	services.Get("/search", controllers.SearchServices)
	services.Get("/category/:category", controllers.GetServicesByCategory)
	services.Get("/:id", controllers.GetService)

	// Catalog writes are platform admin only
	services.Post("/", middleware.Protected(), middleware.RequireAdmin(), controllers.CreateService)
	services.Put("/:id", middleware.Protected(), middleware.RequireAdmin(), controllers.UpdateService)
	services.Delete("/:id", middleware.Protected(), middleware.RequireAdmin(), controllers.DeleteService)
}
