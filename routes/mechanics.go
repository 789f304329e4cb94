package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/carmedic/backend/controllers"
	"github.com/carmedic/backend/middleware"
	"github.com/carmedic/backend/models"
)

// SetupMechanicRoutes configures all mechanic shop related routes
func SetupMechanicRoutes(app *fiber.App) {
	mechanics := app.Group("/api/mechanics")

	// Public discovery routes, registered before /:id
	mechanics.Get("/nearby", controllers.GetMechanicsNearby)
	mechanics.Get("/by-service", controllers.GetMechanicsByServiceName)
	mechanics.Get("/:id", controllers.GetMechanic)
	mechanics.Get("/:id/slots", controllers.GetAvailableSlots)

	mechanics.Post("/", middleware.Protected(), controllers.CreateMechanic)

	// Shop administration
	mechanics.Post("/:id/admins", middleware.Protected(), middleware.RequireShopPermission(models.PermManageAdmins), controllers.AddShopAdmin)
	mechanics.Delete("/:id/admins/:userId", middleware.Protected(), middleware.RequireShopPermission(models.PermManageAdmins), controllers.RemoveShopAdmin)
	mechanics.Post("/:id/transfer-ownership", middleware.Protected(), controllers.TransferOwnership)

	// Offered services and schedule
	mechanics.Post("/:id/services", middleware.Protected(), middleware.RequireShopPermission(models.PermManageServices), controllers.AddService)
	mechanics.Delete("/:id/services/:serviceId", middleware.Protected(), middleware.RequireShopPermission(models.PermManageServices), controllers.RemoveService)
	mechanics.Post("/:id/slots", middleware.Protected(), middleware.RequireShopPermission(models.PermManageSchedule), controllers.CreateSlots)
}
