package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/carmedic/backend/controllers"
	"github.com/carmedic/backend/middleware"
	"github.com/carmedic/backend/models"
)

// SetupEmergencyRoutes configures all emergency request related routes
func SetupEmergencyRoutes(app *fiber.App) {
	emergency := app.Group("/api/emergency")

	// Finding help does not require an account
	emergency.Get("/nearby", controllers.FindNearbyMechanicsForEmergency)

	emergency.Post("/appointments", middleware.Protected(), controllers.CreateEmergencyAppointment)
	emergency.Get("/appointments", middleware.Protected(), controllers.GetUserEmergencyAppointments)
	emergency.Get("/mechanic/:mechanicId/appointments", middleware.Protected(), middleware.RequireShopPermission(models.PermManageAppointments), controllers.GetMechanicEmergencyAppointments)
}
