package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/carmedic/backend/controllers"
	"github.com/carmedic/backend/middleware"
)

// SetupUserRoutes configures all user related routes
func SetupUserRoutes(app *fiber.App) {
	users := app.Group("/api/users", middleware.Protected())

	users.Get("/profile", controllers.GetProfile)
	users.Patch("/profile", controllers.UpdateProfile)

	// Garage
	users.Post("/vehicles", controllers.AddVehicle)
	users.Delete("/vehicles/:vehicleId", controllers.RemoveVehicle)
	users.Get("/:userId/garage", middleware.RequireResourceOwner(), controllers.GetGarage)

	// Client side appointment cancellation
	users.Post("/appointments/:appointmentId/cancel", controllers.CancelAppointment)

	// Admin routes
	users.Get("/", middleware.RequireAdmin(), controllers.GetAllUsers)
	users.Patch("/:userId/status", middleware.RequireAdmin(), controllers.UpdateUserStatus)
}
