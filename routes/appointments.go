package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/carmedic/backend/controllers"
	"github.com/carmedic/backend/middleware"
	"github.com/carmedic/backend/models"
)

// SetupAppointmentRoutes configures all appointment related routes
func SetupAppointmentRoutes(app *fiber.App) {
	appointments := app.Group("/api/appointments", middleware.Protected())

	appointments.Post("/create", controllers.CreateAppointment)
	appointments.Post("/book", controllers.CreateAppointment)
	appointments.Get("/", controllers.GetUserAppointments)
	appointments.Post("/check-availability", controllers.CheckSlotAvailability)

	// Shop side
	appointments.Get("/mechanic/:mechanicId", middleware.RequireShopPermission(models.PermManageAppointments), controllers.GetMechanicAppointments)
	appointments.Patch("/mechanic/:mechanicId/:appointmentId/status", middleware.RequireShopPermission(models.PermManageAppointments), controllers.UpdateAppointmentStatus)
}
