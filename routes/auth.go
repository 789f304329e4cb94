package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/carmedic/backend/controllers"
	"github.com/carmedic/backend/middleware"
)

// SetupAuthRoutes configures all authentication related routes
func SetupAuthRoutes(app *fiber.App) {
	auth := app.Group("/api/auth")

	// Public routes
	auth.Get("/check-email/:email", controllers.CheckEmail)
	auth.Post("/register", controllers.Signup)
	auth.Post("/login", controllers.Login)
	auth.Post("/forgot-password", controllers.RequestPasswordReset)
	auth.Post("/reset-password", controllers.ResetPassword)
	auth.Get("/verify-email", controllers.VerifyEmail)

	// Protected routes
	auth.Post("/logout", middleware.Protected(), controllers.Logout)
	auth.Post("/logout-all", middleware.Protected(), controllers.LogoutAll)
}
