package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/carmedic/backend/controllers"
	"github.com/carmedic/backend/middleware"
)

// SetupReviewRoutes configures all review related routes
func SetupReviewRoutes(app *fiber.App) {
	reviews := app.Group("/api/reviews")

	reviews.Get("/mechanic/:mechanicId", controllers.GetMechanicReviews)
	reviews.Get("/mechanic/:mechanicId/stats", controllers.GetMechanicReviewStats)

	reviews.Post("/", middleware.Protected(), controllers.CreateReview)
	reviews.Patch("/:reviewId", middleware.Protected(), controllers.UpdateReview)
	reviews.Delete("/:reviewId", middleware.Protected(), controllers.DeleteReview)
}
