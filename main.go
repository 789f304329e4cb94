package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/carmedic/backend/cron"
	"github.com/carmedic/backend/db"
	"github.com/carmedic/backend/routes"
	"github.com/carmedic/backend/tokens"
)

func main() {
	app := fiber.New()
	db.Init()
	db.Migrate()
	tokens.Init(db.DB)
	cron.StartCronJobs()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("CarMedic API")
	})

	routes.SetupAuthRoutes(app)
	routes.SetupUserRoutes(app)
	routes.SetupMechanicRoutes(app)
	routes.SetupAppointmentRoutes(app)
	routes.SetupEmergencyRoutes(app)
	routes.SetupReviewRoutes(app)
	routes.SetupServiceRoutes(app)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5001"
	}
	log.Fatal(app.Listen(":" + port))
}
