package db

import (
	"fmt"
	"log"

	"github.com/carmedic/backend/models"
)

func Migrate() {
	// Run AutoMigrate only when explicitly called
	err := DB.AutoMigrate(
		&models.User{},
		&models.Mechanic{},
		&models.Service{},
		&models.Appointment{},
		&models.Review{},
		&models.Token{},
	)
	if err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	fmt.Println("✅ Migrations applied successfully!")
}
