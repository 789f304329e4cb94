package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/carmedic/backend/db"
	"github.com/carmedic/backend/models"
	"github.com/carmedic/backend/utils"
)

// CreateEmergencyAppointment books an urgent request. It shares the
// scheduled booking flow but only services flagged for emergencies
// qualify.
func CreateEmergencyAppointment(c *fiber.Ctx) error {
	return createAppointment(c, models.TypeEmergency)
}

// GetUserEmergencyAppointments lists the caller's emergency requests.
func GetUserEmergencyAppointments(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var appointments []models.Appointment
	if err := db.DB.Preload("Mechanic").Preload("Service").
		Where("client_id = ? AND type = ?", userID, models.TypeEmergency).
		Order("start_time DESC").
		Find(&appointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error fetching emergency appointments",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"appointments": appointments,
		"count":        len(appointments),
	})
}

// GetMechanicEmergencyAppointments lists a shop's incoming emergency
// requests, most recent first.
func GetMechanicEmergencyAppointments(c *fiber.Ctx) error {
	var appointments []models.Appointment
	if err := db.DB.Preload("Client").Preload("Service").
		Where("mechanic_id = ? AND type = ?", c.Params("mechanicId"), models.TypeEmergency).
		Order("start_time DESC").
		Find(&appointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error fetching emergency appointments",
			Error:   err.Error(),
		})
	}

	for i := range appointments {
		appointments[i].Client = appointments[i].Client.Sanitize()
	}

	return c.JSON(fiber.Map{
		"appointments": appointments,
		"count":        len(appointments),
	})
}

// FindNearbyMechanicsForEmergency lists shops within a radius that offer
// at least one emergency service, closest first.
func FindNearbyMechanicsForEmergency(c *fiber.Ctx) error {
	lat := c.QueryFloat("lat")
	lon := c.QueryFloat("lon")
	radius := c.QueryFloat("radius", 25)

	if lat == 0 && lon == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Query parameters 'lat' and 'lon' are required",
		})
	}

	nearby, err := nearbyMechanics(lat, lon, radius, func(m *models.Mechanic) bool {
		for _, offered := range m.Services {
			if offered.IsEmergency {
				return true
			}
		}
		return false
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error fetching mechanics",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"mechanics": nearby,
		"count":     len(nearby),
	})
}
