package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/carmedic/backend/db"
	"github.com/carmedic/backend/models"
	"github.com/carmedic/backend/tokens"
	"github.com/carmedic/backend/utils"
)

// GetProfile returns the caller's profile with their appointment history.
func GetProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "User not found",
		})
	}

	var appointments []models.Appointment
	if err := db.DB.Preload("Mechanic").Preload("Service").
		Where("client_id = ?", userID).
		Order("start_time DESC").
		Find(&appointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error fetching user profile",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"user":         user.Sanitize(),
		"appointments": appointments,
	})
}

// UpdateProfile updates name, phone and optionally the password.
func UpdateProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	type ProfileInput struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
		Password  string `json:"password"`
	}

	input := new(ProfileInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Cannot parse JSON",
			Error:   err.Error(),
		})
	}

	updates := map[string]interface{}{}
	if input.FirstName != "" {
		updates["first_name"] = input.FirstName
	}
	if input.LastName != "" {
		updates["last_name"] = input.LastName
	}
	if input.Phone != "" {
		updates["phone"] = input.Phone
	}
	if input.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
				Message: "Failed to hash password",
				Error:   err.Error(),
			})
		}
		updates["password"] = string(hashed)
	}

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "User not found",
		})
	}
	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error updating profile",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    user.Sanitize(),
	})
}

// AddVehicle appends a vehicle to the caller's garage.
func AddVehicle(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	vehicle := new(models.Vehicle)
	if err := c.BodyParser(vehicle); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Cannot parse JSON",
			Error:   err.Error(),
		})
	}
	if vehicle.Make == "" || vehicle.Model == "" || vehicle.LicensePlate == "" || vehicle.Year == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":  "Invalid vehicle data",
			"required": []string{"make", "model", "license_plate", "year"},
		})
	}

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "User not found",
		})
	}

	for _, existing := range user.Garage {
		if existing.LicensePlate == vehicle.LicensePlate {
			return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
				Message: "Vehicle with this license plate already exists",
			})
		}
	}

	vehicle.ID = uuid.NewString()
	vehicle.Maintenance = []models.ServiceVisit{}
	user.Garage = append(user.Garage, *vehicle)

	if err := db.DB.Model(&user).Update("garage", user.Garage).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error adding vehicle",
			Error:   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Vehicle added successfully",
		"vehicle": vehicle,
	})
}

// GetGarage lists a user's vehicles. Routes using this pair it with an
// ownership check on the :userId parameter.
func GetGarage(c *fiber.Ctx) error {
	var user models.User
	if err := db.DB.First(&user, c.Params("userId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "User not found",
		})
	}

	return c.JSON(fiber.Map{
		"garage": user.Garage,
		"count":  len(user.Garage),
	})
}

// RemoveVehicle deletes a vehicle from the caller's garage.
func RemoveVehicle(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	vehicleID := c.Params("vehicleId")

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "User not found",
		})
	}

	index := -1
	for i, vehicle := range user.Garage {
		if vehicle.ID == vehicleID {
			index = i
			break
		}
	}
	if index == -1 {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Vehicle not found",
		})
	}

	user.Garage = append(user.Garage[:index], user.Garage[index+1:]...)
	if err := db.DB.Model(&user).Update("garage", user.Garage).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error removing vehicle",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Vehicle removed successfully"})
}

// CancelAppointment lets a client cancel their own appointment unless it
// already reached a terminal status.
func CancelAppointment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	appointmentID := c.Params("appointmentId")

	var appointment models.Appointment
	if err := db.DB.Where("id = ? AND client_id = ?", appointmentID, userID).
		First(&appointment).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Appointment not found",
		})
	}

	if appointment.Status == models.StatusCompleted || appointment.Status == models.StatusCancelled {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Cannot cancel completed or already cancelled appointment",
		})
	}

	wasAccepted := appointment.Status == models.StatusAccepted
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&appointment).Update("status", models.StatusCancelled).Error; err != nil {
			return err
		}
		if wasAccepted {
			return releaseSlot(tx, &appointment)
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error cancelling appointment",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Appointment cancelled successfully"})
}

// GetAllUsers lists users for administrators, with search and pagination.
func GetAllUsers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	search := c.Query("search")

	query := db.DB.Model(&models.User{})
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	query.Count(&total)

	var users []models.User
	if err := query.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error fetching users",
			Error:   err.Error(),
		})
	}

	for i := range users {
		users[i] = users[i].Sanitize()
	}

	return c.JSON(fiber.Map{
		"users":       users,
		"total":       total,
		"totalPages":  (total + int64(limit) - 1) / int64(limit),
		"currentPage": page,
	})
}

// UpdateUserStatus changes a user's account status. Suspending or deleting
// an account invalidates all of its tokens.
func UpdateUserStatus(c *fiber.Ctx) error {
	userID := c.Params("userId")

	type StatusInput struct {
		Status models.UserStatus `json:"status"`
	}

	input := new(StatusInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Cannot parse JSON",
			Error:   err.Error(),
		})
	}

	switch input.Status {
	case models.StatusActive, models.StatusSuspended, models.StatusDeleted:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":         "Invalid status",
			"allowedStatuses": []models.UserStatus{models.StatusActive, models.StatusSuspended, models.StatusDeleted},
		})
	}

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "User not found",
		})
	}

	if err := db.DB.Model(&user).Update("status", input.Status).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error updating user status",
			Error:   err.Error(),
		})
	}

	if input.Status != models.StatusActive {
		tokens.Default.InvalidateUser(user.ID)
	}

	return c.JSON(fiber.Map{
		"message": "User status updated successfully",
		"user":    user.Sanitize(),
	})
}
