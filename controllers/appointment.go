package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/carmedic/backend/db"
	"github.com/carmedic/backend/models"
	"github.com/carmedic/backend/utils"
)

type appointmentInput struct {
	MechanicID  uint              `json:"mechanic_id"`
	ServiceID   uint              `json:"service_id"`
	ServiceName string            `json:"service_name"`
	StartTime   time.Time         `json:"start_time"`
	Vehicle     models.VehicleRef `json:"vehicle"`
	Notes       string            `json:"notes"`
}

// createAppointment holds the booking logic shared by scheduled and
// emergency requests. The end time is derived from the shop's estimated
// duration and the price is snapshotted at booking time.
func createAppointment(c *fiber.Ctx, appointmentType models.AppointmentType) error {
	userID := c.Locals("userID").(uint)

	input := new(appointmentInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Cannot parse JSON",
			Error:   err.Error(),
		})
	}
	if input.MechanicID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":  "Invalid appointment data",
			"required": []string{"mechanic_id", "service_id or service_name"},
		})
	}
	// Omitting start_time means "as soon as possible"
	if input.StartTime.IsZero() {
		input.StartTime = time.Now()
	}

	var mechanic models.Mechanic
	if err := db.DB.First(&mechanic, input.MechanicID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Mechanic not found",
		})
	}

	serviceID := input.ServiceID
	if serviceID == 0 {
		if input.ServiceName == "" {
			return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
				Message: "Either service_id or service_name is required",
			})
		}
		var service models.Service
		if err := db.DB.Where("LOWER(name) = LOWER(?)", input.ServiceName).
			First(&service).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
				Message: "Service not found",
			})
		}
		serviceID = service.ID
	}

	offered := mechanic.OfferedService(serviceID)
	if offered == nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Service not offered by this mechanic",
		})
	}
	if appointmentType == models.TypeEmergency && !offered.IsEmergency {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Service is not available for emergency requests",
		})
	}

	endTime := input.StartTime.Add(offered.EstimatedDuration.ToDuration())

	appointment := models.Appointment{
		MechanicID: input.MechanicID,
		ClientID:   userID,
		ServiceID:  serviceID,
		Status:     models.StatusPending,
		Type:       appointmentType,
		StartTime:  input.StartTime,
		EndTime:    endTime,
		Vehicle:    input.Vehicle,
		TotalCost:  offered.Price,
		Notes:      input.Notes,
	}

	if err := db.DB.Create(&appointment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error creating appointment",
			Error:   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Appointment requested successfully",
		"appointment": appointment,
	})
}

// CreateAppointment books a scheduled appointment for the caller.
func CreateAppointment(c *fiber.Ctx) error {
	return createAppointment(c, models.TypeScheduled)
}

// GetUserAppointments lists the caller's appointments, newest first,
// optionally filtered by status and type.
func GetUserAppointments(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	query := db.DB.Model(&models.Appointment{}).Where("client_id = ?", userID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if appointmentType := c.Query("type"); appointmentType != "" {
		query = query.Where("type = ?", appointmentType)
	}

	var total int64
	query.Count(&total)

	var appointments []models.Appointment
	if err := query.Preload("Mechanic").Preload("Service").
		Order("start_time DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&appointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error fetching appointments",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"appointments": appointments,
		"total":        total,
		"totalPages":   (total + int64(limit) - 1) / int64(limit),
		"currentPage":  page,
	})
}

// GetMechanicAppointments lists a shop's appointments in chronological
// order, optionally restricted to one date and filtered by status or type.
func GetMechanicAppointments(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	query := db.DB.Model(&models.Appointment{}).
		Where("mechanic_id = ?", c.Params("mechanicId"))

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if appointmentType := c.Query("type"); appointmentType != "" {
		query = query.Where("type = ?", appointmentType)
	}
	if dateParam := c.Query("date"); dateParam != "" {
		date, err := time.Parse("2006-01-02", dateParam)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
				Message: "Invalid date format, expected YYYY-MM-DD",
			})
		}
		query = query.Where("start_time >= ? AND start_time < ?", date, date.AddDate(0, 0, 1))
	}

	var total int64
	query.Count(&total)

	var appointments []models.Appointment
	if err := query.Preload("Client").Preload("Service").
		Order("start_time ASC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&appointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error fetching appointments",
			Error:   err.Error(),
		})
	}

	for i := range appointments {
		appointments[i].Client = appointments[i].Client.Sanitize()
	}

	return c.JSON(fiber.Map{
		"appointments": appointments,
		"total":        total,
		"totalPages":   (total + int64(limit) - 1) / int64(limit),
		"currentPage":  page,
	})
}

// reserveSlot marks the schedule slot containing the appointment window
// as taken. Only a slot that is still available gets reserved; when no
// slot contains the window the schedule is left untouched.
func reserveSlot(tx *gorm.DB, appointment *models.Appointment) error {
	var mechanic models.Mechanic
	if err := tx.First(&mechanic, appointment.MechanicID).Error; err != nil {
		return err
	}

	day := mechanic.Schedule.DayFor(appointment.StartTime)
	if day < 0 {
		return nil
	}

	for i := range mechanic.Schedule[day].Slots {
		slot := &mechanic.Schedule[day].Slots[i]
		if slot.IsAvailable && slot.Contains(appointment.StartTime, appointment.EndTime) {
			slot.IsAvailable = false
			slot.AppointmentID = appointment.ID
			return tx.Model(&mechanic).Update("schedule", mechanic.Schedule).Error
		}
	}
	return nil
}

// releaseSlot frees the slot previously reserved for an appointment.
func releaseSlot(tx *gorm.DB, appointment *models.Appointment) error {
	var mechanic models.Mechanic
	if err := tx.First(&mechanic, appointment.MechanicID).Error; err != nil {
		return err
	}

	changed := false
	for d := range mechanic.Schedule {
		for i := range mechanic.Schedule[d].Slots {
			slot := &mechanic.Schedule[d].Slots[i]
			if slot.AppointmentID == appointment.ID {
				slot.IsAvailable = true
				slot.AppointmentID = 0
				changed = true
			}
		}
	}
	if !changed {
		return nil
	}
	return tx.Model(&mechanic).Update("schedule", mechanic.Schedule).Error
}

// UpdateAppointmentStatus moves an appointment through its lifecycle.
// Accepting reserves the matching schedule slot; cancelling an accepted
// appointment releases it again. Status and slot change in the same
// transaction.
func UpdateAppointmentStatus(c *fiber.Ctx) error {
	type StatusInput struct {
		Status  models.AppointmentStatus `json:"status"`
		Message string                   `json:"message"`
	}

	input := new(StatusInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Cannot parse JSON",
			Error:   err.Error(),
		})
	}
	if !models.ValidStatus(input.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":         "Invalid status",
			"allowedStatuses": models.AllStatuses,
		})
	}

	var appointment models.Appointment
	if err := db.DB.Where("id = ? AND mechanic_id = ?",
		c.Params("appointmentId"), c.Params("mechanicId")).
		First(&appointment).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Appointment not found",
		})
	}

	if !appointment.CanTransition(input.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":       "Invalid status transition",
			"currentStatus": appointment.Status,
		})
	}

	wasAccepted := appointment.Status == models.StatusAccepted
	appointment.Status = input.Status
	if input.Message != "" {
		appointment.Response = models.MechanicResponse{
			Message:      input.Message,
			ResponseDate: time.Now(),
		}
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&appointment).Updates(map[string]interface{}{
			"status":   appointment.Status,
			"response": appointment.Response,
		}).Error; err != nil {
			return err
		}
		switch {
		case input.Status == models.StatusAccepted:
			return reserveSlot(tx, &appointment)
		case input.Status == models.StatusCancelled && wasAccepted:
			return releaseSlot(tx, &appointment)
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error updating appointment status",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message":     "Appointment status updated successfully",
		"appointment": appointment,
	})
}

// CheckSlotAvailability reports whether a mechanic has an open slot
// covering the requested window.
func CheckSlotAvailability(c *fiber.Ctx) error {
	type AvailabilityInput struct {
		MechanicID uint      `json:"mechanic_id"`
		StartTime  time.Time `json:"start_time"`
		EndTime    time.Time `json:"end_time"`
	}

	input := new(AvailabilityInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Cannot parse JSON",
			Error:   err.Error(),
		})
	}
	if input.MechanicID == 0 || input.StartTime.IsZero() || input.EndTime.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":  "Invalid availability request",
			"required": []string{"mechanic_id", "start_time", "end_time"},
		})
	}

	var mechanic models.Mechanic
	if err := db.DB.First(&mechanic, input.MechanicID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Mechanic not found",
		})
	}

	available := false
	if day := mechanic.Schedule.DayFor(input.StartTime); day >= 0 {
		for _, slot := range mechanic.Schedule[day].Slots {
			if slot.IsAvailable && slot.Contains(input.StartTime, input.EndTime) {
				available = true
				break
			}
		}
	}

	return c.JSON(fiber.Map{"available": available})
}
