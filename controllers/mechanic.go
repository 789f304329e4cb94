package controllers

import (
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/carmedic/backend/db"
	"github.com/carmedic/backend/models"
	"github.com/carmedic/backend/utils"
)

// CreateMechanic registers a new mechanic shop. The creator becomes the
// shop owner, and their account is promoted to the mechanic type.
func CreateMechanic(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	mechanic := new(models.Mechanic)
	if err := c.BodyParser(mechanic); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Cannot parse JSON",
			Error:   err.Error(),
		})
	}
	if mechanic.BusinessName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Business name is required",
		})
	}

	mechanic.Admins = models.ShopAdminList{{
		UserID:  userID,
		Role:    models.RoleOwner,
		AddedAt: time.Now(),
		AddedBy: userID,
	}}
	if mechanic.Services == nil {
		mechanic.Services = models.OfferedServiceList{}
	}
	if mechanic.Schedule == nil {
		mechanic.Schedule = models.Schedule{}
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(mechanic).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).
			Update("type", models.TypeMechanic).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error creating mechanic shop",
			Error:   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Mechanic shop created successfully",
		"mechanic": mechanic,
	})
}

// GetMechanic returns a single mechanic shop by id.
func GetMechanic(c *fiber.Ctx) error {
	var mechanic models.Mechanic
	if err := db.DB.First(&mechanic, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Mechanic not found",
		})
	}
	return c.JSON(mechanic)
}

// AddShopAdmin grants a user a manager or staff role on the shop.
func AddShopAdmin(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	type AdminInput struct {
		UserID uint            `json:"user_id"`
		Role   models.ShopRole `json:"role"`
	}

	input := new(AdminInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Cannot parse JSON",
			Error:   err.Error(),
		})
	}
	if !input.Role.Valid() || input.Role == models.RoleOwner {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":      "Invalid role",
			"allowedRoles": []models.ShopRole{models.RoleManager, models.RoleStaff},
		})
	}

	var mechanic models.Mechanic
	if err := db.DB.First(&mechanic, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Mechanic not found",
		})
	}

	var user models.User
	if err := db.DB.First(&user, input.UserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "User not found",
		})
	}

	if mechanic.AdminEntry(input.UserID) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "User is already an admin of this shop",
		})
	}

	mechanic.Admins = append(mechanic.Admins, models.ShopAdmin{
		UserID:  input.UserID,
		Role:    input.Role,
		AddedAt: time.Now(),
		AddedBy: userID,
	})
	if err := db.DB.Model(&mechanic).Update("admins", mechanic.Admins).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error adding shop admin",
			Error:   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Shop admin added successfully",
		"admins":  mechanic.Admins,
	})
}

// RemoveShopAdmin revokes a user's role on the shop. The owner cannot be
// removed; ownership must be transferred first.
func RemoveShopAdmin(c *fiber.Ctx) error {
	targetID, err := c.ParamsInt("userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid user id",
		})
	}

	var mechanic models.Mechanic
	if err := db.DB.First(&mechanic, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Mechanic not found",
		})
	}

	index := -1
	for i, admin := range mechanic.Admins {
		if admin.UserID == uint(targetID) {
			index = i
			break
		}
	}
	if index == -1 {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Admin not found",
		})
	}
	if mechanic.Admins[index].Role == models.RoleOwner {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Cannot remove the shop owner",
		})
	}

	mechanic.Admins = append(mechanic.Admins[:index], mechanic.Admins[index+1:]...)
	if err := db.DB.Model(&mechanic).Update("admins", mechanic.Admins).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error removing shop admin",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Shop admin removed successfully"})
}

// TransferOwnership swaps the owner role to another admin. The previous
// owner becomes a manager. Only the current owner may do this.
func TransferOwnership(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	type TransferInput struct {
		NewOwnerID uint `json:"new_owner_id"`
	}

	input := new(TransferInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Cannot parse JSON",
			Error:   err.Error(),
		})
	}

	var mechanic models.Mechanic
	if err := db.DB.First(&mechanic, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Mechanic not found",
		})
	}

	caller := mechanic.AdminEntry(userID)
	if caller == nil || caller.Role != models.RoleOwner {
		return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
			Message: "Only the shop owner can transfer ownership",
		})
	}

	target := mechanic.AdminEntry(input.NewOwnerID)
	if target == nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "New owner must already be an admin of this shop",
		})
	}
	if target.UserID == userID {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "User is already the owner",
		})
	}

	// Both roles change in one write so the shop never has zero or two owners.
	caller.Role = models.RoleManager
	target.Role = models.RoleOwner

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&mechanic).Update("admins", mechanic.Admins).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error transferring ownership",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Ownership transferred successfully",
		"admins":  mechanic.Admins,
	})
}

// CreateSlots sets the availability slots for a date. Slots for a date
// that already has a schedule entry are replaced wholesale.
func CreateSlots(c *fiber.Ctx) error {
	type SlotsInput struct {
		Date  time.Time     `json:"date"`
		Slots []models.Slot `json:"slots"`
	}

	input := new(SlotsInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Cannot parse JSON",
			Error:   err.Error(),
		})
	}
	if input.Date.IsZero() || !utils.ValidateSlots(input.Slots) {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid slot data",
		})
	}

	var mechanic models.Mechanic
	if err := db.DB.First(&mechanic, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Mechanic not found",
		})
	}

	for i := range input.Slots {
		input.Slots[i].IsAvailable = true
		input.Slots[i].AppointmentID = 0
	}

	if day := mechanic.Schedule.DayFor(input.Date); day >= 0 {
		mechanic.Schedule[day].Slots = input.Slots
	} else {
		mechanic.Schedule = append(mechanic.Schedule, models.ScheduleDay{
			Date:  input.Date,
			Slots: input.Slots,
		})
	}

	if err := db.DB.Model(&mechanic).Update("schedule", mechanic.Schedule).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error saving schedule",
			Error:   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Slots created successfully",
		"schedule": mechanic.Schedule,
	})
}

// GetAvailableSlots returns the open slots of a mechanic for a given date.
func GetAvailableSlots(c *fiber.Ctx) error {
	dateParam := c.Query("date")
	if dateParam == "" {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Query parameter 'date' is required",
		})
	}
	date, err := time.Parse("2006-01-02", dateParam)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid date format, expected YYYY-MM-DD",
		})
	}

	var mechanic models.Mechanic
	if err := db.DB.First(&mechanic, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Mechanic not found",
		})
	}

	available := []models.Slot{}
	if day := mechanic.Schedule.DayFor(date); day >= 0 {
		for _, slot := range mechanic.Schedule[day].Slots {
			if slot.IsAvailable {
				available = append(available, slot)
			}
		}
	}

	return c.JSON(fiber.Map{
		"date":  dateParam,
		"slots": available,
	})
}

// AddService attaches a catalog service to the shop's offering with shop
// specific pricing and duration.
func AddService(c *fiber.Ctx) error {
	offered := new(models.OfferedService)
	if err := c.BodyParser(offered); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Cannot parse JSON",
			Error:   err.Error(),
		})
	}
	if offered.ServiceID == 0 || offered.Price <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Service id and a positive price are required",
		})
	}
	// Without a duration a booking would start and end at the same instant
	if offered.EstimatedDuration.ToDuration() <= 0 {
		offered.EstimatedDuration = models.Duration{Hours: 1}
	}

	var service models.Service
	if err := db.DB.First(&service, offered.ServiceID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Service not found in catalog",
		})
	}

	var mechanic models.Mechanic
	if err := db.DB.First(&mechanic, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Mechanic not found",
		})
	}

	if mechanic.OfferedService(offered.ServiceID) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Service already offered by this shop",
		})
	}

	mechanic.Services = append(mechanic.Services, *offered)

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&mechanic).Update("services", mechanic.Services).Error; err != nil {
			return err
		}
		return tx.Model(&service).Update("popularity", gorm.Expr("popularity + 1")).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error adding service",
			Error:   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Service added successfully",
		"services": mechanic.Services,
	})
}

// RemoveService detaches a catalog service from the shop's offering.
func RemoveService(c *fiber.Ctx) error {
	serviceID, err := c.ParamsInt("serviceId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid service id",
		})
	}

	var mechanic models.Mechanic
	if err := db.DB.First(&mechanic, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Mechanic not found",
		})
	}

	index := -1
	for i, offered := range mechanic.Services {
		if offered.ServiceID == uint(serviceID) {
			index = i
			break
		}
	}
	if index == -1 {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Service not offered by this shop",
		})
	}

	mechanic.Services = append(mechanic.Services[:index], mechanic.Services[index+1:]...)
	if err := db.DB.Model(&mechanic).Update("services", mechanic.Services).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error removing service",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Service removed successfully"})
}

type mechanicWithDistance struct {
	models.Mechanic
	Distance float64 `json:"distance"`
}

// nearbyMechanics loads every shop and filters by haversine distance.
// The keep callback can reject shops before the distance check.
func nearbyMechanics(lat, lon, radius float64, keep func(*models.Mechanic) bool) ([]mechanicWithDistance, error) {
	var mechanics []models.Mechanic
	if err := db.DB.Find(&mechanics).Error; err != nil {
		return nil, err
	}

	nearby := []mechanicWithDistance{}
	for i := range mechanics {
		if keep != nil && !keep(&mechanics[i]) {
			continue
		}
		distance := utils.Haversine(lat, lon,
			mechanics[i].Location.Latitude, mechanics[i].Location.Longitude)
		if distance <= radius {
			nearby = append(nearby, mechanicWithDistance{
				Mechanic: mechanics[i],
				Distance: distance,
			})
		}
	}

	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].Distance < nearby[j].Distance
	})
	return nearby, nil
}

// GetMechanicsNearby lists shops within a radius of a point, closest first.
func GetMechanicsNearby(c *fiber.Ctx) error {
	lat := c.QueryFloat("lat")
	lon := c.QueryFloat("lon")
	radius := c.QueryFloat("radius", 10)

	if lat == 0 && lon == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Query parameters 'lat' and 'lon' are required",
		})
	}

	nearby, err := nearbyMechanics(lat, lon, radius, nil)
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

// GetMechanicsByServiceName lists shops offering a catalog service,
// looked up by its name.
func GetMechanicsByServiceName(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Query parameter 'name' is required",
		})
	}

	var service models.Service
	if err := db.DB.Where("LOWER(name) = LOWER(?)", name).First(&service).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Service not found",
		})
	}

	var mechanics []models.Mechanic
	if err := db.DB.Find(&mechanics).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error fetching mechanics",
			Error:   err.Error(),
		})
	}

	matching := []models.Mechanic{}
	for i := range mechanics {
		if mechanics[i].OfferedService(service.ID) != nil {
			matching = append(matching, mechanics[i])
		}
	}

	return c.JSON(fiber.Map{
		"service":   service,
		"mechanics": matching,
		"count":     len(matching),
	})
}
