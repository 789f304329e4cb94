package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/carmedic/backend/cache"
	"github.com/carmedic/backend/db"
	"github.com/carmedic/backend/models"
	"github.com/carmedic/backend/utils"
)

// Catalog caches service reads. Every write to the services table
// invalidates it.
var Catalog = cache.New()

// GetServices lists the full service catalog.
func GetServices(c *fiber.Ctx) error {
	if services, ok := Catalog.All(); ok {
		return c.JSON(fiber.Map{
			"services":  services,
			"count":     len(services),
			"fromCache": true,
		})
	}

	var services []models.Service
	if err := db.DB.Order("popularity DESC").Find(&services).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error fetching services",
			Error:   err.Error(),
		})
	}
	Catalog.SetAll(services)

	return c.JSON(fiber.Map{
		"services":  services,
		"count":     len(services),
		"fromCache": false,
	})
}

// GetService returns one catalog entry by id.
func GetService(c *fiber.Ctx) error {
	var service models.Service
	if err := db.DB.First(&service, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Service not found",
		})
	}
	return c.JSON(service)
}

// GetServicesByCategory lists catalog entries in one category.
func GetServicesByCategory(c *fiber.Ctx) error {
	category := c.Params("category")

	if services, ok := Catalog.Category(category); ok {
		return c.JSON(fiber.Map{
			"category":  category,
			"services":  services,
			"count":     len(services),
			"fromCache": true,
		})
	}

	var services []models.Service
	if err := db.DB.Where("category = ?", category).
		Order("popularity DESC").Find(&services).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error fetching services",
			Error:   err.Error(),
		})
	}
	Catalog.SetCategory(category, services)

	return c.JSON(fiber.Map{
		"category":  category,
		"services":  services,
		"count":     len(services),
		"fromCache": false,
	})
}

// SearchServices finds catalog entries whose name or description matches
// the query.
func SearchServices(c *fiber.Ctx) error {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Query parameter 'q' is required",
		})
	}

	key := strings.ToLower(term)
	if services, ok := Catalog.Search(key); ok {
		return c.JSON(fiber.Map{
			"query":     term,
			"services":  services,
			"count":     len(services),
			"fromCache": true,
		})
	}

	pattern := "%" + key + "%"
	var services []models.Service
	if err := db.DB.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Order("popularity DESC").Find(&services).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error searching services",
			Error:   err.Error(),
		})
	}
	Catalog.SetSearch(key, services)

	return c.JSON(fiber.Map{
		"query":     term,
		"services":  services,
		"count":     len(services),
		"fromCache": false,
	})
}

// CreateService adds a catalog entry. Names are unique.
func CreateService(c *fiber.Ctx) error {
	service := new(models.Service)
	if err := c.BodyParser(service); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Cannot parse JSON",
			Error:   err.Error(),
		})
	}
	if service.Name == "" || service.Category == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":  "Invalid service data",
			"required": []string{"name", "category"},
		})
	}

	var count int64
	db.DB.Model(&models.Service{}).
		Where("LOWER(name) = LOWER(?)", service.Name).Count(&count)
	if count > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Service with this name already exists",
		})
	}

	if err := db.DB.Create(service).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error creating service",
			Error:   err.Error(),
		})
	}
	Catalog.Invalidate()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Service created successfully",
		"service": service,
	})
}

// UpdateService edits a catalog entry.
func UpdateService(c *fiber.Ctx) error {
	var service models.Service
	if err := db.DB.First(&service, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Service not found",
		})
	}

	input := new(models.Service)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Cannot parse JSON",
			Error:   err.Error(),
		})
	}

	updates := map[string]interface{}{}
	if input.Name != "" && !strings.EqualFold(input.Name, service.Name) {
		var count int64
		db.DB.Model(&models.Service{}).
			Where("LOWER(name) = LOWER(?)", input.Name).Count(&count)
		if count > 0 {
			return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
				Message: "Service with this name already exists",
			})
		}
		updates["name"] = input.Name
	}
	if input.Category != "" {
		updates["category"] = input.Category
	}
	if input.Description != "" {
		updates["description"] = input.Description
	}
	if input.ImageURL != "" {
		updates["image_url"] = input.ImageURL
	}

	if err := db.DB.Model(&service).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error updating service",
			Error:   err.Error(),
		})
	}
	Catalog.Invalidate()

	return c.JSON(fiber.Map{
		"message": "Service updated successfully",
		"service": service,
	})
}

// DeleteService removes a catalog entry.
func DeleteService(c *fiber.Ctx) error {
	var service models.Service
	if err := db.DB.First(&service, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Service not found",
		})
	}

	if err := db.DB.Delete(&service).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error deleting service",
			Error:   err.Error(),
		})
	}
	Catalog.Invalidate()

	return c.JSON(fiber.Map{"message": "Service deleted successfully"})
}
