package controllers

import (
	"math"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/carmedic/backend/db"
	"github.com/carmedic/backend/models"
	"github.com/carmedic/backend/utils"
)

// recomputeMechanicRating refreshes the shop's cached aggregate from its
// review rows. The mean is rounded to one decimal place.
func recomputeMechanicRating(tx *gorm.DB, mechanicID uint) error {
	var count int64
	if err := tx.Model(&models.Review{}).
		Where("mechanic_id = ?", mechanicID).
		Count(&count).Error; err != nil {
		return err
	}

	average := 0.0
	if count > 0 {
		var sum float64
		if err := tx.Model(&models.Review{}).
			Where("mechanic_id = ?", mechanicID).
			Select("COALESCE(SUM(rating), 0)").
			Scan(&sum).Error; err != nil {
			return err
		}
		average = math.Round(sum/float64(count)*10) / 10
	}

	return tx.Model(&models.Mechanic{}).Where("id = ?", mechanicID).
		Updates(map[string]interface{}{
			"average_rating": average,
			"total_reviews":  count,
		}).Error
}

// CreateReview posts a review for a completed appointment. One review
// per appointment per client; the shop aggregate updates in the same
// transaction.
func CreateReview(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	type ReviewInput struct {
		AppointmentID uint   `json:"appointment_id"`
		Rating        int    `json:"rating"`
		Comment       string `json:"comment"`
	}

	input := new(ReviewInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Cannot parse JSON",
			Error:   err.Error(),
		})
	}
	if input.AppointmentID == 0 || input.Rating < 1 || input.Rating > 5 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":  "Invalid review data",
			"required": []string{"appointment_id", "rating between 1 and 5"},
		})
	}

	var appointment models.Appointment
	if err := db.DB.Preload("Service").
		Where("id = ? AND client_id = ?", input.AppointmentID, userID).
		First(&appointment).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Appointment not found",
		})
	}
	if appointment.Status != models.StatusCompleted {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Only completed appointments can be reviewed",
		})
	}

	review := models.Review{
		MechanicID:    appointment.MechanicID,
		ClientID:      userID,
		AppointmentID: appointment.ID,
		Rating:        input.Rating,
		Comment:       input.Comment,
		Verified:      true,
		Service: models.ServiceReceived{
			ServiceID:   appointment.ServiceID,
			ServiceName: appointment.Service.Name,
		},
	}

	exists, err := review.HasExistingReview(db.DB)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error checking existing review",
			Error:   err.Error(),
		})
	}
	if exists {
		return c.Status(fiber.StatusConflict).JSON(utils.ErrorResponse{
			Message: "Appointment has already been reviewed",
		})
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return recomputeMechanicRating(tx, review.MechanicID)
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error creating review",
			Error:   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Review created successfully",
		"review":  review,
	})
}

// UpdateReview edits the caller's own review and refreshes the aggregate.
func UpdateReview(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	type ReviewInput struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}

	input := new(ReviewInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Cannot parse JSON",
			Error:   err.Error(),
		})
	}
	if input.Rating != 0 && (input.Rating < 1 || input.Rating > 5) {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Rating must be between 1 and 5",
		})
	}

	var review models.Review
	if err := db.DB.Where("id = ? AND client_id = ?", c.Params("reviewId"), userID).
		First(&review).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Review not found",
		})
	}

	if input.Rating != 0 {
		review.Rating = input.Rating
	}
	if input.Comment != "" {
		review.Comment = input.Comment
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&review).Error; err != nil {
			return err
		}
		return recomputeMechanicRating(tx, review.MechanicID)
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error updating review",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Review updated successfully",
		"review":  review,
	})
}

// DeleteReview removes the caller's own review and refreshes the aggregate.
func DeleteReview(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var review models.Review
	if err := db.DB.Where("id = ? AND client_id = ?", c.Params("reviewId"), userID).
		First(&review).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Review not found",
		})
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&review).Error; err != nil {
			return err
		}
		return recomputeMechanicRating(tx, review.MechanicID)
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error deleting review",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Review deleted successfully"})
}

// GetMechanicReviews lists a shop's reviews with pagination and sorting.
func GetMechanicReviews(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	order := "created_at DESC"
	switch c.Query("sort") {
	case "oldest":
		order = "created_at ASC"
	case "highest":
		order = "rating DESC"
	case "lowest":
		order = "rating ASC"
	}

	query := db.DB.Model(&models.Review{}).
		Where("mechanic_id = ?", c.Params("mechanicId"))

	var total int64
	query.Count(&total)

	var reviews []models.Review
	if err := query.Order(order).
		Limit(limit).Offset((page - 1) * limit).
		Find(&reviews).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error fetching reviews",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"reviews":     reviews,
		"total":       total,
		"totalPages":  (total + int64(limit) - 1) / int64(limit),
		"currentPage": page,
	})
}

// GetMechanicReviewStats returns the shop's aggregate rating and the
// rating distribution.
func GetMechanicReviewStats(c *fiber.Ctx) error {
	var mechanic models.Mechanic
	if err := db.DB.First(&mechanic, c.Params("mechanicId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Mechanic not found",
		})
	}

	distribution := map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	type bucket struct {
		Rating int
		Count  int64
	}
	var buckets []bucket
	if err := db.DB.Model(&models.Review{}).
		Where("mechanic_id = ?", mechanic.ID).
		Select("rating, COUNT(*) as count").
		Group("rating").
		Scan(&buckets).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error fetching review stats",
			Error:   err.Error(),
		})
	}
	for _, b := range buckets {
		distribution[b.Rating] = b.Count
	}

	return c.JSON(fiber.Map{
		"averageRating": mechanic.AverageRating,
		"totalReviews":  mechanic.TotalReviews,
		"distribution":  distribution,
	})
}
