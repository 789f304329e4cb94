package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/carmedic/backend/db"
	"github.com/carmedic/backend/models"
	"github.com/carmedic/backend/utils"
)

// RequireAdmin restricts a route to platform administrators.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userID").(uint)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
				Message: "User ID not found in context",
			})
		}

		var user models.User
		if err := db.DB.First(&user, userID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
				Message: "User not found",
			})
		}

		if user.Type != models.TypeAdmin {
			return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
				Message: "Admin access required",
			})
		}

		return c.Next()
	}
}

// RequireShopPermission restricts a route to shop admins of the target
// mechanic whose role grants the given permission. The caller's shop role
// is stored in locals for the handler.
func RequireShopPermission(permission models.ShopPermission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userID").(uint)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
				Message: "User ID not found in context",
			})
		}

		mechanicID := c.Params("mechanicId")
		if mechanicID == "" {
			mechanicID = c.Params("id")
		}
		if mechanicID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
				Message: "Mechanic ID required",
			})
		}

		var mechanic models.Mechanic
		if err := db.DB.First(&mechanic, mechanicID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
				Message: "Mechanic shop not found",
			})
		}

		admin := mechanic.AdminEntry(userID)
		if admin == nil {
			return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
				Message: "Not authorized for this mechanic shop",
			})
		}

		if !admin.Role.HasPermission(permission) {
			return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
				Message: "Permission '" + string(permission) + "' required",
			})
		}

		c.Locals("shopRole", admin.Role)
		return c.Next()
	}
}

// RequireResourceOwner rejects requests whose :userId parameter does not
// match the authenticated caller.
func RequireResourceOwner() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userID").(uint)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
				Message: "User ID not found in context",
			})
		}

		if target, err := c.ParamsInt("userId"); err != nil || uint(target) != userID {
			return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
				Message: "Not authorized to access this resource",
			})
		}

		return c.Next()
	}
}
