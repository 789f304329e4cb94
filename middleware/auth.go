package middleware

import (
	"fmt"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"

	"github.com/carmedic/backend/models"
	"github.com/carmedic/backend/tokens"
	"github.com/carmedic/backend/utils"
)

// Protected verifies the bearer credential's signature and then requires a
// valid, non-expired stored token record backing it. On success the caller's
// user ID is stored in locals.
func Protected() fiber.Handler {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "solid_secret_key" // Replace with secure key in production
	}

	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(secret),
		ErrorHandler: jwtError,
		SuccessHandler: func(c *fiber.Ctx) error {
			signed := bearerToken(c)
			if signed == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
					Message: "No token provided",
				})
			}

			record, err := tokens.Default.Validate(signed, models.TokenAuth)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
					Message: "Invalid or expired token",
				})
			}

			userToken, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
					Message: "Invalid token",
				})
			}
			claims, ok := userToken.Claims.(jwt.MapClaims)
			if !ok {
				return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
					Message: "Invalid token claims",
				})
			}

			userID, err := extractUserID(claims)
			if err != nil || userID != record.UserID {
				return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
					Message: "Invalid user ID in token",
				})
			}

			c.Locals("userID", userID)
			return c.Next()
		},
	})
}

// bearerToken pulls the raw credential out of the Authorization header,
// tolerating clients that wrap it in quotes.
func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	token := strings.TrimPrefix(header, "Bearer ")
	return strings.Trim(token, `"`)
}

// extractUserID handles multiple potential formats of user ID in token
func extractUserID(claims jwt.MapClaims) (uint, error) {
	idVal := claims["userId"]
	if idVal == nil {
		return 0, fmt.Errorf("no user ID found in claims")
	}

	switch v := idVal.(type) {
	case float64:
		return uint(v), nil
	case uint:
		return v, nil
	case int:
		return uint(v), nil
	default:
		return 0, fmt.Errorf("unsupported ID type: %T", v)
	}
}

// jwtError handles JWT errors
func jwtError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
		Message: "Invalid or expired token",
		Error:   err.Error(),
	})
}
