package controllers

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/carmedic/backend/db"
	"github.com/carmedic/backend/models"
	"github.com/carmedic/backend/tokens"
	"github.com/carmedic/backend/utils"
)

// deviceInfo captures where the request came from for the token record.
func deviceInfo(c *fiber.Ctx) models.DeviceInfo {
	agent := c.Get(fiber.HeaderUserAgent)
	deviceType := "desktop"
	if strings.Contains(agent, "Mobile") {
		deviceType = "mobile"
	}
	return models.DeviceInfo{
		UserAgent:  agent,
		IP:         c.IP(),
		DeviceType: deviceType,
	}
}

// CheckEmail reports whether an email address is available for signup.
func CheckEmail(c *fiber.Ctx) error {
	email := c.Params("email")
	if !utils.IsValidEmail(email) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"valid":   false,
			"message": "Invalid email format",
		})
	}

	var count int64
	if err := db.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error checking email availability",
			Error:   err.Error(),
		})
	}

	message := "Email available"
	if count > 0 {
		message = "Email already registered"
	}
	return c.JSON(fiber.Map{
		"available": count == 0,
		"message":   message,
	})
}

// Signup registers a user and issues their first auth credential.
func Signup(c *fiber.Ctx) error {
	type SignupInput struct {
		FirstName string          `json:"first_name"`
		LastName  string          `json:"last_name"`
		Email     string          `json:"email"`
		Password  string          `json:"password"`
		Type      models.UserType `json:"type"`
	}

	input := new(SignupInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Cannot parse JSON",
			Error:   err.Error(),
		})
	}

	var missing []string
	for field, value := range map[string]string{
		"first_name": input.FirstName,
		"last_name":  input.LastName,
		"email":      input.Email,
		"password":   input.Password,
		"type":       string(input.Type),
	} {
		if value == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":       "All fields are required",
			"missingFields": missing,
		})
	}

	if !utils.IsValidEmail(input.Email) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid email format",
			"field":   "email",
		})
	}

	var count int64
	db.DB.Model(&models.User{}).Where("email = ?", input.Email).Count(&count)
	if count > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Email already registered",
			"field":   "email",
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to hash password",
			Error:   err.Error(),
		})
	}

	now := time.Now()
	user := models.User{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		Password:    string(hashed),
		Type:        input.Type,
		Status:      models.StatusActive,
		LastLoginAt: &now,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error creating user",
			Error:   err.Error(),
		})
	}

	signed, err := tokens.Default.Issue(user.ID, models.TokenAuth, deviceInfo(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error creating authentication token",
			Error:   err.Error(),
		})
	}

	// Verification email failures must not fail the signup.
	if verify, err := tokens.Default.Issue(user.ID, models.TokenEmailVerification, deviceInfo(c)); err == nil {
		if err := utils.SendVerificationEmail(user.Email, user.FirstName, verify); err != nil {
			log.Printf("Failed to send verification email to %s: %v", user.Email, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"token":   signed,
		"user":    user.Sanitize(),
	})
}

// Login authenticates a user and issues an auth credential.
func Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	input := new(LoginInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Cannot parse JSON",
			Error:   err.Error(),
		})
	}

	var user models.User
	if db.DB.Where("email = ?", input.Email).First(&user).RowsAffected == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
			Message: "Invalid credentials",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
			Message: "Invalid credentials",
		})
	}

	if user.Status != models.StatusActive {
		return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
			Message: "Account is " + string(user.Status),
		})
	}

	signed, err := tokens.Default.Issue(user.ID, models.TokenAuth, deviceInfo(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error creating authentication token",
			Error:   err.Error(),
		})
	}

	db.DB.Model(&user).Update("last_login_at", time.Now())

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   signed,
		"user":    user.Sanitize(),
	})
}

// Logout invalidates the stored record behind the presented credential.
func Logout(c *fiber.Ctx) error {
	signed := strings.Trim(strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "), `"`)
	if err := tokens.Default.Invalidate(signed); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error during logout",
			Error:   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// LogoutAll invalidates every token record for the caller.
func LogoutAll(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	if err := tokens.Default.InvalidateUser(userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error during logout",
			Error:   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "Logged out from all devices"})
}

// RequestPasswordReset issues a reset credential and mails it to the user.
func RequestPasswordReset(c *fiber.Ctx) error {
	type ResetRequest struct {
		Email string `json:"email"`
	}

	input := new(ResetRequest)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Cannot parse JSON",
			Error:   err.Error(),
		})
	}

	var user models.User
	if db.DB.Where("email = ?", input.Email).First(&user).RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "User not found",
		})
	}

	signed, err := tokens.Default.Issue(user.ID, models.TokenResetPassword, deviceInfo(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error creating reset token",
			Error:   err.Error(),
		})
	}

	if err := utils.SendPasswordResetEmail(user.Email, user.FirstName, signed); err != nil {
		log.Printf("Failed to send reset email to %s: %v", user.Email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error sending reset email",
			Error:   err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Password reset email sent"})
}

// ResetPassword sets a new password after validating the reset credential.
func ResetPassword(c *fiber.Ctx) error {
	type ResetInput struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}

	input := new(ResetInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Cannot parse JSON",
			Error:   err.Error(),
		})
	}
	if input.Token == "" || input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Token and password are required",
		})
	}

	record, err := tokens.Default.Validate(input.Token, models.TokenResetPassword)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
			Message: "Invalid or expired reset token",
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to hash password",
			Error:   err.Error(),
		})
	}

	if err := db.DB.Model(&models.User{}).Where("id = ?", record.UserID).
		Update("password", string(hashed)).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error updating password",
			Error:   err.Error(),
		})
	}

	// The reset credential is single-use and a changed password ends
	// every existing session.
	tokens.Default.InvalidateUser(record.UserID)

	return c.JSON(fiber.Map{"message": "Password reset successfully"})
}

// VerifyEmail marks the user's email verified after validating the
// verification credential.
func VerifyEmail(c *fiber.Ctx) error {
	signed := c.Query("token")
	if signed == "" {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Token is required",
		})
	}

	record, err := tokens.Default.Validate(signed, models.TokenEmailVerification)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
			Message: "Invalid or expired verification token",
		})
	}

	if err := db.DB.Model(&models.User{}).Where("id = ?", record.UserID).
		Update("email_verified", true).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error verifying email",
			Error:   err.Error(),
		})
	}

	tokens.Default.InvalidateRecord(record)

	return c.JSON(fiber.Map{"message": "Email verified successfully"})
}
