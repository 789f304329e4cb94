package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/gomail.v2"
)

func SendEmail(to, subject, body string) error {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file. Using environment variables directly.")
	}
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))

	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("EMAIL_USER"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(
		os.Getenv("SMTP_HOST"),
		port,
		os.Getenv("EMAIL_USER"),
		os.Getenv("EMAIL_PASS"),
	)

	return d.DialAndSend(m)
}

// SendVerificationEmail mails the signed email-verification credential.
func SendVerificationEmail(to, firstName, token string) error {
	base := os.Getenv("APP_URL")
	if base == "" {
		base = "http://localhost:5001"
	}
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Welcome to CarMedic! Please verify your email address by clicking the link below:</p>
		<p><a href="%s/verify-email?token=%s">Verify my email</a></p>
		<p>The link expires in 24 hours.</p>
		<p>Best regards,</p>
		<p>The CarMedic Team</p>
	`, firstName, base, token)
	return SendEmail(to, "Verify your CarMedic account", body)
}

// SendPasswordResetEmail mails the signed password-reset credential.
func SendPasswordResetEmail(to, firstName, token string) error {
	base := os.Getenv("APP_URL")
	if base == "" {
		base = "http://localhost:5001"
	}
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>We received a request to reset your CarMedic password.</p>
		<p><a href="%s/reset-password?token=%s">Reset my password</a></p>
		<p>The link expires in one hour. If you did not request this, you can ignore this email.</p>
		<p>Best regards,</p>
		<p>The CarMedic Team</p>
	`, firstName, base, token)
	return SendEmail(to, "Reset your CarMedic password", body)
}
