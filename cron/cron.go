package cron

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/carmedic/backend/db"
	"github.com/carmedic/backend/models"
	"github.com/carmedic/backend/tokens"
	"github.com/carmedic/backend/utils"
)

// StartCronJobs initializes and starts the background scheduler.
func StartCronJobs() {
	fmt.Println("Starting cron job scheduler...")
	c := cron.New()

	// Purge expired and invalidated tokens at the top of every hour
	_, err := c.AddFunc("0 * * * *", cleanupTokens)
	if err != nil {
		log.Fatalf("Failed to add token cleanup job: %v", err)
	}

	// Check every minute for appointments starting in about an hour
	_, err = c.AddFunc("* * * * *", sendAppointmentReminders)
	if err != nil {
		log.Fatalf("Failed to add reminder job: %v", err)
	}

	c.Start()
	log.Println("Cron job scheduler started")
}

func cleanupTokens() {
	if err := tokens.Default.Cleanup(); err != nil {
		log.Printf("Token cleanup failed: %v", err)
		return
	}
	log.Println("Token cleanup completed")
}

// sendAppointmentReminders emails clients whose accepted appointments
// start in roughly one hour.
func sendAppointmentReminders() {
	now := time.Now()
	startWindow := now.Add(55 * time.Minute)
	endWindow := now.Add(65 * time.Minute)

	var appointments []models.Appointment
	err := db.DB.Preload("Client").Preload("Mechanic").Preload("Service").
		Where("status = ? AND start_time BETWEEN ? AND ?", models.StatusAccepted, startWindow, endWindow).
		Find(&appointments).Error
	if err != nil {
		log.Printf("Error fetching appointments for reminders: %v", err)
		return
	}

	for _, appointment := range appointments {
		if err := sendReminderEmail(&appointment); err != nil {
			log.Printf("Failed to send reminder for appointment %d: %v", appointment.ID, err)
			continue
		}
		log.Printf("Sent reminder for appointment %d to %s", appointment.ID, appointment.Client.Email)
	}
}

func sendReminderEmail(appointment *models.Appointment) error {
	subject := fmt.Sprintf("Reminder: Upcoming Service - %s", appointment.Service.Name)
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>This is a reminder for your upcoming service appointment scheduled in one hour.</p>
		<p><strong>Details:</strong></p>
		<ul>
			<li><strong>Service:</strong> %s</li>
			<li><strong>Shop:</strong> %s</li>
			<li><strong>Start Time:</strong> %s</li>
			<li><strong>End Time:</strong> %s</li>
		</ul>
		<p>Please arrive on time. If you need to reschedule or cancel, contact the shop as soon as possible.</p>
		<p>Best regards,</p>
		<p>The CarMedic Team</p>
	`, appointment.Client.FirstName, appointment.Service.Name, appointment.Mechanic.BusinessName,
		appointment.StartTime.Format("2006-01-02 15:04:05"),
		appointment.EndTime.Format("2006-01-02 15:04:05"))

	return utils.SendEmail(appointment.Client.Email, subject, body)
}
