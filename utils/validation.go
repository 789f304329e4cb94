package utils

import (
	"regexp"

	"github.com/carmedic/backend/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail checks the basic shape of an email address.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateSlots checks that every slot has a well-ordered time window.
func ValidateSlots(slots []models.Slot) bool {
	if len(slots) == 0 {
		return false
	}
	for _, slot := range slots {
		if !slot.StartTime.Before(slot.EndTime) {
			return false
		}
	}
	return true
}
