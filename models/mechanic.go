package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// ShopAdmin grants a user a role on a mechanic shop.
type ShopAdmin struct {
	UserID  uint      `json:"user_id"`
	Role    ShopRole  `json:"role"`
	AddedAt time.Time `json:"added_at"`
	AddedBy uint      `json:"added_by,omitempty"`
}

type ShopAdminList []ShopAdmin

func (l ShopAdminList) Value() (driver.Value, error) { return jsonbValue(l) }
func (l *ShopAdminList) Scan(value interface{}) error { return jsonbScan(l, value) }

// OfferedService is a catalog service as priced and timed by one shop.
type OfferedService struct {
	ServiceID         uint     `json:"service_id"`
	Price             float64  `json:"price"`
	EstimatedDuration Duration `json:"estimated_duration"`
	IsEmergency       bool     `json:"is_emergency"`
	VehicleTypes      []string `json:"vehicle_types"`
	AdditionalInfo    string   `json:"additional_info,omitempty"`
}

type OfferedServiceList []OfferedService

func (l OfferedServiceList) Value() (driver.Value, error) { return jsonbValue(l) }
func (l *OfferedServiceList) Scan(value interface{}) error { return jsonbScan(l, value) }

// Slot is an administrator-defined time window on a shop's schedule,
// independently markable available or reserved.
type Slot struct {
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	IsAvailable   bool      `json:"is_available"`
	AppointmentID uint      `json:"appointment_id,omitempty"`
}

// Contains reports whether the slot window fully contains [start, end).
func (s Slot) Contains(start, end time.Time) bool {
	return !s.StartTime.After(start) && !s.EndTime.Before(end)
}

// ScheduleDay holds the explicit slots for one calendar date.
type ScheduleDay struct {
	Date  time.Time `json:"date"`
	Slots []Slot    `json:"slots"`
}

type Schedule []ScheduleDay

func (s Schedule) Value() (driver.Value, error) { return jsonbValue(s) }
func (s *Schedule) Scan(value interface{}) error { return jsonbScan(s, value) }

const dateLayout = "2006-01-02"

// SameDate matches schedule entries by calendar date, not by range.
func SameDate(a, b time.Time) bool {
	return a.Format(dateLayout) == b.Format(dateLayout)
}

// DayFor returns the schedule entry for the given date, or -1.
func (s Schedule) DayFor(date time.Time) int {
	for i, day := range s {
		if SameDate(day.Date, date) {
			return i
		}
	}
	return -1
}

// Location is a shop's address with a geographic point.
type Location struct {
	Address   string  `json:"address"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	ZipCode   string  `json:"zip_code"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Mechanic struct {
	gorm.Model
	BusinessName  string             `json:"business_name"`
	HourlyRate    float64            `json:"hourly_rate"`
	Admins        ShopAdminList      `json:"admins" gorm:"type:jsonb"`
	Services      OfferedServiceList `json:"services" gorm:"type:jsonb"`
	Schedule      Schedule           `json:"schedule" gorm:"type:jsonb"`
	Location      Location           `json:"location" gorm:"embedded;embeddedPrefix:location_"`
	AverageRating float64            `json:"average_rating"`
	TotalReviews  int64              `json:"total_reviews"`
}

// AdminEntry returns the shop-admin entry for the given user, or nil.
func (m *Mechanic) AdminEntry(userID uint) *ShopAdmin {
	for i := range m.Admins {
		if m.Admins[i].UserID == userID {
			return &m.Admins[i]
		}
	}
	return nil
}

// OfferedService returns the offered-service entry for a catalog service,
// or nil if the shop does not offer it.
func (m *Mechanic) OfferedService(serviceID uint) *OfferedService {
	for i := range m.Services {
		if m.Services[i].ServiceID == serviceID {
			return &m.Services[i]
		}
	}
	return nil
}
