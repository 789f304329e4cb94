package models

import (
	"database/sql/driver"
	"time"
)

type UserType string

const (
	TypeCustomer UserType = "customer"
	TypeMechanic UserType = "mechanic"
	TypeAdmin    UserType = "admin"
)

type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusSuspended UserStatus = "suspended"
	StatusDeleted   UserStatus = "deleted"
)

// Vehicle is one entry in a user's garage.
type Vehicle struct {
	ID           string         `json:"id"`
	Make         string         `json:"make"`
	Model        string         `json:"model"`
	LicensePlate string         `json:"license_plate"`
	Color        string         `json:"color,omitempty"`
	Year         int            `json:"year"`
	VIN          string         `json:"vin,omitempty"`
	Mileage      int            `json:"mileage,omitempty"`
	Maintenance  []ServiceVisit `json:"maintenance_history"`
}

// ServiceVisit records one completed service on a garage vehicle.
type ServiceVisit struct {
	Date             time.Time `json:"date"`
	AppointmentID    uint      `json:"appointment_id"`
	ServiceType      string    `json:"service_type"`
	MileageAtService int       `json:"mileage_at_service,omitempty"`
}

// Garage is the JSONB list of vehicles owned by a user.
type Garage []Vehicle

func (g Garage) Value() (driver.Value, error) { return jsonbValue(g) }
func (g *Garage) Scan(value interface{}) error { return jsonbScan(g, value) }

type User struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Email         string     `json:"email" gorm:"unique"`
	Phone         string     `json:"phone,omitempty"`
	Password      string     `json:"password,omitempty"`
	Type          UserType   `json:"type" gorm:"default:customer"`
	Verified      bool       `json:"verified"`
	EmailVerified bool       `json:"email_verified"`
	Status        UserStatus `json:"status" gorm:"default:active"`
	Garage        Garage     `json:"garage" gorm:"type:jsonb"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Appointments []Appointment `json:"appointments,omitempty" gorm:"foreignKey:ClientID"`
}

// Sanitize strips the password hash before the user is written to a response.
func (u User) Sanitize() User {
	u.Password = ""
	return u
}
