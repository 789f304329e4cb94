package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusAccepted  AppointmentStatus = "accepted"
	StatusRejected  AppointmentStatus = "rejected"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// AllStatuses lists every recognized appointment status, for error payloads.
var AllStatuses = []AppointmentStatus{
	StatusPending, StatusAccepted, StatusRejected, StatusCompleted, StatusCancelled,
}

// statusTransitions is the authoritative state machine: pending may be
// accepted, rejected or cancelled; accepted may be completed or cancelled;
// rejected, completed and cancelled are terminal.
var statusTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:  {StatusAccepted, StatusRejected, StatusCancelled},
	StatusAccepted: {StatusCompleted, StatusCancelled},
}

// ValidStatus reports whether s is one of the recognized statuses.
func ValidStatus(s AppointmentStatus) bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// CanTransition reports whether the appointment may move to the target
// status from its current one.
func (a *Appointment) CanTransition(to AppointmentStatus) bool {
	for _, next := range statusTransitions[a.Status] {
		if next == to {
			return true
		}
	}
	return false
}

type AppointmentType string

const (
	TypeScheduled AppointmentType = "scheduled"
	TypeEmergency AppointmentType = "emergency"
)

// VehicleRef snapshots which garage vehicle an appointment is for.
type VehicleRef struct {
	VehicleID        string `json:"vehicle_id,omitempty"`
	MileageAtService int    `json:"mileage_at_service,omitempty"`
}

func (v VehicleRef) Value() (driver.Value, error) { return jsonbValue(v) }
func (v *VehicleRef) Scan(value interface{}) error { return jsonbScan(v, value) }

// MechanicResponse is the shop's optional reply to a status change.
type MechanicResponse struct {
	Message      string    `json:"message,omitempty"`
	ResponseDate time.Time `json:"response_date,omitempty"`
}

func (r MechanicResponse) Value() (driver.Value, error) { return jsonbValue(r) }
func (r *MechanicResponse) Scan(value interface{}) error { return jsonbScan(r, value) }

type Appointment struct {
	gorm.Model
	MechanicID uint              `json:"mechanic_id" gorm:"index"`
	Mechanic   Mechanic          `json:"mechanic,omitempty" gorm:"foreignKey:MechanicID"`
	ClientID   uint              `json:"client_id" gorm:"index"`
	Client     User              `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	ServiceID  uint              `json:"service_id"`
	Service    Service           `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	Status     AppointmentStatus `json:"status" gorm:"default:pending"`
	Type       AppointmentType   `json:"type" gorm:"default:scheduled"`
	StartTime  time.Time         `json:"start_time"`
	EndTime    time.Time         `json:"end_time"`
	Vehicle    VehicleRef        `json:"vehicle" gorm:"type:jsonb"`
	TotalCost  float64           `json:"total_cost"`
	Notes      string            `json:"notes,omitempty"`
	Response   MechanicResponse  `json:"mechanic_response" gorm:"type:jsonb"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = StatusPending
	}
	if a.Type == "" {
		a.Type = TypeScheduled
	}
	return nil
}
