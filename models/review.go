package models

import (
	"database/sql/driver"

	"gorm.io/gorm"
)

// ServiceReceived snapshots which service an appointment review refers to,
// so the review stays meaningful if the catalog entry changes.
type ServiceReceived struct {
	ServiceID   uint   `json:"service_id"`
	ServiceName string `json:"service_name,omitempty"`
}

func (s ServiceReceived) Value() (driver.Value, error) { return jsonbValue(s) }
func (s *ServiceReceived) Scan(value interface{}) error { return jsonbScan(s, value) }

// Review is one client's rating of a completed appointment. At most one
// review exists per (appointment, client) pair.
type Review struct {
	gorm.Model
	MechanicID    uint            `json:"mechanic_id" gorm:"index"`
	ClientID      uint            `json:"client_id" gorm:"index"`
	AppointmentID uint            `json:"appointment_id" gorm:"index"`
	Rating        int             `json:"rating"`
	Comment       string          `json:"comment,omitempty"`
	Verified      bool            `json:"verified"`
	Service       ServiceReceived `json:"service_received" gorm:"type:jsonb"`
}

// HasExistingReview checks for a prior review of the same appointment by
// the same client.
func (r *Review) HasExistingReview(tx *gorm.DB) (bool, error) {
	var count int64
	err := tx.Model(&Review{}).
		Where("appointment_id = ? AND client_id = ?", r.AppointmentID, r.ClientID).
		Count(&count).Error
	return count > 0, err
}
