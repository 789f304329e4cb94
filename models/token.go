package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

type TokenType string

const (
	TokenAuth              TokenType = "auth"
	TokenResetPassword     TokenType = "resetPassword"
	TokenEmailVerification TokenType = "emailVerification"
)

// DeviceInfo records where a token was issued from.
type DeviceInfo struct {
	UserAgent  string `json:"user_agent,omitempty"`
	IP         string `json:"ip,omitempty"`
	DeviceType string `json:"device_type,omitempty"`
}

func (d DeviceInfo) Value() (driver.Value, error) { return jsonbValue(d) }
func (d *DeviceInfo) Scan(value interface{}) error { return jsonbScan(d, value) }

// Token is a stored reference credential. Several signed JWTs may validate
// against one stored record until the record expires or is invalidated.
type Token struct {
	gorm.Model
	UserID     uint       `json:"user_id" gorm:"index"`
	Type       TokenType  `json:"type" gorm:"index"`
	Token      string     `json:"token" gorm:"unique"`
	ExpiresAt  time.Time  `json:"expires_at" gorm:"index"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	IsValid    bool       `json:"is_valid" gorm:"default:true;index"`
	Device     DeviceInfo `json:"device" gorm:"type:jsonb"`
}

// IsExpired reports whether the record is past its expiry.
func (t *Token) IsExpired() bool {
	return !time.Now().Before(t.ExpiresAt)
}
