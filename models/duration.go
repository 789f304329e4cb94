package models

import (
	"database/sql/driver"
	"time"
)

// Duration stores a service duration as hours and minutes so it survives
// JSON round-trips without losing its unit.
type Duration struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// Value implements the driver.Valuer interface
func (d Duration) Value() (driver.Value, error) {
	return jsonbValue(d)
}

// Scan implements the sql.Scanner interface
func (d *Duration) Scan(value interface{}) error {
	return jsonbScan(d, value)
}

// ToDuration converts the stored hours and minutes to a time.Duration.
func (d Duration) ToDuration() time.Duration {
	return time.Duration(d.Hours)*time.Hour + time.Duration(d.Minutes)*time.Minute
}
