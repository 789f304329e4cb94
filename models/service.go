package models

import (
	"gorm.io/gorm"
)

// Service is a catalog offering independent of any shop. Shops customize it
// through their OfferedService entries.
type Service struct {
	gorm.Model
	Name        string `json:"name" gorm:"unique;index"`
	Category    string `json:"category" gorm:"index"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
	Popularity  int64  `json:"popularity"`
}
