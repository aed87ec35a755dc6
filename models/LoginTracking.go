package models

import (
	"time"

	"gorm.io/gorm"
)

// LoginTracking records one successful login for the account history
// view. Timestamp is indexed, the history endpoint pages newest-first.
type LoginTracking struct {
	gorm.Model
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	IPAddress string    `json:"ip_address"`
	Device    string    `json:"device"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
	IsDeleted bool      `gorm:"default:false"`
}
