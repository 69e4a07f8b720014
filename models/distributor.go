package models

import (
	"time"
)

// Distributor is an operator account allowed to record distributions.
type Distributor struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Name           string    `gorm:"size:100" json:"name"`
	Username       string    `gorm:"size:100;not null;uniqueIndex" json:"username"`
	HashedPassword []byte    `gorm:"not null" json:"-"`
}
