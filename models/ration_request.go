package models

import "time"

// RationRequest records a beneficiary asking for an item in a given month.
type RationRequest struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	BeneficiaryID uint      `gorm:"index;not null" json:"beneficiaryId"`
	ItemName      string    `gorm:"size:100;not null" json:"itemName"`
	Unit          string    `gorm:"size:20;not null" json:"unit"`
	Month         string    `gorm:"size:20;not null" json:"month"`
	Status        string    `gorm:"size:20;not null;default:Pending" json:"status"`
}
