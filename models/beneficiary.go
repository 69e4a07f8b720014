package models

import "time"

// Beneficiary is a recipient of rationed goods.
type Beneficiary struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Name          string    `gorm:"size:100" json:"name"`
	AadharNumber  string    `gorm:"size:12;uniqueIndex" json:"aadharNumber"`
	Address       string    `gorm:"size:200" json:"address"`
	RationCardNo  string    `gorm:"size:50" json:"rationCardNo"`
	FamilyMembers int       `json:"familyMembers"`
	// Status is free text. Pending, Approved and Rejected are the values in
	// use, nothing enforces them.
	Status string `gorm:"not null;default:Pending" json:"status"`
}
