package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RationItem is one inventory line.
type RationItem struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	ItemName          string          `gorm:"size:100;not null" json:"itemName"`
	QuantityAvailable decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"quantityAvailable"`
	Unit              string          `gorm:"size:20" json:"unit"`
	PricePerUnit      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"pricePerUnit"`
	DistributionDate  time.Time       `gorm:"type:date" json:"distributionDate"`
}
