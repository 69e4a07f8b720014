package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DistributionRecord is the durable fact that a beneficiary received a
// quantity of an item on a date. BeneficiaryID is not a foreign key, so
// dangling references are accepted.
type DistributionRecord struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	CreatedAt        time.Time       `json:"createdAt"`
	BeneficiaryID    uint            `gorm:"index;not null" json:"beneficiaryId"`
	ItemType         string          `gorm:"size:100;not null" json:"itemType"`
	Quantity         decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"quantity"`
	DistributionDate time.Time       `gorm:"type:date;index;not null" json:"distributionDate"`
	DistributorID    *uint           `gorm:"index" json:"distributorId,omitempty"`
}
