package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Receipt links a receipt number to the DistributionRecord it was issued
// for. Number is a display token and is not unique.
type Receipt struct {
	ID                   uuid.UUID          `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt            time.Time          `json:"createdAt"`
	Number               string             `gorm:"size:32;index;not null" json:"number"`
	DistributionRecordID uint               `gorm:"uniqueIndex;not null" json:"distributionRecordId"`
	DistributionRecord   DistributionRecord `gorm:"foreignKey:DistributionRecordID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"distributionRecord"`
}

func (r *Receipt) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
