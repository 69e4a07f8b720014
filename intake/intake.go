// Package intake records beneficiary requests for ration items.
package intake

import (
	"context"
	"strconv"
	"strings"

	"rationdist/auth"
	"rationdist/database"
	"rationdist/models"
	"rationdist/pkg/apperr"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Form struct {
	BeneficiaryID string `form:"beneficiary_id"`
	ItemName      string `form:"item_name"`
	Unit          string `form:"unit"`
	Month         string `form:"month"`
}

type Intake struct {
	db     *gorm.DB
	logger *zap.Logger
}

func New(db *gorm.DB, logger *zap.Logger) *Intake {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Intake{db: db, logger: logger}
}

// Create stores a Pending request. The beneficiary id is not checked
// against the registry.
func (in *Intake) Create(ctx context.Context, p *auth.Principal, f Form) (*models.RationRequest, error) {
	if err := auth.Require(p); err != nil {
		return nil, err
	}
	bid, err := strconv.ParseUint(strings.TrimSpace(f.BeneficiaryID), 10, 32)
	if err != nil {
		return nil, apperr.Validation("beneficiary id must be a whole number", err)
	}
	req := models.RationRequest{
		BeneficiaryID: uint(bid),
		ItemName:      strings.TrimSpace(f.ItemName),
		Unit:          strings.TrimSpace(f.Unit),
		Month:         strings.TrimSpace(f.Month),
		Status:        "Pending",
	}
	switch {
	case req.ItemName == "":
		return nil, apperr.Validation("item name is required", nil)
	case req.Unit == "":
		return nil, apperr.Validation("unit is required", nil)
	case req.Month == "":
		return nil, apperr.Validation("month is required", nil)
	}
	err = database.InTx(ctx, in.db, func(tx *gorm.DB) error {
		return database.Classify(tx.Create(&req).Error, "failed to submit request")
	})
	if err != nil {
		return nil, err
	}
	in.logger.Info("ration request submitted", zap.Uint("request", req.ID), zap.Uint("beneficiary", req.BeneficiaryID))
	return &req, nil
}

// List returns requests newest first.
func (in *Intake) List(ctx context.Context) ([]models.RationRequest, error) {
	var out []models.RationRequest
	if err := in.db.WithContext(ctx).Order("id desc").Find(&out).Error; err != nil {
		return nil, database.Classify(err, "failed to list requests")
	}
	return out, nil
}
