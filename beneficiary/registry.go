// Package beneficiary exposes the beneficiary list and status updates.
package beneficiary

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

// StatusForm is posted by the beneficiary list page.
type StatusForm struct {
	BeneficiaryID string `form:"beneficiary_id"`
	Status        string `form:"status"`
}

type Registry struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewRegistry(db *gorm.DB, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{db: db, logger: logger}
}

func (r *Registry) List(ctx context.Context) ([]models.Beneficiary, error) {
	var out []models.Beneficiary
	if err := r.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, database.Classify(err, "failed to list beneficiaries")
	}
	return out, nil
}

// UpdateStatus overwrites the status with any string. There is no fixed set
// of values and no transition rule.
func (r *Registry) UpdateStatus(ctx context.Context, p *auth.Principal, f StatusForm) (*models.Beneficiary, error) {
	if err := auth.Require(p); err != nil {
		return nil, err
	}
	id, err := strconv.ParseUint(strings.TrimSpace(f.BeneficiaryID), 10, 32)
	if err != nil {
		return nil, apperr.Validation("beneficiary id must be a whole number", err)
	}
	var b models.Beneficiary
	err = database.InTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.First(&b, uint(id)).Error; err != nil {
			return database.Classify(err, "beneficiary not found")
		}
		b.Status = f.Status
		return database.Classify(tx.Model(&b).Update("status", f.Status).Error, "failed to update status")
	})
	if err != nil {
		return nil, err
	}
	r.logger.Info("beneficiary status updated", zap.Uint("beneficiary", b.ID), zap.String("status", b.Status), zap.String("by", p.Username))
	return &b, nil
}
