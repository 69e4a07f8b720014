package database

import (
	"context"
	"fmt"

	"rationdist/auth"
	"rationdist/config"
	"rationdist/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seed ensures the admin distributor exists and that the demo beneficiary
// list is present.
func Seed(ctx context.Context, db *gorm.DB, cfg config.SeedConfig, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := seedAdmin(ctx, db, cfg, logger); err != nil {
		return err
	}
	return SeedBeneficiaries(ctx, db, cfg.Beneficiaries, logger)
}

func seedAdmin(ctx context.Context, db *gorm.DB, cfg config.SeedConfig, logger *zap.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Distributor{}).Where("username = ?", cfg.AdminUsername).Count(&count).Error; err != nil {
		return Classify(err, "failed to check admin distributor")
	}
	if count > 0 {
		return nil
	}
	if _, err := auth.CreateDistributor(ctx, db, cfg.AdminName, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	logger.Info("seeded admin distributor", zap.String("username", cfg.AdminUsername))
	return nil
}

// SeedBeneficiaries replaces the beneficiary table with n demo rows when it
// holds fewer than n. Existing rows are deleted first.
func SeedBeneficiaries(ctx context.Context, db *gorm.DB, n int, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if n <= 0 {
		return nil
	}
	return InTx(ctx, db, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Beneficiary{}).Count(&count).Error; err != nil {
			return Classify(err, "failed to count beneficiaries")
		}
		if count >= int64(n) {
			return nil
		}
		if err := tx.Where("1 = 1").Delete(&models.Beneficiary{}).Error; err != nil {
			return Classify(err, "failed to clear beneficiaries")
		}
		demo := DemoBeneficiaries(n)
		if err := tx.Create(&demo).Error; err != nil {
			return Classify(err, "failed to seed beneficiaries")
		}
		logger.Info("seeded demo beneficiaries", zap.Int("replaced", int(count)), zap.Int("created", n))
		return nil
	})
}

// DemoBeneficiaries builds the demo list Demo1..DemoN.
func DemoBeneficiaries(n int) []models.Beneficiary {
	out := make([]models.Beneficiary, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, models.Beneficiary{
			Name:          fmt.Sprintf("Demo%d", i),
			AadharNumber:  fmt.Sprintf("%d", 100000000000+i),
			Address:       "Demo Address",
			RationCardNo:  fmt.Sprintf("RC%05d", i),
			FamilyMembers: (i % 5) + 2,
			Status:        "Pending",
		})
	}
	return out
}
