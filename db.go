package main

import (
	"context"
	"fmt"

	"rationdist/config"
	"rationdist/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// initDB opens the configured store and, when auto-migrate is on (or
// force is set), migrates every table and runs the seeders.
func initDB(ctx context.Context, cfg *config.Config, logger *zap.Logger, force bool) (*gorm.DB, error) {
	db, err := database.Open(cfg.DB, logger.Named("db"))
	if err != nil {
		return nil, err
	}
	if !cfg.DB.AutoMigrate && !force {
		logger.Info("auto migrate disabled, skipping migration and seeding")
		return db, nil
	}
	if err := database.Migrate(db, logger.Named("migrate")); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := database.Seed(ctx, db, cfg.Seed, logger.Named("seed")); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return db, nil
}
