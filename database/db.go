package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"rationdist/config"
	"rationdist/models"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the configured store. SQLite is the default and keeps
// the whole application in a single file; Postgres is used in production.
func Open(cfg config.DBConfig, logger *zap.Logger) (*gorm.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite", "":
		dialector = sqlite.Open(sqliteDSN(cfg.DSN))
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect %s database: %w", cfg.Driver, err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	logger.Info("database connected", zap.String("driver", cfg.Driver))
	return gdb, nil
}

// sqliteDSN enables foreign keys and a busy timeout unless the caller
// already passed pragmas.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// Migrate creates or updates every table. Models are migrated one at a time
// so a failure on one does not block the others; all failures are returned.
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	tables := []struct {
		name  string
		model any
	}{
		{"distributors", &models.Distributor{}},
		{"beneficiaries", &models.Beneficiary{}},
		{"ration_items", &models.RationItem{}},
		{"ration_requests", &models.RationRequest{}},
		{"distribution_records", &models.DistributionRecord{}},
		{"receipts", &models.Receipt{}},
	}
	var errs []error
	for _, t := range tables {
		if err := db.AutoMigrate(t.model); err != nil {
			logger.Warn("migration failed", zap.String("table", t.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("migrate %s: %w", t.name, err))
		}
	}
	return errors.Join(errs...)
}
