// Package sanitize wipes application tables, optionally reseeding the admin
// distributor and the demo beneficiary list afterwards.
package sanitize

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"rationdist/config"
	"rationdist/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultTables lists the application tables with dependents first, so
// rows can be removed in order when the store enforces foreign keys.
var DefaultTables = []string{
	"receipts",
	"distribution_records",
	"ration_requests",
	"ration_items",
	"beneficiaries",
	"distributors",
}

var tableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type Options struct {
	Tables []string
	DryRun bool
	Reseed bool
	Seed   config.SeedConfig
}

// ParseTables splits a comma separated list, dropping blanks and names that
// are not plain identifiers.
func ParseTables(list string, logger *zap.Logger) []string {
	if logger == nil {
		logger = zap.NewNop()
	}
	var out []string
	for _, p := range strings.Split(list, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !tableName.MatchString(p) {
			logger.Warn("skipping invalid table name", zap.String("table", p))
			continue
		}
		out = append(out, p)
	}
	return out
}

// Plan returns the requested tables that exist in db.
func Plan(db *gorm.DB, tables []string) []string {
	m := db.Migrator()
	existing := make([]string, 0, len(tables))
	for _, t := range tables {
		if m.HasTable(t) {
			existing = append(existing, t)
		}
	}
	return existing
}

// Run clears the planned tables and returns their names. Nothing is
// touched when opts.DryRun is set.
func Run(ctx context.Context, db *gorm.DB, opts Options, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tables := opts.Tables
	if len(tables) == 0 {
		tables = DefaultTables
	}
	existing := Plan(db, tables)
	if len(existing) == 0 || opts.DryRun {
		return existing, nil
	}

	err := database.InTx(ctx, db, func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			quoted := make([]string, len(existing))
			for i, t := range existing {
				quoted[i] = fmt.Sprintf("%q", t)
			}
			stmt := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(quoted, ", "))
			logger.Info("executing", zap.String("stmt", stmt))
			return tx.Exec(stmt).Error
		}
		for _, t := range existing {
			if err := tx.Exec(fmt.Sprintf("DELETE FROM %q", t)).Error; err != nil {
				return fmt.Errorf("clear %s: %w", t, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, database.Classify(err, "failed to clear tables")
	}
	logger.Info("tables cleared", zap.Strings("tables", existing))

	if opts.Reseed {
		if err := database.Seed(ctx, db, opts.Seed, logger); err != nil {
			return existing, fmt.Errorf("reseed: %w", err)
		}
	}
	return existing, nil
}
