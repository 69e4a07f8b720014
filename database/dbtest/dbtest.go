// Package dbtest opens throwaway SQLite stores for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"rationdist/config"
	"rationdist/database"

	"gorm.io/gorm"
)

// Open returns a migrated store backed by a file in t.TempDir.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	cfg := config.DBConfig{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "ration_test.db"),
		LogLevel: "silent",
	}
	gdb, err := database.Open(cfg, nil)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(gdb, nil); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

// Count returns the number of rows of model's table.
func Count(t testing.TB, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
