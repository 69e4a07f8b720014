package database

import (
	"context"

	"gorm.io/gorm"
)

// InTx runs fn inside a transaction scoped to one operation. The
// transaction is committed when fn returns nil and rolled back on any error
// or panic, so it is released on every exit path.
func InTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) (err error) {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return Classify(tx.Error, "could not start transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if cerr := tx.Commit().Error; cerr != nil {
		err = Classify(cerr, "failed to commit transaction")
		return err
	}
	return nil
}
