// Package inventory manages the ration item catalogue.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"rationdist/auth"
	"rationdist/database"
	"rationdist/models"
	"rationdist/pkg/apperr"
	"rationdist/pkg/numeric"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// Form is the add/edit ration item form.
type Form struct {
	ItemName         string `form:"item_name"`
	Quantity         string `form:"quantity"`
	Unit             string `form:"unit"`
	PricePerUnit     string `form:"price_per_unit"`
	DistributionDate string `form:"distribution_date"`
}

// Manager runs inventory operations against the store.
type Manager struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewManager(db *gorm.DB, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{db: db, logger: logger}
}

const maxItemName = 100

func nonNegative(col numeric.Column, field, raw string) (decimal.Decimal, error) {
	d, err := col.Parse(field, raw)
	if err != nil {
		return d, err
	}
	if d.IsNegative() {
		return d, apperr.Validation(field+" cannot be negative", nil)
	}
	return d, nil
}

// apply validates f and copies it onto item.
func (f Form) apply(item *models.RationItem) error {
	name := strings.TrimSpace(f.ItemName)
	if name == "" {
		return apperr.Validation("item name is required", nil)
	}
	if utf8.RuneCountInString(name) > maxItemName {
		return apperr.Validation(fmt.Sprintf("item name is too long (max %d characters)", maxItemName), nil)
	}
	qty, err := nonNegative(numeric.Quantity, "quantity", f.Quantity)
	if err != nil {
		return err
	}
	price, err := nonNegative(numeric.Price, "price per unit", f.PricePerUnit)
	if err != nil {
		return err
	}
	date, err := time.Parse(dateLayout, strings.TrimSpace(f.DistributionDate))
	if err != nil {
		return apperr.Validation("distribution date must be YYYY-MM-DD", err)
	}
	item.ItemName = name
	item.QuantityAvailable = qty
	item.Unit = strings.TrimSpace(f.Unit)
	item.PricePerUnit = price
	item.DistributionDate = date
	return nil
}

// FormFor pre-fills the edit form from a stored item.
func FormFor(item models.RationItem) Form {
	f := Form{
		ItemName:     item.ItemName,
		Quantity:     item.QuantityAvailable.String(),
		Unit:         item.Unit,
		PricePerUnit: item.PricePerUnit.StringFixed(2),
	}
	if !item.DistributionDate.IsZero() {
		f.DistributionDate = item.DistributionDate.Format(dateLayout)
	}
	return f
}

func (m *Manager) Create(ctx context.Context, p *auth.Principal, f Form) (*models.RationItem, error) {
	if err := auth.Require(p); err != nil {
		return nil, err
	}
	var item models.RationItem
	if err := f.apply(&item); err != nil {
		return nil, err
	}
	err := database.InTx(ctx, m.db, func(tx *gorm.DB) error {
		return database.Classify(tx.Create(&item).Error, "error adding item")
	})
	if err != nil {
		return nil, err
	}
	m.logger.Info("ration item added", zap.Uint("item", item.ID), zap.String("name", item.ItemName))
	return &item, nil
}

func (m *Manager) List(ctx context.Context) ([]models.RationItem, error) {
	var items []models.RationItem
	if err := m.db.WithContext(ctx).Order("id").Find(&items).Error; err != nil {
		return nil, database.Classify(err, "failed to list items")
	}
	return items, nil
}

func (m *Manager) Get(ctx context.Context, id uint) (*models.RationItem, error) {
	var item models.RationItem
	if err := m.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("ration item not found")
		}
		return nil, database.Classify(err, "failed to load item")
	}
	return &item, nil
}

// Update overwrites every editable field of the item.
func (m *Manager) Update(ctx context.Context, p *auth.Principal, id uint, f Form) (*models.RationItem, error) {
	if err := auth.Require(p); err != nil {
		return nil, err
	}
	var item models.RationItem
	err := database.InTx(ctx, m.db, func(tx *gorm.DB) error {
		if err := tx.First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("ration item not found")
			}
			return database.Classify(err, "failed to load item")
		}
		if err := f.apply(&item); err != nil {
			return err
		}
		return database.Classify(tx.Save(&item).Error, "error updating item")
	})
	if err != nil {
		return nil, err
	}
	m.logger.Info("ration item updated", zap.Uint("item", item.ID))
	return &item, nil
}

func (m *Manager) Delete(ctx context.Context, p *auth.Principal, id uint) error {
	if err := auth.Require(p); err != nil {
		return err
	}
	err := database.InTx(ctx, m.db, func(tx *gorm.DB) error {
		res := tx.Delete(&models.RationItem{}, id)
		if res.Error != nil {
			return database.Classify(res.Error, "error deleting item")
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("ration item not found")
		}
		return nil
	})
	if err != nil {
		return err
	}
	m.logger.Info("ration item deleted", zap.Uint("item", id))
	return nil
}
