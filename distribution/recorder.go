// Package distribution records ration handovers and issues their receipts.
package distribution

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"rationdist/auth"
	"rationdist/database"
	"rationdist/models"
	"rationdist/pkg/apperr"
	"rationdist/pkg/notify"
	"rationdist/pkg/numeric"
	"rationdist/pkg/receipt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DateLayout is the calendar date format accepted from forms.
const DateLayout = "2006-01-02"

// maxItemType matches the item_type column size, counted in characters.
const maxItemType = 100

// Input is the raw distribution form.
type Input struct {
	BeneficiaryID    string `form:"beneficiaryId"`
	ItemType         string `form:"itemType"`
	Quantity         string `form:"quantity"`
	DistributionDate string `form:"dateDist"`
}

// Result is what a successful recording produced.
type Result struct {
	Record  models.DistributionRecord
	Receipt models.Receipt
	View    receipt.View
}

// Recorder validates and persists distributions. Inventory quantities are
// left untouched.
type Recorder struct {
	db        *gorm.DB
	numbers   *receipt.Synthesizer
	publisher notify.Publisher
	logger    *zap.Logger
}

func NewRecorder(db *gorm.DB, numbers *receipt.Synthesizer, publisher notify.Publisher, logger *zap.Logger) *Recorder {
	if numbers == nil {
		numbers = receipt.NewSynthesizer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{db: db, numbers: numbers, publisher: publisher, logger: logger}
}

type parsed struct {
	beneficiaryID uint
	itemType      string
	quantity      decimal.Decimal
	date          time.Time
}

func parseInput(in Input) (parsed, error) {
	var p parsed
	bid, err := strconv.ParseUint(strings.TrimSpace(in.BeneficiaryID), 10, 32)
	if err != nil {
		return p, apperr.Validation("beneficiary id must be a whole number", err)
	}
	p.beneficiaryID = uint(bid)

	p.itemType = strings.TrimSpace(in.ItemType)
	if p.itemType == "" {
		return p, apperr.Validation("item type is required", nil)
	}
	if utf8.RuneCountInString(p.itemType) > maxItemType {
		return p, apperr.Validation(fmt.Sprintf("item type is too long (max %d characters)", maxItemType), nil)
	}

	q, err := numeric.Quantity.Parse("quantity", in.Quantity)
	if err != nil {
		return p, err
	}
	if !q.IsPositive() {
		return p, apperr.Validation("quantity must be greater than zero", nil)
	}
	p.quantity = q

	d, err := time.Parse(DateLayout, strings.TrimSpace(in.DistributionDate))
	if err != nil {
		return p, apperr.Validation("date must be YYYY-MM-DD", err)
	}
	p.date = d
	return p, nil
}

// Record stores one DistributionRecord and its Receipt in a single
// transaction. The beneficiary id is not checked against the registry.
func (r *Recorder) Record(ctx context.Context, principal *auth.Principal, in Input) (*Result, error) {
	if err := auth.Require(principal); err != nil {
		return nil, err
	}
	p, err := parseInput(in)
	if err != nil {
		return nil, err
	}

	distributorID := principal.DistributorID
	res := &Result{}
	err = database.InTx(ctx, r.db, func(tx *gorm.DB) error {
		res.Record = models.DistributionRecord{
			BeneficiaryID:    p.beneficiaryID,
			ItemType:         p.itemType,
			Quantity:         p.quantity,
			DistributionDate: p.date,
			DistributorID:    &distributorID,
		}
		if err := tx.Create(&res.Record).Error; err != nil {
			return database.Classify(err, "failed to save distribution")
		}
		res.Receipt = models.Receipt{
			Number:               r.numbers.Next(),
			DistributionRecordID: res.Record.ID,
		}
		if err := tx.Omit("DistributionRecord").Create(&res.Receipt).Error; err != nil {
			return database.Classify(err, "failed to save receipt")
		}
		return nil
	})
	if err != nil {
		r.logger.Warn("distribution not recorded", zap.Uint("distributor", distributorID), zap.Error(err))
		return nil, err
	}
	res.Receipt.DistributionRecord = res.Record
	res.View = receipt.NewView(res.Receipt)

	r.logger.Info("distribution recorded",
		zap.Uint("record", res.Record.ID),
		zap.String("receipt", res.Receipt.Number),
		zap.Uint("beneficiary", res.Record.BeneficiaryID),
		zap.String("item", res.Record.ItemType),
		zap.String("quantity", res.Record.Quantity.String()))
	notify.Emit(ctx, r.publisher, notify.NewEvent(notify.EventDistributionRecorded, res.View), r.logger)
	return res, nil
}

// Receipt loads a stored receipt for display or export.
func (r *Recorder) Receipt(ctx context.Context, id string) (*receipt.View, error) {
	rid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, apperr.Validation("invalid receipt id", err)
	}
	var rec models.Receipt
	err = r.db.WithContext(ctx).Preload("DistributionRecord").Where("id = ?", rid.String()).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("receipt not found")
		}
		return nil, database.Classify(err, "failed to load receipt")
	}
	v := receipt.NewView(rec)
	return &v, nil
}

// List returns the most recent receipts, newest first.
func (r *Recorder) List(ctx context.Context, limit int) ([]receipt.View, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows []models.Receipt
	if err := r.db.WithContext(ctx).Preload("DistributionRecord").Order("distribution_record_id desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, database.Classify(err, "failed to list distributions")
	}
	out := make([]receipt.View, 0, len(rows))
	for _, row := range rows {
		out = append(out, receipt.NewView(row))
	}
	return out, nil
}
