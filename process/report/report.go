package report

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"rationdist/database"
	"rationdist/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const dayLayout = "2006-01-02"

// ItemTotal is the quantity handed out for one item type.
type ItemTotal struct {
	ItemType string          `json:"itemType"`
	Records  int             `json:"records"`
	Quantity decimal.Decimal `json:"quantity"`
}

// DailySummary aggregates the distributions dated on one calendar day.
type DailySummary struct {
	Date          string      `json:"date"`
	Records       int         `json:"records"`
	Beneficiaries int         `json:"beneficiaries"`
	Items         []ItemTotal `json:"items"`
}

// ParseDay reads a YYYY-MM-DD date; an empty string means today.
func ParseDay(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date, expected YYYY-MM-DD: %w", err)
	}
	return t, nil
}

func dayRows(ctx context.Context, db *gorm.DB, day time.Time) ([]models.DistributionRecord, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	var rows []models.DistributionRecord
	err := db.WithContext(ctx).
		Where("distribution_date >= ? AND distribution_date < ?", start, end).
		Order("id").Find(&rows).Error
	if err != nil {
		return nil, database.Classify(err, "failed to query distributions")
	}
	return rows, nil
}

// Daily sums the day's distributions per item type. Totals are computed
// in decimal so fractional quantities add up exactly.
func Daily(ctx context.Context, db *gorm.DB, day time.Time) (*DailySummary, error) {
	rows, err := dayRows(ctx, db, day)
	if err != nil {
		return nil, err
	}
	s := &DailySummary{Date: day.Format(dayLayout), Records: len(rows), Items: []ItemTotal{}}
	byItem := map[string]*ItemTotal{}
	seen := map[uint]struct{}{}
	for _, r := range rows {
		seen[r.BeneficiaryID] = struct{}{}
		it, ok := byItem[r.ItemType]
		if !ok {
			it = &ItemTotal{ItemType: r.ItemType, Quantity: decimal.Zero}
			byItem[r.ItemType] = it
		}
		it.Records++
		it.Quantity = it.Quantity.Add(r.Quantity)
	}
	s.Beneficiaries = len(seen)
	for _, it := range byItem {
		s.Items = append(s.Items, *it)
	}
	sort.Slice(s.Items, func(i, j int) bool { return s.Items[i].ItemType < s.Items[j].ItemType })
	return s, nil
}

// RunReport prints the daily summary for day to w and optionally lists the
// matching distribution records.
func RunReport(ctx context.Context, w io.Writer, db *gorm.DB, day time.Time, list bool) error {
	s, err := Daily(ctx, db, day)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Distribution report for %s:\n", s.Date)
	fmt.Fprintf(w, "  records=%d beneficiaries=%d\n", s.Records, s.Beneficiaries)
	for _, it := range s.Items {
		fmt.Fprintf(w, "  %s: records=%d quantity=%s\n", it.ItemType, it.Records, it.Quantity.String())
	}
	if !list {
		return nil
	}
	rows, err := dayRows(ctx, db, day)
	if err != nil {
		return err
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%d|%d|%s|%s|%s\n", r.ID, r.BeneficiaryID, r.ItemType, r.Quantity.String(), r.CreatedAt.Format(time.RFC3339))
	}
	return nil
}
