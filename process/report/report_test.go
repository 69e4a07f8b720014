package report

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"rationdist/database/dbtest"
	"rationdist/models"

	"github.com/shopspring/decimal"
)

func day(s string) time.Time {
	t, _ := time.Parse(dayLayout, s)
	return t
}

func TestDailySummary(t *testing.T) {
	db := dbtest.Open(t)
	rows := []models.DistributionRecord{
		{BeneficiaryID: 3, ItemType: "Rice", Quantity: decimal.RequireFromString("10.5"), DistributionDate: day("2024-01-15")},
		{BeneficiaryID: 4, ItemType: "Rice", Quantity: decimal.RequireFromString("0.25"), DistributionDate: day("2024-01-15")},
		{BeneficiaryID: 3, ItemType: "Sugar", Quantity: decimal.NewFromInt(2), DistributionDate: day("2024-01-15")},
		{BeneficiaryID: 9, ItemType: "Rice", Quantity: decimal.NewFromInt(7), DistributionDate: day("2024-01-16")},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatal(err)
	}

	s, err := Daily(context.Background(), db, day("2024-01-15"))
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if s.Date != "2024-01-15" || s.Records != 3 || s.Beneficiaries != 2 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if len(s.Items) != 2 || s.Items[0].ItemType != "Rice" || s.Items[1].ItemType != "Sugar" {
		t.Fatalf("unexpected items %+v", s.Items)
	}
	if !s.Items[0].Quantity.Equal(decimal.RequireFromString("10.75")) || s.Items[0].Records != 2 {
		t.Fatalf("unexpected rice total %+v", s.Items[0])
	}

	empty, err := Daily(context.Background(), db, day("2023-12-31"))
	if err != nil || empty.Records != 0 || len(empty.Items) != 0 {
		t.Fatalf("expected empty summary got %+v (%v)", empty, err)
	}

	var buf bytes.Buffer
	if err := RunReport(context.Background(), &buf, db, day("2024-01-15"), true); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "records=3 beneficiaries=2") || !strings.Contains(out, "Rice: records=2 quantity=10.75") {
		t.Fatalf("unexpected report output:\n%s", out)
	}
	if strings.Count(out, "|") != 3*4 {
		t.Fatalf("expected three listed rows:\n%s", out)
	}
}

func TestParseDay(t *testing.T) {
	now := time.Date(2024, 5, 6, 18, 30, 0, 0, time.Local)
	d, err := ParseDay("", now)
	if err != nil || d.Format(dayLayout) != "2024-05-06" {
		t.Fatalf("expected today got %v %v", d, err)
	}
	if _, err := ParseDay("06-05-2024", now); err == nil {
		t.Fatalf("expected error for bad date")
	}
}
