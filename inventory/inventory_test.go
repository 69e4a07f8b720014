package inventory

import (
	"context"
	"strings"
	"testing"

	"rationdist/auth"
	"rationdist/database/dbtest"
	"rationdist/models"
	"rationdist/pkg/apperr"

	"github.com/shopspring/decimal"
)

var officer = &auth.Principal{DistributorID: 1, Username: "admin"}

func riceForm() Form {
	return Form{ItemName: "Rice", Quantity: "250.5", Unit: "kg", PricePerUnit: "3.00", DistributionDate: "2024-01-10"}
}

func TestCreateListGet(t *testing.T) {
	db := dbtest.Open(t)
	m := NewManager(db, nil)
	ctx := context.Background()

	item, err := m.Create(ctx, officer, riceForm())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	items, err := m.List(ctx)
	if err != nil || len(items) != 1 {
		t.Fatalf("list: %v %d", err, len(items))
	}
	got, err := m.Get(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ItemName != "Rice" || !got.QuantityAvailable.Equal(decimal.RequireFromString("250.5")) || !got.PricePerUnit.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("unexpected item %+v", got)
	}
	if f := FormFor(*got); f.DistributionDate != "2024-01-10" || f.PricePerUnit != "3.00" || f.Quantity != "250.5" {
		t.Fatalf("unexpected form %+v", f)
	}
	if _, err := m.Get(ctx, 999); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found got %v", err)
	}
}

func TestCreateRejects(t *testing.T) {
	db := dbtest.Open(t)
	m := NewManager(db, nil)
	ctx := context.Background()
	bad := []func(*Form){
		func(f *Form) { f.Quantity = "lots" },
		func(f *Form) { f.Quantity = "-1" },
		func(f *Form) { f.PricePerUnit = "" },
		func(f *Form) { f.DistributionDate = "2024/01/10" },
		func(f *Form) { f.ItemName = "" },
		func(f *Form) { f.ItemName = strings.Repeat("r", 101) },
		func(f *Form) { f.Quantity = "1e400" },
		func(f *Form) { f.Quantity = "250.0001" },
		func(f *Form) { f.Quantity = "100000000000" },
		func(f *Form) { f.PricePerUnit = "1e400" },
		func(f *Form) { f.PricePerUnit = "3.001" },
		func(f *Form) { f.PricePerUnit = "1000000000000" },
	}
	for i, mutate := range bad {
		f := riceForm()
		mutate(&f)
		if _, err := m.Create(ctx, officer, f); !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("case %d: expected validation error got %v", i, err)
		}
	}
	if _, err := m.Create(ctx, nil, riceForm()); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized got %v", err)
	}
	if n := dbtest.Count(t, db, &models.RationItem{}); n != 0 {
		t.Fatalf("expected no rows got %d", n)
	}
	// zero stock is allowed
	f := riceForm()
	f.Quantity = "0"
	if _, err := m.Create(ctx, officer, f); err != nil {
		t.Fatalf("zero quantity: %v", err)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	db := dbtest.Open(t)
	m := NewManager(db, nil)
	ctx := context.Background()
	item, err := m.Create(ctx, officer, riceForm())
	if err != nil {
		t.Fatal(err)
	}

	f := riceForm()
	f.ItemName = "Basmati Rice"
	f.Quantity = "100"
	if _, err := m.Update(ctx, officer, item.ID, f); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := m.Get(ctx, item.ID)
	if got.ItemName != "Basmati Rice" || !got.QuantityAvailable.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("update not applied %+v", got)
	}

	f.Quantity = "oops"
	if _, err := m.Update(ctx, officer, item.ID, f); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error got %v", err)
	}
	got, _ = m.Get(ctx, item.ID)
	if !got.QuantityAvailable.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("failed update must not change the row")
	}
	if _, err := m.Update(ctx, officer, 999, riceForm()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found got %v", err)
	}

	if err := m.Delete(ctx, officer, item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := m.Delete(ctx, officer, item.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found on second delete got %v", err)
	}
	if err := m.Delete(ctx, nil, item.ID); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized got %v", err)
	}
}

func TestUpdateRejectsOutOfRangeDecimals(t *testing.T) {
	db := dbtest.Open(t)
	m := NewManager(db, nil)
	ctx := context.Background()
	item, err := m.Create(ctx, officer, riceForm())
	if err != nil {
		t.Fatal(err)
	}

	f := riceForm()
	f.PricePerUnit = "1e400"
	if _, err := m.Update(ctx, officer, item.ID, f); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error got %v", err)
	}
	items, err := m.List(ctx)
	if err != nil || len(items) != 1 {
		t.Fatalf("list: %v %d", err, len(items))
	}
	if !items[0].PricePerUnit.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("price changed to %s", items[0].PricePerUnit)
	}
}
