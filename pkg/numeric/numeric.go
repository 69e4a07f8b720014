// Package numeric parses form decimals against the precision and scale of
// the column they are stored in.
package numeric

import (
	"fmt"
	"strings"

	"rationdist/pkg/apperr"

	"github.com/shopspring/decimal"
)

// Column describes a decimal(Precision, Scale) column.
type Column struct {
	Precision int32
	Scale     int32
}

// Quantity and Price match the gorm column types in models.
var (
	Quantity = Column{Precision: 14, Scale: 3}
	Price    = Column{Precision: 14, Scale: 2}
)

// Limit is the smallest magnitude the column cannot hold.
func (c Column) Limit() decimal.Decimal {
	return decimal.New(1, c.Precision-c.Scale)
}

// Check rejects values with more fractional digits than the column keeps
// or with too many integer digits. Either would be changed on write.
func (c Column) Check(field string, d decimal.Decimal) error {
	if !d.Round(c.Scale).Equal(d) {
		return apperr.Validation(fmt.Sprintf("%s allows at most %d decimal places", field, c.Scale), nil)
	}
	if d.Abs().GreaterThanOrEqual(c.Limit()) {
		return apperr.Validation(fmt.Sprintf("%s must be less than %s", field, c.Limit().String()), nil)
	}
	return nil
}

// Parse reads raw as a decimal that fits the column.
func (c Column) Parse(field, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, apperr.Validation(field+" must be a number", err)
	}
	if err := c.Check(field, d); err != nil {
		return decimal.Decimal{}, err
	}
	return d, nil
}
