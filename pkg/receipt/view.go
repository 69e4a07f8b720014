package receipt

import (
	"fmt"

	"rationdist/models"
)

// MIMEType is the content type of an exported receipt.
const MIMEType = "application/pdf"

// Title heads both the HTML and the PDF receipt.
const Title = "Ration Distribution Receipt"

// View holds the five values a receipt shows. Empty fields render blank.
type View struct {
	ID            string
	Number        string
	BeneficiaryID string
	ItemType      string
	Quantity      string
	Date          string
}

// Line is one labelled row of a receipt.
type Line struct {
	Label string
	Value string
}

// NewView reads the display values from a stored receipt and its record.
func NewView(r models.Receipt) View {
	rec := r.DistributionRecord
	v := View{
		ID:       r.ID.String(),
		Number:   r.Number,
		ItemType: rec.ItemType,
	}
	if rec.ID != 0 {
		v.BeneficiaryID = fmt.Sprintf("%d", rec.BeneficiaryID)
		v.Quantity = rec.Quantity.String()
	}
	if !rec.DistributionDate.IsZero() {
		v.Date = rec.DistributionDate.Format("2006-01-02")
	}
	return v
}

// Lines returns the rows in display order. The HTML page and the PDF both
// render from this.
func (v View) Lines() []Line {
	return []Line{
		{Label: "Receipt No", Value: v.Number},
		{Label: "Beneficiary ID", Value: v.BeneficiaryID},
		{Label: "Item Type", Value: v.ItemType},
		{Label: "Quantity", Value: v.Quantity},
		{Label: "Date of Distribution", Value: v.Date},
	}
}

// Filename is the suggested attachment name.
func (v View) Filename() string {
	return fmt.Sprintf("receipt_%s.pdf", v.BeneficiaryID)
}
