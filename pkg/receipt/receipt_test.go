package receipt

import (
	"bytes"
	"image/color"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"rationdist/models"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var numberRE = regexp.MustCompile(`^REC-\d{8}-\d{3}$`)

func TestNextNumberFormat(t *testing.T) {
	s := NewSynthesizer()
	today := time.Now().Format("20060102")
	for i := 0; i < 200; i++ {
		n := s.Next()
		if !numberRE.MatchString(n) {
			t.Fatalf("bad receipt number %q", n)
		}
		if got := strings.Split(n, "-")[1]; got != today {
			t.Fatalf("expected date %s got %s", today, got)
		}
	}
}

func TestNextNumberBounds(t *testing.T) {
	day := time.Date(2024, 1, 15, 23, 59, 0, 0, time.Local)
	cases := []struct {
		draw int
		want string
	}{
		{0, "REC-20240115-100"},
		{899, "REC-20240115-999"},
		{423, "REC-20240115-523"},
	}
	for _, tc := range cases {
		s := &Synthesizer{Now: func() time.Time { return day }, Intn: func(n int) int {
			if n != 900 {
				t.Fatalf("expected draw range 900 got %d", n)
			}
			return tc.draw
		}}
		if got := s.Next(); got != tc.want {
			t.Fatalf("expected %s got %s", tc.want, got)
		}
	}
}

func sampleView() View {
	return View{Number: "REC-20240115-123", BeneficiaryID: "3", ItemType: "Rice", Quantity: "10.5", Date: "2024-01-15"}
}

func TestLinesOrder(t *testing.T) {
	lines := sampleView().Lines()
	labels := []string{"Receipt No", "Beneficiary ID", "Item Type", "Quantity", "Date of Distribution"}
	values := []string{"REC-20240115-123", "3", "Rice", "10.5", "2024-01-15"}
	if len(lines) != len(labels) {
		t.Fatalf("expected %d lines got %d", len(labels), len(lines))
	}
	for i, l := range lines {
		if l.Label != labels[i] || l.Value != values[i] {
			t.Fatalf("line %d: got %+v", i, l)
		}
	}
	if fn := sampleView().Filename(); fn != "receipt_3.pdf" {
		t.Fatalf("unexpected filename %s", fn)
	}
}

func TestNewView(t *testing.T) {
	r := models.Receipt{
		ID:     uuid.New(),
		Number: "REC-20240115-777",
		DistributionRecord: models.DistributionRecord{
			ID:               9,
			BeneficiaryID:    3,
			ItemType:         "Rice",
			Quantity:         decimal.RequireFromString("10.500"),
			DistributionDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
	}
	v := NewView(r)
	if v.BeneficiaryID != "3" || v.Quantity != "10.5" || v.Date != "2024-01-15" || v.ItemType != "Rice" || v.Number != r.Number {
		t.Fatalf("unexpected view %+v", v)
	}

	empty := NewView(models.Receipt{})
	for _, l := range empty.Lines() {
		if l.Value != "" {
			t.Fatalf("expected blank %s got %q", l.Label, l.Value)
		}
	}
}

func TestExportMatchesPresenter(t *testing.T) {
	e := &Exporter{Compress: false}
	v := sampleView()
	pdf, err := e.Build(v)
	if err != nil {
		t.Fatal(err)
	}
	if pdf.PageCount() != 1 {
		t.Fatalf("expected one page got %d", pdf.PageCount())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "%PDF-") {
		t.Fatalf("not a pdf")
	}
	if !strings.Contains(out, "("+Title+")") {
		t.Fatalf("title missing")
	}
	// every presenter line appears in the document, in order
	last := -1
	for _, l := range v.Lines() {
		idx := strings.Index(out, "("+l.Label+": "+l.Value+")")
		if idx < 0 {
			t.Fatalf("line %q missing from pdf", l.Label)
		}
		if idx < last {
			t.Fatalf("line %q out of order", l.Label)
		}
		last = idx
	}
}

func TestExportLongValuesStayOnOnePage(t *testing.T) {
	e := &Exporter{}
	v := sampleView()
	v.ItemType = strings.Repeat("Fortified whole wheat flour ", 200)
	v.BeneficiaryID = strings.Repeat("9", 500)
	pdf, err := e.Build(v)
	if err != nil {
		t.Fatal(err)
	}
	if pdf.PageCount() != 1 {
		t.Fatalf("expected one page got %d", pdf.PageCount())
	}
	pdf.SetFont("Helvetica", "", 12)
	long := fitWidth(pdf, "Item Type: "+v.ItemType, pageWidth-lineX-rightMargin)
	if !strings.HasSuffix(long, ellipsis) {
		t.Fatalf("expected ellipsis, got %q", long)
	}
	if w := pdf.GetStringWidth(long); w > pageWidth-lineX-rightMargin {
		t.Fatalf("truncated line still too wide: %f", w)
	}
	b, err := e.Bytes(v)
	if err != nil || len(b) == 0 {
		t.Fatalf("bytes: %v", err)
	}
}

func TestExportWithLogo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.png")
	if err := imaging.Save(imaging.New(600, 200, color.NRGBA{0, 90, 160, 255}), path); err != nil {
		t.Fatal(err)
	}
	logo, err := LoadLogo(path)
	if err != nil {
		t.Fatalf("load logo: %v", err)
	}
	w, h := logo.size()
	if w > logoMaxW || h > logoMaxH {
		t.Fatalf("logo %fx%f exceeds header box", w, h)
	}
	e := &Exporter{Compress: true, Logo: logo}
	pdf, err := e.Build(sampleView())
	if err != nil {
		t.Fatal(err)
	}
	if pdf.PageCount() != 1 {
		t.Fatalf("expected one page got %d", pdf.PageCount())
	}

	if _, err := LoadLogo(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatalf("expected error for missing logo")
	}
}
