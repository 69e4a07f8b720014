package receipt

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"
)

// Logo box in the receipt header, in points.
const (
	logoX      = 40.0
	logoY      = 20.0
	logoMaxW   = 80.0
	logoMaxH   = 40.0
	logoPixels = 320
)

// Logo is a header image prepared once at startup.
type Logo struct {
	png    []byte
	width  int
	height int
}

// LoadLogo reads an image file, fits it into the header box and flattens
// any transparency onto white.
func LoadLogo(path string) (*Logo, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open logo: %w", err)
	}
	return NewLogo(img)
}

// NewLogo prepares an in-memory image as a receipt logo.
func NewLogo(img image.Image) (*Logo, error) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("logo image is empty")
	}
	fitted := imaging.Fit(img, logoPixels, logoPixels/2, imaging.Lanczos)
	bg := imaging.New(fitted.Bounds().Dx(), fitted.Bounds().Dy(), color.NRGBA{255, 255, 255, 255})
	flat := imaging.Overlay(bg, fitted, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode logo: %w", err)
	}
	return &Logo{png: buf.Bytes(), width: flat.Bounds().Dx(), height: flat.Bounds().Dy()}, nil
}

// size returns the drawn size in points, keeping the aspect ratio.
func (l *Logo) size() (float64, float64) {
	w, h := float64(l.width), float64(l.height)
	scale := logoMaxW / w
	if s := logoMaxH / h; s < scale {
		scale = s
	}
	return w * scale, h * scale
}

func (l *Logo) draw(pdf *fpdf.Fpdf) {
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(l.png))
	w, h := l.size()
	pdf.ImageOptions("logo", logoX, logoY, w, h, false, opts, 0, "")
}
