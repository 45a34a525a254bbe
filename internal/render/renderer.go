// Package render composes certificate images: recipient fields and an
// optional QR code are drawn onto a template background at configured
// positions.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/disintegration/imaging"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/hackboard/hackboard/internal/apperr"
	"github.com/hackboard/hackboard/internal/models"
)

// Renderer renders certificates with a single parsed font.
type Renderer struct {
	font *opentype.Font
}

// NewRenderer parses the TTF at fontPath, or the embedded Go Regular face
// when fontPath is empty.
func NewRenderer(fontPath string) (*Renderer, error) {
	ttf := goregular.TTF
	if fontPath != "" {
		data, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read font %s: %w", fontPath, err)
		}
		ttf = data
	}
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &Renderer{font: f}, nil
}

// Request describes one certificate to render.
type Request struct {
	Background []byte
	Positions  map[string]models.FieldPosition
	Fields     map[string]string // text per field name (name, role, event, date)
	QRContent  string            // verification URL; drawn only if the qr field is enabled
}

// Render produces a PNG with the same dimensions as the background.
func (r *Renderer) Render(req Request) ([]byte, error) {
	background, err := imaging.Decode(bytes.NewReader(req.Background))
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidFileType, "template background is not a decodable image", err)
	}

	img := imaging.Clone(background)

	if pos, ok := req.Positions[models.FieldQR]; ok && pos.Enabled && req.QRContent != "" {
		img, err = r.drawQR(img, pos, req.QRContent)
		if err != nil {
			return nil, err
		}
	}

	for _, field := range models.TextFields {
		pos, ok := req.Positions[field]
		if !ok || !pos.Enabled {
			continue
		}
		text := req.Fields[field]
		if text == "" {
			continue
		}
		if err := r.drawText(img, pos, text); err != nil {
			return nil, fmt.Errorf("failed to draw field %s: %w", field, err)
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode certificate: %w", err)
	}
	return buf.Bytes(), nil
}

// drawText renders one text field centered horizontally on pos.X with the
// baseline at pos.Y.
func (r *Renderer) drawText(img *image.NRGBA, pos models.FieldPosition, text string) error {
	size := pos.FontSize
	if size <= 0 {
		size = 24
	}
	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("failed to create font face: %w", err)
	}
	defer face.Close()

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(parseHexColor(pos.Color)),
		Face: face,
	}
	width := drawer.MeasureString(text)
	drawer.Dot = fixed.P(pos.X, pos.Y).Sub(fixed.Point26_6{X: width / 2})
	drawer.DrawString(text)
	return nil
}

// drawQR pastes a QR code centered on the configured point.
func (r *Renderer) drawQR(img *image.NRGBA, pos models.FieldPosition, content string) (*image.NRGBA, error) {
	size := pos.Size
	if size <= 0 {
		size = 120
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	qr, err := imaging.Decode(bytes.NewReader(png))
	if err != nil {
		return nil, fmt.Errorf("failed to decode QR code image: %w", err)
	}
	return imaging.Paste(img, qr, image.Pt(pos.X-size/2, pos.Y-size/2)), nil
}

// parseHexColor parses "#rrggbb" (or "#rgb"); anything else yields black.
func parseHexColor(s string) color.Color {
	c := color.NRGBA{A: 0xff}
	if len(s) == 0 || s[0] != '#' {
		return c
	}
	hexByte := func(b byte) (uint8, bool) {
		switch {
		case b >= '0' && b <= '9':
			return b - '0', true
		case b >= 'a' && b <= 'f':
			return b - 'a' + 10, true
		case b >= 'A' && b <= 'F':
			return b - 'A' + 10, true
		}
		return 0, false
	}
	switch len(s) {
	case 7:
		for i, dst := range []*uint8{&c.R, &c.G, &c.B} {
			hi, ok1 := hexByte(s[1+i*2])
			lo, ok2 := hexByte(s[2+i*2])
			if !ok1 || !ok2 {
				return color.NRGBA{A: 0xff}
			}
			*dst = hi<<4 | lo
		}
	case 4:
		for i, dst := range []*uint8{&c.R, &c.G, &c.B} {
			v, ok := hexByte(s[1+i])
			if !ok {
				return color.NRGBA{A: 0xff}
			}
			*dst = v<<4 | v
		}
	}
	return c
}
