package signature

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"strings"

	"github.com/jrsteele09/signature-studio/internal/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Raster size in logical pixels, drawn at device scale 1.
const (
	RasterWidth  = 2200
	RasterHeight = 700
)

var (
	regularFont = mustParseFont(goregular.TTF)
	boldFont    = mustParseFont(gobold.TTF)
)

func mustParseFont(ttf []byte) *opentype.Font {
	f, err := opentype.Parse(ttf)
	if err != nil {
		panic(err)
	}
	return f
}

type textLine struct {
	text  string
	font  *opentype.Font
	size  float64
	color color.Color
	// baseline y
	y int
}

// Rasterize draws the signature into a RasterWidth x RasterHeight PNG.
// A form without a name has nothing to draw and yields a RenderError.
func (r *Renderer) Rasterize(f FormState) ([]byte, error) {
	name := f.DisplayName()
	if name == "" {
		return nil, &errors.RenderError{Reason: "the signature has no name to draw"}
	}

	accent := r.accent
	text := color.RGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff}

	img := image.NewRGBA(image.Rect(0, 0, RasterWidth, RasterHeight))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(80, 90, 96, 610), image.NewUniform(accent), image.Point{}, draw.Src)

	lines := []textLine{{text: name, font: boldFont, size: 96, color: text, y: 190}}
	y := 190
	if s := strings.TrimSpace(f.JobTitle); s != "" {
		y += 80
		lines = append(lines, textLine{text: s, font: regularFont, size: 56, color: accent, y: y})
	}
	if r.branding.Company != "" {
		y += 80
		lines = append(lines, textLine{text: r.branding.Company, font: boldFont, size: 50, color: text, y: y})
	}
	y += 30
	for _, s := range []string{phoneLine(f), addressLine(f), strings.TrimSpace(f.Email)} {
		if s == "" {
			continue
		}
		y += 64
		lines = append(lines, textLine{text: s, font: regularFont, size: 44, color: text, y: y})
	}

	for _, l := range lines {
		if err := drawLine(img, l, 150, RasterWidth-150); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode signature image: %w", err)
	}
	return buf.Bytes(), nil
}

func phoneLine(f FormState) string {
	if p := f.FormattedPhone(); p != "" {
		return "T. " + p
	}
	return ""
}

func addressLine(f FormState) string {
	line := f.AddressLine()
	if c := strings.TrimSpace(f.Country); c != "" && line != "" {
		line += ", " + c
	}
	return line
}

func drawLine(dst draw.Image, l textLine, x, maxX int) error {
	face, err := opentype.NewFace(l.font, &opentype.FaceOptions{
		Size:    l.size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("failed to create font face: %w", err)
	}
	defer face.Close()

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(l.color),
		Face: face,
		Dot:  fixed.P(x, l.y),
	}
	d.DrawString(fit(d, l.text, fixed.I(maxX-x)))
	return nil
}

// fit shortens s with an ellipsis until it is no wider than width.
func fit(d *font.Drawer, s string, width fixed.Int26_6) string {
	if d.MeasureString(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := strings.TrimSpace(string(runes)) + "…"
		if d.MeasureString(candidate) <= width {
			return candidate
		}
	}
	return ""
}

func parseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid accent colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid accent colour %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
