// Package images decodes source images and normalizes them into the single
// opaque RGB form that gets embedded into PDF pages.
package images

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/jpg2pdf/internal/models"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// jpegQuality is used when re-encoding normalized pages for the assembler
const jpegQuality = 95

// DefaultBackground is what transparent pixels are flattened onto
var DefaultBackground = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// NormalizedImage is a decoded, fully opaque RGB image ready for embedding
type NormalizedImage struct {
	Ref    models.ImageReference
	Format string
	Image  *image.RGBA
}

// Width and Height are the pixel dimensions, which set the PDF page size
func (n *NormalizedImage) Width() int  { return n.Image.Bounds().Dx() }
func (n *NormalizedImage) Height() int { return n.Image.Bounds().Dy() }

// Normalizer decodes images and flattens them onto a background color
type Normalizer struct {
	Background color.Color
}

// NewNormalizer creates a normalizer. A nil background means white.
func NewNormalizer(background color.Color) *Normalizer {
	if background == nil {
		background = DefaultBackground
	}
	return &Normalizer{Background: background}
}

// Normalize opens and decodes ref and returns it in opaque RGB form
func (n *Normalizer) Normalize(ref models.ImageReference) (*NormalizedImage, error) {
	file, err := os.Open(ref.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	src, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", ref.Filename, err)
	}

	slog.Debug("Decoded image",
		"filename", ref.Filename,
		"format", format,
		"width", src.Bounds().Dx(),
		"height", src.Bounds().Dy(),
		"color_model", colorModelName(src.ColorModel()))

	return &NormalizedImage{
		Ref:    ref,
		Format: format,
		Image:  n.Flatten(src),
	}, nil
}

// Flatten draws src over the background. The result has no transparency and
// its bounds start at the origin.
func (n *Normalizer) Flatten(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(n.Background), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

// Encode writes img as a baseline JPEG
func (n *Normalizer) Encode(w io.Writer, img *NormalizedImage) error {
	if err := jpeg.Encode(w, img.Image, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("failed to encode %s: %w", img.Ref.Filename, err)
	}
	return nil
}

// ParseHexColor parses "#rrggbb" or "rrggbb" into an opaque color
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q: expected #rrggbb", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}

	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func colorModelName(m color.Model) string {
	switch m {
	case color.RGBAModel, color.RGBA64Model:
		return "rgba"
	case color.NRGBAModel, color.NRGBA64Model:
		return "nrgba"
	case color.GrayModel, color.Gray16Model:
		return "gray"
	case color.YCbCrModel:
		return "ycbcr"
	case color.CMYKModel:
		return "cmyk"
	case color.AlphaModel, color.Alpha16Model:
		return "alpha"
	}
	if _, ok := m.(color.Palette); ok {
		return "palette"
	}
	return "other"
}
