// Package pdf assembles normalized images into a multi-page PDF using pdfcpu.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/jpg2pdf/internal/images"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// DefaultDPI is the resolution recorded for every page
const DefaultDPI = 100

// ErrNoPages is returned when there is nothing to assemble
var ErrNoPages = errors.New("no pages to assemble")

func init() {
	// keep pdfcpu from creating a config dir under the user's home
	api.DisableConfigDir()
}

// PageEncoder serializes a normalized image into a format pdfcpu can import
type PageEncoder interface {
	Encode(w io.Writer, img *images.NormalizedImage) error
}

// Assembler turns an ordered list of images into one PDF, one image per page
type Assembler struct {
	DPI     int
	encoder PageEncoder
}

// NewAssembler creates an assembler. A dpi <= 0 falls back to DefaultDPI.
func NewAssembler(dpi int, encoder PageEncoder) *Assembler {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Assembler{
		DPI:     dpi,
		encoder: encoder,
	}
}

// Assemble writes a PDF to w. The first image is the first page and the
// remaining images follow in order. Each page measures its image's pixel size
// at the assembler's DPI.
func (a *Assembler) Assemble(w io.Writer, pages []*images.NormalizedImage) error {
	if len(pages) == 0 {
		return ErrNoPages
	}

	// pages differ in size, so each one is imported on its own and appended
	// to the document built so far
	var doc []byte
	for i, page := range pages {
		img := &bytes.Buffer{}
		if err := a.encoder.Encode(img, page); err != nil {
			return err
		}

		var rs io.ReadSeeker
		if doc != nil {
			rs = bytes.NewReader(doc)
		}

		out := &bytes.Buffer{}
		// pdfcpu mutates its configuration, so every run gets its own
		conf := model.NewDefaultConfiguration()
		if err := api.ImportImages(rs, out, []io.Reader{img}, a.pageImport(page), conf); err != nil {
			return fmt.Errorf("failed to add page %d (%s): %w", i+1, page.Ref.Filename, err)
		}
		doc = out.Bytes()
	}

	if _, err := w.Write(doc); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}

	slog.Debug("Assembled PDF", "pages", len(pages), "dpi", a.DPI)
	return nil
}

// PageSize returns the page size in points for an image at the assembler's DPI
func (a *Assembler) PageSize(page *images.NormalizedImage) types.Dim {
	scale := 72 / float64(a.DPI)
	return types.Dim{
		Width:  float64(page.Width()) * scale,
		Height: float64(page.Height()) * scale,
	}
}

// pageImport fills a page of exactly PageSize with the image. pdfcpu's
// "full" position sizes pages at 72 dpi regardless of the dpi setting.
func (a *Assembler) pageImport(page *images.NormalizedImage) *pdfcpu.Import {
	dim := a.PageSize(page)
	imp := pdfcpu.DefaultImportConfig()
	imp.PageDim = &dim
	imp.PageSize = ""
	imp.UserDim = true
	imp.Pos = types.Center
	imp.Scale = 1
	imp.ScaleAbs = false
	return imp
}

// WriteFile assembles pages into path, replacing any existing file. The PDF
// is written to a temporary file next to path and renamed into place, so a
// failed run never leaves a partial file at path.
func (a *Assembler) WriteFile(path string, pages []*images.NormalizedImage) (err error) {
	if len(pages) == 0 {
		return ErrNoPages
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".jpg2pdf-*.pdf")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = a.Assemble(tmp, pages); err != nil {
		tmp.Close()
		return err
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set output permissions: %w", err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}

	return nil
}
