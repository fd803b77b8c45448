// Package conversion runs one batch through normalization and PDF assembly.
package conversion

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/jpg2pdf/internal/images"
	"github.com/lehigh-university-libraries/jpg2pdf/internal/models"
)

var (
	// ErrEmptyBatch is returned when a conversion is requested with no images
	ErrEmptyBatch = errors.New("no images selected")

	// ErrNoUsableImages is returned when every image in the batch failed to decode
	ErrNoUsableImages = errors.New("unable to process any image")
)

// Policy decides what happens when a single image cannot be decoded
type Policy string

const (
	// PolicySkip logs the failure and continues with the remaining images
	PolicySkip Policy = "skip"
	// PolicyFail aborts the whole conversion
	PolicyFail Policy = "fail"
)

// ParsePolicy validates a policy name. An empty string selects PolicySkip.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicySkip, nil
	case PolicySkip, PolicyFail:
		return p, nil
	default:
		return "", fmt.Errorf("invalid decode error policy %q: must be 'skip' or 'fail'", s)
	}
}

// DecodeError wraps the failure of one image in the batch
type DecodeError struct {
	Ref models.ImageReference
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot process image %s: %v", e.Ref.Filename, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type Normalizer interface {
	Normalize(ref models.ImageReference) (*images.NormalizedImage, error)
}

type Assembler interface {
	Assemble(w io.Writer, pages []*images.NormalizedImage) error
	WriteFile(path string, pages []*images.NormalizedImage) error
}

// Service converts batches. It holds no per-run state and is safe to share
// between concurrent requests.
type Service struct {
	normalizer Normalizer
	assembler  Assembler
	policy     Policy
}

func NewService(normalizer Normalizer, assembler Assembler, policy Policy) *Service {
	if policy == "" {
		policy = PolicySkip
	}
	return &Service{
		normalizer: normalizer,
		assembler:  assembler,
		policy:     policy,
	}
}

func (s *Service) Policy() Policy {
	return s.policy
}

// Normalize decodes every image in the batch, in order, applying the
// service's decode error policy.
func (s *Service) Normalize(batch *models.Batch) ([]*images.NormalizedImage, *models.Result, error) {
	if batch == nil || batch.Len() == 0 {
		return nil, nil, ErrEmptyBatch
	}

	result := &models.Result{}
	pages := make([]*images.NormalizedImage, 0, batch.Len())

	for _, ref := range batch.Refs() {
		img, err := s.normalizer.Normalize(ref)
		if err != nil {
			decodeErr := &DecodeError{Ref: ref, Err: err}
			if s.policy == PolicyFail {
				return nil, nil, decodeErr
			}
			slog.Warn("Skipping image that could not be processed", "filename", ref.Filename, "error", err)
			result.Skipped = append(result.Skipped, models.SkippedImage{Ref: ref, Reason: err.Error()})
			continue
		}
		pages = append(pages, img)
	}

	if len(pages) == 0 {
		return nil, result, ErrNoUsableImages
	}

	result.Pages = len(pages)
	return pages, result, nil
}

// Convert writes the PDF for batch to w
func (s *Service) Convert(batch *models.Batch, w io.Writer) (*models.Result, error) {
	pages, result, err := s.Normalize(batch)
	if err != nil {
		return result, err
	}

	if err := s.assembler.Assemble(w, pages); err != nil {
		return result, err
	}

	slog.Info("Converted images to PDF", "pages", result.Pages, "skipped", len(result.Skipped))
	return result, nil
}

// ConvertFile writes the PDF for batch to path, replacing any existing file
func (s *Service) ConvertFile(batch *models.Batch, path string) (*models.Result, error) {
	pages, result, err := s.Normalize(batch)
	if err != nil {
		return result, err
	}

	if err := s.assembler.WriteFile(path, pages); err != nil {
		return result, err
	}

	slog.Info("Saved PDF", "path", path, "pages", result.Pages, "skipped", len(result.Skipped))
	return result, nil
}
