package conversion

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/lehigh-university-libraries/jpg2pdf/internal/images"
	"github.com/lehigh-university-libraries/jpg2pdf/internal/models"
	"github.com/lehigh-university-libraries/jpg2pdf/internal/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(policy Policy) *Service {
	normalizer := images.NewNormalizer(nil)
	return NewService(normalizer, pdf.NewAssembler(pdf.DefaultDPI, normalizer), policy)
}

func writeJPEG(t *testing.T, dir, name string, w, h int) models.ImageReference {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h)), nil))
	return models.NewImageReference(path)
}

func writeGarbage(t *testing.T, dir, name string) models.ImageReference {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("definitely not a jpeg"), 0o644))
	return models.NewImageReference(path)
}

func pageCount(t *testing.T, data []byte) int {
	t.Helper()
	n, err := api.PageCount(bytes.NewReader(data), nil)
	require.NoError(t, err)
	return n
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		input    string
		expected Policy
		wantErr  bool
	}{
		{input: "", expected: PolicySkip},
		{input: "skip", expected: PolicySkip},
		{input: " FAIL ", expected: PolicyFail},
		{input: "retry", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := ParsePolicy(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p)
		})
	}
}

func TestConvertPageCountMatchesBatch(t *testing.T) {
	dir := t.TempDir()
	batch := models.NewBatch(
		writeJPEG(t, dir, "1.jpg", 30, 20),
		writeJPEG(t, dir, "2.jpg", 20, 30),
		writeJPEG(t, dir, "3.jpg", 25, 25),
	)

	var buf bytes.Buffer
	result, err := newService(PolicySkip).Convert(batch, &buf)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Pages)
	assert.Empty(t, result.Skipped)
	assert.Equal(t, 3, pageCount(t, buf.Bytes()))
}

func TestConvertEmptyBatch(t *testing.T) {
	var buf bytes.Buffer
	result, err := newService(PolicySkip).Convert(models.NewBatch(), &buf)

	assert.ErrorIs(t, err, ErrEmptyBatch)
	assert.Nil(t, result)
	assert.Zero(t, buf.Len())

	_, err = newService(PolicySkip).Convert(nil, &buf)
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestConvertSkipPolicy(t *testing.T) {
	dir := t.TempDir()
	batch := models.NewBatch(
		writeJPEG(t, dir, "good1.jpg", 10, 10),
		writeGarbage(t, dir, "bad.jpg"),
		writeJPEG(t, dir, "good2.jpg", 10, 10),
	)

	var buf bytes.Buffer
	result, err := newService(PolicySkip).Convert(batch, &buf)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Pages)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "bad.jpg", result.Skipped[0].Ref.Filename)
	assert.NotEmpty(t, result.Skipped[0].Reason)
	assert.Equal(t, 2, pageCount(t, buf.Bytes()))
}

func TestConvertSkipPolicyNothingSurvives(t *testing.T) {
	dir := t.TempDir()
	batch := models.NewBatch(writeGarbage(t, dir, "a.jpg"), writeGarbage(t, dir, "b.jpg"))

	var buf bytes.Buffer
	result, err := newService(PolicySkip).Convert(batch, &buf)

	assert.ErrorIs(t, err, ErrNoUsableImages)
	require.NotNil(t, result)
	assert.Len(t, result.Skipped, 2)
	assert.Zero(t, buf.Len())
}

func TestConvertFailPolicy(t *testing.T) {
	dir := t.TempDir()
	batch := models.NewBatch(
		writeJPEG(t, dir, "good.jpg", 10, 10),
		writeGarbage(t, dir, "bad.jpg"),
	)

	var buf bytes.Buffer
	_, err := newService(PolicyFail).Convert(batch, &buf)

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, "bad.jpg", decodeErr.Ref.Filename)
	assert.Contains(t, err.Error(), "bad.jpg")
	assert.Zero(t, buf.Len())
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "album.pdf")
	batch := models.NewBatch(writeJPEG(t, dir, "only.jpg", 12, 8))

	result, err := newService(PolicySkip).ConvertFile(batch, out)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pages)

	count, err := api.PageCountFile(out)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestConvertFileFailPolicyLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "album.pdf")
	batch := models.NewBatch(writeGarbage(t, dir, "bad.jpg"))

	_, err := newService(PolicyFail).ConvertFile(batch, out)
	require.Error(t, err)
	assert.NoFileExists(t, out)
}

func TestNewServiceDefaultsPolicy(t *testing.T) {
	assert.Equal(t, PolicySkip, NewService(nil, nil, "").Policy())
}
