package models

import "path/filepath"

// ImageReference identifies one source image selected for conversion
type ImageReference struct {
	Path        string `json:"path" yaml:"path"`
	Filename    string `json:"filename" yaml:"filename"`
	ContentType string `json:"content_type,omitempty" yaml:"content_type,omitempty"`
}

// NewImageReference builds a reference for a file on disk, using its base name as the filename
func NewImageReference(path string) ImageReference {
	return ImageReference{
		Path:     path,
		Filename: filepath.Base(path),
	}
}

// Batch is the ordered set of images that becomes one PDF.
// The order of Refs is the page order of the output.
type Batch struct {
	refs []ImageReference
}

// NewBatch creates a batch holding refs in the given order
func NewBatch(refs ...ImageReference) *Batch {
	b := &Batch{}
	b.Add(refs...)
	return b
}

// Add appends refs to the end of the batch
func (b *Batch) Add(refs ...ImageReference) {
	b.refs = append(b.refs, refs...)
}

// Refs returns a copy of the batch contents
func (b *Batch) Refs() []ImageReference {
	out := make([]ImageReference, len(b.refs))
	copy(out, b.refs)
	return out
}

func (b *Batch) Len() int {
	return len(b.refs)
}

// SkippedImage records a reference that was dropped during normalization
type SkippedImage struct {
	Ref    ImageReference `json:"ref" yaml:"ref"`
	Reason string         `json:"reason" yaml:"reason"`
}

// Result describes a finished conversion
type Result struct {
	Pages   int            `json:"pages" yaml:"pages"`
	Skipped []SkippedImage `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}
