package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/jpg2pdf/internal/models"
	"github.com/lehigh-university-libraries/jpg2pdf/internal/storage"
)

// saveUploads copies every allowed upload into the workspace and returns
// them as a batch in upload order. Uploads with a disallowed content type
// are left out.
func (h *Handler) saveUploads(ws *storage.Workspace, files []*multipart.FileHeader) (*models.Batch, error) {
	batch := models.NewBatch()

	for i, header := range files {
		contentType := header.Header.Get("Content-Type")
		if !contentTypeAllowed(h.allowedTypes, contentType) {
			slog.Warn("Ignoring upload with unsupported content type", "filename", header.Filename, "content_type", contentType)
			continue
		}

		// index prefix keeps uploads with the same name apart
		path := ws.Path(fmt.Sprintf("%03d_%s", i, filepath.Base(header.Filename)))
		if err := saveUpload(header, path); err != nil {
			return nil, err
		}

		slog.Info("Image saved", "filename", header.Filename, "size", header.Size, "workspace", ws.ID)

		batch.Add(models.ImageReference{
			Path:        path,
			Filename:    header.Filename,
			ContentType: contentType,
		})
	}

	return batch, nil
}

func saveUpload(header *multipart.FileHeader, path string) error {
	src, err := header.Open()
	if err != nil {
		return fmt.Errorf("failed to read upload %s: %w", header.Filename, err)
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("failed to save image: %w", err)
	}

	return dst.Close()
}
