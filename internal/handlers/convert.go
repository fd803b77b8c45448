package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/jpg2pdf/internal/conversion"
)

const (
	// OutputFilename is the name offered to the browser for the generated PDF
	OutputFilename = "converted.pdf"

	// multipartMemory is how much of an upload is buffered in memory before spilling to disk
	multipartMemory = 10 << 20
)

// HandleConvert accepts a multipart upload of images under the "files" (or
// "file") field and responds with the assembled PDF
func (h *Handler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			h.writeError(w, "upload too large", http.StatusRequestEntityTooLarge)
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			h.writeError(w, "no files uploaded", http.StatusBadRequest)
		default:
			h.writeError(w, "invalid upload: "+err.Error(), http.StatusBadRequest)
		}
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.Debug("Unable to remove multipart temp files", "err", err)
		}
	}()

	files := uploadedFiles(r.MultipartForm)
	if len(files) == 0 {
		h.writeError(w, "no files uploaded", http.StatusBadRequest)
		return
	}

	ws, err := h.workspaces.Create()
	if err != nil {
		h.writeError(w, "conversion failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer h.workspaces.Delete(ws.ID)

	batch, err := h.saveUploads(ws, files)
	if err != nil {
		h.writeError(w, "conversion failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if batch.Len() == 0 {
		h.writeError(w, "no valid image files", http.StatusUnsupportedMediaType)
		return
	}

	var out bytes.Buffer
	result, err := h.converter.Convert(batch, &out)
	if err != nil {
		h.writeConversionError(w, err)
		return
	}

	slog.Info("Sending PDF", "workspace", ws.ID, "pages", result.Pages, "skipped", len(result.Skipped), "bytes", out.Len())

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+OutputFilename+`"`)
	http.ServeContent(w, r, OutputFilename, time.Now(), bytes.NewReader(out.Bytes()))
}

func (h *Handler) writeConversionError(w http.ResponseWriter, err error) {
	var decodeErr *conversion.DecodeError
	switch {
	case errors.Is(err, conversion.ErrNoUsableImages):
		h.writeError(w, conversion.ErrNoUsableImages.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &decodeErr):
		h.writeError(w, "conversion failed: "+err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, conversion.ErrEmptyBatch):
		h.writeError(w, "no valid image files", http.StatusBadRequest)
	default:
		h.writeError(w, "conversion failed: "+err.Error(), http.StatusInternalServerError)
	}
}

func uploadedFiles(form *multipart.Form) []*multipart.FileHeader {
	if files := form.File["files"]; len(files) > 0 {
		return files
	}
	return form.File["file"]
}
