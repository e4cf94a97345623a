package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"filevault/internal/domain/models"
	"filevault/internal/domain/services"
	"filevault/internal/httputil"
)

// FileNameHeader optionally carries the display name for an upload
const FileNameHeader = "X-File-Name"

// ObjectHandler handles blob HTTP requests
type ObjectHandler struct {
	fileService services.FileService
	logger      *slog.Logger
}

// NewObjectHandler creates a new object handler
func NewObjectHandler(fileService services.FileService, logger *slog.Logger) *ObjectHandler {
	return &ObjectHandler{
		fileService: fileService,
		logger:      logger,
	}
}

// UploadObject streams the request body to the blob store and creates its record.
// Content-Length is the declared size; chunked bodies are rejected by the size rule.
// PUT /api/objects/{path...}
func (h *ObjectHandler) UploadObject(w http.ResponseWriter, r *http.Request) {
	actor := httputil.GetActor(r)

	req := &services.UploadFileRequest{
		Path:     r.PathValue("path"),
		Name:     r.Header.Get(FileNameHeader),
		Size:     r.ContentLength,
		MimeType: r.Header.Get("Content-Type"),
		Body:     r.Body,
	}

	record, err := h.fileService.UploadObject(r.Context(), actor, req)
	if err != nil {
		HandleCreateConflict(w, err, func(id string) (*models.FileRecord, error) {
			return h.fileService.GetFile(r.Context(), actor, id)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, record)
}

// DownloadObject streams a blob back to its owner
// GET /api/objects/{path...}
func (h *ObjectHandler) DownloadObject(w http.ResponseWriter, r *http.Request) {
	actor := httputil.GetActor(r)
	path := r.PathValue("path")

	body, info, err := h.fileService.DownloadObject(r.Context(), actor, path)
	if err != nil {
		handleError(w, err)
		return
	}
	defer body.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if info.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	if info.ETag != "" {
		w.Header().Set("ETag", strconv.Quote(info.ETag))
	}
	if !info.LastModified.IsZero() {
		w.Header().Set("Last-Modified", info.LastModified.UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		// Headers are gone; nothing left but to log
		h.logger.Warn("download interrupted", "path", path, "error", err)
	}
}

// DeleteObject deletes a blob and any record pointing at it
// DELETE /api/objects/{path...}
func (h *ObjectHandler) DeleteObject(w http.ResponseWriter, r *http.Request) {
	actor := httputil.GetActor(r)

	if err := h.fileService.DeleteObject(r.Context(), actor, r.PathValue("path")); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}
