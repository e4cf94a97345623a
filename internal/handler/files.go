package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"filevault/internal/domain"
	"filevault/internal/domain/models"
	"filevault/internal/domain/services"
	"filevault/internal/httputil"
)

// FileHandler handles file record HTTP requests
type FileHandler struct {
	fileService services.FileService
	logger      *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService services.FileService, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		logger:      logger,
	}
}

// updateFileRequest distinguishes absent fields from explicit nulls
type updateFileRequest struct {
	OwnerID  httputil.OptionalString `json:"owner_id"`
	Name     httputil.OptionalString `json:"name"`
	MimeType httputil.OptionalString `json:"mime_type"`
}

// toPatch converts the wire request into a domain patch. A null owner_id is
// kept as an owner change to the empty actor so the guard rejects it.
func (req *updateFileRequest) toPatch() (*models.FilePatch, error) {
	patch := &models.FilePatch{}

	if req.OwnerID.Present {
		owner := models.ActorID("")
		if req.OwnerID.Value != nil {
			owner = models.ActorID(*req.OwnerID.Value)
		}
		patch.OwnerID = &owner
	}

	if req.Name.IsNull() {
		return nil, fmt.Errorf("%w: name cannot be null", domain.ErrValidation)
	}
	patch.Name = req.Name.Value

	if req.MimeType.IsNull() {
		return nil, fmt.Errorf("%w: mime_type cannot be null", domain.ErrValidation)
	}
	patch.MimeType = req.MimeType.Value

	return patch, nil
}

// ListFiles returns the caller's file records
// GET /api/files
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	actor := httputil.GetActor(r)

	files, err := h.fileService.ListFiles(r.Context(), actor)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, files)
}

// CreateFile inserts a file record without uploading bytes
// POST /api/files
// Returns 201 if created, 409 with existing record if the object path is taken
func (h *FileHandler) CreateFile(w http.ResponseWriter, r *http.Request) {
	actor := httputil.GetActor(r)

	var req services.CreateFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.fileService.CreateFile(r.Context(), actor, &req)
	if err != nil {
		HandleCreateConflict(w, err, func(id string) (*models.FileRecord, error) {
			return h.fileService.GetFile(r.Context(), actor, id)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, record)
}

// GetFile retrieves a file record by ID
// GET /api/files/{id}
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	actor := httputil.GetActor(r)
	id := r.PathValue("id")

	record, err := h.fileService.GetFile(r.Context(), actor, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, record)
}

// UpdateFile patches a file record
// PATCH /api/files/{id}
func (h *FileHandler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	actor := httputil.GetActor(r)
	id := r.PathValue("id")

	var req updateFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		handleError(w, err)
		return
	}

	record, err := h.fileService.UpdateFile(r.Context(), actor, id, patch)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, record)
}

// DeleteFile deletes a file record and its blob
// DELETE /api/files/{id}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	actor := httputil.GetActor(r)
	id := r.PathValue("id")

	if err := h.fileService.DeleteFile(r.Context(), actor, id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}
