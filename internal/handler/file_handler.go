package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"velodrive/internal/auth"
	"velodrive/internal/domain"
	"velodrive/internal/service"
	"velodrive/internal/service/s3"
)

type FileHandler struct {
	fileService    *service.FileService
	storage        s3.Storage
	tokens         *auth.Manager
	callbackSecret string
}

func NewFileHandler(fileService *service.FileService, storage s3.Storage, tokens *auth.Manager, callbackSecret string) *FileHandler {
	return &FileHandler{
		fileService:    fileService,
		storage:        storage,
		tokens:         tokens,
		callbackSecret: callbackSecret,
	}
}

type uploadFileRequest struct {
	FileName       string     `json:"file_name" validate:"required,min=3,max=50"`
	SizeInBytes    int64      `json:"size_in_bytes" validate:"required,gt=0"`
	ParentFolderID *uuid.UUID `json:"parent_folder_id,omitempty"`
	Conflict       string     `json:"conflict,omitempty" validate:"omitempty,oneof=Replace Keep"`
}

type renameFileRequest struct {
	NewName string `json:"new_name" validate:"required,min=1,max=50"`
}

type photoUploadRequest struct {
	SizeInBytes int64 `json:"size_in_bytes" validate:"required,gt=0"`
}

func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req uploadFileRequest
	if err := decodeAndValidate(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	handle, err := h.fileService.RequestUpload(r.Context(), userID, domain.UploadRequest{
		Name:           req.FileName,
		SizeInBytes:    req.SizeInBytes,
		ParentFolderID: req.ParentFolderID,
		Conflict:       domain.ConflictStrategy(req.Conflict),
	})
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, handle)
}

func (h *FileHandler) RenameFile(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	fileID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid file ID", http.StatusBadRequest)
		return
	}

	var req renameFileRequest
	if err := decodeAndValidate(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	name, err := h.fileService.RenameFile(r.Context(), userID, fileID, req.NewName)
	if err != nil {
		respondError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "File renamed to "+name)
}

func (h *FileHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	fileID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid file ID", http.StatusBadRequest)
		return
	}

	url, err := h.fileService.DownloadURL(r.Context(), userID, fileID)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"download_url": url})
}

// ConfirmUpload вызывается хранилищем после успешной загрузки объекта,
// а не клиентом, поэтому вместо JWT проверяется общий секрет
func (h *FileHandler) ConfirmUpload(w http.ResponseWriter, r *http.Request) {
	secret := r.Header.Get("X-Callback-Secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.callbackSecret)) != 1 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	fileID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid file ID", http.StatusBadRequest)
		return
	}

	if err := h.fileService.ConfirmUpload(r.Context(), fileID); err != nil {
		respondError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Upload confirmed")
}

func (h *FileHandler) UploadProfilePhoto(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req photoUploadRequest
	if err := decodeAndValidate(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	post, err := h.storage.IssuePhotoUploadHandle(r.Context(), userID, req.SizeInBytes)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

func (h *FileHandler) GetProfilePhoto(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	url, err := h.storage.IssuePhotoDownloadHandle(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"photo_url": url})
}
