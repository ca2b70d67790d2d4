package handler

import (
	"net/http"

	"github.com/google/uuid"

	"velodrive/internal/auth"
	"velodrive/internal/domain"
	"velodrive/internal/service"
)

type ShareHandler struct {
	shareService *service.ShareService
	tokens       *auth.Manager
}

func NewShareHandler(shareService *service.ShareService, tokens *auth.Manager) *ShareHandler {
	return &ShareHandler{
		shareService: shareService,
		tokens:       tokens,
	}
}

type createShareRequest struct {
	ShareWith       string     `json:"share_with" validate:"required"`
	ShareObjectType string     `json:"share_object_type" validate:"required,oneof=file folder"`
	FileID          *uuid.UUID `json:"file_id,omitempty"`
	FolderID        *uuid.UUID `json:"folder_id,omitempty"`
	Read            bool       `json:"read"`
	Write           bool       `json:"write"`
	Delete          bool       `json:"delete"`
}

func (h *ShareHandler) CreateShare(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createShareRequest
	if err := decodeAndValidate(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	perms := domain.Permissions{Read: req.Read, Write: req.Write, Delete: req.Delete}

	// Заполнено должно быть ровно одно из file_id/folder_id, и оно должно
	// соответствовать заявленному типу: лишний идентификатор не игнорируется
	switch req.ShareObjectType {
	case "file":
		if req.FileID == nil || req.FolderID != nil {
			http.Error(w, "file shares require file_id and no folder_id", http.StatusBadRequest)
			return
		}
		err = h.shareService.ShareFile(r.Context(), userID, req.ShareWith, *req.FileID, perms)
	case "folder":
		if req.FolderID == nil || req.FileID != nil {
			http.Error(w, "folder shares require folder_id and no file_id", http.StatusBadRequest)
			return
		}
		err = h.shareService.ShareFolder(r.Context(), userID, req.ShareWith, *req.FolderID, perms)
	}
	if err != nil {
		respondError(w, err)
		return
	}

	writeMessage(w, http.StatusCreated, "Share successfully created")
}

func (h *ShareHandler) GetSharedWithMe(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entries, err := h.shareService.SharedWithMe(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"shared_with_me": entries})
}
