package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"velodrive/internal/auth"
	"velodrive/internal/domain"
	"velodrive/internal/service"
)

type FolderHandler struct {
	folderService *service.FolderService
	tokens        *auth.Manager
}

func NewFolderHandler(folderService *service.FolderService, tokens *auth.Manager) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		tokens:        tokens,
	}
}

type createFolderRequest struct {
	FolderName     string     `json:"folder_name" validate:"required,min=3,max=25"`
	ParentFolderID *uuid.UUID `json:"parent_folder_id,omitempty"`
}

type renameFolderRequest struct {
	NewName        string     `json:"new_name" validate:"required,min=1,max=25"`
	ParentFolderID *uuid.UUID `json:"parent_folder_id,omitempty"`
}

func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createFolderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	name, err := h.folderService.RegisterFolder(r.Context(), req.FolderName, req.ParentFolderID, userID)
	if err != nil {
		respondError(w, err)
		return
	}

	writeMessage(w, http.StatusCreated, "Folder "+name+" successfully created")
}

// GetContent обслуживает и корень (без параметра id), и конкретную папку
func (h *FolderHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sortBy := domain.SortField(r.URL.Query().Get("sort_by"))
	if sortBy == "" {
		sortBy = domain.SortByLastInteraction
	}
	order := domain.SortOrder(r.URL.Query().Get("order"))
	if order == "" {
		order = domain.OrderAsc
	}

	var location *uuid.UUID
	if idStr := chi.URLParam(r, "id"); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			http.Error(w, "Invalid folder ID", http.StatusBadRequest)
			return
		}
		location = &id
	}

	listing, err := h.folderService.RetrieveContent(r.Context(), userID, sortBy, order, location)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

func (h *FolderHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	folderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid folder ID", http.StatusBadRequest)
		return
	}

	var req renameFolderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.folderService.RenameFolder(r.Context(), userID, folderID, req.ParentFolderID, req.NewName); err != nil {
		respondError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Folder renamed to "+req.NewName)
}
