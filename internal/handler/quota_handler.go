package handler

import (
	"net/http"

	"velodrive/internal/auth"
	"velodrive/internal/service"
)

type QuotaHandler struct {
	quotaService *service.StorageQuotaService
	tokens       *auth.Manager
}

func NewQuotaHandler(quotaService *service.StorageQuotaService, tokens *auth.Manager) *QuotaHandler {
	return &QuotaHandler{
		quotaService: quotaService,
		tokens:       tokens,
	}
}

func (h *QuotaHandler) GetQuotaInfo(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	info, err := h.quotaService.GetQuotaInfo(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}
