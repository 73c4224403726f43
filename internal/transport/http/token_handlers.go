package http

import (
	"net/http"
	"time"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/aliumairdev/saaskit/internal/dto"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (h *Handler) handleListAPITokens(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r.Context()).ID

	var tokens []domain.APIToken
	var err error
	if r.URL.Query().Get("recent") == "true" {
		tokens, err = h.APITokens.ListRecentlyUsed(r.Context(), userID)
	} else {
		tokens, err = h.APITokens.List(r.Context(), userID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

func (h *Handler) handleCreateAPIToken(w http.ResponseWriter, r *http.Request) {
	var req dto.APITokenCreateRequest
	if !decode(w, r, &req) {
		return
	}
	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			writeError(w, r, domain.NewValidationError().Add("expiresAt", "must be an RFC 3339 timestamp"))
			return
		}
		expiresAt = &parsed
	}

	token, plaintext, err := h.APITokens.Issue(r.Context(), currentUser(r.Context()).ID, req.Name, expiresAt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.APITokenCreateResponse{
		ID:    token.ID.String(),
		Name:  token.Name,
		Token: plaintext,
	})
}

func (h *Handler) handleRevokeAPIToken(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "tokenID"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
		return
	}
	if err := h.APITokens.Revoke(r.Context(), currentUser(r.Context()).ID, domain.APITokenID(id)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
