package http

import (
	"net/http"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/aliumairdev/saaskit/internal/dto"
)

func (h *Handler) handleTwoFactorSetup(w http.ResponseWriter, r *http.Request) {
	res, err := h.TwoFactor.EnableSetup(r.Context(), currentUser(r.Context()).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleTwoFactorConfirm(w http.ResponseWriter, r *http.Request) {
	var req dto.TwoFactorConfirmRequest
	if !decode(w, r, &req) {
		return
	}
	ok, err := h.TwoFactor.ConfirmSetup(r.Context(), currentUser(r.Context()).ID, req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, domain.ErrInvalidCredentials)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": true})
}

func (h *Handler) handleRegenerateBackupCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.TwoFactor.RegenerateBackupCodes(r.Context(), currentUser(r.Context()).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"backupCodes": codes})
}

func (h *Handler) handleTwoFactorDisable(w http.ResponseWriter, r *http.Request) {
	if err := h.TwoFactor.Disable(r.Context(), currentUser(r.Context()).ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
