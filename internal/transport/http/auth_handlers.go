package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/aliumairdev/saaskit/internal/dto"
	"github.com/aliumairdev/saaskit/internal/netutil"
)

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.Auth.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.Auth.Login(r.Context(), req)
	if err != nil {
		slog.Info("login rejected",
			"ip", netutil.ClientIP(r, h.TrustProxy),
			"user_agent", netutil.TruncateUserAgent(r.UserAgent()),
		)
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleCompleteTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req dto.OTPRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.Auth.CompleteTwoFactor(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	resp := struct {
		User            *domain.User    `json:"user"`
		PersonalAccount *domain.Account `json:"personalAccount,omitempty"`
		APITokenID      string          `json:"apiTokenId,omitempty"`
	}{User: user}
	if acct, err := h.Store.Accounts().GetPersonalForOwner(r.Context(), user.ID); err == nil {
		resp.PersonalAccount = acct
	} else if !errors.Is(err, domain.ErrNotFound) {
		writeError(w, r, err)
		return
	}
	if token, ok := r.Context().Value(ctxKeyToken).(*domain.APIToken); ok {
		resp.APITokenID = token.ID.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDeleteMe is account self-deletion: the user, their owned accounts,
// tokens, and provider links all go in one transaction.
func (h *Handler) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.Auth.DeleteUser(r.Context(), currentUser(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]map[string]int64{"deleted": deleted})
}
