package http

import (
	"net/http"
	"time"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/aliumairdev/saaskit/internal/dto"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func oauthData(req dto.OAuthCallbackRequest) domain.OAuthData {
	data := domain.OAuthData{
		Provider: req.Provider,
		UID:      req.UID,
		Info: domain.OAuthInfo{
			Email: req.Info.Email,
			Name:  req.Info.Name,
		},
		Credentials: domain.OAuthCredentials{
			Token:        req.Credentials.Token,
			Secret:       req.Credentials.Secret,
			RefreshToken: req.Credentials.RefreshToken,
		},
		Raw: req.Raw,
	}
	if req.Credentials.ExpiresAt != nil {
		expires := time.Unix(*req.Credentials.ExpiresAt, 0).UTC()
		data.Credentials.ExpiresAt = &expires
	}
	return data
}

// handleOAuthSignIn exchanges a verified provider callback for a session.
// Users with two-factor enabled still have to clear the OTP challenge.
func (h *Handler) handleOAuthSignIn(w http.ResponseWriter, r *http.Request) {
	var req dto.OAuthCallbackRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := h.OAuth.SignIn(r.Context(), oauthData(req))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if user.TwoFactorEnabled() {
		pending, err := h.Sessions.IssuePendingTwoFactor(r.Context(), user)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, dto.LoginResponse{TwoFactorRequired: true, PendingToken: pending})
		return
	}

	token, expiresIn, err := h.Sessions.IssueSession(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.LoginResponse{SessionToken: token, ExpiresIn: expiresIn})
}

func (h *Handler) handleConnectOAuth(w http.ResponseWriter, r *http.Request) {
	var req dto.OAuthCallbackRequest
	if !decode(w, r, &req) {
		return
	}
	ca, err := h.OAuth.Connect(r.Context(), currentUser(r.Context()), oauthData(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ca)
}

func (h *Handler) handleListConnectedAccounts(w http.ResponseWriter, r *http.Request) {
	list, err := h.OAuth.List(r.Context(), currentUser(r.Context()).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleRefreshOAuth(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "connectedID"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
		return
	}
	if err := h.OAuth.RefreshCredentials(r.Context(), currentUser(r.Context()).ID, domain.ConnectedAccountID(id)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDisconnectOAuth(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "connectedID"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
		return
	}
	if err := h.OAuth.Disconnect(r.Context(), currentUser(r.Context()).ID, domain.ConnectedAccountID(id)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
