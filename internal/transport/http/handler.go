package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/aliumairdev/saaskit/internal/service"
	"github.com/aliumairdev/saaskit/internal/store"
)

// Handler bundles the domain services behind the HTTP surface. Route
// registration lives in router.go; request-scoped identity resolution in
// middleware.go.
type Handler struct {
	Auth        service.AuthService
	Accounts    service.AccountService
	Invitations service.InvitationService
	APITokens   service.APITokenService
	TwoFactor   service.TwoFactorService
	OAuth       service.OAuthService
	Sessions    service.SessionService

	Store      *store.Store
	TrustProxy bool
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeError maps domain failures onto HTTP statuses. Missing and
// forbidden resources both collapse onto generic bodies so callers can't
// probe for existence.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "validation failed", Fields: ve.Fields})
	case errors.Is(err, domain.ErrNotAuthorized):
		writeJSON(w, http.StatusForbidden, errorBody{Error: "not authorized"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, domain.ErrExpired):
		writeJSON(w, http.StatusGone, errorBody{Error: "expired"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid credentials"})
	case errors.Is(err, domain.ErrUserDisabled):
		writeJSON(w, http.StatusForbidden, errorBody{Error: "account disabled"})
	case errors.Is(err, domain.ErrDuplicate):
		writeJSON(w, http.StatusConflict, errorBody{Error: "already exists"})
	case errors.Is(err, domain.ErrUnsupported):
		writeJSON(w, http.StatusNotImplemented, errorBody{Error: "not supported"})
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad request"})
		return false
	}
	return true
}
