package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/aliumairdev/saaskit/internal/policy"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ctxKey string

const (
	ctxKeyUser  ctxKey = "current_user"
	ctxKeyActor ctxKey = "actor"
	ctxKeyToken ctxKey = "api_token"
)

func currentUser(ctx context.Context) *domain.User {
	u, _ := ctx.Value(ctxKeyUser).(*domain.User)
	return u
}

func currentActor(ctx context.Context) policy.Context {
	a, _ := ctx.Value(ctxKeyActor).(policy.Context)
	return a
}

// requireUser resolves the Authorization bearer credential, first as a
// signed session token, then as an API token secret. Both identities end
// up as the same request-scoped user.
func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get("Authorization"))
		if !strings.HasPrefix(raw, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid credentials"})
			return
		}
		credential := strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))

		ctx := r.Context()
		if userID, err := h.Sessions.VerifySession(ctx, credential); err == nil {
			user, err := h.Store.Users().GetByID(ctx, userID)
			if err != nil || user.IsDisabled {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid credentials"})
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, ctxKeyUser, user)))
			return
		}

		user, token, err := h.APITokens.Authenticate(ctx, credential)
		if err != nil {
			writeError(w, r, domain.ErrInvalidCredentials)
			return
		}
		ctx = context.WithValue(ctx, ctxKeyUser, user)
		ctx = context.WithValue(ctx, ctxKeyToken, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withAccount resolves the {accountID} URL segment into a policy context
// for the signed-in user. Accounts the user can't see 404 exactly like
// accounts that don't exist.
func (h *Handler) withAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r.Context())
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid credentials"})
			return
		}

		accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
		if err != nil {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
			return
		}

		ctx := r.Context()
		acct, err := h.Store.Accounts().GetByID(ctx, domain.AccountID(accountID))
		if err != nil {
			writeError(w, r, err)
			return
		}

		actor := policy.Context{User: user, Account: acct}
		membership, err := h.Store.Memberships().Get(ctx, acct.ID, user.ID)
		switch {
		case err == nil:
			actor.Membership = membership
		case !errors.Is(err, domain.ErrNotFound):
			writeError(w, r, err)
			return
		}
		if actor.Membership == nil {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, ctxKeyActor, actor)))
	})
}
