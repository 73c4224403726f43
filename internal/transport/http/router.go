package http

import (
	"net/http"
	"time"

	obsmw "github.com/aliumairdev/saaskit/internal/observability/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	CORSOrigins []string
	TrustProxy  bool
}

func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(obsmw.WithRequestAndTrace)
	r.Use(obsmw.WithMetrics)
	r.Use(httprate.LimitByIP(100, 1*time.Minute))

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		// Credential endpoints get a tighter per-IP budget.
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(10, 1*time.Minute))
			r.Post("/auth/register", h.handleRegister)
			r.Post("/auth/login", h.handleLogin)
			r.Post("/auth/otp", h.handleCompleteTwoFactor)
			r.Post("/auth/oauth/callback", h.handleOAuthSignIn)
		})

		r.Get("/plans", h.handleListPlans)
		r.Get("/invitations/{token}", h.handleShowInvitation)

		r.Group(func(r chi.Router) {
			r.Use(h.requireUser)

			r.Get("/me", h.handleMe)
			r.Delete("/me", h.handleDeleteMe)
			r.Post("/invitations/{token}/accept", h.handleAcceptInvitation)

			r.Get("/accounts", h.handleListAccounts)
			r.Post("/accounts", h.handleCreateAccount)

			r.Route("/accounts/{accountID}", func(r chi.Router) {
				r.Use(h.withAccount)

				r.Get("/", h.handleShowAccount)
				r.Patch("/", h.handleUpdateAccount)
				r.Delete("/", h.handleDestroyAccount)
				r.Post("/switch", h.handleSwitchAccount)

				r.Get("/members", h.handleListMembers)
				r.Patch("/members/{userID}", h.handleUpdateMemberRoles)
				r.Delete("/members/{userID}", h.handleRemoveMember)

				r.Get("/invitations", h.handleListInvitations)
				r.Post("/invitations", h.handleCreateInvitation)
				r.Delete("/invitations/{invitationID}", h.handleCancelInvitation)
				r.Post("/invitations/{invitationID}/resend", h.handleResendInvitation)
			})

			r.Get("/api_tokens", h.handleListAPITokens)
			r.Post("/api_tokens", h.handleCreateAPIToken)
			r.Delete("/api_tokens/{tokenID}", h.handleRevokeAPIToken)

			r.Post("/two_factor/setup", h.handleTwoFactorSetup)
			r.Post("/two_factor/confirm", h.handleTwoFactorConfirm)
			r.Post("/two_factor/backup_codes", h.handleRegenerateBackupCodes)
			r.Delete("/two_factor", h.handleTwoFactorDisable)

			r.Get("/connected_accounts", h.handleListConnectedAccounts)
			r.Post("/connected_accounts", h.handleConnectOAuth)
			r.Post("/connected_accounts/{connectedID}/refresh", h.handleRefreshOAuth)
			r.Delete("/connected_accounts/{connectedID}", h.handleDisconnectOAuth)
		})
	})

	return r
}
