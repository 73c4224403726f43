package service

import (
	"context"
	"time"

	"github.com/aliumairdev/saaskit/internal/domain"
)

type APITokenService interface {
	// Issue returns the persisted token plus the plaintext secret, which
	// is shown once and never stored.
	Issue(ctx context.Context, userID domain.UserID, name string, expiresAt *time.Time) (*domain.APIToken, string, error)
	// Authenticate resolves a presented bearer secret to its user,
	// touching last_used_at on success.
	Authenticate(ctx context.Context, plaintext string) (*domain.User, *domain.APIToken, error)
	List(ctx context.Context, userID domain.UserID) ([]domain.APIToken, error)
	// ListRecentlyUsed returns the user's tokens used within the last
	// thirty days, most recent first.
	ListRecentlyUsed(ctx context.Context, userID domain.UserID) ([]domain.APIToken, error)
	Revoke(ctx context.Context, userID domain.UserID, id domain.APITokenID) error
}
