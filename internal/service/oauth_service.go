package service

import (
	"context"

	"github.com/aliumairdev/saaskit/internal/domain"
)

type OAuthService interface {
	// Connect links (or refreshes) a provider identity for a signed-in
	// user.
	Connect(ctx context.Context, user *domain.User, data domain.OAuthData) (*domain.ConnectedAccount, error)
	// SignIn resolves a provider identity to a user for passwordless
	// login: existing link signs in, unknown email signs up, existing
	// email without a link is refused.
	SignIn(ctx context.Context, data domain.OAuthData) (*domain.User, error)
	List(ctx context.Context, userID domain.UserID) ([]domain.ConnectedAccount, error)
	// RefreshCredentials renews the provider access token for a link.
	// Renewal needs a provider-specific client; implementations without
	// one return domain.ErrUnsupported.
	RefreshCredentials(ctx context.Context, userID domain.UserID, id domain.ConnectedAccountID) error
	Disconnect(ctx context.Context, userID domain.UserID, id domain.ConnectedAccountID) error
}
