package service

import (
	"context"

	"github.com/aliumairdev/saaskit/internal/domain"
)

// SessionService mints and verifies the signed tokens that stand in for
// browser sessions: full sessions for signed-in users and the short-lived
// pending slot used while a two-factor challenge is outstanding.
type SessionService interface {
	IssueSession(ctx context.Context, user *domain.User) (token string, expiresIn int64, err error)
	VerifySession(ctx context.Context, token string) (domain.UserID, error)

	IssuePendingTwoFactor(ctx context.Context, user *domain.User) (token string, err error)
	VerifyPendingTwoFactor(ctx context.Context, token string) (domain.UserID, error)
}
