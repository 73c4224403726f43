package service

import (
	"context"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/aliumairdev/saaskit/internal/dto"
)

type AuthService interface {
	// Register creates the user and their personal account in one
	// transaction.
	Register(ctx context.Context, r dto.RegisterRequest) (*dto.RegisterResponse, error)
	// Login verifies the password. For two-factor users it returns a
	// pending token instead of a session.
	Login(ctx context.Context, r dto.LoginRequest) (*dto.LoginResponse, error)
	// CompleteTwoFactor exchanges a pending token plus a TOTP or backup
	// code for a full session.
	CompleteTwoFactor(ctx context.Context, r dto.OTPRequest) (*dto.LoginResponse, error)
	// DeleteUser erases the user along with their owned accounts, tokens,
	// and provider links, returning per-resource removal counts.
	DeleteUser(ctx context.Context, user *domain.User) (map[string]int64, error)
}
