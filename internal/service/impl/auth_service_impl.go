package impl

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/aliumairdev/saaskit/internal/dto"
	"github.com/aliumairdev/saaskit/internal/observability/metrics"
	"github.com/aliumairdev/saaskit/internal/observability/middleware"
	"github.com/aliumairdev/saaskit/internal/service"
	"github.com/aliumairdev/saaskit/internal/store"
	"github.com/google/uuid"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type AuthServiceImpl struct {
	Store           dataStore
	PasswordService service.PasswordService
	Sessions        service.SessionService
	TwoFactor       service.TwoFactorService
}

func NewAuthServiceImpl(st *store.Store, passwords service.PasswordService, sessions service.SessionService, twoFactor service.TwoFactorService) *AuthServiceImpl {
	return &AuthServiceImpl{
		Store:           newGormStoreAdapter(st),
		PasswordService: passwords,
		Sessions:        sessions,
		TwoFactor:       twoFactor,
	}
}

// Register creates the user, their personal account, and the implicit
// membership in a single transaction. The membership carries no explicit
// role flags; ownership lives on the account row.
func (a *AuthServiceImpl) Register(ctx context.Context, r dto.RegisterRequest) (*dto.RegisterResponse, error) {
	result := "success"
	defer func() { metrics.RegistrationsTotal.WithLabelValues(result).Inc() }()

	email := strings.ToLower(strings.TrimSpace(r.Email))
	ve := domain.NewValidationError()
	if email == "" || !emailPattern.MatchString(email) {
		ve.Add("email", "is invalid")
	}
	if r.Password == "" {
		ve.Add("password", "can't be blank")
	} else if len(r.Password) < 8 {
		ve.Add("password", "is too short (minimum is 8 characters)")
	}
	if ve.Any() {
		result = "failure"
		return nil, ve
	}

	encoded, err := a.PasswordService.Hash(r.Password)
	if err != nil {
		result = "failure"
		return nil, err
	}

	var out dto.RegisterResponse
	err = a.Store.WithTx(ctx, func(tx storeTx) error {
		now := time.Now().UTC()

		u := &domain.User{
			ID:                uuid.New(),
			Email:             email,
			EncryptedPassword: encoded,
			FirstName:         strings.TrimSpace(r.FirstName),
			LastName:          strings.TrimSpace(r.LastName),
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := tx.Users().Create(ctx, u); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return domain.NewValidationError().Add("email", "has already been taken")
			}
			return err
		}

		acct := &domain.Account{
			ID:        uuid.New(),
			Name:      u.FullName(),
			Personal:  true,
			OwnerID:   u.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Accounts().Create(ctx, acct); err != nil {
			return err
		}

		au := &domain.AccountUser{
			ID:        uuid.New(),
			AccountID: acct.ID,
			UserID:    u.ID,
			Roles:     domain.RoleSet{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Memberships().Create(ctx, au); err != nil {
			return err
		}

		out = dto.RegisterResponse{
			UserID:            u.ID.String(),
			PersonalAccountID: acct.ID.String(),
		}
		return nil
	})
	if err != nil {
		result = "failure"
		return nil, err
	}

	slog.Info("user registered",
		"user_id", out.UserID,
		"request_id", middleware.RequestIDFromContext(ctx),
	)
	return &out, nil
}

// Login verifies the password. When two-factor is enforced, no session is
// issued; the caller gets a short-lived pending token instead and must
// complete the OTP challenge.
func (a *AuthServiceImpl) Login(ctx context.Context, r dto.LoginRequest) (*dto.LoginResponse, error) {
	result := "success"
	defer func() { metrics.LoginsTotal.WithLabelValues(result).Inc() }()

	if r.Email == "" || r.Password == "" {
		result = "failure"
		return nil, domain.ErrInvalidCredentials
	}

	user, err := a.Store.Users().GetByEmail(ctx, r.Email)
	if err != nil {
		result = "failure"
		return nil, domain.ErrInvalidCredentials // don't leak which field failed
	}
	if user.IsDisabled {
		result = "failure"
		return nil, domain.ErrUserDisabled
	}

	ok, rehashNeeded := a.PasswordService.Verify(r.Password, user.EncryptedPassword)
	if !ok {
		result = "failure"
		return nil, domain.ErrInvalidCredentials
	}

	if rehashNeeded {
		if encoded, err := a.PasswordService.Hash(r.Password); err == nil {
			user.EncryptedPassword = encoded
			if err := a.Store.Users().Update(ctx, user); err != nil {
				slog.Warn("password rehash failed", "user_id", user.ID, "error", err)
			}
		}
	}

	if user.TwoFactorEnabled() {
		pending, err := a.Sessions.IssuePendingTwoFactor(ctx, user)
		if err != nil {
			result = "failure"
			return nil, err
		}
		result = "pending_2fa"
		return &dto.LoginResponse{TwoFactorRequired: true, PendingToken: pending}, nil
	}

	token, expiresIn, err := a.Sessions.IssueSession(ctx, user)
	if err != nil {
		result = "failure"
		return nil, err
	}

	slog.Info("user logged in",
		"user_id", user.ID,
		"request_id", middleware.RequestIDFromContext(ctx),
	)
	return &dto.LoginResponse{SessionToken: token, ExpiresIn: expiresIn}, nil
}

// CompleteTwoFactor consumes the pending slot: a valid TOTP or backup code
// upgrades it to a real session. The pending token itself dies by TTL.
func (a *AuthServiceImpl) CompleteTwoFactor(ctx context.Context, r dto.OTPRequest) (*dto.LoginResponse, error) {
	userID, err := a.Sessions.VerifyPendingTwoFactor(ctx, r.PendingToken)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	user, err := a.Store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	ok, err := a.TwoFactor.VerifyLoginCode(ctx, user.ID, r.Code)
	if err != nil {
		return nil, err
	}
	if !ok {
		ok, err = a.TwoFactor.VerifyBackupCode(ctx, user.ID, r.Code)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresIn, err := a.Sessions.IssueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	slog.Info("two-factor login completed",
		"user_id", user.ID,
		"request_id", middleware.RequestIDFromContext(ctx),
	)
	return &dto.LoginResponse{SessionToken: token, ExpiresIn: expiresIn}, nil
}

// DeleteUser erases the user and all rows hanging off them. Owned team
// accounts go too, so callers wanting to preserve one transfer ownership
// first.
func (a *AuthServiceImpl) DeleteUser(ctx context.Context, user *domain.User) (map[string]int64, error) {
	deleted, err := a.Store.DeleteUserData(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	slog.Info("user deleted",
		"user_id", user.ID,
		"request_id", middleware.RequestIDFromContext(ctx),
	)
	return deleted, nil
}
