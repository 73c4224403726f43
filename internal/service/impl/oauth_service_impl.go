package impl

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/aliumairdev/saaskit/internal/service"
	"github.com/aliumairdev/saaskit/internal/store"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const ownerTypeUser = "User"

type OAuthServiceImpl struct {
	Store           dataStore
	PasswordService service.PasswordService

	now func() time.Time
}

var _ service.OAuthService = (*OAuthServiceImpl)(nil)

func NewOAuthServiceImpl(st *store.Store, passwords service.PasswordService) *OAuthServiceImpl {
	return &OAuthServiceImpl{
		Store:           newGormStoreAdapter(st),
		PasswordService: passwords,
		now:             time.Now,
	}
}

// Connect links the provider identity to the signed-in user, refreshing
// credentials when the link already exists. A link owned by another user
// is refused.
func (s *OAuthServiceImpl) Connect(ctx context.Context, user *domain.User, data domain.OAuthData) (*domain.ConnectedAccount, error) {
	if err := validateOAuthData(data); err != nil {
		return nil, err
	}

	existing, err := s.Store.ConnectedAccounts().GetByProviderUID(ctx, data.Provider, data.UID)
	switch {
	case err == nil && existing.OwnerID != user.ID:
		return nil, domain.NewValidationError().Add("provider", "is already connected to another user")
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	ca := connectedAccountFrom(user.ID, data, s.now().UTC())
	if existing != nil {
		ca.ID = existing.ID
		ca.CreatedAt = existing.CreatedAt
	}
	if err := s.Store.ConnectedAccounts().Upsert(ctx, ca); err != nil {
		return nil, err
	}

	slog.Info("oauth account connected", "provider", data.Provider, "user_id", user.ID)
	return ca, nil
}

// SignIn resolves the provider identity to a user. An existing link signs
// in; an unknown email signs up with a random password; an existing email
// without a link is refused so an attacker-controlled provider identity
// can't capture the local account.
func (s *OAuthServiceImpl) SignIn(ctx context.Context, data domain.OAuthData) (*domain.User, error) {
	if err := validateOAuthData(data); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	existing, err := s.Store.ConnectedAccounts().GetByProviderUID(ctx, data.Provider, data.UID)
	if err == nil {
		user, err := s.Store.Users().GetByID(ctx, existing.OwnerID)
		if err != nil {
			return nil, err
		}
		if user.IsDisabled {
			return nil, domain.ErrUserDisabled
		}
		ca := connectedAccountFrom(user.ID, data, now)
		ca.ID = existing.ID
		ca.CreatedAt = existing.CreatedAt
		if err := s.Store.ConnectedAccounts().Upsert(ctx, ca); err != nil {
			slog.Warn("oauth credential refresh failed", "provider", data.Provider, "error", err)
		}
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(data.Info.Email))
	if email == "" || !emailPattern.MatchString(email) {
		return nil, domain.NewValidationError().Add("email", "is invalid")
	}
	if _, err := s.Store.Users().GetByEmail(ctx, email); err == nil {
		return nil, domain.NewValidationError().Add("email", "is already registered; sign in and connect the provider from settings")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	// Provider-only users still get a password column; a random secret
	// keeps the credential path uniform.
	random, err := generateSecret(32)
	if err != nil {
		return nil, err
	}
	encoded, err := s.PasswordService.Hash(random)
	if err != nil {
		return nil, err
	}

	first, last := splitName(data.Info.Name)
	user := &domain.User{
		ID:                uuid.New(),
		Email:             email,
		EncryptedPassword: encoded,
		FirstName:         first,
		LastName:          last,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = s.Store.WithTx(ctx, func(tx storeTx) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		acct := &domain.Account{
			ID:        uuid.New(),
			Name:      user.FullName(),
			Personal:  true,
			OwnerID:   user.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Accounts().Create(ctx, acct); err != nil {
			return err
		}
		if err := tx.Memberships().Create(ctx, &domain.AccountUser{
			ID:        uuid.New(),
			AccountID: acct.ID,
			UserID:    user.ID,
			Roles:     domain.RoleSet{},
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return err
		}
		return tx.ConnectedAccounts().Upsert(ctx, connectedAccountFrom(user.ID, data, now))
	})
	if err != nil {
		return nil, err
	}

	slog.Info("oauth sign-up", "provider", data.Provider, "user_id", user.ID)
	return user, nil
}

func (s *OAuthServiceImpl) List(ctx context.Context, userID domain.UserID) ([]domain.ConnectedAccount, error) {
	return s.Store.ConnectedAccounts().ListForOwner(ctx, ownerTypeUser, userID)
}

// RefreshCredentials verifies the link belongs to the user, then refuses:
// renewing an access token takes a provider OAuth client this service
// does not carry.
func (s *OAuthServiceImpl) RefreshCredentials(ctx context.Context, userID domain.UserID, id domain.ConnectedAccountID) error {
	links, err := s.Store.ConnectedAccounts().ListForOwner(ctx, ownerTypeUser, userID)
	if err != nil {
		return err
	}
	for i := range links {
		if links[i].ID == id {
			return domain.ErrUnsupported
		}
	}
	return domain.ErrNotFound
}

func (s *OAuthServiceImpl) Disconnect(ctx context.Context, userID domain.UserID, id domain.ConnectedAccountID) error {
	if err := s.Store.ConnectedAccounts().Delete(ctx, userID, id); err != nil {
		return err
	}
	slog.Info("oauth account disconnected", "connected_account_id", id, "user_id", userID)
	return nil
}

func validateOAuthData(data domain.OAuthData) error {
	ve := domain.NewValidationError()
	if data.Provider == "" {
		ve.Add("provider", "can't be blank")
	}
	if data.UID == "" {
		ve.Add("uid", "can't be blank")
	}
	if ve.Any() {
		return ve
	}
	return nil
}

func connectedAccountFrom(ownerID domain.UserID, data domain.OAuthData, now time.Time) *domain.ConnectedAccount {
	ca := &domain.ConnectedAccount{
		ID:                uuid.New(),
		OwnerType:         ownerTypeUser,
		OwnerID:           ownerID,
		Provider:          data.Provider,
		UID:               data.UID,
		AccessToken:       data.Credentials.Token,
		AccessTokenSecret: data.Credentials.Secret,
		RefreshToken:      data.Credentials.RefreshToken,
		ExpiresAt:         data.Credentials.ExpiresAt,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if len(data.Raw) > 0 {
		ca.Auth = datatypes.JSONMap(data.Raw)
	}
	return ca
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
