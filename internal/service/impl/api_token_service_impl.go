package impl

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/aliumairdev/saaskit/internal/observability/metrics"
	"github.com/aliumairdev/saaskit/internal/service"
	"github.com/aliumairdev/saaskit/internal/store"
	"github.com/google/uuid"
)

const (
	apiTokenBytes      = 32
	recentlyUsedWindow = 30 * 24 * time.Hour
)

type APITokenServiceImpl struct {
	Store dataStore

	now func() time.Time
}

var _ service.APITokenService = (*APITokenServiceImpl)(nil)

func NewAPITokenServiceImpl(st *store.Store) *APITokenServiceImpl {
	return &APITokenServiceImpl{Store: newGormStoreAdapter(st), now: time.Now}
}

func (s *APITokenServiceImpl) Issue(ctx context.Context, userID domain.UserID, name string, expiresAt *time.Time) (*domain.APIToken, string, error) {
	result := "success"
	defer func() { metrics.APITokensIssuedTotal.WithLabelValues(result).Inc() }()

	name = strings.TrimSpace(name)
	if name == "" {
		result = "failure"
		return nil, "", domain.NewValidationError().Add("name", "can't be blank")
	}
	now := s.now().UTC()
	if expiresAt != nil && !expiresAt.After(now) {
		result = "failure"
		return nil, "", domain.NewValidationError().Add("expiresAt", "must be in the future")
	}

	plaintext, err := generateSecret(apiTokenBytes)
	if err != nil {
		result = "failure"
		return nil, "", err
	}
	token := &domain.APIToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: digest(plaintext),
		Name:      name,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
	if err := s.Store.APITokens().Create(ctx, token); err != nil {
		result = "failure"
		return nil, "", err
	}

	slog.Info("api token issued", "token_id", token.ID, "user_id", userID)
	return token, plaintext, nil
}

// Authenticate never reports whether a token exists but is expired; any
// miss is invalid credentials.
func (s *APITokenServiceImpl) Authenticate(ctx context.Context, plaintext string) (*domain.User, *domain.APIToken, error) {
	if plaintext == "" {
		metrics.APITokenAuthTotal.WithLabelValues("failure").Inc()
		return nil, nil, domain.ErrInvalidCredentials
	}
	now := s.now().UTC()
	token, err := s.Store.APITokens().GetActiveByHash(ctx, digest(plaintext), now)
	if err != nil {
		metrics.APITokenAuthTotal.WithLabelValues("failure").Inc()
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}
	usr, err := s.Store.Users().GetByID(ctx, token.UserID)
	if err != nil {
		metrics.APITokenAuthTotal.WithLabelValues("failure").Inc()
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if usr.IsDisabled {
		metrics.APITokenAuthTotal.WithLabelValues("failure").Inc()
		return nil, nil, domain.ErrUserDisabled
	}

	// Best effort; a failed touch must not fail the request.
	if err := s.Store.APITokens().TouchLastUsed(ctx, token.ID, now); err != nil {
		slog.Warn("api token touch failed", "token_id", token.ID, "error", err)
	} else {
		token.LastUsedAt = &now
	}

	metrics.APITokenAuthTotal.WithLabelValues("success").Inc()
	return usr, token, nil
}

func (s *APITokenServiceImpl) List(ctx context.Context, userID domain.UserID) ([]domain.APIToken, error) {
	return s.Store.APITokens().ListForUser(ctx, userID)
}

func (s *APITokenServiceImpl) ListRecentlyUsed(ctx context.Context, userID domain.UserID) ([]domain.APIToken, error) {
	since := s.now().UTC().Add(-recentlyUsedWindow)
	return s.Store.APITokens().ListRecentlyUsed(ctx, userID, since)
}

func (s *APITokenServiceImpl) Revoke(ctx context.Context, userID domain.UserID, id domain.APITokenID) error {
	if err := s.Store.APITokens().Delete(ctx, userID, id); err != nil {
		return err
	}
	slog.Info("api token revoked", "token_id", id, "user_id", userID)
	return nil
}
