package store

import (
	"context"
	"time"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type APITokenStore struct{ db *gorm.DB }

func (s *Store) APITokens() *APITokenStore { return &APITokenStore{db: s.DB} }

func (t *APITokenStore) Create(ctx context.Context, token *domain.APIToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	return translate(t.db.WithContext(ctx).Create(token).Error)
}

// GetActiveByHash finds a non-expired token by its digest. Expired rows
// persist but are excluded here.
func (t *APITokenStore) GetActiveByHash(ctx context.Context, hash string, now time.Time) (*domain.APIToken, error) {
	var token domain.APIToken
	err := t.db.WithContext(ctx).
		Where("token_hash = ? AND (expires_at IS NULL OR expires_at > ?)", hash, now).
		First(&token).Error
	if err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

func (t *APITokenStore) ListForUser(ctx context.Context, userID domain.UserID) ([]domain.APIToken, error) {
	var rows []domain.APIToken
	err := t.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

// ListRecentlyUsed returns the user's tokens touched within the window.
func (t *APITokenStore) ListRecentlyUsed(ctx context.Context, userID domain.UserID, since time.Time) ([]domain.APIToken, error) {
	var rows []domain.APIToken
	err := t.db.WithContext(ctx).
		Where("user_id = ? AND last_used_at > ?", userID, since).
		Order("last_used_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

// TouchLastUsed is a timestamp-only write kept outside larger transactions
// so it cannot clobber unrelated concurrent edits.
func (t *APITokenStore) TouchLastUsed(ctx context.Context, id domain.APITokenID, at time.Time) error {
	return translate(t.db.WithContext(ctx).Model(&domain.APIToken{}).
		Where("id = ?", id).
		Update("last_used_at", at).Error)
}

func (t *APITokenStore) Delete(ctx context.Context, userID domain.UserID, id domain.APITokenID) error {
	res := t.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.APIToken{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
