package store

import (
	"context"
	"time"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConnectedAccountStore struct{ db *gorm.DB }

func (s *Store) ConnectedAccounts() *ConnectedAccountStore {
	return &ConnectedAccountStore{db: s.DB}
}

// Upsert inserts or refreshes the link keyed by (provider, uid).
// Requires the unique index on that pair.
func (c *ConnectedAccountStore) Upsert(ctx context.Context, ca *domain.ConnectedAccount) error {
	now := time.Now().UTC()
	if ca.ID == uuid.Nil {
		ca.ID = uuid.New()
	}
	if ca.CreatedAt.IsZero() {
		ca.CreatedAt = now
	}
	ca.UpdatedAt = now

	return translate(c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "provider"}, {Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_token", "access_token_secret", "refresh_token", "expires_at", "auth", "updated_at",
		}),
	}).Create(ca).Error)
}

func (c *ConnectedAccountStore) GetByProviderUID(ctx context.Context, provider, uid string) (*domain.ConnectedAccount, error) {
	var ca domain.ConnectedAccount
	err := c.db.WithContext(ctx).
		First(&ca, "provider = ? AND uid = ?", provider, uid).Error
	if err != nil {
		return nil, translate(err)
	}
	return &ca, nil
}

func (c *ConnectedAccountStore) ListForOwner(ctx context.Context, ownerType string, ownerID domain.UserID) ([]domain.ConnectedAccount, error) {
	var rows []domain.ConnectedAccount
	err := c.db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (c *ConnectedAccountStore) Delete(ctx context.Context, ownerID domain.UserID, id domain.ConnectedAccountID) error {
	res := c.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&domain.ConnectedAccount{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
