package store

import (
	"context"
	"errors"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MembershipStore struct{ db *gorm.DB }

func (s *Store) Memberships() *MembershipStore { return &MembershipStore{db: s.DB} }

// Create inserts a membership and bumps the denormalized member count in
// the same statement sequence. Callers wanting atomicity run it via WithTx.
func (m *MembershipStore) Create(ctx context.Context, au *domain.AccountUser) error {
	if au.ID == uuid.Nil {
		au.ID = uuid.New()
	}
	if err := m.db.WithContext(ctx).Create(au).Error; err != nil {
		return translate(err)
	}
	return translate(m.bumpCount(ctx, au.AccountID, +1))
}

func (m *MembershipStore) Get(ctx context.Context, accountID domain.AccountID, userID domain.UserID) (*domain.AccountUser, error) {
	var au domain.AccountUser
	err := m.db.WithContext(ctx).
		First(&au, "account_id = ? AND user_id = ?", accountID, userID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &au, nil
}

func (m *MembershipStore) ListForAccount(ctx context.Context, accountID domain.AccountID) ([]domain.AccountUser, error) {
	var rows []domain.AccountUser
	err := m.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (m *MembershipStore) Update(ctx context.Context, au *domain.AccountUser) error {
	return translate(m.db.WithContext(ctx).Save(au).Error)
}

// Delete removes a membership and decrements the member count. As with
// Create, callers wanting atomicity run it via WithTx.
func (m *MembershipStore) Delete(ctx context.Context, accountID domain.AccountID, userID domain.UserID) error {
	res := m.db.WithContext(ctx).
		Where("account_id = ? AND user_id = ?", accountID, userID).
		Delete(&domain.AccountUser{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return translate(m.bumpCount(ctx, accountID, -1))
}

// Exists reports whether the user has any membership row on the account.
func (m *MembershipStore) Exists(ctx context.Context, accountID domain.AccountID, userID domain.UserID) (bool, error) {
	_, err := m.Get(ctx, accountID, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ExistsByEmail reports whether an account member already has this email.
func (m *MembershipStore) ExistsByEmail(ctx context.Context, accountID domain.AccountID, email string) (bool, error) {
	var n int64
	err := m.db.WithContext(ctx).Model(&domain.AccountUser{}).
		Joins("JOIN users ON users.id = account_users.user_id").
		Where("account_users.account_id = ? AND lower(users.email) = lower(?)", accountID, email).
		Count(&n).Error
	if err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

func (m *MembershipStore) bumpCount(ctx context.Context, accountID domain.AccountID, delta int) error {
	return m.db.WithContext(ctx).Model(&domain.Account{}).
		Where("id = ?", accountID).
		Update("account_users_count", gorm.Expr("account_users_count + ?", delta)).Error
}
