package store

import (
	"context"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountStore struct{ db *gorm.DB }

func (s *Store) Accounts() *AccountStore { return &AccountStore{db: s.DB} }

func (a *AccountStore) Create(ctx context.Context, acct *domain.Account) error {
	if acct.ID == uuid.Nil {
		acct.ID = uuid.New()
	}
	return translate(a.db.WithContext(ctx).Create(acct).Error)
}

func (a *AccountStore) GetByID(ctx context.Context, id domain.AccountID) (*domain.Account, error) {
	var acct domain.Account
	if err := a.db.WithContext(ctx).First(&acct, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &acct, nil
}

func (a *AccountStore) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Account, error) {
	var acct domain.Account
	if err := a.db.WithContext(ctx).First(&acct, "subdomain = ?", subdomain).Error; err != nil {
		return nil, translate(err)
	}
	return &acct, nil
}

// ListForUser returns the accounts the user is a member of. This is the
// policy scope for account listings; it runs before any count or page.
func (a *AccountStore) ListForUser(ctx context.Context, userID domain.UserID) ([]domain.Account, error) {
	var accounts []domain.Account
	err := a.db.WithContext(ctx).
		Joins("JOIN account_users ON account_users.account_id = accounts.id").
		Where("account_users.user_id = ?", userID).
		Order("accounts.created_at").
		Find(&accounts).Error
	if err != nil {
		return nil, translate(err)
	}
	return accounts, nil
}

// GetPersonalForOwner returns the user's auto-created personal account.
func (a *AccountStore) GetPersonalForOwner(ctx context.Context, ownerID domain.UserID) (*domain.Account, error) {
	var acct domain.Account
	if err := a.db.WithContext(ctx).First(&acct, "owner_id = ? AND personal", ownerID).Error; err != nil {
		return nil, translate(err)
	}
	return &acct, nil
}

func (a *AccountStore) Update(ctx context.Context, acct *domain.Account) error {
	return translate(a.db.WithContext(ctx).Save(acct).Error)
}

// Delete removes the account along with its memberships and invitations.
func (a *AccountStore) Delete(ctx context.Context, id domain.AccountID) error {
	db := a.db.WithContext(ctx)
	if err := db.Where("account_id = ?", id).Delete(&domain.AccountUser{}).Error; err != nil {
		return translate(err)
	}
	if err := db.Where("account_id = ?", id).Delete(&domain.AccountInvitation{}).Error; err != nil {
		return translate(err)
	}
	return translate(db.Delete(&domain.Account{}, "id = ?", id).Error)
}

// ListOnTrial streams accounts whose trial has not ended yet.
func (a *AccountStore) ListOnTrial(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	err := a.db.WithContext(ctx).
		Where("trial_ends_at IS NOT NULL AND trial_ends_at > now()").
		Find(&accounts).Error
	if err != nil {
		return nil, translate(err)
	}
	return accounts, nil
}
