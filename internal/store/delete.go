package store

import (
	"context"

	"github.com/aliumairdev/saaskit/internal/domain"
	"gorm.io/gorm"
)

// DeleteUserData removes the user's record and related rows and returns
// counts of affected resources captured before deletion. Accounts owned by
// the user go with them, including team accounts, so callers should have
// transferred ownership first where that matters.
func (s *Store) DeleteUserData(ctx context.Context, userID domain.UserID) (map[string]int64, error) {
	deleted := map[string]int64{}

	err := s.WithTx(ctx, func(tx *Store) error {
		db := tx.DB.WithContext(ctx)

		count := func(label string, query *gorm.DB) error {
			var total int64
			if err := query.Count(&total).Error; err != nil {
				return err
			}
			deleted[label] = total
			return nil
		}

		if err := count("users", db.Model(&domain.User{}).Where("id = ?", userID)); err != nil {
			return err
		}
		if err := count("memberships", db.Model(&domain.AccountUser{}).Where("user_id = ?", userID)); err != nil {
			return err
		}
		if err := count("ownedAccounts", db.Model(&domain.Account{}).Where("owner_id = ?", userID)); err != nil {
			return err
		}
		if err := count("apiTokens", db.Model(&domain.APIToken{}).Where("user_id = ?", userID)); err != nil {
			return err
		}
		if err := count("connectedAccounts", db.Model(&domain.ConnectedAccount{}).Where("owner_id = ?", userID)); err != nil {
			return err
		}
		if err := count("invitationsSent", db.Model(&domain.AccountInvitation{}).Where("invited_by_id = ?", userID)); err != nil {
			return err
		}

		var owned []domain.Account
		if err := db.Where("owner_id = ?", userID).Find(&owned).Error; err != nil {
			return err
		}
		ownedIDs := make(map[domain.AccountID]bool, len(owned))
		for _, acct := range owned {
			ownedIDs[acct.ID] = true
			if err := tx.Accounts().Delete(ctx, acct.ID); err != nil {
				return err
			}
		}

		// Memberships in accounts that survive go through the counting
		// delete so those accounts' member counters stay in step.
		var memberships []domain.AccountUser
		if err := db.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
			return err
		}
		for _, au := range memberships {
			if ownedIDs[au.AccountID] {
				continue
			}
			if err := tx.Memberships().Delete(ctx, au.AccountID, userID); err != nil {
				return err
			}
		}
		if err := db.Where("user_id = ?", userID).Delete(&domain.APIToken{}).Error; err != nil {
			return err
		}
		if err := db.Where("owner_id = ?", userID).Delete(&domain.ConnectedAccount{}).Error; err != nil {
			return err
		}
		if err := db.Where("invited_by_id = ?", userID).Delete(&domain.AccountInvitation{}).Error; err != nil {
			return err
		}

		return db.Where("id = ?", userID).Delete(&domain.User{}).Error
	})

	return deleted, err
}
