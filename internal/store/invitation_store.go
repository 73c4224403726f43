package store

import (
	"context"
	"time"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvitationStore struct{ db *gorm.DB }

func (s *Store) Invitations() *InvitationStore { return &InvitationStore{db: s.DB} }

func (i *InvitationStore) Create(ctx context.Context, inv *domain.AccountInvitation) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	return translate(i.db.WithContext(ctx).Create(inv).Error)
}

func (i *InvitationStore) GetByID(ctx context.Context, accountID domain.AccountID, id domain.InvitationID) (*domain.AccountInvitation, error) {
	var inv domain.AccountInvitation
	err := i.db.WithContext(ctx).
		First(&inv, "id = ? AND account_id = ?", id, accountID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &inv, nil
}

func (i *InvitationStore) GetByToken(ctx context.Context, token string) (*domain.AccountInvitation, error) {
	var inv domain.AccountInvitation
	if err := i.db.WithContext(ctx).First(&inv, "token = ?", token).Error; err != nil {
		return nil, translate(err)
	}
	return &inv, nil
}

// ListPending returns live invitations for the account, newest first.
func (i *InvitationStore) ListPending(ctx context.Context, accountID domain.AccountID, now time.Time) ([]domain.AccountInvitation, error) {
	var rows []domain.AccountInvitation
	err := i.db.WithContext(ctx).
		Where("account_id = ? AND accepted_at IS NULL AND expires_at > ?", accountID, now).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

// ListExpired returns lapsed invitations for the account, newest first,
// capped at limit.
func (i *InvitationStore) ListExpired(ctx context.Context, accountID domain.AccountID, now time.Time, limit int) ([]domain.AccountInvitation, error) {
	var rows []domain.AccountInvitation
	err := i.db.WithContext(ctx).
		Where("account_id = ? AND accepted_at IS NULL AND expires_at <= ?", accountID, now).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

// MarkAccepted stamps accepted_at. It only succeeds while the row is still
// unaccepted, so a concurrent double-accept loses the race cleanly.
func (i *InvitationStore) MarkAccepted(ctx context.Context, id domain.InvitationID, at time.Time) error {
	res := i.db.WithContext(ctx).Model(&domain.AccountInvitation{}).
		Where("id = ? AND accepted_at IS NULL", id).
		Update("accepted_at", at)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrDuplicate
	}
	return nil
}

// Refresh pushes expires_at forward, reviving a lapsed invitation.
func (i *InvitationStore) Refresh(ctx context.Context, id domain.InvitationID, expiresAt time.Time) error {
	return translate(i.db.WithContext(ctx).Model(&domain.AccountInvitation{}).
		Where("id = ?", id).
		Update("expires_at", expiresAt).Error)
}

func (i *InvitationStore) Delete(ctx context.Context, id domain.InvitationID) error {
	res := i.db.WithContext(ctx).Delete(&domain.AccountInvitation{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
