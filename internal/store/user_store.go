package store

import (
	"context"
	"strings"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserStore struct{ db *gorm.DB }

func (s *Store) Users() *UserStore { return &UserStore{db: s.DB} }

func (u *UserStore) Create(ctx context.Context, usr *domain.User) error {
	if usr.ID == uuid.Nil {
		usr.ID = uuid.New()
	}
	usr.Email = strings.ToLower(strings.TrimSpace(usr.Email))
	return translate(u.db.WithContext(ctx).Create(usr).Error)
}

func (u *UserStore) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (u *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := u.db.WithContext(ctx).First(&user, "lower(email) = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (u *UserStore) Update(ctx context.Context, usr *domain.User) error {
	return translate(u.db.WithContext(ctx).Save(usr).Error)
}

// SetTwoFactor writes the 2FA provisioning or teardown state in one update.
func (u *UserStore) SetTwoFactor(ctx context.Context, userID domain.UserID, secret, backupCodes string, required bool, lastTimestep *int64) error {
	return translate(u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"otp_secret":             secret,
			"otp_backup_codes":       backupCodes,
			"otp_required_for_login": required,
			"last_otp_timestep":      lastTimestep,
		}).Error)
}

// SetOTPRequired flips the login-gating flag only.
func (u *UserStore) SetOTPRequired(ctx context.Context, userID domain.UserID, required bool) error {
	return translate(u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Update("otp_required_for_login", required).Error)
}

// SetLastOTPTimestep persists the anti-replay watermark as a single-column
// write, outside any larger transaction.
func (u *UserStore) SetLastOTPTimestep(ctx context.Context, userID domain.UserID, step int64) error {
	return translate(u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Update("last_otp_timestep", step).Error)
}

// SetBackupCodes rewrites the stored backup-code list.
func (u *UserStore) SetBackupCodes(ctx context.Context, userID domain.UserID, codes string) error {
	return translate(u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Update("otp_backup_codes", codes).Error)
}

func (u *UserStore) SetDisabled(ctx context.Context, userID domain.UserID, disabled bool) error {
	return translate(u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Update("is_disabled", disabled).Error)
}
