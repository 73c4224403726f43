package domain

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID                  UserID            `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	Email               string            `gorm:"type:citext;uniqueIndex:ux_users_email" db:"email" json:"email"`
	EncryptedPassword   string            `gorm:"type:text;not null" db:"encrypted_password" json:"-"`
	FirstName           string            `gorm:"type:text" db:"first_name" json:"firstName"`
	LastName            string            `gorm:"type:text" db:"last_name" json:"lastName"`
	OTPSecret           string            `gorm:"type:text" db:"otp_secret" json:"-"`
	OTPBackupCodes      string            `gorm:"type:text" db:"otp_backup_codes" json:"-"`
	OTPRequiredForLogin bool              `gorm:"not null;default:false" db:"otp_required_for_login" json:"otpRequiredForLogin"`
	LastOTPTimestep     *int64            `db:"last_otp_timestep" json:"-"`
	Preferences         datatypes.JSONMap `gorm:"type:jsonb" db:"preferences" json:"preferences"`
	IsDisabled          bool              `gorm:"not null;default:false" db:"is_disabled" json:"isDisabled"`
	CreatedAt           time.Time         `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time         `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// FullName joins the name parts, falling back to "User" when both are blank.
func (u *User) FullName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return "User"
	}
	return name
}

// TwoFactorEnabled reports whether login is gated behind an OTP challenge.
func (u *User) TwoFactorEnabled() bool {
	return u.OTPRequiredForLogin && u.OTPSecret != ""
}
