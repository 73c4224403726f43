package domain

import "time"

// InvitationTTL is the default validity window for a new invitation.
const InvitationTTL = 7 * 24 * time.Hour

// AccountInvitation is a time-boxed offer to join an account with a role
// set. The token is globally unique; (account_id, email) is unique too.
type AccountInvitation struct {
	ID          InvitationID `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	AccountID   AccountID    `gorm:"type:uuid;not null;uniqueIndex:ux_invitations_account_email" db:"account_id" json:"accountId"`
	InvitedByID UserID       `gorm:"type:uuid;not null" db:"invited_by_id" json:"invitedById"`
	Token       string       `gorm:"type:text;not null;uniqueIndex:ux_invitations_token" db:"token" json:"-"`
	Name        string       `gorm:"type:text;not null" db:"name" json:"name"`
	Email       string       `gorm:"type:citext;not null;uniqueIndex:ux_invitations_account_email" db:"email" json:"email"`
	Roles       RoleSet      `gorm:"type:jsonb;not null;default:'{}'" db:"roles" json:"roles"`
	ExpiresAt   time.Time    `gorm:"not null" db:"expires_at" json:"expiresAt"`
	AcceptedAt  *time.Time   `db:"accepted_at" json:"acceptedAt"`
	CreatedAt   time.Time    `gorm:"not null" db:"created_at" json:"createdAt"`
}

func (AccountInvitation) TableName() string { return "account_invitations" }

func (i *AccountInvitation) Accepted() bool { return i.AcceptedAt != nil }

func (i *AccountInvitation) Expired(now time.Time) bool {
	return i.AcceptedAt == nil && i.ExpiresAt.Before(now)
}

func (i *AccountInvitation) Pending(now time.Time) bool {
	return !i.Expired(now) && !i.Accepted()
}

// Role returns the single role the invitation grants, defaulting to member.
func (i *AccountInvitation) Role() Role {
	for _, r := range []Role{RoleOwner, RoleAdmin, RoleMember} {
		if i.Roles[r] {
			return r
		}
	}
	return RoleMember
}
