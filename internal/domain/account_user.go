package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Role is one of the fixed membership roles. The set is closed; unknown
// names are rejected by AddRole/RemoveRole.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// allRoles fixes the enumeration order so RoleNames stays deterministic.
var allRoles = []Role{RoleOwner, RoleAdmin, RoleMember}

// ValidRole reports whether name is part of the fixed role set.
func ValidRole(name Role) bool {
	for _, r := range allRoles {
		if r == name {
			return true
		}
	}
	return false
}

// RoleSet is a role-name to flag map persisted as jsonb.
type RoleSet map[Role]bool

func (rs RoleSet) Value() (driver.Value, error) {
	if rs == nil {
		rs = RoleSet{}
	}
	b, err := json.Marshal(rs)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (rs *RoleSet) Scan(src any) error {
	if src == nil {
		*rs = RoleSet{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported roles column type")
	}
	if len(raw) == 0 {
		*rs = RoleSet{}
		return nil
	}
	return json.Unmarshal(raw, rs)
}

func (RoleSet) GormDataType() string { return "jsonb" }

// AccountUser joins a user to an account with a role set. The
// (account_id, user_id) pair is unique.
type AccountUser struct {
	ID        MembershipID `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	AccountID AccountID    `gorm:"type:uuid;not null;uniqueIndex:ux_account_users_pair" db:"account_id" json:"accountId"`
	UserID    UserID       `gorm:"type:uuid;not null;uniqueIndex:ux_account_users_pair" db:"user_id" json:"userId"`
	Roles     RoleSet      `gorm:"type:jsonb;not null;default:'{}'" db:"roles" json:"roles"`
	CreatedAt time.Time    `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt time.Time    `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (AccountUser) TableName() string { return "account_users" }

// HasRole reports whether the flag for name is set. Unknown names are false.
func (au *AccountUser) HasRole(name Role) bool {
	return au.Roles[name]
}

// AddRole sets the flag for a known role name. Returns false without
// mutating state when the name is outside the fixed set.
func (au *AccountUser) AddRole(name Role) bool {
	if !ValidRole(name) {
		return false
	}
	if au.Roles == nil {
		au.Roles = RoleSet{}
	}
	au.Roles[name] = true
	return true
}

// RemoveRole deletes the flag for a known role name. Returns false without
// mutating state when the name is outside the fixed set.
func (au *AccountUser) RemoveRole(name Role) bool {
	if !ValidRole(name) {
		return false
	}
	delete(au.Roles, name)
	return true
}

// RoleNames returns the roles whose flag is true, in the fixed
// owner/admin/member order.
func (au *AccountUser) RoleNames() []Role {
	names := make([]Role, 0, len(au.Roles))
	for _, r := range allRoles {
		if au.Roles[r] {
			names = append(names, r)
		}
	}
	return names
}

func (au *AccountUser) Admin() bool { return au.HasRole(RoleAdmin) }
