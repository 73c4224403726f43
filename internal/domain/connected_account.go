package domain

import (
	"time"

	"gorm.io/datatypes"
)

// ConnectedAccount links an external OAuth identity to a local owner.
// (provider, uid) is unique.
type ConnectedAccount struct {
	ID                ConnectedAccountID `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	OwnerType         string             `gorm:"type:text;not null" db:"owner_type" json:"ownerType"`
	OwnerID           UserID             `gorm:"type:uuid;not null;index" db:"owner_id" json:"ownerId"`
	Provider          string             `gorm:"type:text;not null;uniqueIndex:ux_connected_provider_uid" db:"provider" json:"provider"`
	UID               string             `gorm:"type:text;not null;uniqueIndex:ux_connected_provider_uid" db:"uid" json:"uid"`
	AccessToken       string             `gorm:"type:text" db:"access_token" json:"-"`
	AccessTokenSecret string             `gorm:"type:text" db:"access_token_secret" json:"-"`
	RefreshToken      string             `gorm:"type:text" db:"refresh_token" json:"-"`
	ExpiresAt         *time.Time         `db:"expires_at" json:"expiresAt"`
	Auth              datatypes.JSONMap  `gorm:"type:jsonb" db:"auth" json:"-"`
	CreatedAt         time.Time          `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time          `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (ConnectedAccount) TableName() string { return "connected_accounts" }

// Expired reports whether the provider token is past its validity.
func (c *ConnectedAccount) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// OAuthData is the normalized provider callback payload the domain
// consumes. Provider-specific fields beyond this shape are opaque.
type OAuthData struct {
	Provider    string
	UID         string
	Info        OAuthInfo
	Credentials OAuthCredentials
	Raw         map[string]any
}

type OAuthInfo struct {
	Email string
	Name  string
}

type OAuthCredentials struct {
	Token        string
	Secret       string
	RefreshToken string
	ExpiresAt    *time.Time
}
