package domain

import "time"

// APIToken is a hashed bearer credential scoped to a user. Only the
// SHA-256 digest of the secret is persisted; the plaintext is handed to
// the caller exactly once at creation.
type APIToken struct {
	ID         APITokenID `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	UserID     UserID     `gorm:"type:uuid;not null;index" db:"user_id" json:"userId"`
	TokenHash  string     `gorm:"type:text;not null;uniqueIndex:ux_api_tokens_hash" db:"token_hash" json:"-"`
	Name       string     `gorm:"type:text;not null" db:"name" json:"name"`
	ExpiresAt  *time.Time `db:"expires_at" json:"expiresAt"`
	LastUsedAt *time.Time `db:"last_used_at" json:"lastUsedAt"`
	CreatedAt  time.Time  `gorm:"not null" db:"created_at" json:"createdAt"`
}

func (APIToken) TableName() string { return "api_tokens" }

// Expired reports whether the token is past its validity. Tokens without
// an expiry never expire.
func (t *APIToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !t.ExpiresAt.After(now)
}

func (t *APIToken) Active(now time.Time) bool { return !t.Expired(now) }
