package domain

import "time"

type Account struct {
	ID                AccountID  `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	Name              string     `gorm:"type:text;not null" db:"name" json:"name"`
	Personal          bool       `gorm:"not null;default:false" db:"personal" json:"personal"`
	OwnerID           UserID     `gorm:"type:uuid;not null;index" db:"owner_id" json:"ownerId"`
	BillingEmail      string     `gorm:"type:text" db:"billing_email" json:"billingEmail"`
	ExtraBillingInfo  string     `gorm:"type:text" db:"extra_billing_info" json:"extraBillingInfo"`
	Subdomain         string     `gorm:"type:text" db:"subdomain" json:"subdomain"`
	AccountUsersCount int64      `gorm:"not null;default:0" db:"account_users_count" json:"accountUsersCount"`
	TrialEndsAt       *time.Time `db:"trial_ends_at" json:"trialEndsAt"`
	CreatedAt         time.Time  `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time  `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (Account) TableName() string { return "accounts" }

// OwnedBy reports whether the user is the account owner. Ownership is a
// first-class account attribute, independent of the membership role map.
func (a *Account) OwnedBy(userID UserID) bool { return a.OwnerID == userID }

// OnTrial reports whether the account currently has an active trial.
func (a *Account) OnTrial(now time.Time) bool {
	return a.TrialEndsAt != nil && a.TrialEndsAt.After(now)
}

// TrialDaysRemaining returns whole days left on the trial, zero when none.
func (a *Account) TrialDaysRemaining(now time.Time) int {
	if !a.OnTrial(now) {
		return 0
	}
	return int(a.TrialEndsAt.Sub(now).Hours() / 24)
}
