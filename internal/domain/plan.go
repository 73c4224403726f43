package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Plan is a billing plan catalog entry. Amounts are in cents.
type Plan struct {
	ID            PlanID            `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	Name          string            `gorm:"type:text;not null" db:"name" json:"name"`
	Amount        int64             `gorm:"not null" db:"amount" json:"amount"`
	Interval      string            `gorm:"type:text;not null" db:"interval" json:"interval"`
	IntervalCount int               `gorm:"not null;default:1" db:"interval_count" json:"intervalCount"`
	Currency      string            `gorm:"type:text;not null" db:"currency" json:"currency"`
	StripeID      string            `gorm:"type:text" db:"stripe_id" json:"stripeId"`
	Hidden        bool              `gorm:"not null;default:false" db:"hidden" json:"hidden"`
	Details       datatypes.JSONMap `gorm:"type:jsonb" db:"details" json:"details"`
	CreatedAt     time.Time         `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time         `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (Plan) TableName() string { return "plans" }

func (p *Plan) AmountInDollars() float64 {
	return float64(p.Amount) / 100.0
}
