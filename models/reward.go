package models

import (
	"time"

	"gorm.io/gorm"
)

type Reward struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description"`
	CostPoints  int            `json:"cost_points" gorm:"not null"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// Redemption is the receipt for a reward exchange. The points themselves move
// through the ledger; the receipt carries an idempotency key so a retried
// redemption cannot debit twice.
type Redemption struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"user_id" gorm:"not null;index"`
	User           User      `json:"-"`
	RewardID       uint      `json:"reward_id" gorm:"not null;index"`
	Reward         Reward    `json:"reward,omitempty"`
	CostPoints     int       `json:"cost_points" gorm:"not null"`
	IdempotencyKey string    `json:"idempotency_key" gorm:"uniqueIndex;not null"`
	CreatedAt      time.Time `json:"created_at"`
}
