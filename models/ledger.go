package models

import "time"

type EntryKind string

const (
	EntryCredit EntryKind = "credit"
	EntryDebit  EntryKind = "debit"
)

// LedgerEntry is append-only: entries are never updated or deleted, and
// corrections are posted as new offsetting entries.
type LedgerEntry struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"not null;index"`
	User         User      `json:"-"`
	Kind         EntryKind `json:"kind" gorm:"not null"`
	Amount       int       `json:"amount" gorm:"not null"` // always positive, sign comes from Kind
	Description  string    `json:"description"`
	AssignmentID *uint     `json:"assignment_id,omitempty" gorm:"index"` // set for approved assignment credits
	CreatedAt    time.Time `json:"created_at"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// Signed returns the entry amount with its sign applied.
func (e *LedgerEntry) Signed() int {
	if e.Kind == EntryDebit {
		return -e.Amount
	}
	return e.Amount
}
