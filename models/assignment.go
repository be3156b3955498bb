package models

import "time"

type AssignmentStatus string

const (
	AssignmentPending  AssignmentStatus = "pending"
	AssignmentApproved AssignmentStatus = "approved"
	AssignmentRejected AssignmentStatus = "rejected"
)

// PointAssignment is a manager-initiated proposal to credit points to a
// target user. It is created pending with the approver already bound, and
// takes exactly one terminal transition: approved (posting one ledger credit)
// or rejected (posting nothing). Decided assignments are immutable history,
// which is why there is no soft delete here.
type PointAssignment struct {
	ID              uint             `json:"id" gorm:"primaryKey"`
	RequesterID     uint             `json:"requester_id" gorm:"not null;index"`
	Requester       User             `json:"requester,omitempty" gorm:"foreignKey:RequesterID"`
	TargetUserID    uint             `json:"target_user_id" gorm:"not null;index"`
	Target          User             `json:"target,omitempty" gorm:"foreignKey:TargetUserID"`
	Points          int              `json:"points" gorm:"not null"`
	Justification   string           `json:"justification" gorm:"not null"`
	ApproverID      uint             `json:"approver_id" gorm:"not null;index"`
	Approver        User             `json:"approver,omitempty" gorm:"foreignKey:ApproverID"`
	Status          AssignmentStatus `json:"status" gorm:"default:'pending';index"`
	RejectionReason *string          `json:"rejection_reason,omitempty"`
	DecidedAt       *time.Time       `json:"decided_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func (PointAssignment) TableName() string {
	return "point_assignments"
}
