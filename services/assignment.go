package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sistemas-fafin-lab/labpoints-be/config"
	"github.com/sistemas-fafin-lab/labpoints-be/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AssignmentService is the point-assignment workflow engine. An assignment is
// born pending with its approver bound and takes exactly one terminal
// transition, enforced by a conditional update on the stored status. The
// approval credit posts to the ledger inside the same transaction as the
// transition, so no reader ever sees one without the other.
type AssignmentService struct {
	ledger   *LedgerService
	policy   *ApproverPolicy
	notifier Notifier
}

func NewAssignmentService(ledger *LedgerService, policy *ApproverPolicy, notifier Notifier) *AssignmentService {
	return &AssignmentService{
		ledger:   ledger,
		policy:   policy,
		notifier: notifier,
	}
}

// CreateAssignment validates the request, checks the requester's authority
// over the target, binds an approver and persists the assignment in pending
// status. Nothing touches any balance here; a failed step persists nothing.
func (s *AssignmentService) CreateAssignment(requesterID, targetUserID uint, points int, justification string) (*models.PointAssignment, error) {
	if points <= 0 {
		return nil, ErrInvalidPoints
	}
	if strings.TrimSpace(justification) == "" {
		return nil, ErrEmptyJustification
	}
	if requesterID == targetUserID {
		return nil, ErrSelfAssignment
	}

	requester, err := s.loadUser(requesterID)
	if err != nil {
		return nil, err
	}
	target, err := s.loadUser(targetUserID)
	if err != nil {
		return nil, err
	}
	if !canAssign(requester, target) {
		return nil, ErrAuthorization
	}

	approverID, err := s.policy.SelectApprover(requesterID, targetUserID)
	if err != nil {
		return nil, err
	}

	assignment := models.PointAssignment{
		RequesterID:   requesterID,
		TargetUserID:  targetUserID,
		Points:        points,
		Justification: justification,
		ApproverID:    approverID,
		Status:        models.AssignmentPending,
	}
	if err := config.DB.Create(&assignment).Error; err != nil {
		return nil, err
	}

	emit(s.notifier, Event{
		Type:    EventAssignmentCreated,
		UserID:  approverID,
		Payload: assignmentPayload(&assignment),
	})

	return &assignment, nil
}

// Approve moves a pending assignment to approved and credits the target in
// one transaction. When two deciders race, the conditional status update lets
// exactly one through; the loser gets ErrAlreadyDecided.
func (s *AssignmentService) Approve(assignmentID, approverID uint) (*models.PointAssignment, error) {
	assignment, err := s.loadDecidable(assignmentID, approverID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PointAssignment{}).
			Where("id = ? AND status = ?", assignment.ID, models.AssignmentPending).
			Updates(map[string]interface{}{
				"status":     models.AssignmentApproved,
				"decided_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyDecided
		}

		description := fmt.Sprintf("Pontos recebidos por aprovação: %s", assignment.Justification)
		if _, err := s.ledger.PostTx(tx, assignment.TargetUserID, models.EntryCredit, assignment.Points, description, &assignment.ID); err != nil {
			// Rolling back here reverts the status flip too, keeping the
			// transition and the credit a single unit. This must never pass
			// silently: a credit that cannot post blocks the approval.
			logger().Error("lançamento de pontos falhou após a transição; transação revertida",
				zap.Uint("assignment_id", assignment.ID),
				zap.Uint("target_user_id", assignment.TargetUserID),
				zap.Error(err),
			)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	assignment.Status = models.AssignmentApproved
	assignment.DecidedAt = &now

	emit(s.notifier, Event{
		Type:    EventAssignmentApproved,
		UserID:  assignment.RequesterID,
		Payload: assignmentPayload(assignment),
	})
	emit(s.notifier, Event{
		Type:   EventBalanceUpdated,
		UserID: assignment.TargetUserID,
		Payload: BalanceEventPayload{
			UserID:  assignment.TargetUserID,
			Balance: balanceAfter(assignment.TargetUserID),
		},
	})

	return assignment, nil
}

// Reject moves a pending assignment to rejected, storing the optional reason.
// No ledger entry is ever created on this path.
func (s *AssignmentService) Reject(assignmentID, approverID uint, reason string) (*models.PointAssignment, error) {
	assignment, err := s.loadDecidable(assignmentID, approverID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":     models.AssignmentRejected,
		"decided_at": now,
	}
	var reasonPtr *string
	if strings.TrimSpace(reason) != "" {
		reasonPtr = &reason
		updates["rejection_reason"] = reason
	}

	res := config.DB.Model(&models.PointAssignment{}).
		Where("id = ? AND status = ?", assignment.ID, models.AssignmentPending).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyDecided
	}

	assignment.Status = models.AssignmentRejected
	assignment.DecidedAt = &now
	assignment.RejectionReason = reasonPtr

	emit(s.notifier, Event{
		Type:    EventAssignmentRejected,
		UserID:  assignment.RequesterID,
		Payload: assignmentPayload(assignment),
	})

	return assignment, nil
}

// Get returns a single assignment with its participants.
func (s *AssignmentService) Get(assignmentID uint) (*models.PointAssignment, error) {
	var assignment models.PointAssignment
	err := config.DB.Preload("Requester").Preload("Target").Preload("Approver").
		First(&assignment, assignmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// PendingForApprover lists pending assignments bound to the given approver.
func (s *AssignmentService) PendingForApprover(userID uint) ([]models.PointAssignment, error) {
	var assignments []models.PointAssignment
	err := config.DB.Preload("Requester").Preload("Target").
		Where("approver_id = ? AND status = ?", userID, models.AssignmentPending).
		Order("created_at ASC").
		Find(&assignments).Error
	return assignments, err
}

// AllPending lists every pending assignment regardless of the bound approver
// (admin view).
func (s *AssignmentService) AllPending() ([]models.PointAssignment, error) {
	var assignments []models.PointAssignment
	err := config.DB.Preload("Requester").Preload("Target").Preload("Approver").
		Where("status = ?", models.AssignmentPending).
		Order("created_at ASC").
		Find(&assignments).Error
	return assignments, err
}

// HistoryForRequester lists a requester's assignments newest-first.
func (s *AssignmentService) HistoryForRequester(userID uint, limit int) ([]models.PointAssignment, error) {
	var assignments []models.PointAssignment
	query := config.DB.Preload("Target").Preload("Approver").
		Where("requester_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&assignments).Error
	return assignments, err
}

// loadDecidable loads the assignment and runs the shared approve/reject
// checks: the caller must be the bound approver or an adm, and the status
// must still be pending. The pending check here is a fast path only; the
// conditional update is what actually closes the race.
func (s *AssignmentService) loadDecidable(assignmentID, approverID uint) (*models.PointAssignment, error) {
	var assignment models.PointAssignment
	if err := config.DB.First(&assignment, assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	approver, err := s.loadUser(approverID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrAuthorization
		}
		return nil, err
	}
	if approver.ID != assignment.ApproverID && approver.Role != models.RoleAdm {
		return nil, ErrAuthorization
	}

	if assignment.Status != models.AssignmentPending {
		return nil, ErrAlreadyDecided
	}

	return &assignment, nil
}

func (s *AssignmentService) loadUser(userID uint) (*models.User, error) {
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// canAssign is the single authorization predicate for point grants: adms are
// unrestricted, gestors are limited to targets in their own department.
func canAssign(requester, target *models.User) bool {
	switch requester.Role {
	case models.RoleAdm:
		return true
	case models.RoleGestor:
		return requester.Department != "" && requester.Department == target.Department
	default:
		return false
	}
}

func assignmentPayload(a *models.PointAssignment) AssignmentEventPayload {
	return AssignmentEventPayload{
		AssignmentID: a.ID,
		RequesterID:  a.RequesterID,
		TargetUserID: a.TargetUserID,
		Points:       a.Points,
		Status:       string(a.Status),
	}
}

func balanceAfter(userID uint) int {
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		return 0
	}
	return user.LabPoints
}
