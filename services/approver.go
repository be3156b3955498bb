package services

import (
	"errors"
	"math/rand"

	"github.com/sistemas-fafin-lab/labpoints-be/config"
	"github.com/sistemas-fafin-lab/labpoints-be/models"
	"gorm.io/gorm"
)

// ApproverPolicy picks the approver bound to a new point assignment. The pick
// happens once, at creation time: later roster changes never re-route a
// pending assignment.
type ApproverPolicy struct{}

func NewApproverPolicy() *ApproverPolicy {
	return &ApproverPolicy{}
}

// SelectApprover returns an active user with standing to approve a grant to
// the target: a gestor of the target's department or any adm. The requester
// is never a candidate. Candidates other than the target are preferred, so
// the target only ends up approving their own grant when nobody else exists.
// The pick among the remaining candidates is random.
func (p *ApproverPolicy) SelectApprover(requesterID, targetUserID uint) (uint, error) {
	var target models.User
	if err := config.DB.First(&target, targetUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	var candidates []models.User
	query := config.DB.Where("is_active = ? AND id <> ?", true, requesterID)
	if target.Department != "" {
		query = query.Where("role = ? OR (role = ? AND department = ?)",
			models.RoleAdm, models.RoleGestor, target.Department)
	} else {
		query = query.Where("role = ?", models.RoleAdm)
	}
	if err := query.Find(&candidates).Error; err != nil {
		return 0, err
	}
	if len(candidates) == 0 {
		return 0, ErrNoApproverAvailable
	}

	preferred := make([]models.User, 0, len(candidates))
	for _, u := range candidates {
		if u.ID != targetUserID {
			preferred = append(preferred, u)
		}
	}
	if len(preferred) > 0 {
		candidates = preferred
	}

	return candidates[rand.Intn(len(candidates))].ID, nil
}
