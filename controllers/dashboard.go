package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sistemas-fafin-lab/labpoints-be/config"
	"github.com/sistemas-fafin-lab/labpoints-be/models"
)

type DashboardController struct{}

func NewDashboardController() *DashboardController {
	return &DashboardController{}
}

type DashboardStats struct {
	// Users
	UsersRegistered int `json:"users_registered"`
	UsersWithPoints int `json:"users_with_points"`
	TotalGestores   int `json:"total_gestores"`

	// Assignments
	PendingAssignments int `json:"pending_assignments"`
	ApprovedThisMonth  int `json:"approved_this_month"`
	RejectedThisMonth  int `json:"rejected_this_month"`

	// Points
	PointsInCirculation     int `json:"points_in_circulation"`
	PointsIssuedThisMonth   int `json:"points_issued_this_month"`
	PointsRedeemedThisMonth int `json:"points_redeemed_this_month"`
}

func (dc *DashboardController) GetStats(c *gin.Context) {
	var stats DashboardStats
	now := time.Now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var totalUsers int64
	config.DB.Model(&models.User{}).Where("is_active = ?", true).Count(&totalUsers)
	stats.UsersRegistered = int(totalUsers)

	var usersWithPoints int64
	config.DB.Model(&models.User{}).Where("lab_points > 0").Count(&usersWithPoints)
	stats.UsersWithPoints = int(usersWithPoints)

	var gestores int64
	config.DB.Model(&models.User{}).Where("role = ? AND is_active = ?", models.RoleGestor, true).Count(&gestores)
	stats.TotalGestores = int(gestores)

	var pending int64
	config.DB.Model(&models.PointAssignment{}).Where("status = ?", models.AssignmentPending).Count(&pending)
	stats.PendingAssignments = int(pending)

	var approved int64
	config.DB.Model(&models.PointAssignment{}).
		Where("status = ? AND decided_at >= ?", models.AssignmentApproved, startOfMonth).
		Count(&approved)
	stats.ApprovedThisMonth = int(approved)

	var rejected int64
	config.DB.Model(&models.PointAssignment{}).
		Where("status = ? AND decided_at >= ?", models.AssignmentRejected, startOfMonth).
		Count(&rejected)
	stats.RejectedThisMonth = int(rejected)

	var circulation int64
	config.DB.Model(&models.User{}).Select("COALESCE(SUM(lab_points), 0)").Scan(&circulation)
	stats.PointsInCirculation = int(circulation)

	var issued int64
	config.DB.Model(&models.LedgerEntry{}).
		Where("kind = ? AND created_at >= ?", models.EntryCredit, startOfMonth).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&issued)
	stats.PointsIssuedThisMonth = int(issued)

	var redeemed int64
	config.DB.Model(&models.LedgerEntry{}).
		Where("kind = ? AND created_at >= ?", models.EntryDebit, startOfMonth).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&redeemed)
	stats.PointsRedeemedThisMonth = int(redeemed)

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
