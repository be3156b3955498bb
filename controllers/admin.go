package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sistemas-fafin-lab/labpoints-be/config"
	"github.com/sistemas-fafin-lab/labpoints-be/models"
	"github.com/sistemas-fafin-lab/labpoints-be/services"
)

type AdminController struct {
	authService       *services.AuthService
	ledgerService     *services.LedgerService
	assignmentService *services.AssignmentService
}

func NewAdminController(ledgerService *services.LedgerService, assignmentService *services.AssignmentService) *AdminController {
	return &AdminController{
		authService:       services.NewAuthService(),
		ledgerService:     ledgerService,
		assignmentService: assignmentService,
	}
}

type CreateUserRequest struct {
	Email      string            `json:"email" binding:"required,email"`
	Password   string            `json:"password" binding:"required,min=6"`
	Name       string            `json:"name" binding:"required"`
	Role       models.UserRole   `json:"role" binding:"required"`
	Department models.Department `json:"department"`
}

type AdjustPointsRequest struct {
	UserID      uint             `json:"user_id" binding:"required"`
	Kind        models.EntryKind `json:"kind" binding:"required"`
	Amount      int              `json:"amount" binding:"required"`
	Description string           `json:"description" binding:"required"`
}

func (ac *AdminController) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ac.authService.CreateUser(req.Email, req.Password, req.Name, req.Role, req.Department)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Usuário criado com sucesso",
		"user":    user,
	})
}

func (ac *AdminController) GetUsers(c *gin.Context) {
	var users []models.User
	query := config.DB.Order("name ASC")
	if dept := c.Query("department"); dept != "" {
		query = query.Where("department = ?", dept)
	}
	if err := query.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao obter os usuários"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// AdjustPoints posts a direct administrative grant or debit. This is the only
// balance mutation outside the approval workflow and the redemption path, and
// it still goes through the ledger.
func (ac *AdminController) AdjustPoints(c *gin.Context) {
	var req AdjustPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := ac.ledgerService.Post(req.UserID, req.Kind, req.Amount, req.Description)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Lançamento registrado com sucesso",
		"entry":   entry,
	})
}

// GetAllPending lists every pending assignment regardless of the bound
// approver. Admins have system-wide visibility and may decide any of them.
func (ac *AdminController) GetAllPending(c *gin.Context) {
	assignments, err := ac.assignmentService.AllPending()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao obter as atribuições pendentes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

// VerifyUserLedger checks a user's cached balance against the ledger sum.
// Divergence is an operational incident: it is never fixed automatically.
func (ac *AdminController) VerifyUserLedger(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de usuário inválido"})
		return
	}

	balance, sum, err := ac.ledgerService.VerifyUserBalance(uint(userID))
	if err != nil {
		if errors.Is(err, services.ErrInconsistentState) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":      err.Error(),
				"balance":    balance,
				"ledger_sum": sum,
				"consistent": false,
			})
			return
		}
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance":    balance,
		"ledger_sum": sum,
		"consistent": true,
	})
}
