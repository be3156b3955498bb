package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sistemas-fafin-lab/labpoints-be/services"
)

type AssignmentController struct {
	assignmentService *services.AssignmentService
}

func NewAssignmentController(assignmentService *services.AssignmentService) *AssignmentController {
	return &AssignmentController{
		assignmentService: assignmentService,
	}
}

type CreateAssignmentRequest struct {
	TargetUserID  uint   `json:"target_user_id" binding:"required"`
	Points        int    `json:"points" binding:"required"`
	Justification string `json:"justification" binding:"required"`
}

type RejectAssignmentRequest struct {
	Reason string `json:"reason"`
}

// statusFor maps the workflow sentinel errors to HTTP status codes, so every
// caller can tell the error kinds apart.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidPoints),
		errors.Is(err, services.ErrEmptyJustification),
		errors.Is(err, services.ErrSelfAssignment),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidEntryKind):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrAssignmentNotFound),
		errors.Is(err, services.ErrRewardNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAlreadyDecided),
		errors.Is(err, services.ErrInsufficientBalance):
		return http.StatusConflict
	case errors.Is(err, services.ErrNoApproverAvailable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (ac *AssignmentController) CreateAssignment(c *gin.Context) {
	requesterID, _ := c.Get("user_id")

	var req CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignment, err := ac.assignmentService.CreateAssignment(requesterID.(uint), req.TargetUserID, req.Points, req.Justification)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Atribuição criada e aguardando aprovação",
		"assignment": assignment,
	})
}

func (ac *AssignmentController) GetPendingForMe(c *gin.Context) {
	userID, _ := c.Get("user_id")

	assignments, err := ac.assignmentService.PendingForApprover(userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao obter as atribuições pendentes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

func (ac *AssignmentController) ApproveAssignment(c *gin.Context) {
	assignmentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID da atribuição inválido"})
		return
	}

	approverID, _ := c.Get("user_id")

	assignment, err := ac.assignmentService.Approve(uint(assignmentID), approverID.(uint))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Atribuição aprovada com sucesso",
		"assignment": assignment,
	})
}

func (ac *AssignmentController) RejectAssignment(c *gin.Context) {
	assignmentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID da atribuição inválido"})
		return
	}

	var req RejectAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	approverID, _ := c.Get("user_id")

	assignment, err := ac.assignmentService.Reject(uint(assignmentID), approverID.(uint), req.Reason)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Atribuição rejeitada",
		"assignment": assignment,
	})
}

func (ac *AssignmentController) GetHistory(c *gin.Context) {
	userID, _ := c.Get("user_id")

	limit := 50
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}

	assignments, err := ac.assignmentService.HistoryForRequester(userID.(uint), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao obter o histórico de atribuições"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}
