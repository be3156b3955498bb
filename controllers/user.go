package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sistemas-fafin-lab/labpoints-be/config"
	"github.com/sistemas-fafin-lab/labpoints-be/models"
	"github.com/sistemas-fafin-lab/labpoints-be/services"
)

type UserController struct {
	ledgerService *services.LedgerService
	rewardService *services.RewardService
}

func NewUserController(ledgerService *services.LedgerService, rewardService *services.RewardService) *UserController {
	return &UserController{
		ledgerService: ledgerService,
		rewardService: rewardService,
	}
}

func (uc *UserController) GetProfile(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Usuário não encontrado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (uc *UserController) GetBalance(c *gin.Context) {
	userID, _ := c.Get("user_id")

	balance, err := uc.ledgerService.BalanceOf(userID.(uint))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

func (uc *UserController) GetLedger(c *gin.Context) {
	userID, _ := c.Get("user_id")

	limit := 50
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}

	entries, err := uc.ledgerService.EntriesFor(userID.(uint), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao obter o extrato de pontos"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (uc *UserController) GetRewards(c *gin.Context) {
	rewards, err := uc.rewardService.ListRewards()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao obter as recompensas"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rewards": rewards})
}

func (uc *UserController) RedeemReward(c *gin.Context) {
	rewardID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID da recompensa inválido"})
		return
	}

	userID, _ := c.Get("user_id")

	redemption, err := uc.rewardService.Redeem(userID.(uint), uint(rewardID))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Recompensa resgatada com sucesso",
		"redemption": redemption,
	})
}

func (uc *UserController) GetRedemptions(c *gin.Context) {
	userID, _ := c.Get("user_id")

	redemptions, err := uc.rewardService.RedemptionsFor(userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao obter os resgates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"redemptions": redemptions})
}
