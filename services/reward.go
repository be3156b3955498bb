package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sistemas-fafin-lab/labpoints-be/config"
	"github.com/sistemas-fafin-lab/labpoints-be/models"
	"gorm.io/gorm"
)

// RewardService handles reward redemptions. It is a peer of the assignment
// workflow: the only thing they share is the ledger and its balance
// invariant.
type RewardService struct {
	ledger   *LedgerService
	notifier Notifier
}

func NewRewardService(ledger *LedgerService, notifier Notifier) *RewardService {
	return &RewardService{ledger: ledger, notifier: notifier}
}

// ListRewards returns the active catalog.
func (s *RewardService) ListRewards() ([]models.Reward, error) {
	var rewards []models.Reward
	err := config.DB.Where("is_active = ?", true).Order("cost_points ASC").Find(&rewards).Error
	return rewards, err
}

// Redeem debits the reward cost from the user and records the redemption
// receipt in one transaction. The receipt carries a fresh idempotency key; a
// retry after an unknown outcome should re-query receipts instead of calling
// Redeem again.
func (s *RewardService) Redeem(userID, rewardID uint) (*models.Redemption, error) {
	var reward models.Reward
	if err := config.DB.First(&reward, rewardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRewardNotFound
		}
		return nil, err
	}
	if !reward.IsActive {
		return nil, ErrRewardNotFound
	}

	redemption := models.Redemption{
		UserID:         userID,
		RewardID:       rewardID,
		CostPoints:     reward.CostPoints,
		IdempotencyKey: uuid.New().String(),
	}
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		description := fmt.Sprintf("Resgate de recompensa: %s", reward.Name)
		if _, err := s.ledger.PostTx(tx, userID, models.EntryDebit, reward.CostPoints, description, nil); err != nil {
			return err
		}
		return tx.Create(&redemption).Error
	})
	if err != nil {
		return nil, err
	}

	emit(s.notifier, Event{
		Type:   EventBalanceUpdated,
		UserID: userID,
		Payload: BalanceEventPayload{
			UserID:  userID,
			Balance: balanceAfter(userID),
		},
	})

	return &redemption, nil
}

// RedemptionsFor lists a user's redemption receipts, newest first.
func (s *RewardService) RedemptionsFor(userID uint) ([]models.Redemption, error) {
	var redemptions []models.Redemption
	err := config.DB.Preload("Reward").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&redemptions).Error
	return redemptions, err
}
