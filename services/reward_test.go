package services

import (
	"testing"

	"github.com/sistemas-fafin-lab/labpoints-be/config"
	"github.com/sistemas-fafin-lab/labpoints-be/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestReward(t *testing.T, name string, cost int, active bool) *models.Reward {
	t.Helper()
	reward := models.Reward{Name: name, CostPoints: cost, IsActive: active}
	require.NoError(t, config.DB.Create(&reward).Error)
	return &reward
}

func TestListRewardsOnlyActive(t *testing.T) {
	setupTestDB(t)
	rewards := NewRewardService(NewLedgerService(nil), nil)

	createTestReward(t, "Vale-café", 50, true)
	createTestReward(t, "Folga extra", 800, true)
	createTestReward(t, "Descontinuada", 10, false)

	catalog, err := rewards.ListRewards()
	require.NoError(t, err)
	require.Len(t, catalog, 2)
	// Catalog is ordered by cost, cheapest first.
	assert.Equal(t, "Vale-café", catalog[0].Name)
	assert.Equal(t, "Folga extra", catalog[1].Name)
}

func TestRedeemDebitsAndRecordsReceipt(t *testing.T) {
	setupTestDB(t)
	notifier := &captureNotifier{}
	ledger := NewLedgerService(notifier)
	rewards := NewRewardService(ledger, notifier)

	user := createTestUser(t, "colab@fafin.com.br", models.RoleColaborador, models.DepartmentComercial)
	grantPoints(t, ledger, user.ID, 120)
	reward := createTestReward(t, "Vale-café", 50, true)

	redemption, err := rewards.Redeem(user.ID, reward.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, redemption.CostPoints)
	assert.NotEmpty(t, redemption.IdempotencyKey)

	balance, err := ledger.BalanceOf(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 70, balance)

	// One credit from the grant plus one debit for the redemption.
	assert.EqualValues(t, 2, countEntriesFor(t, user.ID))
	_, _, err = ledger.VerifyUserBalance(user.ID)
	require.NoError(t, err)

	receipts, err := rewards.RedemptionsFor(user.ID)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, redemption.IdempotencyKey, receipts[0].IdempotencyKey)
	assert.Equal(t, "Vale-café", receipts[0].Reward.Name)

	events := notifier.byType(EventBalanceUpdated)
	assert.NotEmpty(t, events)
}

func TestRedeemInsufficientBalance(t *testing.T) {
	setupTestDB(t)
	ledger := NewLedgerService(nil)
	rewards := NewRewardService(ledger, nil)

	user := createTestUser(t, "colab@fafin.com.br", models.RoleColaborador, models.DepartmentComercial)
	grantPoints(t, ledger, user.ID, 30)
	reward := createTestReward(t, "Folga extra", 800, true)

	_, err := rewards.Redeem(user.ID, reward.ID)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// The failed redemption left no receipt and no debit behind.
	balance, err := ledger.BalanceOf(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, balance)
	assert.EqualValues(t, 1, countEntriesFor(t, user.ID))

	var receipts int64
	require.NoError(t, config.DB.Model(&models.Redemption{}).Where("user_id = ?", user.ID).Count(&receipts).Error)
	assert.EqualValues(t, 0, receipts)
}

func TestRedeemUnknownOrInactiveReward(t *testing.T) {
	setupTestDB(t)
	ledger := NewLedgerService(nil)
	rewards := NewRewardService(ledger, nil)

	user := createTestUser(t, "colab@fafin.com.br", models.RoleColaborador, models.DepartmentComercial)
	grantPoints(t, ledger, user.ID, 1000)

	_, err := rewards.Redeem(user.ID, 999)
	assert.ErrorIs(t, err, ErrRewardNotFound)

	inactive := createTestReward(t, "Descontinuada", 10, false)
	_, err = rewards.Redeem(user.ID, inactive.ID)
	assert.ErrorIs(t, err, ErrRewardNotFound)

	balance, err := ledger.BalanceOf(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000, balance)
}
