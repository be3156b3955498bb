package services

import (
	"github.com/sistemas-fafin-lab/labpoints-be/config"
	"github.com/sistemas-fafin-lab/labpoints-be/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LedgerService owns the append-only points ledger and the cached balance on
// the user row. Both always move inside the same database transaction, so the
// balance of a user equals the signed sum of their entries at all times.
type LedgerService struct {
	notifier Notifier
}

func NewLedgerService(notifier Notifier) *LedgerService {
	return &LedgerService{notifier: notifier}
}

func logger() *zap.Logger {
	if config.Logger == nil {
		return zap.NewNop()
	}
	return config.Logger
}

// Post appends a ledger entry and updates the cached balance in one
// transaction, then notifies the affected user.
func (s *LedgerService) Post(userID uint, kind models.EntryKind, amount int, description string) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = s.PostTx(tx, userID, kind, amount, description, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifyBalance(userID)
	return entry, nil
}

// PostTx is the transactional body of Post, for callers that need the entry
// appended atomically with their own writes (assignment approval, reward
// redemption). The balance update is a conditional single-statement write, so
// concurrent posters never lose an increment and a debit can never take the
// balance below zero.
func (s *LedgerService) PostTx(tx *gorm.DB, userID uint, kind models.EntryKind, amount int, description string, assignmentID *uint) (*models.LedgerEntry, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	switch kind {
	case models.EntryCredit:
		res := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("lab_points", gorm.Expr("lab_points + ?", amount))
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrUserNotFound
		}
	case models.EntryDebit:
		res := tx.Model(&models.User{}).
			Where("id = ? AND lab_points >= ?", userID, amount).
			Update("lab_points", gorm.Expr("lab_points - ?", amount))
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
				return nil, err
			}
			if count == 0 {
				return nil, ErrUserNotFound
			}
			return nil, ErrInsufficientBalance
		}
	default:
		return nil, ErrInvalidEntryKind
	}

	entry := models.LedgerEntry{
		UserID:       userID,
		Kind:         kind,
		Amount:       amount,
		Description:  description,
		AssignmentID: assignmentID,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}

	return &entry, nil
}

// BalanceOf returns the cached balance for a user.
func (s *LedgerService) BalanceOf(userID uint) (int, error) {
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return user.LabPoints, nil
}

// EntriesFor lists a user's ledger entries, newest first.
func (s *LedgerService) EntriesFor(userID uint, limit int) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	query := config.DB.Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&entries).Error
	return entries, err
}

// SumEntries computes the signed sum of all entries for a user straight from
// the ledger.
func (s *LedgerService) SumEntries(userID uint) (int, error) {
	var sum int64
	err := config.DB.Model(&models.LedgerEntry{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(CASE WHEN kind = 'credit' THEN amount ELSE -amount END), 0)").
		Scan(&sum).Error
	return int(sum), err
}

// VerifyUserBalance compares the cached balance against the ledger sum. Drift
// means a write escaped the ledger transaction and is never corrected
// automatically: it is logged for manual reconciliation and reported as
// ErrInconsistentState.
func (s *LedgerService) VerifyUserBalance(userID uint) (int, int, error) {
	balance, err := s.BalanceOf(userID)
	if err != nil {
		return 0, 0, err
	}
	sum, err := s.SumEntries(userID)
	if err != nil {
		return 0, 0, err
	}
	if balance != sum {
		logger().Error("saldo em cache divergente do livro-razão",
			zap.Uint("user_id", userID),
			zap.Int("cached_balance", balance),
			zap.Int("ledger_sum", sum),
		)
		return balance, sum, ErrInconsistentState
	}
	return balance, sum, nil
}

func (s *LedgerService) notifyBalance(userID uint) {
	balance, err := s.BalanceOf(userID)
	if err != nil {
		return
	}
	emit(s.notifier, Event{
		Type:    EventBalanceUpdated,
		UserID:  userID,
		Payload: BalanceEventPayload{UserID: userID, Balance: balance},
	})
}
