package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/sistemas-fafin-lab/labpoints-be/config"
	"github.com/sistemas-fafin-lab/labpoints-be/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB points config.DB at a per-test in-memory database. A single
// open connection serializes access, which keeps sqlite happy under the
// concurrency tests while the conditional updates still decide the winner.
func setupTestDB(t *testing.T) {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.MigrateModels(db))
	config.DB = db
}

func createTestUser(t *testing.T, email string, role models.UserRole, department models.Department) *models.User {
	t.Helper()
	user := models.User{
		Email:      email,
		Password:   "x",
		Name:       email,
		Role:       role,
		Department: department,
		IsActive:   true,
	}
	require.NoError(t, config.DB.Create(&user).Error)
	return &user
}

// grantPoints funds a user through the ledger so the balance invariant holds
// from the start.
func grantPoints(t *testing.T, ledger *LedgerService, userID uint, amount int) {
	t.Helper()
	_, err := ledger.Post(userID, models.EntryCredit, amount, "Saldo inicial de teste")
	require.NoError(t, err)
}

// captureNotifier records emitted events for assertions.
type captureNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *captureNotifier) Emit(event Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *captureNotifier) byType(eventType string) []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Event
	for _, e := range n.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func countAssignments(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, config.DB.Model(&models.PointAssignment{}).Count(&count).Error)
	return count
}

func countEntriesFor(t *testing.T, userID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, config.DB.Model(&models.LedgerEntry{}).Where("user_id = ?", userID).Count(&count).Error)
	return count
}
