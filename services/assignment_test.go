package services

import (
	"sync"
	"testing"
	"time"

	"github.com/sistemas-fafin-lab/labpoints-be/config"
	"github.com/sistemas-fafin-lab/labpoints-be/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkflow(notifier Notifier) (*AssignmentService, *LedgerService) {
	ledger := NewLedgerService(notifier)
	return NewAssignmentService(ledger, NewApproverPolicy(), notifier), ledger
}

func TestCreateAndApproveAssignment(t *testing.T) {
	setupTestDB(t)
	notifier := &captureNotifier{}
	workflow, ledger := newWorkflow(notifier)

	requester := createTestUser(t, "gestor1@fafin.com.br", models.RoleGestor, models.DepartmentComercial)
	approver := createTestUser(t, "gestor2@fafin.com.br", models.RoleGestor, models.DepartmentComercial)
	target := createTestUser(t, "colab@fafin.com.br", models.RoleColaborador, models.DepartmentComercial)

	assignment, err := workflow.CreateAssignment(requester.ID, target.ID, 100, "ótimo trabalho no inventário")
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentPending, assignment.Status)
	assert.Equal(t, approver.ID, assignment.ApproverID)
	assert.Nil(t, assignment.DecidedAt)

	// Pending assignments have zero effect on any balance.
	balance, err := ledger.BalanceOf(target.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
	assert.EqualValues(t, 0, countEntriesFor(t, target.ID))

	created := notifier.byType(EventAssignmentCreated)
	require.Len(t, created, 1)
	assert.Equal(t, approver.ID, created[0].UserID)

	decided, err := workflow.Approve(assignment.ID, approver.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentApproved, decided.Status)
	require.NotNil(t, decided.DecidedAt)

	balance, err = ledger.BalanceOf(target.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, balance)

	var entries []models.LedgerEntry
	require.NoError(t, config.DB.Where("user_id = ?", target.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, models.EntryCredit, entries[0].Kind)
	assert.Equal(t, 100, entries[0].Amount)
	require.NotNil(t, entries[0].AssignmentID)
	assert.Equal(t, assignment.ID, *entries[0].AssignmentID)

	_, _, err = ledger.VerifyUserBalance(target.ID)
	require.NoError(t, err)

	approved := notifier.byType(EventAssignmentApproved)
	require.Len(t, approved, 1)
	assert.Equal(t, requester.ID, approved[0].UserID)
}

func TestRejectAssignment(t *testing.T) {
	setupTestDB(t)
	workflow, ledger := newWorkflow(nil)

	requester := createTestUser(t, "gestor1@fafin.com.br", models.RoleGestor, models.DepartmentComercial)
	approver := createTestUser(t, "gestor2@fafin.com.br", models.RoleGestor, models.DepartmentComercial)
	target := createTestUser(t, "colab@fafin.com.br", models.RoleColaborador, models.DepartmentComercial)

	assignment, err := workflow.CreateAssignment(requester.ID, target.ID, 100, "ótimo trabalho")
	require.NoError(t, err)

	decided, err := workflow.Reject(assignment.ID, approver.ID, "justificativa insuficiente")
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentRejected, decided.Status)
	require.NotNil(t, decided.RejectionReason)
	assert.Equal(t, "justificativa insuficiente", *decided.RejectionReason)

	var stored models.PointAssignment
	require.NoError(t, config.DB.First(&stored, assignment.ID).Error)
	assert.Equal(t, models.AssignmentRejected, stored.Status)
	require.NotNil(t, stored.RejectionReason)

	// Rejection never creates a ledger entry nor moves a balance.
	balance, err := ledger.BalanceOf(target.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
	assert.EqualValues(t, 0, countEntriesFor(t, target.ID))
}

func TestCreateAssignmentValidation(t *testing.T) {
	setupTestDB(t)
	workflow, _ := newWorkflow(nil)

	requester := createTestUser(t, "gestor1@fafin.com.br", models.RoleGestor, models.DepartmentComercial)
	createTestUser(t, "gestor2@fafin.com.br", models.RoleGestor, models.DepartmentComercial)
	target := createTestUser(t, "colab@fafin.com.br", models.RoleColaborador, models.DepartmentComercial)

	_, err := workflow.CreateAssignment(requester.ID, target.ID, 0, "justificativa")
	assert.ErrorIs(t, err, ErrInvalidPoints)

	_, err = workflow.CreateAssignment(requester.ID, target.ID, -5, "justificativa")
	assert.ErrorIs(t, err, ErrInvalidPoints)

	_, err = workflow.CreateAssignment(requester.ID, target.ID, 10, "   ")
	assert.ErrorIs(t, err, ErrEmptyJustification)

	_, err = workflow.CreateAssignment(requester.ID, requester.ID, 10, "para mim mesmo")
	assert.ErrorIs(t, err, ErrSelfAssignment)

	// No partial state survives a failed create.
	assert.EqualValues(t, 0, countAssignments(t))
}

func TestCreateAssignmentAuthorization(t *testing.T) {
	setupTestDB(t)
	workflow, _ := newWorkflow(nil)

	colaborador := createTestUser(t, "colab1@fafin.com.br", models.RoleColaborador, models.DepartmentComercial)
	gestorOutro := createTestUser(t, "gestor-tec@fafin.com.br", models.RoleGestor, models.DepartmentTecnico)
	createTestUser(t, "gestor2@fafin.com.br", models.RoleGestor, models.DepartmentComercial)
	target := createTestUser(t, "colab2@fafin.com.br", models.RoleColaborador, models.DepartmentComercial)

	// Colaboradores cannot request grants.
	_, err := workflow.CreateAssignment(colaborador.ID, target.ID, 10, "tentativa")
	assert.ErrorIs(t, err, ErrAuthorization)

	// Gestores are confined to their own department.
	_, err = workflow.CreateAssignment(gestorOutro.ID, target.ID, 10, "tentativa")
	assert.ErrorIs(t, err, ErrAuthorization)

	// Adms are unrestricted.
	adm := createTestUser(t, "adm@fafin.com.br", models.RoleAdm, "")
	assignment, err := workflow.CreateAssignment(adm.ID, target.ID, 10, "reconhecimento da diretoria")
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentPending, assignment.Status)
}

func TestCreateAssignmentNoApproverAvailable(t *testing.T) {
	setupTestDB(t)
	workflow, _ := newWorkflow(nil)

	requester := createTestUser(t, "gestor1@fafin.com.br", models.RoleGestor, models.DepartmentComercial)
	target := createTestUser(t, "colab@fafin.com.br", models.RoleColaborador, models.DepartmentComercial)

	_, err := workflow.CreateAssignment(requester.ID, target.ID, 100, "ótimo trabalho")
	assert.ErrorIs(t, err, ErrNoApproverAvailable)

	// Nothing was persisted.
	assert.EqualValues(t, 0, countAssignments(t))
}

func TestApproveAuthorization(t *testing.T) {
	setupTestDB(t)
	workflow, ledger := newWorkflow(nil)

	requester := createTestUser(t, "gestor1@fafin.com.br", models.RoleGestor, models.DepartmentComercial)
	approver := createTestUser(t, "gestor2@fafin.com.br", models.RoleGestor, models.DepartmentComercial)
	intruso := createTestUser(t, "gestor-tec@fafin.com.br", models.RoleGestor, models.DepartmentTecnico)
	target := createTestUser(t, "colab@fafin.com.br", models.RoleColaborador, models.DepartmentComercial)

	assignment, err := workflow.CreateAssignment(requester.ID, target.ID, 50, "meta batida")
	require.NoError(t, err)
	require.Equal(t, approver.ID, assignment.ApproverID)

	// A gestor who is not the bound approver has no standing.
	_, err = workflow.Approve(assignment.ID, intruso.ID)
	assert.ErrorIs(t, err, ErrAuthorization)

	// Neither does the requester.
	_, err = workflow.Approve(assignment.ID, requester.ID)
	assert.ErrorIs(t, err, ErrAuthorization)

	balance, err := ledger.BalanceOf(target.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestAdminMayDecideAnyPending(t *testing.T) {
	setupTestDB(t)
	workflow, ledger := newWorkflow(nil)

	requester := createTestUser(t, "gestor1@fafin.com.br", models.RoleGestor, models.DepartmentComercial)
	approver := createTestUser(t, "gestor2@fafin.com.br", models.RoleGestor, models.DepartmentComercial)
	target := createTestUser(t, "colab@fafin.com.br", models.RoleColaborador, models.DepartmentComercial)
	adm := createTestUser(t, "adm@fafin.com.br", models.RoleAdm, "")

	assignment, err := workflow.CreateAssignment(requester.ID, target.ID, 80, "projeto entregue")
	require.NoError(t, err)
	require.NotEqual(t, adm.ID, assignment.ApproverID)
	require.Equal(t, approver.ID, assignment.ApproverID)

	decided, err := workflow.Approve(assignment.ID, adm.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentApproved, decided.Status)

	balance, err := ledger.BalanceOf(target.ID)
	require.NoError(t, err)
	assert.Equal(t, 80, balance)
}

func TestApproveNotFound(t *testing.T) {
	setupTestDB(t)
	workflow, _ := newWorkflow(nil)
	createTestUser(t, "gestor2@fafin.com.br", models.RoleGestor, models.DepartmentComercial)

	_, err := workflow.Approve(12345, 1)
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestTerminalAssignmentIsImmutable(t *testing.T) {
	setupTestDB(t)
	workflow, _ := newWorkflow(nil)

	requester := createTestUser(t, "gestor1@fafin.com.br", models.RoleGestor, models.DepartmentComercial)
	approver := createTestUser(t, "gestor2@fafin.com.br", models.RoleGestor, models.DepartmentComercial)
	target := createTestUser(t, "colab@fafin.com.br", models.RoleColaborador, models.DepartmentComercial)

	assignment, err := workflow.CreateAssignment(requester.ID, target.ID, 100, "ótimo trabalho")
	require.NoError(t, err)

	decided, err := workflow.Approve(assignment.ID, approver.ID)
	require.NoError(t, err)
	firstDecision := *decided.DecidedAt

	time.Sleep(5 * time.Millisecond)

	// Every further decision attempt fails without side effects.
	_, err = workflow.Approve(assignment.ID, approver.ID)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
	_, err = workflow.Reject(assignment.ID, approver.ID, "mudei de ideia")
	assert.ErrorIs(t, err, ErrAlreadyDecided)

	var stored models.PointAssignment
	require.NoError(t, config.DB.First(&stored, assignment.ID).Error)
	assert.Equal(t, models.AssignmentApproved, stored.Status)
	require.NotNil(t, stored.DecidedAt)
	assert.WithinDuration(t, firstDecision, *stored.DecidedAt, time.Millisecond)
	assert.Nil(t, stored.RejectionReason)

	// Exactly one credit was posted for this assignment.
	assert.EqualValues(t, 1, countEntriesFor(t, target.ID))
}

func TestConcurrentDecisionsExactlyOneWins(t *testing.T) {
	setupTestDB(t)
	workflow, ledger := newWorkflow(nil)

	requester := createTestUser(t, "gestor1@fafin.com.br", models.RoleGestor, models.DepartmentComercial)
	approver := createTestUser(t, "gestor2@fafin.com.br", models.RoleGestor, models.DepartmentComercial)
	target := createTestUser(t, "colab@fafin.com.br", models.RoleColaborador, models.DepartmentComercial)
	adm := createTestUser(t, "adm@fafin.com.br", models.RoleAdm, "")

	for i := 0; i < 10; i++ {
		assignment, err := workflow.CreateAssignment(requester.ID, target.ID, 10, "rodada de teste")
		require.NoError(t, err)

		var wg sync.WaitGroup
		var approveErr, rejectErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, approveErr = workflow.Approve(assignment.ID, approver.ID)
		}()
		go func() {
			defer wg.Done()
			_, rejectErr = workflow.Reject(assignment.ID, adm.ID, "corrida")
		}()
		wg.Wait()

		// Exactly one decision prevails; the loser sees ErrAlreadyDecided.
		if approveErr == nil {
			assert.ErrorIs(t, rejectErr, ErrAlreadyDecided)
		} else {
			assert.ErrorIs(t, approveErr, ErrAlreadyDecided)
			require.NoError(t, rejectErr)
		}

		var stored models.PointAssignment
		require.NoError(t, config.DB.First(&stored, assignment.ID).Error)
		assert.NotEqual(t, models.AssignmentPending, stored.Status)

		var entryCount int64
		require.NoError(t, config.DB.Model(&models.LedgerEntry{}).
			Where("assignment_id = ?", assignment.ID).
			Count(&entryCount).Error)
		if stored.Status == models.AssignmentApproved {
			assert.EqualValues(t, 1, entryCount)
		} else {
			assert.EqualValues(t, 0, entryCount)
		}
	}

	// The balance stayed consistent with the ledger throughout.
	_, _, err := ledger.VerifyUserBalance(target.ID)
	require.NoError(t, err)
}

func TestHistoryAndPendingViews(t *testing.T) {
	setupTestDB(t)
	workflow, _ := newWorkflow(nil)

	requester := createTestUser(t, "gestor1@fafin.com.br", models.RoleGestor, models.DepartmentComercial)
	approver := createTestUser(t, "gestor2@fafin.com.br", models.RoleGestor, models.DepartmentComercial)
	target := createTestUser(t, "colab@fafin.com.br", models.RoleColaborador, models.DepartmentComercial)

	first, err := workflow.CreateAssignment(requester.ID, target.ID, 10, "primeira")
	require.NoError(t, err)
	second, err := workflow.CreateAssignment(requester.ID, target.ID, 20, "segunda")
	require.NoError(t, err)

	pending, err := workflow.PendingForApprover(approver.ID)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	all, err := workflow.AllPending()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = workflow.Approve(first.ID, approver.ID)
	require.NoError(t, err)

	pending, err = workflow.PendingForApprover(approver.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	history, err := workflow.HistoryForRequester(requester.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)

	limited, err := workflow.HistoryForRequester(requester.ID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
