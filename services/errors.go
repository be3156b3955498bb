package services

import "errors"

// Sentinel errors for the assignment workflow and the points ledger.
// Controllers map these to HTTP status codes with errors.Is; the messages are
// the user-facing text.
var (
	// validation class: safe to fix and retry
	ErrInvalidPoints      = errors.New("a quantidade de pontos deve ser positiva")
	ErrEmptyJustification = errors.New("a justificativa é obrigatória")
	ErrSelfAssignment     = errors.New("não é permitido atribuir pontos a si mesmo")
	ErrInvalidAmount      = errors.New("o valor do lançamento deve ser positivo")
	ErrInvalidEntryKind   = errors.New("tipo de lançamento inválido")

	// authorization: caller lacks standing
	ErrAuthorization = errors.New("sem permissão para esta operação")

	// not found
	ErrUserNotFound       = errors.New("usuário não encontrado")
	ErrAssignmentNotFound = errors.New("atribuição não encontrada")
	ErrRewardNotFound     = errors.New("recompensa não encontrada")

	// expected concurrency outcome: another approver decided first
	ErrAlreadyDecided = errors.New("atribuição já decidida")

	// configuration gap: no eligible gestor or adm for the target's department
	ErrNoApproverAvailable = errors.New("nenhum aprovador disponível para o setor do colaborador")

	// redemption path only
	ErrInsufficientBalance = errors.New("saldo de pontos insuficiente")

	// cached balance diverged from the ledger sum; never recovered
	// automatically, requires manual reconciliation
	ErrInconsistentState = errors.New("saldo inconsistente com o livro-razão")
)
