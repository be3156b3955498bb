package services

// Event types pushed to interested users after committed writes.
const (
	EventAssignmentCreated  = "assignment:created"
	EventAssignmentApproved = "assignment:approved"
	EventAssignmentRejected = "assignment:rejected"
	EventBalanceUpdated     = "balance:updated"
)

// Event is the shape every change notification carries. UserID addresses the
// interested party, not necessarily the entity owner.
type Event struct {
	Type    string      `json:"type"`
	UserID  uint        `json:"user_id"`
	Payload interface{} `json:"payload"`
}

// Notifier delivers events to subscribers. Delivery is fire-and-forget and
// at-least-once at best; no operation in this package depends on it
// succeeding.
type Notifier interface {
	Emit(event Event)
}

// emit is the nil-safe helper services use after a commit.
func emit(n Notifier, event Event) {
	if n == nil {
		return
	}
	n.Emit(event)
}

// AssignmentEventPayload summarizes an assignment for a feed update.
type AssignmentEventPayload struct {
	AssignmentID uint   `json:"assignment_id"`
	RequesterID  uint   `json:"requester_id"`
	TargetUserID uint   `json:"target_user_id"`
	Points       int    `json:"points"`
	Status       string `json:"status"`
}

// BalanceEventPayload carries the balance after a committed ledger post.
type BalanceEventPayload struct {
	UserID  uint `json:"user_id"`
	Balance int  `json:"balance"`
}
