package models

import "time"

const (
	ActivityCreated = "CREATED"
	ActivityUpdated = "UPDATED"
	ActivityDeleted = "DELETED"
)

// ActivityEvent is a single entry of a user's mutation history.
type ActivityEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	UserID      string    `json:"user_id"`
	ExpenseID   string    `json:"expense_id"`
	Kind        string    `json:"kind"`        // CREATED | UPDATED | DELETED
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
