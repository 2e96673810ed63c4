package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// LedgerEventMessage notifies the statement worker that one transaction
// changed. It carries only the id, the action and the affected month;
// the worker re-reads the full collection from the repository.
type LedgerEventMessage struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Month     string    `json:"month"` // YYYY-MM of the touched effective date
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEventMessage creates an event for the given transaction and month.
func NewLedgerEventMessage(id, action, month string) *LedgerEventMessage {
	return &LedgerEventMessage{
		ID:        id,
		Action:    action,
		Month:     month,
		Timestamp: time.Now(),
	}
}

// Validate checks the action tag; unknown actions are consumer bugs.
func (m *LedgerEventMessage) Validate() error {
	switch m.Action {
	case ActionCreate, ActionUpdate, ActionDelete:
		return nil
	}
	return fmt.Errorf("unknown ledger event action: %q", m.Action)
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
