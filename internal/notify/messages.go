package notify

import (
	"encoding/json"
	"time"
)

// Operation names carried by ledger change messages.
const (
	OpAdd    = "add"
	OpImport = "import"
	OpRemove = "remove"
	OpClear  = "clear"
)

// LedgerChangedMessage tells consumers the ledger was mutated. It carries
// the mutation kind and the resulting payment count, not the records, so
// consumers fetch current state from the service when they care.
type LedgerChangedMessage struct {
	Operation string    `json:"operation"`
	Payments  int       `json:"payments"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChangedMessage(operation string, payments int) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Operation: operation,
		Payments:  payments,
		Timestamp: time.Now(),
	}
}

func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
