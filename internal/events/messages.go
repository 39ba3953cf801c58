package events

import (
	"encoding/json"
	"time"
)

// Event kinds published on ledger mutations. Consumers fetch fresh
// state themselves; the message carries identifiers only.
const (
	KindImportCommitted     = "import_committed"
	KindTransactionsCleared = "transactions_cleared"
	KindAccountDeleted      = "account_deleted"
)

type LedgerEvent struct {
	Kind      string    `json:"kind"`
	AccountID int64     `json:"account_id"`
	Count     int       `json:"count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func newEvent(kind string, accountID int64, count int) *LedgerEvent {
	return &LedgerEvent{
		Kind:      kind,
		AccountID: accountID,
		Count:     count,
		Timestamp: time.Now(),
	}
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
