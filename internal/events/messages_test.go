package events

import (
	"testing"
	"time"
)

func TestLedgerEventJSON(t *testing.T) {
	timestamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	event := &LedgerEvent{
		Kind:      KindImportCommitted,
		AccountID: 42,
		Count:     17,
		Timestamp: timestamp,
	}

	data, err := event.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := LedgerEventFromJSON(data)
	if err != nil {
		t.Fatalf("LedgerEventFromJSON() error = %v", err)
	}
	if parsed.Kind != event.Kind {
		t.Errorf("Parsed Kind = %v, want %v", parsed.Kind, event.Kind)
	}
	if parsed.AccountID != event.AccountID {
		t.Errorf("Parsed AccountID = %v, want %v", parsed.AccountID, event.AccountID)
	}
	if parsed.Count != event.Count {
		t.Errorf("Parsed Count = %v, want %v", parsed.Count, event.Count)
	}
	if !parsed.Timestamp.Equal(event.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, event.Timestamp)
	}
}

func TestLedgerEventInvalidJSON(t *testing.T) {
	if _, err := LedgerEventFromJSON([]byte(`{"account_id": "nope"}`)); err == nil {
		t.Error("LedgerEventFromJSON() should fail with invalid JSON")
	}
}

func TestNewEventTimestamp(t *testing.T) {
	event := newEvent(KindAccountDeleted, 7, 0)
	if event.Timestamp.IsZero() {
		t.Error("newEvent() Timestamp should not be zero")
	}
	if time.Since(event.Timestamp) > time.Second {
		t.Error("newEvent() Timestamp should be recent")
	}
}
