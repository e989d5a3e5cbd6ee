package events

import (
	"encoding/json"
	"time"
)

// MutationKind identifies what happened to a transaction.
type MutationKind string

const (
	MutationCreated MutationKind = "created"
	MutationUpdated MutationKind = "updated"
	MutationDeleted MutationKind = "deleted"
)

// MutationEvent is a lightweight notice that a ledger transaction changed.
// Consumers fetch the full snapshot from the store; the event carries only
// enough to locate it and to deduplicate redeliveries.
type MutationEvent struct {
	Kind          MutationKind `json:"kind"`
	TransactionID string       `json:"transactionId"`
	Notebook      string       `json:"notebook"`
	Timestamp     time.Time    `json:"timestamp"`
}

func NewMutationEvent(kind MutationKind, transactionID, notebook string) *MutationEvent {
	return &MutationEvent{
		Kind:          kind,
		TransactionID: transactionID,
		Notebook:      notebook,
		Timestamp:     time.Now(),
	}
}

// DedupeKey identifies one delivery of this event for at-least-once
// consumers.
func (m *MutationEvent) DedupeKey() string {
	return string(m.Kind) + ":" + m.TransactionID + ":" + m.Timestamp.UTC().Format(time.RFC3339Nano)
}

func (m *MutationEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MutationEventFromJSON(data []byte) (*MutationEvent, error) {
	var msg MutationEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// BudgetAlert is published when an expense pushes a category past its
// budget threshold.
type BudgetAlert struct {
	Category   string    `json:"category"`
	SpentCents int64     `json:"spentCents"`
	LimitCents int64     `json:"limitCents"`
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewBudgetAlert(category string, spentCents, limitCents int64, status string) *BudgetAlert {
	return &BudgetAlert{
		Category:   category,
		SpentCents: spentCents,
		LimitCents: limitCents,
		Status:     status,
		Timestamp:  time.Now(),
	}
}

func (a *BudgetAlert) ToJSON() ([]byte, error) {
	return json.Marshal(a)
}

func BudgetAlertFromJSON(data []byte) (*BudgetAlert, error) {
	var msg BudgetAlert
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
