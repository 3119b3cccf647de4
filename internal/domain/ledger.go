package domain

import (
	"time"

	"github.com/google/uuid"
)

type EntryType string

const (
	EntryTypeDebit  EntryType = "debit"
	EntryTypeCredit EntryType = "credit"
)

// LedgerEntry is the audit trail for savings-balance mutations. One entry is
// written inside the same database transaction as every approved movement
// that touches the customer's savings balance.
type LedgerEntry struct {
	ID            uuid.UUID
	TransactionID uuid.UUID
	CustomerID    uuid.UUID
	EntryType     EntryType
	AmountPaise   int64
	BalanceBefore int64
	BalanceAfter  int64
	CreatedAt     time.Time
}
