package domain

import (
	"cloud.google.com/go/civil"
)

// Type is the transaction type as presented to the user. The labels are
// the Indonesian UI strings; Category falls back to them when no specific
// category keyword matches.
type Type string

const (
	TypeIncome  Type = "Pemasukan"
	TypeExpense Type = "Pengeluaran"
	TypeSavings Type = "Tabungan"
	TypeDebt    Type = "Hutang"

	// TypeOther is selectable in clients but never produced by extraction.
	TypeOther Type = "Lainnya"
)

// TransactionDraft is the structured, unpersisted record produced by the
// extractors. It is owned by the caller and subject to user confirmation
// before it becomes a stored transaction.
type TransactionDraft struct {
	Type        Type   `json:"type"`
	Amount      int64  `json:"amount"` // whole rupiah, never negative
	Description string `json:"description"`
	Category    string `json:"category"`

	// Notes carries the verbatim transcript (voice path only).
	Notes string `json:"notes,omitempty"`

	// Date is set by the receipt path only; the voice path leaves it zero
	// and callers default to today.
	Date civil.Date `json:"date,omitzero"`
}
