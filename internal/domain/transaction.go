package domain

import (
	"time"

	"cloud.google.com/go/civil"
)

// Source tells where a stored transaction came from.
type Source string

const (
	SourceVoice   Source = "voice"
	SourceReceipt Source = "receipt"
	SourceManual  Source = "manual"
)

// Transaction is a persisted transaction. The extraction pipelines produce
// a TransactionDraft; confirming a draft (or ingesting a receipt) turns it
// into a Transaction with identity and timestamps.
type Transaction struct {
	ID          string     `json:"id"`
	Type        Type       `json:"type"`
	Amount      int64      `json:"amount"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Notes       string     `json:"notes,omitempty"`
	Date        civil.Date `json:"date"`
	Source      Source     `json:"source"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ReceiptStatus tracks a receipt through the ingestion pipeline.
type ReceiptStatus string

const (
	ReceiptStatusPending   ReceiptStatus = "pending"
	ReceiptStatusProcessed ReceiptStatus = "processed"
	ReceiptStatusFailed    ReceiptStatus = "failed"
)

// Receipt is a stored receipt awaiting or past ingestion.
type Receipt struct {
	ID            string        `json:"id"`
	OCRText       string        `json:"ocr_text"`
	ImageURI      string        `json:"image_uri,omitempty"`
	Status        ReceiptStatus `json:"status"`
	TransactionID string        `json:"transaction_id,omitempty"`
	Error         string        `json:"error,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	ProcessedAt   *time.Time    `json:"processed_at,omitempty"`
}

// MonthlySummary aggregates stored transactions for one calendar month.
type MonthlySummary struct {
	Year         int              `json:"year"`
	Month        time.Month       `json:"month"`
	TotalByType  map[Type]int64   `json:"total_by_type"`
	SpendByCat   map[string]int64 `json:"spend_by_category"`
	Transactions int              `json:"transactions"`
}
