// Package bigquery persists transactions and receipts in BigQuery. Row
// types mirror the table schemas; repositories hold a shared client.
package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/dpratama/keuangan-pintar/internal/domain"
)

const (
	transactionsTable = "transactions"
	receiptsTable     = "receipts"
	dateFormat        = "2006-01-02"
)

type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	Type        string              `bigquery:"type"`        // REQUIRED
	Amount      int64               `bigquery:"amount"`      // REQUIRED, whole rupiah
	Description string              `bigquery:"description"` // REQUIRED
	Category    string              `bigquery:"category"`    // REQUIRED
	Notes       bigquery.NullString `bigquery:"notes"`       // NULLABLE

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED

	Source string `bigquery:"source"` // REQUIRED

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

type ReceiptRow struct {
	ReceiptID string `bigquery:"receipt_id"` // REQUIRED

	OCRText  string              `bigquery:"ocr_text"`  // REQUIRED
	ImageURI bigquery.NullString `bigquery:"image_uri"` // NULLABLE

	Status        string              `bigquery:"status"`         // REQUIRED
	TransactionID bigquery.NullString `bigquery:"transaction_id"` // NULLABLE
	Error         bigquery.NullString `bigquery:"error"`          // NULLABLE

	CreatedTS   time.Time              `bigquery:"created_ts"`   // REQUIRED
	ProcessedTS bigquery.NullTimestamp `bigquery:"processed_ts"` // NULLABLE
}

// RowFromTransaction converts a domain transaction to its storage row.
func RowFromTransaction(tx *domain.Transaction) *TransactionRow {
	return &TransactionRow{
		TransactionID:   tx.ID,
		Type:            string(tx.Type),
		Amount:          tx.Amount,
		Description:     tx.Description,
		Category:        tx.Category,
		Notes:           bigquery.NullString{StringVal: tx.Notes, Valid: tx.Notes != ""},
		TransactionDate: tx.Date,
		Source:          string(tx.Source),
		CreatedTS:       tx.CreatedAt,
	}
}

// Transaction converts a storage row back to the domain type.
func (r *TransactionRow) Transaction() *domain.Transaction {
	return &domain.Transaction{
		ID:          r.TransactionID,
		Type:        domain.Type(r.Type),
		Amount:      r.Amount,
		Description: r.Description,
		Category:    r.Category,
		Notes:       r.Notes.StringVal,
		Date:        r.TransactionDate,
		Source:      domain.Source(r.Source),
		CreatedAt:   r.CreatedTS,
	}
}

// RowFromReceipt converts a domain receipt to its storage row.
func RowFromReceipt(rc *domain.Receipt) *ReceiptRow {
	row := &ReceiptRow{
		ReceiptID:     rc.ID,
		OCRText:       rc.OCRText,
		ImageURI:      bigquery.NullString{StringVal: rc.ImageURI, Valid: rc.ImageURI != ""},
		Status:        string(rc.Status),
		TransactionID: bigquery.NullString{StringVal: rc.TransactionID, Valid: rc.TransactionID != ""},
		Error:         bigquery.NullString{StringVal: rc.Error, Valid: rc.Error != ""},
		CreatedTS:     rc.CreatedAt,
	}
	if rc.ProcessedAt != nil {
		row.ProcessedTS = bigquery.NullTimestamp{Timestamp: *rc.ProcessedAt, Valid: true}
	}
	return row
}

// Receipt converts a storage row back to the domain type.
func (r *ReceiptRow) Receipt() *domain.Receipt {
	rc := &domain.Receipt{
		ID:            r.ReceiptID,
		OCRText:       r.OCRText,
		ImageURI:      r.ImageURI.StringVal,
		Status:        domain.ReceiptStatus(r.Status),
		TransactionID: r.TransactionID.StringVal,
		Error:         r.Error.StringVal,
		CreatedAt:     r.CreatedTS,
	}
	if r.ProcessedTS.Valid {
		ts := r.ProcessedTS.Timestamp
		rc.ProcessedAt = &ts
	}
	return rc
}
