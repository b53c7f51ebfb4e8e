package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dpratama/keuangan-pintar/internal/domain"
	"github.com/dpratama/keuangan-pintar/internal/logger"
)

type mockReceiptStore struct {
	processed map[string]string // receipt ID -> transaction ID
	failed    map[string]string // receipt ID -> error message
}

func newMockReceiptStore() *mockReceiptStore {
	return &mockReceiptStore{
		processed: make(map[string]string),
		failed:    make(map[string]string),
	}
}

func (m *mockReceiptStore) Insert(ctx context.Context, rc *domain.Receipt) error { return nil }

func (m *mockReceiptStore) MarkProcessed(ctx context.Context, id, transactionID string) error {
	m.processed[id] = transactionID
	return nil
}

func (m *mockReceiptStore) MarkFailed(ctx context.Context, id, errMsg string) error {
	m.failed[id] = errMsg
	return nil
}

type mockTransactionStore struct {
	inserted []*domain.Transaction
	err      error
}

func (m *mockTransactionStore) Insert(ctx context.Context, txs []*domain.Transaction) error {
	if m.err != nil {
		return m.err
	}
	m.inserted = append(m.inserted, txs...)
	return nil
}

func TestPipelineIngestsReceipt(t *testing.T) {
	receipts := newMockReceiptStore()
	transactions := &mockTransactionStore{}
	p := New(receipts, transactions, logger.Nop())

	receipt := &domain.Receipt{
		ID:        "r-1",
		OCRText:   "Warung Sederhana\n12/03/2024\nNasi Ayam 25.000\nTotal Rp 25.000",
		Status:    domain.ReceiptStatusPending,
		CreatedAt: time.Now(),
	}

	tx, err := p.Run(context.Background(), receipt)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if tx.Amount != 25_000 {
		t.Errorf("Amount = %d, want 25000", tx.Amount)
	}
	if tx.Type != domain.TypeExpense {
		t.Errorf("Type = %q, want %q", tx.Type, domain.TypeExpense)
	}
	if tx.Source != domain.SourceReceipt {
		t.Errorf("Source = %q, want %q", tx.Source, domain.SourceReceipt)
	}
	if tx.ID == "" {
		t.Error("transaction has no ID")
	}

	if len(transactions.inserted) != 1 {
		t.Fatalf("inserted %d transactions, want 1", len(transactions.inserted))
	}
	if got := receipts.processed["r-1"]; got != tx.ID {
		t.Errorf("receipt linked to %q, want %q", got, tx.ID)
	}
	if len(receipts.failed) != 0 {
		t.Errorf("unexpected failures recorded: %v", receipts.failed)
	}
}

func TestPipelineMarksFailureOnEmptyOCR(t *testing.T) {
	receipts := newMockReceiptStore()
	p := New(receipts, &mockTransactionStore{}, logger.Nop())

	receipt := &domain.Receipt{ID: "r-2", OCRText: "   "}

	if _, err := p.Run(context.Background(), receipt); err == nil {
		t.Fatal("Run succeeded on empty OCR text")
	}
	if _, ok := receipts.failed["r-2"]; !ok {
		t.Error("receipt not marked failed")
	}
	if len(receipts.processed) != 0 {
		t.Errorf("unexpected processed receipts: %v", receipts.processed)
	}
}

func TestPipelineMarksFailureOnStoreError(t *testing.T) {
	receipts := newMockReceiptStore()
	transactions := &mockTransactionStore{err: fmt.Errorf("insert quota exceeded")}
	p := New(receipts, transactions, logger.Nop())

	receipt := &domain.Receipt{ID: "r-3", OCRText: "Toko Abadi\nTotal 9.000"}

	if _, err := p.Run(context.Background(), receipt); err == nil {
		t.Fatal("Run succeeded despite store error")
	}
	if msg := receipts.failed["r-3"]; msg == "" {
		t.Error("receipt not marked failed with store error")
	}
}
