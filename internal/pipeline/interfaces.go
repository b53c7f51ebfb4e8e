package pipeline

import (
	"context"

	"github.com/dpratama/keuangan-pintar/internal/domain"
)

// ReceiptStore is the slice of the receipt repository the pipeline needs.
type ReceiptStore interface {
	Insert(ctx context.Context, rc *domain.Receipt) error
	MarkProcessed(ctx context.Context, id, transactionID string) error
	MarkFailed(ctx context.Context, id, errMsg string) error
}

// TransactionStore is the slice of the transaction repository the pipeline
// needs.
type TransactionStore interface {
	Insert(ctx context.Context, txs []*domain.Transaction) error
}
