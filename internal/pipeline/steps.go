package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dpratama/keuangan-pintar/internal/domain"
	"github.com/dpratama/keuangan-pintar/internal/extract"
)

// ExtractFieldsStep runs field extraction over the receipt OCR text.
type ExtractFieldsStep struct{}

func (s *ExtractFieldsStep) Name() string { return "extract_fields" }

func (s *ExtractFieldsStep) Execute(ctx context.Context, state *State) error {
	draft := extract.FromReceiptText(state.Receipt.OCRText)
	if draft == nil {
		return fmt.Errorf("receipt has no OCR text")
	}
	state.Draft = draft
	return nil
}

// BuildTransactionStep turns the extracted draft into a persistable
// transaction with identity and timestamps.
type BuildTransactionStep struct{}

func (s *BuildTransactionStep) Name() string { return "build_transaction" }

func (s *BuildTransactionStep) Execute(ctx context.Context, state *State) error {
	draft := state.Draft
	state.Transaction = &domain.Transaction{
		ID:          uuid.NewString(),
		Type:        draft.Type,
		Amount:      draft.Amount,
		Description: draft.Description,
		Category:    draft.Category,
		Date:        draft.Date,
		Source:      domain.SourceReceipt,
		CreatedAt:   time.Now(),
	}
	return nil
}

// InsertTransactionStep writes the transaction to the store.
type InsertTransactionStep struct {
	Store TransactionStore
}

func (s *InsertTransactionStep) Name() string { return "insert_transaction" }

func (s *InsertTransactionStep) Execute(ctx context.Context, state *State) error {
	if err := s.Store.Insert(ctx, []*domain.Transaction{state.Transaction}); err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}
	return nil
}
